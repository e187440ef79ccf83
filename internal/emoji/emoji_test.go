package emoji

import (
	"testing"

	"github.com/drakos74/grid-coin/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestMapType(t *testing.T) {
	assert.Equal(t, Recycling, MapType(model.Buy))
	assert.Equal(t, Biohazard, MapType(model.Sell))
	assert.Equal(t, Error, MapType(model.NoType))
}

func TestMapToSentiment(t *testing.T) {
	assert.Equal(t, Up, MapToSentiment(0.1))
	assert.Equal(t, Down, MapToSentiment(-0.1))
	assert.Equal(t, Zero, MapToSentiment(0))
}

func TestMapOpen(t *testing.T) {
	assert.Equal(t, Open, MapOpen(true))
	assert.Equal(t, Close, MapOpen(false))
}
