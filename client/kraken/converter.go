package kraken

import (
	"strings"

	"github.com/drakos74/grid-coin/internal/model"
)

// CoinConverter converts from the internal coin representation to kraken asset names.
type CoinConverter struct {
	coins map[model.Coin]string
}

// NewConverter creates a new coin converter for kraken.
func NewConverter() CoinConverter {
	return CoinConverter{coins: map[model.Coin]string{
		model.BTC:  "XBT",
		model.DOGE: "XDG",
	}}
}

// Asset returns the kraken asset name of the coin.
func (c CoinConverter) Asset(coin model.Coin) string {
	if a, ok := c.coins[coin]; ok {
		return a
	}
	return string(coin)
}

// Pair transforms the internal coin type to a kraken pair e.g. XBTUSD.
func (c CoinConverter) Pair(coin model.Coin, currency string) string {
	return c.Asset(coin) + strings.ToUpper(currency)
}
