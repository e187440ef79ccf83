package grid

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/drakos74/grid-coin/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const delta = 1e-9

func newLedger(t *testing.T, cfg Config, price float64) *Ledger {
	l, err := New(model.BTC, cfg, price)
	require.NoError(t, err)
	return l
}

func TestNew(t *testing.T) {

	type test struct {
		cfg   Config
		price float64
		buy   []float64
		err   bool
	}

	tests := map[string]test{
		"ladder": {
			cfg:   Config{Capital: 100, Step: 1, Slots: 3},
			price: 100,
			buy:   []float64{99, 98, 97},
		},
		"wide-step": {
			cfg:   Config{Capital: 100, Step: 5, Slots: 2},
			price: 200,
			buy:   []float64{190, 180},
		},
		"no-capital": {
			cfg:   Config{Capital: 0, Step: 1, Slots: 3},
			price: 100,
			err:   true,
		},
		"no-slots": {
			cfg:   Config{Capital: 100, Step: 1, Slots: 0},
			price: 100,
			err:   true,
		},
		"step-below-zero-price": {
			cfg:   Config{Capital: 100, Step: 10, Slots: 10},
			price: 100,
			err:   true,
		},
		"no-price": {
			cfg:   Config{Capital: 100, Step: 1, Slots: 3},
			price: 0,
			err:   true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			l, err := New(model.BTC, tt.cfg, tt.price)
			if tt.err {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidConfig))
				return
			}
			require.NoError(t, err)
			slots := l.Slots()
			require.Equal(t, len(tt.buy), len(slots))
			for i, s := range slots {
				assert.Equal(t, i, s.Index)
				assert.InDelta(t, tt.buy[i], s.BuyPrice, delta)
				assert.Equal(t, 0.0, s.Quantity)
				assert.Equal(t, 0.0, s.SellPrice)
			}
			assert.Equal(t, tt.cfg.Capital, l.Capital())
			assert.InDelta(t, tt.cfg.Capital/float64(tt.cfg.Slots), l.Allocation(), delta)
			assert.True(t, l.Empty())
		})
	}
}

func TestLedger_Buy(t *testing.T) {
	l := newLedger(t, Config{Capital: 100, Step: 1, Slots: 3}, 100)

	events := l.Apply(97.5)

	// the first two slots trigger at 99 and 98, the third waits for 97
	require.Equal(t, 2, len(events))
	for i, e := range events {
		assert.Equal(t, Bought, e.Type)
		assert.Equal(t, i, e.Slot)
		assert.Equal(t, 97.5, e.Price)
		assert.InDelta(t, l.Allocation()/97.5, e.Quantity, delta)
		assert.NotEmpty(t, e.ID)
	}

	slot := l.Slots()[1]
	assert.InDelta(t, l.Allocation()/97.5, slot.Quantity, delta)
	assert.InDelta(t, 98.475, slot.SellPrice, delta)
	assert.InDelta(t, 100-2*l.Allocation(), l.Capital(), delta)
	assert.Equal(t, 0.0, l.Slots()[2].Quantity)
}

func TestLedger_Sell(t *testing.T) {
	l := newLedger(t, Config{Capital: 1000, Step: 1, Slots: 1}, 100)
	l.slots[0] = Slot{Index: 0, BuyPrice: 99, Quantity: 5, SellPrice: 100}
	l.capital = 0

	events := l.Apply(101)

	require.Equal(t, 1, len(events))
	e := events[0]
	assert.Equal(t, Sold, e.Type)
	assert.Equal(t, 5.0, e.Quantity)
	assert.InDelta(t, 505, e.Amount, delta)

	slot := l.Slots()[0]
	assert.Equal(t, 0.0, slot.Quantity)
	assert.Equal(t, 0.0, slot.SellPrice)
	assert.InDelta(t, 99.99, slot.BuyPrice, delta)
	assert.InDelta(t, 505, l.Capital(), delta)
}

func TestLedger_InsufficientCapital(t *testing.T) {
	l := newLedger(t, Config{Capital: 100, Step: 1, Slots: 2}, 100)
	l.capital = 20

	events := l.Apply(98)

	require.Equal(t, 2, len(events))
	assert.Equal(t, InsufficientCapital, events[0].Type)
	assert.Equal(t, InsufficientCapital, events[1].Type)
	assert.Equal(t, 20.0, l.Capital())
	for _, s := range l.Slots() {
		assert.Equal(t, 0.0, s.Quantity)
		assert.Equal(t, 0.0, s.SellPrice)
	}
}

func TestLedger_NoAction(t *testing.T) {
	l := newLedger(t, Config{Capital: 100, Step: 1, Slots: 3}, 100)
	before := l.Slots()
	events := l.Apply(99.5)
	assert.Empty(t, events)
	assert.Equal(t, before, l.Slots())
	assert.Equal(t, 100.0, l.Capital())
}

func TestLedger_ExhaustsCapitalExactly(t *testing.T) {
	l := newLedger(t, Config{Capital: 100, Step: 1, Slots: 3}, 100)

	events := l.Apply(90)

	require.Equal(t, 3, len(events))
	for _, e := range events {
		assert.Equal(t, Bought, e.Type)
	}
	assert.True(t, l.Exhausted())
	assert.True(t, l.Capital() >= 0)
	assert.False(t, l.Empty())
}

func TestLedger_WindDown(t *testing.T) {
	l := newLedger(t, Config{Capital: 100, Step: 1, Slots: 2}, 100)

	events := l.Apply(99)
	require.Equal(t, 1, len(events))

	l.WindDown()
	assert.True(t, l.WindingDown())

	// the second slot would buy now, but we only sell
	events = l.Apply(98)
	assert.Empty(t, events)

	events = l.Apply(100)
	require.Equal(t, 1, len(events))
	assert.Equal(t, Sold, events[0].Type)
	assert.True(t, l.Empty())
}

func TestLedger_Invariants(t *testing.T) {

	rnd := rand.New(rand.NewSource(42))
	l := newLedger(t, Config{Capital: 100, Step: 1, Slots: 10}, 100)

	price := 100.0
	for i := 0; i < 5000; i++ {
		price = math.Max(1, price*(1+(rnd.Float64()-0.5)/25))

		before := l.Capital()
		events := l.Apply(price)

		// capital only moves by the executed trades
		flow := 0.0
		for _, e := range events {
			switch e.Type {
			case Bought:
				flow -= e.Amount
				assert.InDelta(t, e.Amount, e.Quantity*e.Price, 1e-6)
			case Sold:
				flow += e.Amount
				assert.InDelta(t, e.Amount, e.Quantity*e.Price, 1e-6)
			case InsufficientCapital:
				assert.True(t, e.Capital+tolerance < l.Allocation())
			}
		}
		assert.InDelta(t, before+flow, l.Capital(), 1e-6)

		assert.True(t, l.Capital() >= 0)
		for _, s := range l.Slots() {
			assert.True(t, s.Valid(), "slot %d violates exclusivity: %+v", s.Index, s)
		}
	}
}

func TestLedger_ValueConservation(t *testing.T) {
	l := newLedger(t, Config{Capital: 100, Step: 1, Slots: 5}, 100)

	prices := []float64{98.5, 97, 99.6, 101, 95, 96.2, 99}
	for _, p := range prices {
		before := l.Summary(p).Equity
		l.Apply(p)
		// trades execute at the tick price, so equity valued at that price must not move
		assert.InDelta(t, before, l.Summary(p).Equity, 1e-6)
	}
}

func TestLedger_Summary(t *testing.T) {
	l := newLedger(t, Config{Capital: 100, Step: 1, Slots: 2}, 100)
	l.Apply(99)

	s := l.Summary(100)
	assert.Equal(t, model.BTC, s.Coin)
	assert.Equal(t, 1, s.Open)
	assert.Equal(t, 2, s.Slots)
	assert.InDelta(t, 50.0/99, s.Held, delta)
	assert.InDelta(t, 50+50.0/99*100, s.Equity, delta)
	assert.InDelta(t, 50.0/99*99*1.01, s.Target, delta)
	assert.InDelta(t, s.Equity-100, s.Profit(), delta)

	idle := Idle(Config{Capital: 100, Step: 1, Slots: 4})
	assert.Equal(t, 100.0, idle.Capital)
	assert.Equal(t, 25.0, idle.Allocation)
	assert.Equal(t, 0, idle.Open)
}

func TestEvent_Format(t *testing.T) {
	l := newLedger(t, Config{Capital: 100, Step: 1, Slots: 1}, 100)
	events := l.Apply(99)
	require.Equal(t, 1, len(events))
	assert.Contains(t, events[0].Format("USD"), "Bought 1.010101 BTC at 99.00 USD")

	events = l.Apply(100)
	require.Equal(t, 1, len(events))
	assert.Contains(t, events[0].Format("USD"), "Sold 1.010101 BTC at 100.00 USD")

	assert.Contains(t, l.Summary(100).Format("USD"), "Current capital: ")
}
