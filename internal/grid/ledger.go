package grid

import (
	"errors"
	"fmt"
	"time"

	"github.com/drakos74/grid-coin/internal/model"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
)

// tolerance absorbs the rounding of capital / slots allocations.
const tolerance = 1e-9

// ErrInvalidConfig is returned when the ledger cannot be built from the given parameters.
var ErrInvalidConfig = errors.New("invalid grid config")

// Config defines the parameters of a grid.
type Config struct {
	// Capital is the initial cash balance partitioned across the slots.
	Capital float64
	// Step is the percentage distance between consecutive thresholds.
	Step float64
	// Slots is the number of grid slots.
	Slots int
}

// Validate checks that the config can produce a grid.
func (c Config) Validate() error {
	if c.Capital <= 0 {
		return fmt.Errorf("capital must be positive '%v': %w", c.Capital, ErrInvalidConfig)
	}
	if c.Slots <= 0 {
		return fmt.Errorf("slots must be positive '%v': %w", c.Slots, ErrInvalidConfig)
	}
	if c.Step <= 0 || c.Step*float64(c.Slots) >= 100 {
		return fmt.Errorf("step must be in (0,%v) '%v': %w", 100/float64(c.Slots), c.Step, ErrInvalidConfig)
	}
	return nil
}

// Ledger owns the grid slots and the capital of a trading session.
// It is not safe for concurrent use, the trading loop is its only owner.
type Ledger struct {
	coin       model.Coin
	cfg        Config
	allocation float64
	capital    float64
	slots      []Slot
	windDown   bool
	now        func() time.Time
}

// New creates a new ledger with a descending ladder of buy thresholds below the given price.
func New(coin model.Coin, cfg Config, price float64) (*Ledger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if price <= 0 {
		return nil, fmt.Errorf("price must be positive '%v': %w", price, ErrInvalidConfig)
	}
	slots := make([]Slot, cfg.Slots)
	for i := range slots {
		slots[i] = Slot{
			Index:    i,
			BuyPrice: price * (1 - cfg.Step/100*float64(i+1)),
		}
	}
	log.Debug().
		Str("coin", string(coin)).
		Float64("price", price).
		Float64("step", cfg.Step).
		Int("slots", cfg.Slots).
		Float64("lowest", slots[len(slots)-1].BuyPrice).
		Msg("grid initialised")
	return &Ledger{
		coin:       coin,
		cfg:        cfg,
		allocation: cfg.Capital / float64(cfg.Slots),
		capital:    cfg.Capital,
		slots:      slots,
		now:        time.Now,
	}, nil
}

// Apply applies the price to all slots in index order and returns the resulting events.
func (l *Ledger) Apply(price float64) []Event {
	events := make([]Event, 0)
	now := l.now()
	for i := range l.slots {
		slot := &l.slots[i]
		switch {
		case !slot.Holding() && price <= slot.BuyPrice:
			if l.windDown {
				continue
			}
			if l.capital+tolerance < l.allocation {
				event := newEvent(InsufficientCapital, l.coin, slot.Index, now)
				event.Price = price
				event.Amount = l.allocation - l.capital
				event.Capital = l.capital
				events = append(events, event)
				continue
			}
			quantity := slot.buy(price, l.allocation, l.cfg.Step)
			l.capital -= l.allocation
			if l.capital < 0 {
				// only rounding can get us here
				l.capital = 0
			}
			event := newEvent(Bought, l.coin, slot.Index, now)
			event.Quantity = quantity
			event.Price = price
			event.Amount = l.allocation
			event.Capital = l.capital
			events = append(events, event)
		case slot.Holding() && price >= slot.SellPrice:
			quantity, earnings := slot.sell(price, l.cfg.Step)
			l.capital += earnings
			event := newEvent(Sold, l.coin, slot.Index, now)
			event.Quantity = quantity
			event.Price = price
			event.Amount = earnings
			event.Capital = l.capital
			events = append(events, event)
		}
	}
	return events
}

// Coin returns the coin the ledger trades.
func (l *Ledger) Coin() model.Coin {
	return l.coin
}

// Capital returns the uncommitted cash balance.
func (l *Ledger) Capital() float64 {
	return l.capital
}

// Allocation returns the capital committed by each buy.
func (l *Ledger) Allocation() float64 {
	return l.allocation
}

// Slots returns a copy of the current slots.
func (l *Ledger) Slots() []Slot {
	slots := make([]Slot, len(l.slots))
	copy(slots, l.slots)
	return slots
}

// Exhausted returns true if there is no capital left.
func (l *Ledger) Exhausted() bool {
	return l.capital <= tolerance
}

// Empty returns true if no slot holds a position.
func (l *Ledger) Empty() bool {
	for _, s := range l.slots {
		if s.Holding() {
			return false
		}
	}
	return true
}

// WindDown switches the ledger to sell-only mode.
func (l *Ledger) WindDown() {
	l.windDown = true
}

// WindingDown returns true if the ledger only sells.
func (l *Ledger) WindingDown() bool {
	return l.windDown
}

// Summary is a snapshot of the ledger valued at a given price.
type Summary struct {
	Coin       model.Coin `json:"coin"`
	Price      float64    `json:"price"`
	Initial    float64    `json:"initial"`
	Capital    float64    `json:"capital"`
	Allocation float64    `json:"allocation"`
	Open       int        `json:"open"`
	Slots      int        `json:"slots"`
	// Held is the total quantity of the coin across the slots.
	Held float64 `json:"held"`
	// Equity is the capital plus the held quantity valued at the price.
	Equity float64 `json:"equity"`
	// Target is the value of the held positions if every slot sold at its threshold.
	Target   float64 `json:"target"`
	WindDown bool    `json:"wind_down"`
}

// Profit returns the equity change against the initial capital.
func (s Summary) Profit() float64 {
	return s.Equity - s.Initial
}

// Summary values the ledger at the given price.
func (l *Ledger) Summary(price float64) Summary {
	quantities := make([]float64, len(l.slots))
	targets := make([]float64, len(l.slots))
	open := 0
	for i, s := range l.slots {
		quantities[i] = s.Quantity
		targets[i] = s.SellPrice
		if s.Holding() {
			open++
		}
	}
	held := floats.Sum(quantities)
	return Summary{
		Coin:       l.coin,
		Price:      price,
		Initial:    l.cfg.Capital,
		Capital:    l.capital,
		Allocation: l.allocation,
		Open:       open,
		Slots:      len(l.slots),
		Held:       held,
		Equity:     l.capital + held*price,
		Target:     floats.Dot(quantities, targets),
		WindDown:   l.windDown,
	}
}

// Idle returns the summary of a session that has not started, or has been reset.
func Idle(cfg Config) Summary {
	allocation := 0.0
	if cfg.Slots > 0 {
		allocation = cfg.Capital / float64(cfg.Slots)
	}
	return Summary{
		Initial:    cfg.Capital,
		Capital:    cfg.Capital,
		Allocation: allocation,
		Slots:      cfg.Slots,
		Equity:     cfg.Capital,
	}
}
