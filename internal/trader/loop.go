package trader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/drakos74/grid-coin/internal/api"
	"github.com/drakos74/grid-coin/internal/emoji"
	"github.com/drakos74/grid-coin/internal/feed"
	"github.com/drakos74/grid-coin/internal/grid"
	"github.com/drakos74/grid-coin/internal/metrics"
	"github.com/drakos74/grid-coin/internal/model"
	"github.com/drakos74/grid-coin/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultInterval is the pause between two ticks.
const DefaultInterval = 15 * time.Second

var (
	// ErrRunning is returned when starting a loop that is already active.
	ErrRunning = errors.New("trading already active")
	// ErrInvalidPrice is returned when the feed reports a non-positive price.
	ErrInvalidPrice = errors.New("invalid price")
)

// Settings are the parameters of a trading session.
type Settings struct {
	Grid     grid.Config
	Currency string
	Interval time.Duration
	// WindDown keeps selling the open positions once the capital is exhausted, instead of stopping right away.
	WindDown bool
}

// Status is a snapshot of the loop.
type Status struct {
	State   RunState     `json:"-"`
	Running bool         `json:"running"`
	Coin    model.Coin   `json:"coin,omitempty"`
	Session string       `json:"session,omitempty"`
	Summary grid.Summary `json:"summary"`
}

// Loop drives the grid ledger with periodic price ticks.
type Loop struct {
	feed     feed.Feed
	user     api.Notifier
	registry storage.Registry
	metrics  *metrics.Metrics
	settings Settings

	state state
	// control serialises Start and Stop.
	control *sync.Mutex
	// lock guards the session fields below.
	lock    *sync.RWMutex
	ledger  *grid.Ledger
	coin    model.Coin
	last    float64
	session string
	stop    chan struct{}
	done    chan struct{}
}

// New creates a new trading loop.
func New(f feed.Feed, user api.Notifier, settings Settings) *Loop {
	if settings.Interval <= 0 {
		settings.Interval = DefaultInterval
	}
	if settings.Currency == "" {
		settings.Currency = feed.DefaultCurrency
	}
	return &Loop{
		feed:     f,
		user:     user,
		registry: storage.NewVoidRegistry(),
		metrics:  metrics.Observer,
		settings: settings,
		control:  new(sync.Mutex),
		lock:     new(sync.RWMutex),
	}
}

// WithRegistry sets the journal the grid events are recorded to.
func (l *Loop) WithRegistry(registry storage.Registry) *Loop {
	l.registry = registry
	return l
}

// WithMetrics overrides the metrics collector.
func (l *Loop) WithMetrics(m *metrics.Metrics) *Loop {
	l.metrics = m
	return l
}

// Settings returns the loop settings.
func (l *Loop) Settings() Settings {
	return l.settings
}

// State returns the current run state.
func (l *Loop) State() RunState {
	return l.state.get()
}

// Start builds a fresh grid below the current price of the coin and starts ticking.
// It fails if the loop is already active or if no price can be retrieved for the coin.
func (l *Loop) Start(ctx context.Context, coin model.Coin) error {
	l.control.Lock()
	defer l.control.Unlock()

	// a loop that stopped on its own might still be cleaning up
	l.lock.RLock()
	done := l.done
	l.lock.RUnlock()
	if done != nil {
		<-done
	}

	if !l.state.swap(Stopped, Active) {
		return ErrRunning
	}

	price, err := l.fetch(ctx, coin)
	if err != nil {
		l.state.swap(Active, Stopped)
		return fmt.Errorf("could not get initial price for '%s': %w", coin, err)
	}
	ledger, err := grid.New(coin, l.settings.Grid, price)
	if err != nil {
		l.state.swap(Active, Stopped)
		return fmt.Errorf("could not create grid for '%s': %w", coin, err)
	}

	stop := make(chan struct{})
	done = make(chan struct{})
	session := uuid.New().String()

	l.lock.Lock()
	l.ledger = ledger
	l.coin = coin
	l.last = price
	l.session = session
	l.stop = stop
	l.done = done
	l.lock.Unlock()

	log.Info().
		Str("coin", string(coin)).
		Str("session", session).
		Float64("price", price).
		Float64("capital", l.settings.Grid.Capital).
		Int("slots", l.settings.Grid.Slots).
		Float64("step", l.settings.Grid.Step).
		Dur("interval", l.settings.Interval).
		Msg("trading started")
	l.metrics.Run(true)

	go l.run(ctx, ledger, stop, done)
	return nil
}

// Stop halts the loop and discards the grid, the capital is back to its initial value.
// It returns once the current tick has completed. Stopping an idle loop has no effect.
func (l *Loop) Stop() bool {
	l.control.Lock()
	defer l.control.Unlock()

	if !l.state.swap(Active, Stopped) {
		return false
	}

	l.lock.RLock()
	stop, done := l.stop, l.done
	l.lock.RUnlock()

	if stop != nil {
		close(stop)
	}
	if done != nil {
		<-done
	}
	log.Info().Msg("trading stopped")
	return true
}

// Status returns the current state of the loop and its ledger.
func (l *Loop) Status() Status {
	l.lock.RLock()
	defer l.lock.RUnlock()
	s := l.state.get()
	status := Status{
		State:   s,
		Running: s == Active,
		Coin:    l.coin,
		Session: l.session,
		Summary: grid.Idle(l.settings.Grid),
	}
	if l.ledger != nil {
		status.Summary = l.ledger.Summary(l.last)
	}
	return status
}

func (l *Loop) run(ctx context.Context, ledger *grid.Ledger, stop <-chan struct{}, done chan<- struct{}) {
	coin := ledger.Coin()
	defer func() {
		l.lock.Lock()
		l.ledger = nil
		l.coin = model.NoCoin
		l.last = 0
		l.session = ""
		l.lock.Unlock()
		l.metrics.Run(false)
		close(done)
	}()

	for {
		if l.state.get() != Active {
			return
		}
		select {
		case <-ctx.Done():
			l.halt(coin, "shutting down")
			return
		default:
		}

		if ledger.WindingDown() {
			if ledger.Empty() {
				l.halt(coin, "all positions are closed")
				return
			}
		} else if ledger.Exhausted() {
			if !l.settings.WindDown || ledger.Empty() {
				l.halt(coin, "capital is exhausted")
				return
			}
			l.lock.Lock()
			ledger.WindDown()
			l.lock.Unlock()
			log.Warn().Str("coin", string(coin)).Msg("capital exhausted, selling only")
			l.notify(fmt.Sprintf("%s Capital is exhausted, %s will only be sold from now on", emoji.Warning, coin))
		}

		l.tick(ctx, ledger)

		select {
		case <-stop:
			return
		case <-ctx.Done():
			l.halt(coin, "shutting down")
			return
		case <-time.After(l.settings.Interval):
		}
	}
}

// tick fetches the price and applies it to the ledger.
func (l *Loop) tick(ctx context.Context, ledger *grid.Ledger) {
	coin := ledger.Coin()
	currency := l.settings.Currency
	price, err := l.fetch(ctx, coin)
	if err != nil {
		// the ledger is left untouched, we try again on the next tick
		log.Error().Err(err).Str("coin", string(coin)).Msg("skipping tick")
		l.metrics.Failure(string(coin))
		l.notify(fmt.Sprintf("%s Could not get the price for %s, reply 'stop' to stop trading", emoji.Error, coin))
		return
	}

	l.lock.Lock()
	l.last = price
	events := ledger.Apply(price)
	summary := ledger.Summary(price)
	l.lock.Unlock()

	log.Debug().
		Str("coin", string(coin)).
		Float64("price", price).
		Float64("capital", summary.Capital).
		Int("open", summary.Open).
		Int("events", len(events)).
		Msg("tick")

	l.lock.RLock()
	key := storage.K{Pair: string(coin), Label: l.session}
	l.lock.RUnlock()

	msg := api.NewMessage(fmt.Sprintf("Updated price %s: %.2f %s", coin, price, currency))
	for _, e := range events {
		if e.Type != grid.InsufficientCapital {
			log.Info().
				Str("coin", string(coin)).
				Str("type", string(e.Type)).
				Int("slot", e.Slot).
				Float64("quantity", e.Quantity).
				Float64("price", e.Price).
				Float64("capital", e.Capital).
				Msg("trade")
		} else {
			log.Warn().
				Str("coin", string(coin)).
				Int("slot", e.Slot).
				Float64("capital", e.Capital).
				Msg("insufficient capital")
		}
		if err := l.registry.Put(key, e); err != nil {
			log.Error().Err(err).Str("key", key.String()).Msg("could not record event")
		}
		l.metrics.Event(e)
		msg.AddLine(e.Format(currency))
	}
	l.metrics.Tick(summary)
	l.user.Send(msg)
}

// halt stops the loop from within.
func (l *Loop) halt(coin model.Coin, reason string) {
	if !l.state.swap(Active, Stopped) {
		return
	}
	l.lock.RLock()
	summary := grid.Idle(l.settings.Grid)
	if l.ledger != nil {
		summary = l.ledger.Summary(l.last)
	}
	l.lock.RUnlock()
	log.Info().Str("coin", string(coin)).Str("reason", reason).Float64("capital", summary.Capital).Msg("trading halted")
	l.notify(fmt.Sprintf("%s Trading %s stopped: %s", emoji.Close, coin, reason))
	l.user.Send(api.NewMessage(summary.Format(l.settings.Currency)))
}

func (l *Loop) fetch(ctx context.Context, coin model.Coin) (float64, error) {
	p, err := l.feed.Price(ctx, coin, l.settings.Currency)
	if err != nil {
		return 0, err
	}
	if p <= 0 {
		return 0, fmt.Errorf("%s at '%v': %w", coin, p, ErrInvalidPrice)
	}
	return p, nil
}

func (l *Loop) notify(txt string) {
	l.user.Send(api.NewMessage(txt))
}
