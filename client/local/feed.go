package local

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/drakos74/grid-coin/internal/feed"
	"github.com/drakos74/grid-coin/internal/model"
)

// Name is the name of the local price source.
const Name = "local"

// Quote is a scripted feed response.
type Quote struct {
	Price float64
	Err   error
}

// Price creates a successful quote.
func Price(p float64) Quote {
	return Quote{Price: p}
}

// Unavailable creates a failing quote.
func Unavailable() Quote {
	return Quote{Err: fmt.Errorf("scripted failure: %w", feed.ErrUnavailable)}
}

// Feed serves scripted quotes in order, once exhausted it keeps serving the last one.
// It can be used as a simulation environment for testing the trading logic.
type Feed struct {
	quotes []Quote
	coins  map[model.Coin]struct{}
	calls  int
	lock   *sync.Mutex
}

// NewFeed creates a new scripted feed.
func NewFeed(quotes ...Quote) *Feed {
	return &Feed{
		quotes: quotes,
		coins:  make(map[model.Coin]struct{}),
		lock:   new(sync.Mutex),
	}
}

// ForCoins restricts the feed to the given coins, others are reported as unknown.
func (f *Feed) ForCoins(coins ...model.Coin) *Feed {
	for _, c := range coins {
		f.coins[c] = struct{}{}
	}
	return f
}

// Add appends quotes to the script.
func (f *Feed) Add(quotes ...Quote) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.quotes = append(f.quotes, quotes...)
}

// Calls returns the number of price requests served.
func (f *Feed) Calls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.calls
}

// Price implements the feed.Feed interface.
func (f *Feed) Price(ctx context.Context, coin model.Coin, currency string) (float64, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls++
	if _, ok := f.coins[coin]; !ok && len(f.coins) > 0 {
		return 0, fmt.Errorf("'%s' is not served: %w", coin, feed.ErrUnknownSymbol)
	}
	if len(f.quotes) == 0 {
		return 0, fmt.Errorf("no quotes: %w", feed.ErrUnavailable)
	}
	q := f.quotes[0]
	if len(f.quotes) > 1 {
		f.quotes = f.quotes[1:]
	}
	return q.Price, q.Err
}

// Walk is a random walk price feed for dry runs.
type Walk struct {
	price      map[model.Coin]float64
	start      float64
	volatility float64
	rnd        *rand.Rand
	lock       *sync.Mutex
}

// NewWalk creates a random walk starting at the given price,
// every call moves the price by at most volatility percent.
func NewWalk(start, volatility float64, seed int64) *Walk {
	return &Walk{
		price:      make(map[model.Coin]float64),
		start:      start,
		volatility: volatility,
		rnd:        rand.New(rand.NewSource(seed)),
		lock:       new(sync.Mutex),
	}
}

// Price implements the feed.Feed interface.
func (w *Walk) Price(ctx context.Context, coin model.Coin, currency string) (float64, error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	p, ok := w.price[coin]
	if !ok {
		p = w.start
	} else {
		p = p * (1 + w.volatility/100*(2*w.rnd.Float64()-1))
	}
	w.price[coin] = p
	return p, nil
}
