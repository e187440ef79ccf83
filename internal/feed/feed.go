package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/drakos74/grid-coin/internal/model"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultCurrency is the quote currency prices are requested in.
	DefaultCurrency = "USD"
	// DefaultAttempts is the number of fetch attempts before giving up.
	DefaultAttempts = 3
	// DefaultDelay is the pause between consecutive attempts.
	DefaultDelay = 5 * time.Second
)

var (
	// ErrUnavailable signals the price could not be retrieved, possibly only for now.
	ErrUnavailable = errors.New("price unavailable")
	// ErrUnknownSymbol signals the feed does not know the requested coin.
	ErrUnknownSymbol = errors.New("unknown symbol")
)

// Feed returns the current price of a coin.
type Feed interface {
	Price(ctx context.Context, coin model.Coin, currency string) (float64, error)
}

// Func is an adapter to use plain functions as a Feed.
type Func func(ctx context.Context, coin model.Coin, currency string) (float64, error)

// Price calls f(ctx, coin, currency).
func (f Func) Price(ctx context.Context, coin model.Coin, currency string) (float64, error) {
	return f(ctx, coin, currency)
}

// Retry wraps a feed with a bounded number of attempts and a fixed delay in between.
// Unknown symbols are not retried, every other failure is reported as ErrUnavailable once attempts are exhausted.
type Retry struct {
	feed     Feed
	attempts int
	delay    time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewRetry creates a new retrying feed.
func NewRetry(feed Feed, attempts int, delay time.Duration) *Retry {
	if attempts <= 0 {
		attempts = 1
	}
	return &Retry{
		feed:     feed,
		attempts: attempts,
		delay:    delay,
		sleep:    sleep,
	}
}

// Price implements the Feed interface.
func (r *Retry) Price(ctx context.Context, coin model.Coin, currency string) (float64, error) {
	var err error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		var price float64
		price, err = r.feed.Price(ctx, coin, currency)
		if err == nil {
			if price <= 0 {
				err = fmt.Errorf("invalid price '%v'", price)
			} else {
				return price, nil
			}
		}
		if errors.Is(err, ErrUnknownSymbol) {
			log.Error().Err(err).Str("coin", string(coin)).Msg("unknown symbol")
			return 0, err
		}
		if attempt == r.attempts {
			break
		}
		log.Warn().
			Err(err).
			Str("coin", string(coin)).
			Int("attempt", attempt).
			Int("attempts", r.attempts).
			Msg("could not get price")
		if sErr := r.sleep(ctx, r.delay); sErr != nil {
			err = sErr
			break
		}
	}
	log.Error().
		Err(err).
		Str("coin", string(coin)).
		Int("attempts", r.attempts).
		Msg("giving up on price")
	return 0, fmt.Errorf("%s after %d attempts: %v: %w", coin, r.attempts, err, ErrUnavailable)
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
