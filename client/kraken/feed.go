package kraken

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/drakos74/grid-coin/internal/feed"
	"github.com/drakos74/grid-coin/internal/model"
	"github.com/rs/zerolog/log"
)

// unknownPair is the error kraken reports for pairs it does not list.
const unknownPair = "Unknown asset pair"

// Feed retrieves the last traded price from the kraken ticker.
type Feed struct {
	api       public
	converter CoinConverter
}

// NewFeed creates a new kraken price feed.
func NewFeed() *Feed {
	return &Feed{
		api:       newPublicAPI(),
		converter: NewConverter(),
	}
}

// Price returns the last traded price of the coin against the currency.
func (f *Feed) Price(ctx context.Context, coin model.Coin, currency string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	pair := f.converter.Pair(coin, currency)
	response, err := f.api.Query(tickerMethod, map[string]string{
		"pair": pair,
	})
	if err != nil {
		if strings.Contains(err.Error(), unknownPair) {
			return 0, fmt.Errorf("pair '%s' not found: %w", pair, feed.ErrUnknownSymbol)
		}
		return 0, fmt.Errorf("could not get ticker for '%s': %w", pair, err)
	}
	last, err := lastTrade(response)
	if err != nil {
		log.Error().Str("pair", pair).Err(err).Msg("could not read ticker")
		return 0, fmt.Errorf("could not read ticker for '%s': %w", pair, err)
	}
	price, err := strconv.ParseFloat(last, 64)
	if err != nil {
		return 0, fmt.Errorf("could not parse price '%s' for '%s': %w", last, pair, err)
	}
	return price, nil
}

// lastTrade extracts the last trade price from the ticker result.
// kraken keys the result by its own pair name e.g. XXBTZUSD for XBTUSD, so we take the single entry.
func lastTrade(response interface{}) (string, error) {
	pairs, ok := response.(map[string]interface{})
	if !ok || len(pairs) == 0 {
		return "", fmt.Errorf("empty response: %w", feed.ErrUnknownSymbol)
	}
	for _, info := range pairs {
		ticker, ok := info.(map[string]interface{})
		if !ok {
			return "", fmt.Errorf("unexpected ticker '%+v'", info)
		}
		// c is [price, lot volume] of the last trade
		c, ok := ticker["c"].([]interface{})
		if !ok || len(c) == 0 {
			return "", fmt.Errorf("no last trade in '%+v'", ticker)
		}
		price, ok := c[0].(string)
		if !ok {
			return "", fmt.Errorf("unexpected price '%+v'", c[0])
		}
		return price, nil
	}
	return "", fmt.Errorf("empty response: %w", feed.ErrUnknownSymbol)
}
