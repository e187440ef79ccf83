package binance

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/drakos74/grid-coin/internal/feed"
	"github.com/drakos74/grid-coin/internal/model"
	"github.com/rs/zerolog/log"
)

// invalidSymbol is the binance error code for unknown pairs.
const invalidSymbol = -1121

// Feed retrieves the latest prices from the binance ticker.
type Feed struct {
	api       exchange
	converter CoinConverter
}

// NewFeed creates a new binance price feed.
func NewFeed() *Feed {
	k, s := exchangeConfig()
	return &Feed{
		api:       newBinanceAPI(binance.NewClient(k, s)),
		converter: NewConverter(),
	}
}

// Price returns the last traded price of the coin against the currency.
func (f *Feed) Price(ctx context.Context, coin model.Coin, currency string) (float64, error) {
	if f.converter.Same(coin, currency) {
		return 1, nil
	}
	pair := f.converter.Pair(coin, currency)
	prices, err := f.api.ListPrices(ctx, pair)
	if err != nil {
		var apiErr *common.APIError
		if errors.As(err, &apiErr) && apiErr.Code == invalidSymbol {
			return 0, fmt.Errorf("pair '%s' not found: %w", pair, feed.ErrUnknownSymbol)
		}
		return 0, fmt.Errorf("could not get price list for '%s': %w", pair, err)
	}
	for _, p := range prices {
		if p == nil || p.Symbol != pair {
			continue
		}
		price, err := strconv.ParseFloat(p.Price, 64)
		if err != nil {
			log.Error().Str("pair", pair).Str("price", p.Price).Err(err).Msg("could not parse price")
			return 0, fmt.Errorf("could not parse price '%s' for '%s': %w", p.Price, pair, err)
		}
		return price, nil
	}
	return 0, fmt.Errorf("pair '%s' not in response: %w", pair, feed.ErrUnknownSymbol)
}
