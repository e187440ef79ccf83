package coinmarketcap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/drakos74/grid-coin/internal/feed"
	"github.com/drakos74/grid-coin/internal/model"
	"github.com/rs/zerolog/log"
)

const (
	// Name is the name of the price source.
	Name = "coinmarketcap"

	// DefaultURL is the latest quotes endpoint.
	DefaultURL = "https://pro-api.coinmarketcap.com/v1/cryptocurrency/quotes/latest"

	apiKeyHeader = "X-CMC_PRO_API_KEY"
	apiKeyEnv    = "COINMARKETCAP_API_KEY"
)

type quote struct {
	Price float64 `json:"price"`
}

type asset struct {
	Symbol string           `json:"symbol"`
	Quote  map[string]quote `json:"quote"`
}

type status struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

type response struct {
	Status status           `json:"status"`
	Data   map[string]asset `json:"data"`
}

// Feed retrieves quotes from the coinmarketcap api.
type Feed struct {
	client *http.Client
	url    string
	key    string
}

// NewFeed creates a new coinmarketcap feed, the api key is read from the environment.
func NewFeed() *Feed {
	return &Feed{
		client: &http.Client{Timeout: 10 * time.Second},
		url:    DefaultURL,
		key:    os.Getenv(apiKeyEnv),
	}
}

// WithURL overrides the endpoint.
func (f *Feed) WithURL(u string) *Feed {
	f.url = u
	return f
}

// WithKey overrides the api key.
func (f *Feed) WithKey(key string) *Feed {
	f.key = key
	return f
}

// Price returns the latest quote of the coin in the given currency.
func (f *Feed) Price(ctx context.Context, coin model.Coin, currency string) (float64, error) {
	currency = strings.ToUpper(currency)
	params := url.Values{}
	params.Set("symbol", string(coin))
	params.Set("convert", currency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", f.url, params.Encode()), nil)
	if err != nil {
		return 0, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set(apiKeyHeader, f.key)
	req.Header.Set("Accept", "application/json")

	rsp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("could not get quote for '%s': %w", coin, err)
	}
	defer rsp.Body.Close()

	var body response
	if err := json.NewDecoder(rsp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("could not decode quote for '%s' [%d]: %w", coin, rsp.StatusCode, err)
	}

	if rsp.StatusCode != http.StatusOK {
		// an invalid symbol is reported as a bad request
		if rsp.StatusCode == http.StatusBadRequest && strings.Contains(strings.ToLower(body.Status.ErrorMessage), "symbol") {
			return 0, fmt.Errorf("%s: %w", body.Status.ErrorMessage, feed.ErrUnknownSymbol)
		}
		return 0, fmt.Errorf("unexpected status %d: %s", rsp.StatusCode, body.Status.ErrorMessage)
	}

	a, ok := body.Data[string(coin)]
	if !ok {
		log.Error().Str("coin", string(coin)).Msg("coin not found in response")
		return 0, fmt.Errorf("'%s' not in response: %w", coin, feed.ErrUnknownSymbol)
	}
	q, ok := a.Quote[currency]
	if !ok {
		return 0, fmt.Errorf("no '%s' quote for '%s': %w", currency, coin, feed.ErrUnknownSymbol)
	}
	return q.Price, nil
}
