package binance

import (
	"strings"

	"github.com/drakos74/grid-coin/internal/model"
)

// CoinConverter converts from the internal coin representation to binance specific model
type CoinConverter struct {
	quotes map[string]string
}

// NewConverter creates a new coin converter for binance.
// binance has no fiat usd market, so usd quotes are served by the tether pairs.
func NewConverter() CoinConverter {
	return CoinConverter{quotes: map[string]string{
		"USD": "USDT",
	}}
}

// Quote returns the binance quote asset for the given currency.
func (c CoinConverter) Quote(currency string) string {
	currency = strings.ToUpper(currency)
	if q, ok := c.quotes[currency]; ok {
		return q
	}
	return currency
}

// Pair transforms the internal coin type to an exchange traded pair.
func (c CoinConverter) Pair(coin model.Coin, currency string) string {
	return string(coin) + c.Quote(currency)
}

// Same returns true if the coin is the quote asset itself.
func (c CoinConverter) Same(coin model.Coin, currency string) bool {
	return string(coin) == c.Quote(currency)
}
