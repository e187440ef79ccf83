package binance

import (
	"os"
)

const (
	// Name is the name of the exchange.
	Name = "binance"

	apiKey    = "BINANCE_API_KEY"
	secretKey = "BINANCE_SECRET_KEY"
)

// exchangeConfig reads the optional credentials, public prices do not need any.
func exchangeConfig() (k, s string) {
	return os.Getenv(apiKey), os.Getenv(secretKey)
}
