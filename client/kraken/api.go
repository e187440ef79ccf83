package kraken

import (
	krakenapi "github.com/beldur/kraken-go-api-client"
)

const (
	// Name is the name of the exchange.
	Name = "kraken"

	tickerMethod = "Ticker"
)

// public is the part of the kraken api the feed needs, public queries need no credentials.
type public interface {
	Query(method string, data map[string]string) (interface{}, error)
}

func newPublicAPI() *krakenapi.KrakenAPI {
	return krakenapi.New("KEY", "SECRET")
}
