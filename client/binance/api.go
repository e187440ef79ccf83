package binance

import (
	"context"

	"github.com/adshao/go-binance/v2"
)

type exchange interface {
	ListPrices(ctx context.Context, symbol string) ([]*binance.SymbolPrice, error)
}

type binanceAPI struct {
	client *binance.Client
}

func newBinanceAPI(client *binance.Client) *binanceAPI {
	return &binanceAPI{client: client}
}

func (b *binanceAPI) ListPrices(ctx context.Context, symbol string) ([]*binance.SymbolPrice, error) {
	return b.client.NewListPricesService().Symbol(symbol).Do(ctx)
}
