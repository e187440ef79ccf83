package grid

import (
	"time"

	"github.com/drakos74/grid-coin/internal/model"
	"github.com/google/uuid"
)

// EventType defines the kind of event a tick produced for a slot.
type EventType string

const (
	// Bought signals a position was opened in a slot.
	Bought EventType = "bought"
	// Sold signals a position was closed in a slot.
	Sold EventType = "sold"
	// InsufficientCapital signals a buy trigger that could not be covered by the remaining capital.
	InsufficientCapital EventType = "insufficient-capital"
)

// Event is the outcome of a tick on a single slot.
type Event struct {
	ID       string     `json:"id"`
	Type     EventType  `json:"type"`
	Coin     model.Coin `json:"coin"`
	Slot     int        `json:"slot"`
	Quantity float64    `json:"quantity"`
	Price    float64    `json:"price"`
	// Amount is the cash that moved, cost for a buy, proceeds for a sell, the missing allocation otherwise.
	Amount float64 `json:"amount"`
	// Capital is the capital after the event was applied.
	Capital float64   `json:"capital"`
	Time    time.Time `json:"time"`
}

func newEvent(t EventType, coin model.Coin, slot int, now time.Time) Event {
	return Event{
		ID:   uuid.New().String(),
		Type: t,
		Coin: coin,
		Slot: slot,
		Time: now,
	}
}

// TradeType returns the trade type of the event, if it is a trade.
func (e Event) TradeType() model.Type {
	switch e.Type {
	case Bought:
		return model.Buy
	case Sold:
		return model.Sell
	}
	return model.NoType
}
