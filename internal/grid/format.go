package grid

import (
	"fmt"
	"strings"

	"github.com/drakos74/grid-coin/internal/emoji"
)

// Format formats the event as a user message, prices are quoted in the given currency.
func (e Event) Format(currency string) string {
	switch e.Type {
	case Bought, Sold:
		verb := "Bought"
		if e.Type == Sold {
			verb = "Sold"
		}
		return fmt.Sprintf("%s %s %.6f %s at %.2f %s [slot %d]",
			emoji.MapType(e.TradeType()), verb, e.Quantity, e.Coin, e.Price, currency, e.Slot)
	case InsufficientCapital:
		return fmt.Sprintf("%s Not enough capital to buy %s at %.2f %s [slot %d] (capital %.2f %s)",
			emoji.Warning, e.Coin, e.Price, currency, e.Slot, e.Capital, currency)
	}
	return fmt.Sprintf("%+v", e)
}

// Format formats the summary as a user message.
func (s Summary) Format(currency string) string {
	msg := new(strings.Builder)
	msg.WriteString(fmt.Sprintf("%s Current capital: %.2f %s", emoji.Money, s.Capital, currency))
	if s.Coin != "" {
		msg.WriteString(fmt.Sprintf("\n%s %d/%d slots open, holding %.6f %s",
			emoji.Chart, s.Open, s.Slots, s.Held, s.Coin))
		msg.WriteString(fmt.Sprintf("\n%s equity %.2f %s (%+.2f)",
			emoji.MapToSentiment(s.Profit()), s.Equity, currency, s.Profit()))
	}
	if s.WindDown {
		msg.WriteString("\nselling only, no capital left for new positions")
	}
	return msg.String()
}
