package emoji

import (
	"github.com/drakos74/grid-coin/internal/model"
)

// https://unicode.org/emoji/charts/full-emoji-list.html
const (
	Zero = "🥜"
	Down = "🐞"
	Up   = "🦠"

	Biohazard = "😝"
	Recycling = "🤑"

	Error   = "🚫"
	Warning = "⚠️"

	Open  = "🔔"
	Close = "🔕"

	Money = "💰"
	Chart = "📈"
	Wave  = "👋"
	Point = "👇"
)

// MapOpen maps the running state to an emoji.
func MapOpen(s bool) string {
	if s {
		return Open
	}
	return Close
}

// MapType maps the type of buy and sell to an emoji
func MapType(t model.Type) string {
	switch t {
	case model.Buy:
		return Recycling
	case model.Sell:
		return Biohazard
	}
	return Error
}

// MapToSentiment maps the given float value according to it's sign.
func MapToSentiment(f float64) string {
	emo := Zero
	if f > 0 {
		emo = Up
	} else if f < 0 {
		emo = Down
	}
	return emo
}
