package grid

// Slot is a single grid level holding at most one open position.
type Slot struct {
	Index int `json:"index"`
	// BuyPrice is the threshold at or below which the slot buys.
	BuyPrice float64 `json:"buy_price"`
	// SellPrice is the threshold at or above which the held position is sold.
	// It is zero while the slot is empty.
	SellPrice float64 `json:"sell_price,omitempty"`
	// Quantity is the amount of the coin held, zero means the slot is available.
	Quantity float64 `json:"quantity"`
}

// Holding returns true if the slot has an open position.
func (s Slot) Holding() bool {
	return s.Quantity > 0
}

// Valid checks the slot exclusivity invariant.
func (s Slot) Valid() bool {
	return (s.Quantity > 0) == (s.SellPrice > 0)
}

func (s *Slot) buy(price, allocation, step float64) float64 {
	s.Quantity = allocation / price
	s.SellPrice = price * (1 + step/100)
	return s.Quantity
}

func (s *Slot) sell(price, step float64) (quantity, earnings float64) {
	quantity = s.Quantity
	earnings = quantity * price
	s.Quantity = 0
	s.SellPrice = 0
	// re-anchor on the price we sold at, not the original ladder
	s.BuyPrice = price * (1 - step/100)
	return quantity, earnings
}
