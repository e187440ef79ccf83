package model

import (
	"fmt"
	"strings"
)

// Coin defines a custom coin type
type Coin string

const (
	// NoCoin is a undefined coin
	NoCoin Coin = ""
	// BTC represents bitcoin
	BTC Coin = "BTC"
	// ETH represents the ethereum token
	ETH Coin = "ETH"
	// USDT represents the tether stable coin
	USDT Coin = "USDT"
	// BNB represents the binance coin
	BNB Coin = "BNB"
	// SOL represents solana
	SOL Coin = "SOL"
	// USDC represents the usd coin
	USDC Coin = "USDC"
	// XRP represents the xrp token
	XRP Coin = "XRP"
	// DOGE represents dogecoin
	DOGE Coin = "DOGE"
	// TON represents the toncoin
	TON Coin = "TON"
)

// DefaultCoins are the coins offered to the user when nothing else is configured.
var DefaultCoins = []Coin{BTC, ETH, USDT, BNB, SOL, USDC, XRP, DOGE, TON}

// ParseCoin parses the given string into a coin.
// the input is case-insensitive, but it needs to be one of the given known coins.
func ParseCoin(s string, known ...Coin) (Coin, error) {
	c := Coin(strings.ToUpper(strings.TrimSpace(s)))
	if c == NoCoin {
		return NoCoin, fmt.Errorf("empty coin")
	}
	if len(known) == 0 {
		return c, nil
	}
	for _, k := range known {
		if k == c {
			return c, nil
		}
	}
	return NoCoin, fmt.Errorf("unknown coin '%s'", s)
}

// Coins converts the given strings to coins.
func Coins(ss ...string) []Coin {
	cc := make([]Coin, 0, len(ss))
	for _, s := range ss {
		if c := Coin(strings.ToUpper(strings.TrimSpace(s))); c != NoCoin {
			cc = append(cc, c)
		}
	}
	return cc
}

// Type defines the type of the order/movement buy or sell.
type Type byte

const (
	// NoType defines a missing trade type.
	NoType Type = iota
	// Buy defines a buy order.
	Buy
	// Sell defines a sell order.
	Sell
)

func (t Type) String() string {
	switch t {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	}
	return ""
}
