package models

import "time"

type PricePoint struct {
	ID        int64     `json:"id"`
	CoinID    string    `json:"coinId"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// Quote is one coin's current market data from the price provider.
// Change24h is nil when the provider omits it.
type Quote struct {
	Price     float64  `json:"price"`
	Change24h *float64 `json:"change24h,omitempty"`
}

type Coin struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}
