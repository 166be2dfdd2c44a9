package market

import "time"

// Quote kinds.
const (
	KindStock  = "stock"
	KindCrypto = "crypto"
)

// Quote is a single market data point for a symbol.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Volume        int64     `json:"volume,omitempty"`
	MarketCap     float64   `json:"market_cap,omitempty"`
	Kind          string    `json:"kind"`
	At            time.Time `json:"at"`
}
