// Package marketdata fetches stock and crypto quotes. Stock quotes are
// deterministic simulations keyed on the symbol; crypto quotes come from the
// Coinbase exchange-rates endpoint with a simulated fallback, so the fetcher
// keeps working offline.
package marketdata

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/HLKC779/financial-agents/internal/domain/market"
)

const exchangeRatesURL = "https://api.coinbase.com/v2/exchange-rates?currency=USD"

// Fetcher retrieves quotes for tracked symbols.
type Fetcher struct {
	http    *http.Client
	rateURL string
	now     func() time.Time
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithRateURL overrides the crypto rates endpoint, used in tests.
func WithRateURL(url string) Option {
	return func(f *Fetcher) { f.rateURL = url }
}

// WithClock overrides the clock, used in tests.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) { f.now = now }
}

// NewFetcher creates a Fetcher with a ten second HTTP timeout.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		http:    &http.Client{Timeout: 10 * time.Second},
		rateURL: exchangeRatesURL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// StockQuote returns a simulated quote for symbol. The base price depends
// only on the symbol and the daily change only on the symbol and the day, so
// repeated calls within a day agree.
func (f *Fetcher) StockQuote(symbol string) market.Quote {
	now := f.now().UTC()
	base := 100 + float64(symbolHash(symbol)%400)
	change := float64(int64(symbolHash(symbol+fmt.Sprint(now.Day()))%20)-10) / 10

	price := base + change
	return market.Quote{
		Symbol:        symbol,
		Price:         price,
		Change:        change,
		ChangePercent: change / base * 100,
		Volume:        1_000_000 + int64(symbolHash(symbol)%9_000_000),
		Kind:          market.KindStock,
		At:            now,
	}
}

// CryptoQuote returns the USD price of symbol from the exchange-rates
// endpoint, falling back to a simulated quote when the request fails.
func (f *Fetcher) CryptoQuote(ctx context.Context, symbol string) market.Quote {
	price, err := f.fetchRate(ctx, symbol)
	if err != nil {
		return f.simulatedCrypto(symbol)
	}

	now := f.now().UTC()
	change := float64(int64(symbolHash(symbol+fmt.Sprint(now.Day()))%20)-10) / 10
	return market.Quote{
		Symbol:        symbol,
		Price:         price,
		Change:        change,
		ChangePercent: change / price * 100,
		MarketCap:     price * 1_000_000 * float64(symbolHash(symbol)%100),
		Kind:          market.KindCrypto,
		At:            now,
	}
}

func (f *Fetcher) fetchRate(ctx context.Context, symbol string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.rateURL, nil)
	if err != nil {
		return 0, err
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rates endpoint returned %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, err
	}

	rate := gjson.GetBytes(raw, "data.rates."+symbol)
	if !rate.Exists() || rate.Float() <= 0 {
		return 0, fmt.Errorf("no rate for %s", symbol)
	}
	// Rates are units of currency per USD; invert for the USD price.
	return 1 / rate.Float(), nil
}

var cryptoBasePrices = map[string]float64{
	"BTC": 45000,
	"ETH": 3000,
	"ADA": 0.5,
}

func (f *Fetcher) simulatedCrypto(symbol string) market.Quote {
	now := f.now().UTC()
	base, ok := cryptoBasePrices[symbol]
	if !ok {
		base = 100
	}
	change := float64(int64(symbolHash(symbol+fmt.Sprint(now.Day()))%20)-10) / 10
	return market.Quote{
		Symbol:        symbol,
		Price:         base + change,
		Change:        change,
		ChangePercent: change / base * 100,
		MarketCap:     base * 1_000_000_000,
		Kind:          market.KindCrypto,
		At:            now,
	}
}

func symbolHash(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
