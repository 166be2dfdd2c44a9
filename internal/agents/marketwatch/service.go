// Package marketwatch implements the market data agent: periodic refresh of
// tracked symbols and cached quote lookups.
package marketwatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/HLKC779/financial-agents/internal/domain/fault"
	"github.com/HLKC779/financial-agents/internal/domain/market"
	"github.com/HLKC779/financial-agents/internal/marketdata"
	"github.com/HLKC779/financial-agents/internal/storage"
	"github.com/HLKC779/financial-agents/pkg/logger"
)

// Tracked symbols refreshed on schedule.
var (
	TrackedStocks  = []string{"AAPL", "GOOGL", "MSFT", "TSLA", "AMZN"}
	TrackedCryptos = []string{"BTC", "ETH", "ADA", "DOT", "LINK"}
)

// QuoteCache fronts the store for hot symbols. Implementations return a miss
// error when the key is absent.
type QuoteCache interface {
	GetQuote(ctx context.Context, symbol string) (market.Quote, error)
	SetQuote(ctx context.Context, q market.Quote) error
}

// Service is the market data agent.
type Service struct {
	fetcher *marketdata.Fetcher
	store   storage.MarketStore
	cache   QuoteCache
	log     *logger.Logger
}

// New constructs a market data service. The cache is optional.
func New(fetcher *marketdata.Fetcher, store storage.MarketStore, cache QuoteCache, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("marketwatch")
	}
	return &Service{fetcher: fetcher, store: store, cache: cache, log: log}
}

// Refresh fetches all tracked symbols and persists their quotes. A failure
// on one symbol does not stop the rest; the first error is returned after
// the sweep.
func (s *Service) Refresh(ctx context.Context) error {
	var firstErr error

	for _, symbol := range TrackedStocks {
		if err := s.save(ctx, s.fetcher.StockQuote(symbol)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, symbol := range TrackedCryptos {
		if err := s.save(ctx, s.fetcher.CryptoQuote(ctx, symbol)); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	s.log.WithField("stocks", len(TrackedStocks)).
		WithField("cryptos", len(TrackedCryptos)).
		Info("market data refreshed")
	return firstErr
}

func (s *Service) save(ctx context.Context, q market.Quote) error {
	if err := s.store.SaveQuote(ctx, q); err != nil {
		return fmt.Errorf("save quote %s: %w", q.Symbol, err)
	}
	if s.cache != nil {
		if err := s.cache.SetQuote(ctx, q); err != nil {
			s.log.WithError(err).WithField("symbol", q.Symbol).Warn("quote cache write failed")
		}
	}
	return nil
}

// Quote returns the latest quote for a symbol, consulting the cache first
// and falling back to the store.
func (s *Service) Quote(ctx context.Context, symbol string) (market.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return market.Quote{}, fault.Required("symbol")
	}

	if s.cache != nil {
		if q, err := s.cache.GetQuote(ctx, symbol); err == nil {
			return q, nil
		}
	}
	return s.store.LatestQuote(ctx, symbol)
}

// StockQuote satisfies the portfolio agent's quote source.
func (s *Service) StockQuote(symbol string) market.Quote {
	return s.fetcher.StockQuote(symbol)
}
