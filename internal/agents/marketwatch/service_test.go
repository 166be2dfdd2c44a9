package marketwatch

import (
	"context"
	"testing"
	"time"

	"github.com/HLKC779/financial-agents/internal/domain/fault"
	"github.com/HLKC779/financial-agents/internal/domain/market"
	"github.com/HLKC779/financial-agents/internal/marketdata"
	"github.com/HLKC779/financial-agents/internal/storage/memory"
)

func fixedClock() time.Time {
	return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

func newTestService(cache QuoteCache) *Service {
	fetcher := marketdata.NewFetcher(
		marketdata.WithClock(fixedClock),
		marketdata.WithRateURL("http://127.0.0.1:1/rates"), // unreachable, forces simulation
	)
	return New(fetcher, memory.New(), cache, nil)
}

func TestRefreshPersistsAllTracked(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	if err := svc.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	for _, symbol := range append(append([]string{}, TrackedStocks...), TrackedCryptos...) {
		q, err := svc.Quote(ctx, symbol)
		if err != nil {
			t.Fatalf("Quote(%s): %v", symbol, err)
		}
		if q.Price <= 0 {
			t.Errorf("%s price = %v, want positive", symbol, q.Price)
		}
	}
}

func TestStockQuoteDeterministicWithinDay(t *testing.T) {
	svc := newTestService(nil)

	first := svc.StockQuote("AAPL")
	second := svc.StockQuote("AAPL")
	if first.Price != second.Price || first.Change != second.Change {
		t.Errorf("quotes differ: %+v vs %+v", first, second)
	}
	if first.Kind != market.KindStock {
		t.Errorf("kind = %q, want stock", first.Kind)
	}
}

type mapCache map[string]market.Quote

func (m mapCache) GetQuote(_ context.Context, symbol string) (market.Quote, error) {
	q, ok := m[symbol]
	if !ok {
		return market.Quote{}, fault.NotFoundf("quote", symbol)
	}
	return q, nil
}

func (m mapCache) SetQuote(_ context.Context, q market.Quote) error {
	m[q.Symbol] = q
	return nil
}

func TestQuotePrefersCache(t *testing.T) {
	cache := mapCache{}
	svc := newTestService(cache)
	ctx := context.Background()

	if err := svc.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	// Poison the cache to prove it wins over the store.
	cache["AAPL"] = market.Quote{Symbol: "AAPL", Price: 123.45, Kind: market.KindStock}

	q, err := svc.Quote(ctx, "aapl")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if q.Price != 123.45 {
		t.Errorf("price = %v, want cached 123.45", q.Price)
	}
}

func TestQuoteUnknownSymbol(t *testing.T) {
	svc := newTestService(nil)

	if _, err := svc.Quote(context.Background(), "ZZZZ"); !fault.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
	if _, err := svc.Quote(context.Background(), " "); !fault.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
