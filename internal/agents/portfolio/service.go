// Package portfolio implements the analysis agent: portfolio performance,
// budget review, and retirement projections.
package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/HLKC779/financial-agents/internal/domain/fault"
	"github.com/HLKC779/financial-agents/internal/domain/market"
	"github.com/HLKC779/financial-agents/internal/inference"
	"github.com/HLKC779/financial-agents/pkg/logger"
)

// QuoteSource provides current prices for portfolio symbols.
type QuoteSource interface {
	StockQuote(symbol string) market.Quote
}

// Holding is one position in a portfolio analysis.
type Holding struct {
	Symbol        string  `json:"symbol"`
	CurrentPrice  float64 `json:"current_price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// Analysis summarizes portfolio performance.
type Analysis struct {
	PortfolioValue float64   `json:"portfolio_value"`
	TotalChange    float64   `json:"total_change"`
	ChangePercent  float64   `json:"change_percent"`
	Holdings       []Holding `json:"holdings"`
	Insights       string    `json:"insights,omitempty"`
	AnalyzedAt     time.Time `json:"analyzed_at"`
}

// Service is the portfolio agent.
type Service struct {
	quotes  QuoteSource
	advisor inference.Advisor
	log     *logger.Logger
}

// New constructs a portfolio service.
func New(quotes QuoteSource, advisor inference.Advisor, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("portfolio")
	}
	return &Service{quotes: quotes, advisor: advisor, log: log}
}

// Analyze prices each symbol and aggregates value and change across the
// portfolio. Symbols are priced in the order given.
func (s *Service) Analyze(ctx context.Context, symbols []string) (Analysis, error) {
	if len(symbols) == 0 {
		return Analysis{}, fault.Required("symbols")
	}

	analysis := Analysis{AnalyzedAt: time.Now().UTC()}
	for _, symbol := range symbols {
		quote := s.quotes.StockQuote(symbol)
		analysis.Holdings = append(analysis.Holdings, Holding{
			Symbol:        quote.Symbol,
			CurrentPrice:  quote.Price,
			Change:        quote.Change,
			ChangePercent: quote.ChangePercent,
		})
		analysis.PortfolioValue += quote.Price
		analysis.TotalChange += quote.Change
	}

	if base := analysis.PortfolioValue - analysis.TotalChange; base > 0 {
		analysis.ChangePercent = round2(analysis.TotalChange / base * 100)
	}
	analysis.PortfolioValue = round2(analysis.PortfolioValue)
	analysis.TotalChange = round2(analysis.TotalChange)

	if s.advisor != nil {
		question := fmt.Sprintf(
			"What insights can you provide about a portfolio worth %.2f with %d holdings?",
			analysis.PortfolioValue, len(analysis.Holdings),
		)
		if insights, err := s.advisor.Answer(ctx, question); err == nil {
			analysis.Insights = insights
		}
	}

	s.log.WithField("holdings", len(analysis.Holdings)).
		WithField("value", analysis.PortfolioValue).
		Info("portfolio analyzed")
	return analysis, nil
}

// RecommendBudget reviews a monthly budget.
func (s *Service) RecommendBudget(_ context.Context, income float64, expenses map[string]float64) (BudgetAnalysis, error) {
	if income <= 0 {
		return BudgetAnalysis{}, fault.Invalid("income", "must be positive")
	}
	for category, amount := range expenses {
		if amount < 0 {
			return BudgetAnalysis{}, fault.Invalid("expenses", fmt.Sprintf("category %s must not be negative", category))
		}
	}
	return AnalyzeBudget(income, expenses), nil
}

// PlanRetirement projects retirement savings.
func (s *Service) PlanRetirement(_ context.Context, in RetirementInput) (RetirementPlan, error) {
	return PlanRetirement(in)
}
