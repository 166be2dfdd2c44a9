// Package app assembles the agent system: stores, agent services, the
// command dispatcher, the job scheduler and the lifecycle registry.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/HLKC779/financial-agents/internal/agents"
	"github.com/HLKC779/financial-agents/internal/agents/custody"
	"github.com/HLKC779/financial-agents/internal/agents/insurance"
	"github.com/HLKC779/financial-agents/internal/agents/inventory"
	"github.com/HLKC779/financial-agents/internal/agents/ledger"
	"github.com/HLKC779/financial-agents/internal/agents/lending"
	"github.com/HLKC779/financial-agents/internal/agents/marketwatch"
	"github.com/HLKC779/financial-agents/internal/agents/portfolio"
	"github.com/HLKC779/financial-agents/internal/chain"
	"github.com/HLKC779/financial-agents/internal/dispatch"
	"github.com/HLKC779/financial-agents/internal/inference"
	"github.com/HLKC779/financial-agents/internal/marketdata"
	"github.com/HLKC779/financial-agents/internal/scheduler"
	"github.com/HLKC779/financial-agents/internal/storage"
	"github.com/HLKC779/financial-agents/internal/storage/memory"
	"github.com/HLKC779/financial-agents/internal/system"
	"github.com/HLKC779/financial-agents/pkg/logger"
)

// AgentNames lists the agents the system exposes, in catalog order.
var AgentNames = []string{
	"custody", "insurance", "inventory", "ledger", "lending", "marketwatch",
	"portfolio",
}

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Ledger    storage.LedgerStore
	Inventory storage.InventoryStore
	Loans     storage.LoanStore
	Policies  storage.PolicyStore
	Market    storage.MarketStore
}

// Dependencies are the optional external integrations. Nil fields fall back
// to simulated or disabled behaviour.
type Dependencies struct {
	// Pinger reports database health in status payloads. Leave nil for
	// in-memory deployments.
	Pinger storage.Pinger
	// QuoteCache fronts the market store on quote reads.
	QuoteCache marketwatch.QuoteCache
	// Chain serves custody balance and gas price lookups. Nil selects the
	// simulator.
	Chain chain.Client
	// MarketData configures the quote fetcher.
	MarketData []marketdata.Option
}

// Application ties the agent services together and manages their lifecycle.
type Application struct {
	registry *agents.Registry
	log      *logger.Logger

	Ledger      *ledger.Service
	Inventory   *inventory.Service
	Lending     *lending.Service
	Insurance   *insurance.Service
	Portfolio   *portfolio.Service
	Custody     *custody.Service
	MarketWatch *marketwatch.Service

	Dispatcher *dispatch.Dispatcher
	Scheduler  *scheduler.Scheduler
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, deps Dependencies, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Ledger == nil {
		stores.Ledger = mem
	}
	if stores.Inventory == nil {
		stores.Inventory = mem
	}
	if stores.Loans == nil {
		stores.Loans = mem
	}
	if stores.Policies == nil {
		stores.Policies = mem
	}
	if stores.Market == nil {
		stores.Market = mem
	}

	engine := inference.NewRuleBased()
	fetcher := marketdata.NewFetcher(deps.MarketData...)

	a := &Application{log: log}
	a.Ledger = ledger.New(stores.Ledger, engine, engine, log.Named("ledger"))
	a.Inventory = inventory.New(stores.Inventory, engine, log.Named("inventory"))
	a.Lending = lending.New(stores.Loans, log.Named("lending"))
	a.Insurance = insurance.New(stores.Policies, log.Named("insurance"))
	a.Custody = custody.New(deps.Chain, log.Named("custody"))
	a.MarketWatch = marketwatch.New(fetcher, stores.Market, deps.QuoteCache, log.Named("marketwatch"))
	a.Portfolio = portfolio.New(a.MarketWatch, engine, log.Named("portfolio"))

	a.Dispatcher = dispatch.New(dispatch.Agents{
		Ledger:    a.Ledger,
		Inventory: a.Inventory,
		Lending:   a.Lending,
		Insurance: a.Insurance,
		Portfolio: a.Portfolio,
		Custody:   a.Custody,
		Market:    a.MarketWatch,
		Advisor:   engine,
	}, log.Named("dispatch"))

	sched, err := scheduler.New(a.jobTable(), log.Named("scheduler"))
	if err != nil {
		return nil, fmt.Errorf("build scheduler: %w", err)
	}
	a.Scheduler = sched

	a.registry = agents.NewRegistry(
		[]system.Service{sched.Service()},
		AgentNames,
		deps.Pinger,
		log.Named("registry"),
	)
	return a, nil
}

// jobTable is the periodic work of the agent system. Jobs run in ID order.
func (a *Application) jobTable() []scheduler.Job {
	return []scheduler.Job{
		{
			ID:       1,
			Name:     "market-refresh",
			Schedule: "@every 1h",
			Run:      a.MarketWatch.Refresh,
		},
		{
			ID:       2,
			Name:     "daily-financial-report",
			Schedule: "0 9 * * *",
			Run: func(ctx context.Context) error {
				now := time.Now().UTC()
				report, err := a.Ledger.Report(ctx, now.AddDate(0, 0, -1), now)
				if err != nil {
					return err
				}
				a.log.WithField("job", "daily-financial-report").
					WithField("net_income", report.NetIncome).
					Info("daily financial report generated")
				return nil
			},
		},
		{
			ID:       3,
			Name:     "low-stock-check",
			Schedule: "0 18 * * *",
			Run: func(ctx context.Context) error {
				items, err := a.Inventory.LowStockItems(ctx)
				if err != nil {
					return err
				}
				for _, item := range items {
					a.log.WithField("item", item.Name).
						WithField("quantity", item.Quantity).
						WithField("minimum", item.MinimumStock).
						Warn("item below minimum stock")
				}
				return nil
			},
		},
		{
			ID:       4,
			Name:     "weekly-reconciliation",
			Schedule: "0 0 * * 0",
			Run: func(ctx context.Context) error {
				rec, err := a.Ledger.Reconcile(ctx)
				if err != nil {
					return err
				}
				a.log.WithField("job", "weekly-reconciliation").
					WithField("net_worth", rec.NetWorth).
					Info("weekly reconciliation completed")
				return nil
			},
		},
		{
			ID:       5,
			Name:     "monthly-summary",
			Schedule: "0 0 1 * *",
			Run: func(ctx context.Context) error {
				now := time.Now().UTC()
				if _, err := a.Ledger.Report(ctx, now.AddDate(0, -1, 0), now); err != nil {
					return err
				}
				if _, err := a.Inventory.Report(ctx); err != nil {
					return err
				}
				a.log.WithField("job", "monthly-summary").Info("monthly summaries generated")
				return nil
			},
		},
	}
}

// Start brings the lifecycle-managed services up.
func (a *Application) Start(ctx context.Context) error {
	return a.registry.Start(ctx)
}

// Stop shuts the services down in reverse order.
func (a *Application) Stop(ctx context.Context) {
	a.registry.Stop(ctx)
}

// Status reports system health.
func (a *Application) Status(ctx context.Context) agents.Status {
	return a.registry.Status(ctx)
}
