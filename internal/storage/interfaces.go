// Package storage defines the persistence interfaces consumed by the
// capability agents. Each agent owns its record family exclusively; no two
// agents write through the same interface.
package storage

import (
	"context"
	"time"

	"github.com/HLKC779/financial-agents/internal/domain/insurance"
	"github.com/HLKC779/financial-agents/internal/domain/inventory"
	"github.com/HLKC779/financial-agents/internal/domain/ledger"
	"github.com/HLKC779/financial-agents/internal/domain/lending"
	"github.com/HLKC779/financial-agents/internal/domain/market"
)

// LedgerStore persists ledger transactions.
type LedgerStore interface {
	CreateTransaction(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error)
	ListTransactions(ctx context.Context, from, to time.Time) ([]ledger.Transaction, error)
	ListTransactionsByAccount(ctx context.Context, accountID string) ([]ledger.Transaction, error)
	ListAccountIDs(ctx context.Context) ([]string, error)
}

// InventoryStore persists inventory items.
type InventoryStore interface {
	CreateItem(ctx context.Context, item inventory.Item) (inventory.Item, error)
	UpdateItem(ctx context.Context, item inventory.Item) (inventory.Item, error)
	GetItem(ctx context.Context, id string) (inventory.Item, error)
	ListItems(ctx context.Context) ([]inventory.Item, error)
	SearchItems(ctx context.Context, query string) ([]inventory.Item, error)
}

// LoanStore persists loan applications.
type LoanStore interface {
	CreateApplication(ctx context.Context, app lending.Application) (lending.Application, error)
	GetApplication(ctx context.Context, id string) (lending.Application, error)
	ListApplications(ctx context.Context, statusFilter string) ([]lending.Application, error)
}

// PolicyStore persists insurance policies.
type PolicyStore interface {
	CreatePolicy(ctx context.Context, p insurance.Policy) (insurance.Policy, error)
	GetPolicy(ctx context.Context, id string) (insurance.Policy, error)
	ListPolicies(ctx context.Context, holder string, status string) ([]insurance.Policy, error)
}

// MarketStore persists market data snapshots.
type MarketStore interface {
	SaveQuote(ctx context.Context, q market.Quote) error
	LatestQuote(ctx context.Context, symbol string) (market.Quote, error)
}

// Pinger reports backend connectivity; implemented by stores that hold an
// external connection.
type Pinger interface {
	Ping(ctx context.Context) error
}
