// Package memory provides an in-memory implementation of the storage
// interfaces. It is safe for concurrent use and is primarily intended for
// tests and local development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/HLKC779/financial-agents/internal/domain/fault"
	"github.com/HLKC779/financial-agents/internal/domain/insurance"
	"github.com/HLKC779/financial-agents/internal/domain/inventory"
	"github.com/HLKC779/financial-agents/internal/domain/ledger"
	"github.com/HLKC779/financial-agents/internal/domain/lending"
	"github.com/HLKC779/financial-agents/internal/domain/market"
	"github.com/HLKC779/financial-agents/internal/storage"
)

// Store is an in-memory implementation of every storage interface.
type Store struct {
	mu           sync.RWMutex
	nextID       int64
	transactions []ledger.Transaction
	items        map[string]inventory.Item
	applications map[string]lending.Application
	policies     map[string]insurance.Policy
	quotes       map[string]market.Quote
}

var _ storage.LedgerStore = (*Store)(nil)
var _ storage.InventoryStore = (*Store)(nil)
var _ storage.LoanStore = (*Store)(nil)
var _ storage.PolicyStore = (*Store)(nil)
var _ storage.MarketStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:       1,
		items:        make(map[string]inventory.Item),
		applications: make(map[string]lending.Application),
		policies:     make(map[string]insurance.Policy),
		quotes:       make(map[string]market.Quote),
	}
}

func (s *Store) nextIDLocked() string {
	id := s.nextID
	s.nextID++
	return fmt.Sprintf("%d", id)
}

// LedgerStore implementation ---------------------------------------------

func (s *Store) CreateTransaction(_ context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.ID == "" {
		tx.ID = s.nextIDLocked()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	tx.Tags = cloneSlice(tx.Tags)
	tx.Metadata = cloneMap(tx.Metadata)

	s.transactions = append(s.transactions, tx)
	return tx, nil
}

func (s *Store) ListTransactions(_ context.Context, from, to time.Time) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []ledger.Transaction
	for _, tx := range s.transactions {
		if tx.CreatedAt.Before(from) || tx.CreatedAt.After(to) {
			continue
		}
		result = append(result, tx)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) ListTransactionsByAccount(_ context.Context, accountID string) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []ledger.Transaction
	for _, tx := range s.transactions {
		if tx.AccountID == accountID {
			result = append(result, tx)
		}
	}
	return result, nil
}

func (s *Store) ListAccountIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var ids []string
	for _, tx := range s.transactions {
		if _, ok := seen[tx.AccountID]; ok {
			continue
		}
		seen[tx.AccountID] = struct{}{}
		ids = append(ids, tx.AccountID)
	}
	sort.Strings(ids)
	return ids, nil
}

// InventoryStore implementation ------------------------------------------

func (s *Store) CreateItem(_ context.Context, item inventory.Item) (inventory.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.ID == "" {
		item.ID = s.nextIDLocked()
	} else if _, exists := s.items[item.ID]; exists {
		return inventory.Item{}, fmt.Errorf("item %s already exists", item.ID)
	}
	item.UpdatedAt = time.Now().UTC()
	item.Metadata = cloneMap(item.Metadata)

	s.items[item.ID] = item
	return item, nil
}

func (s *Store) UpdateItem(_ context.Context, item inventory.Item) (inventory.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[item.ID]; !ok {
		return inventory.Item{}, fault.NotFoundf("item", item.ID)
	}
	item.UpdatedAt = time.Now().UTC()
	item.Metadata = cloneMap(item.Metadata)

	s.items[item.ID] = item
	return item, nil
}

func (s *Store) GetItem(_ context.Context, id string) (inventory.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return inventory.Item{}, fault.NotFoundf("item", id)
	}
	return item, nil
}

func (s *Store) ListItems(_ context.Context) ([]inventory.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]inventory.Item, 0, len(s.items))
	for _, item := range s.items {
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Category != result[j].Category {
			return result[i].Category < result[j].Category
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (s *Store) SearchItems(ctx context.Context, query string) ([]inventory.Item, error) {
	all, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	var result []inventory.Item
	for _, item := range all {
		if strings.Contains(strings.ToLower(item.Name), needle) ||
			strings.Contains(strings.ToLower(item.Category), needle) ||
			strings.Contains(strings.ToLower(item.Supplier), needle) {
			result = append(result, item)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// LoanStore implementation -----------------------------------------------

func (s *Store) CreateApplication(_ context.Context, app lending.Application) (lending.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if app.ID == "" {
		app.ID = s.nextIDLocked()
	} else if _, exists := s.applications[app.ID]; exists {
		return lending.Application{}, fmt.Errorf("application %s already exists", app.ID)
	}
	if app.CreatedAt.IsZero() {
		app.CreatedAt = time.Now().UTC()
	}
	app.Risk.Factors = cloneSlice(app.Risk.Factors)

	s.applications[app.ID] = app
	return app, nil
}

func (s *Store) GetApplication(_ context.Context, id string) (lending.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.applications[id]
	if !ok {
		return lending.Application{}, fault.NotFoundf("application", id)
	}
	return app, nil
}

func (s *Store) ListApplications(_ context.Context, statusFilter string) ([]lending.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []lending.Application
	for _, app := range s.applications {
		if statusFilter != "" && app.Status != statusFilter {
			continue
		}
		result = append(result, app)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// PolicyStore implementation ---------------------------------------------

func (s *Store) CreatePolicy(_ context.Context, p insurance.Policy) (insurance.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = s.nextIDLocked()
	} else if _, exists := s.policies[p.ID]; exists {
		return insurance.Policy{}, fmt.Errorf("policy %s already exists", p.ID)
	}
	p.Metadata = cloneMap(p.Metadata)

	s.policies[p.ID] = p
	return p, nil
}

func (s *Store) GetPolicy(_ context.Context, id string) (insurance.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.policies[id]
	if !ok {
		return insurance.Policy{}, fault.NotFoundf("policy", id)
	}
	return p, nil
}

func (s *Store) ListPolicies(_ context.Context, holder, status string) ([]insurance.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []insurance.Policy
	for _, p := range s.policies {
		if holder != "" && p.Holder != holder {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// MarketStore implementation ---------------------------------------------

func (s *Store) SaveQuote(_ context.Context, q market.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q.At.IsZero() {
		q.At = time.Now().UTC()
	}
	s.quotes[q.Symbol] = q
	return nil
}

func (s *Store) LatestQuote(_ context.Context, symbol string) (market.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.quotes[symbol]
	if !ok {
		return market.Quote{}, fault.NotFoundf("quote", symbol)
	}
	return q, nil
}

func cloneMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneSlice(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
