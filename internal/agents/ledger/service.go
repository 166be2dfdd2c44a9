// Package ledger implements the bookkeeping agent: transaction capture,
// financial reporting, balances, and account reconciliation.
package ledger

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/HLKC779/financial-agents/internal/domain/fault"
	"github.com/HLKC779/financial-agents/internal/domain/ledger"
	"github.com/HLKC779/financial-agents/internal/inference"
	"github.com/HLKC779/financial-agents/internal/storage"
	"github.com/HLKC779/financial-agents/pkg/logger"
)

// DefaultAccountID is used when a transaction names no account.
const DefaultAccountID = "default"

// Service is the ledger agent.
type Service struct {
	store      storage.LedgerStore
	classifier inference.Classifier
	advisor    inference.Advisor
	log        *logger.Logger
}

// New constructs a ledger service.
func New(store storage.LedgerStore, classifier inference.Classifier, advisor inference.Advisor, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("ledger")
	}
	return &Service{
		store:      store,
		classifier: classifier,
		advisor:    advisor,
		log:        log,
	}
}

// CreateTransactionInput carries the fields of a new transaction.
type CreateTransactionInput struct {
	Type        string
	Amount      float64
	Currency    string
	Description string
	Category    string
	AccountID   string
	Tags        []string
	Metadata    map[string]string
}

// CreateTransaction validates and records a transaction. When no category is
// given the description is classified automatically.
func (s *Service) CreateTransaction(ctx context.Context, in CreateTransactionInput) (ledger.Transaction, error) {
	in.Type = strings.TrimSpace(strings.ToLower(in.Type))
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)

	if in.Type != ledger.TypeIncome && in.Type != ledger.TypeExpense {
		return ledger.Transaction{}, fault.Invalid("type", "must be income or expense")
	}
	if in.Amount <= 0 {
		return ledger.Transaction{}, fault.Invalid("amount", "must be positive")
	}
	if in.Currency == "" {
		in.Currency = "USD"
	}
	if in.AccountID == "" {
		in.AccountID = DefaultAccountID
	}
	if in.Category == "" && s.classifier != nil {
		category, err := s.classifier.ClassifyExpense(ctx, in.Description)
		if err != nil {
			return ledger.Transaction{}, fmt.Errorf("classify expense: %w", err)
		}
		in.Category = category
	}

	tx, err := s.store.CreateTransaction(ctx, ledger.Transaction{
		Type:        in.Type,
		Amount:      in.Amount,
		Currency:    in.Currency,
		Description: in.Description,
		Category:    in.Category,
		AccountID:   in.AccountID,
		Tags:        in.Tags,
		Metadata:    in.Metadata,
	})
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	s.log.WithField("transaction_id", tx.ID).
		WithField("type", tx.Type).
		WithField("category", tx.Category).
		Info("transaction created")
	return tx, nil
}

// Report summarizes transactions in [from, to]. Zero times default to the
// trailing thirty days. An empty window yields a zero-valued summary rather
// than an error.
func (s *Service) Report(ctx context.Context, from, to time.Time) (ledger.Report, error) {
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	if from.After(to) {
		return ledger.Report{}, fault.Invalid("period", "start must not be after end")
	}

	txs, err := s.store.ListTransactions(ctx, from, to)
	if err != nil {
		return ledger.Report{}, fmt.Errorf("list transactions: %w", err)
	}

	report := ledger.Report{
		Period:             fmt.Sprintf("%s to %s", from.Format("2006-01-02"), to.Format("2006-01-02")),
		CategoryBreakdown:  map[string]float64{},
		ExpensePercentages: map[string]float64{},
		TransactionCount:   len(txs),
		GeneratedAt:        time.Now().UTC(),
	}
	if len(txs) == 0 {
		return report, nil
	}

	var income, expenses float64
	for _, tx := range txs {
		if tx.Type == ledger.TypeIncome {
			income += tx.Amount
		} else {
			expenses += tx.Amount
		}
		report.CategoryBreakdown[tx.Category] += tx.Amount
	}

	report.TotalIncome = round2(income)
	report.TotalExpenses = round2(expenses)
	report.NetIncome = round2(income - expenses)
	if income > 0 {
		report.SavingsRate = round2((income - expenses) / income * 100)
	}
	for category, amount := range report.CategoryBreakdown {
		report.CategoryBreakdown[category] = round2(amount)
		if expenses > 0 {
			report.ExpensePercentages[category] = round2(amount / expenses * 100)
		}
	}

	if s.advisor != nil {
		question := fmt.Sprintf(
			"What are the key insights from a report with income %.2f, expenses %.2f and top category %s?",
			income, expenses, topCategory(report.CategoryBreakdown),
		)
		insights, err := s.advisor.Answer(ctx, question)
		if err == nil {
			report.Insights = insights
		}
	}

	return report, nil
}

// Balance returns the signed balance of an account: income adds, expense
// subtracts. Unknown accounts report zero.
func (s *Service) Balance(ctx context.Context, accountID string) (ledger.Balance, error) {
	if accountID = strings.TrimSpace(accountID); accountID == "" {
		accountID = DefaultAccountID
	}

	txs, err := s.store.ListTransactionsByAccount(ctx, accountID)
	if err != nil {
		return ledger.Balance{}, fmt.Errorf("list transactions: %w", err)
	}

	var balance float64
	for _, tx := range txs {
		if tx.Type == ledger.TypeIncome {
			balance += tx.Amount
		} else {
			balance -= tx.Amount
		}
	}
	return ledger.Balance{
		AccountID:        accountID,
		Balance:          round2(balance),
		TransactionCount: len(txs),
		CheckedAt:        time.Now().UTC(),
	}, nil
}

// Reconcile computes per-account balances across all accounts. Positive
// balances sum into assets, negative into liabilities.
func (s *Service) Reconcile(ctx context.Context) (ledger.Reconciliation, error) {
	ids, err := s.store.ListAccountIDs(ctx)
	if err != nil {
		return ledger.Reconciliation{}, fmt.Errorf("list accounts: %w", err)
	}

	rec := ledger.Reconciliation{
		Accounts:     map[string]ledger.Balance{},
		ReconciledAt: time.Now().UTC(),
	}
	for _, id := range ids {
		balance, err := s.Balance(ctx, id)
		if err != nil {
			return ledger.Reconciliation{}, err
		}
		rec.Accounts[id] = balance
		if balance.Balance > 0 {
			rec.TotalAssets += balance.Balance
		} else {
			rec.TotalLiabilities += -balance.Balance
		}
	}
	rec.TotalAssets = round2(rec.TotalAssets)
	rec.TotalLiabilities = round2(rec.TotalLiabilities)
	rec.NetWorth = round2(rec.TotalAssets - rec.TotalLiabilities)

	s.log.WithField("accounts", len(rec.Accounts)).
		WithField("net_worth", rec.NetWorth).
		Info("accounts reconciled")
	return rec, nil
}

func topCategory(breakdown map[string]float64) string {
	var categories []string
	for c := range breakdown {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	top, best := "none", math.Inf(-1)
	for _, c := range categories {
		if breakdown[c] > best {
			top, best = c, breakdown[c]
		}
	}
	return top
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
