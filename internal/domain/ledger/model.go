package ledger

import "time"

// Transaction types.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Transaction is a single ledger movement. Records are immutable once
// persisted; corrections are new transactions.
type Transaction struct {
	ID          string
	Type        string
	Amount      float64
	Currency    string
	Description string
	Category    string
	AccountID   string
	Tags        []string
	Metadata    map[string]string
	CreatedAt   time.Time
}

// Report summarizes ledger activity over a period.
type Report struct {
	Period             string             `json:"period"`
	TotalIncome        float64            `json:"total_income"`
	TotalExpenses      float64            `json:"total_expenses"`
	NetIncome          float64            `json:"net_income"`
	TransactionCount   int                `json:"transaction_count"`
	SavingsRate        float64            `json:"savings_rate"`
	CategoryBreakdown  map[string]float64 `json:"category_breakdown"`
	ExpensePercentages map[string]float64 `json:"expense_percentages"`
	Insights           string             `json:"insights,omitempty"`
	GeneratedAt        time.Time          `json:"generated_at"`
}

// Balance is the current position of a single account.
type Balance struct {
	AccountID        string    `json:"account_id"`
	Balance          float64   `json:"balance"`
	TransactionCount int       `json:"transaction_count"`
	CheckedAt        time.Time `json:"checked_at"`
}

// Reconciliation aggregates balances across all accounts.
type Reconciliation struct {
	Accounts         map[string]Balance `json:"account_balances"`
	TotalAssets      float64            `json:"total_assets"`
	TotalLiabilities float64            `json:"total_liabilities"`
	NetWorth         float64            `json:"net_worth"`
	ReconciledAt     time.Time          `json:"reconciled_at"`
}
