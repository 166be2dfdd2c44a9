// Package postgres implements the storage interfaces backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/HLKC779/financial-agents/internal/domain/fault"
	"github.com/HLKC779/financial-agents/internal/domain/insurance"
	"github.com/HLKC779/financial-agents/internal/domain/inventory"
	"github.com/HLKC779/financial-agents/internal/domain/ledger"
	"github.com/HLKC779/financial-agents/internal/domain/lending"
	"github.com/HLKC779/financial-agents/internal/domain/market"
	"github.com/HLKC779/financial-agents/internal/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sqlx.DB
}

var _ storage.LedgerStore = (*Store)(nil)
var _ storage.InventoryStore = (*Store)(nil)
var _ storage.LoanStore = (*Store)(nil)
var _ storage.PolicyStore = (*Store)(nil)
var _ storage.MarketStore = (*Store)(nil)
var _ storage.Pinger = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Open connects to PostgreSQL and verifies the connection.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	return New(db), nil
}

// Ping verifies the backend connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the handle for migrations.
func (s *Store) DB() *sql.DB {
	return s.db.DB
}

// --- LedgerStore ------------------------------------------------------------

func (s *Store) CreateTransaction(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	tagsJSON, err := json.Marshal(tx.Tags)
	if err != nil {
		return ledger.Transaction{}, err
	}
	metadataJSON, err := json.Marshal(tx.Metadata)
	if err != nil {
		return ledger.Transaction{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO fin_transactions (id, type, amount, currency, description, category, account_id, tags, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, tx.ID, tx.Type, tx.Amount, tx.Currency, tx.Description, tx.Category, tx.AccountID, tagsJSON, metadataJSON, tx.CreatedAt)
	if err != nil {
		return ledger.Transaction{}, err
	}
	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, from, to time.Time) ([]ledger.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, amount, currency, description, category, account_id, tags, metadata, created_at
		FROM fin_transactions
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at DESC
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func (s *Store) ListTransactionsByAccount(ctx context.Context, accountID string) ([]ledger.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, amount, currency, description, category, account_id, tags, metadata, created_at
		FROM fin_transactions
		WHERE account_id = $1
		ORDER BY created_at DESC
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func (s *Store) ListAccountIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids, `
		SELECT DISTINCT account_id FROM fin_transactions ORDER BY account_id
	`)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func scanTransactions(rows *sql.Rows) ([]ledger.Transaction, error) {
	var result []ledger.Transaction
	for rows.Next() {
		var (
			tx          ledger.Transaction
			tagsRaw     []byte
			metadataRaw []byte
		)
		if err := rows.Scan(&tx.ID, &tx.Type, &tx.Amount, &tx.Currency, &tx.Description, &tx.Category, &tx.AccountID, &tagsRaw, &metadataRaw, &tx.CreatedAt); err != nil {
			return nil, err
		}
		if len(tagsRaw) > 0 {
			_ = json.Unmarshal(tagsRaw, &tx.Tags)
		}
		if len(metadataRaw) > 0 {
			_ = json.Unmarshal(metadataRaw, &tx.Metadata)
		}
		result = append(result, tx)
	}
	return result, rows.Err()
}

// --- InventoryStore ---------------------------------------------------------

func (s *Store) CreateItem(ctx context.Context, item inventory.Item) (inventory.Item, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.UpdatedAt = time.Now().UTC()

	metadataJSON, err := json.Marshal(item.Metadata)
	if err != nil {
		return inventory.Item{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO fin_inventory_items (id, name, quantity, unit_price, supplier, category, minimum_stock, metadata, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, item.ID, item.Name, item.Quantity, item.UnitPrice, item.Supplier, item.Category, item.MinimumStock, metadataJSON, item.UpdatedAt)
	if err != nil {
		return inventory.Item{}, err
	}
	return item, nil
}

func (s *Store) UpdateItem(ctx context.Context, item inventory.Item) (inventory.Item, error) {
	item.UpdatedAt = time.Now().UTC()

	metadataJSON, err := json.Marshal(item.Metadata)
	if err != nil {
		return inventory.Item{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE fin_inventory_items
		SET name = $2, quantity = $3, unit_price = $4, supplier = $5, category = $6, minimum_stock = $7, metadata = $8, updated_at = $9
		WHERE id = $1
	`, item.ID, item.Name, item.Quantity, item.UnitPrice, item.Supplier, item.Category, item.MinimumStock, metadataJSON, item.UpdatedAt)
	if err != nil {
		return inventory.Item{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return inventory.Item{}, fault.NotFoundf("item", item.ID)
	}
	return item, nil
}

func (s *Store) GetItem(ctx context.Context, id string) (inventory.Item, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, quantity, unit_price, supplier, category, minimum_stock, metadata, updated_at
		FROM fin_inventory_items
		WHERE id = $1
	`, id)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return inventory.Item{}, fault.NotFoundf("item", id)
	}
	return item, err
}

func (s *Store) ListItems(ctx context.Context) ([]inventory.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, quantity, unit_price, supplier, category, minimum_stock, metadata, updated_at
		FROM fin_inventory_items
		ORDER BY category, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanItems(rows)
}

func (s *Store) SearchItems(ctx context.Context, query string) ([]inventory.Item, error) {
	pattern := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, quantity, unit_price, supplier, category, minimum_stock, metadata, updated_at
		FROM fin_inventory_items
		WHERE name ILIKE $1 OR category ILIKE $1 OR supplier ILIKE $1
		ORDER BY name
	`, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanItems(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (inventory.Item, error) {
	var (
		item        inventory.Item
		metadataRaw []byte
	)
	if err := row.Scan(&item.ID, &item.Name, &item.Quantity, &item.UnitPrice, &item.Supplier, &item.Category, &item.MinimumStock, &metadataRaw, &item.UpdatedAt); err != nil {
		return inventory.Item{}, err
	}
	if len(metadataRaw) > 0 {
		_ = json.Unmarshal(metadataRaw, &item.Metadata)
	}
	return item, nil
}

func scanItems(rows *sql.Rows) ([]inventory.Item, error) {
	var result []inventory.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

// --- LoanStore --------------------------------------------------------------

func (s *Store) CreateApplication(ctx context.Context, app lending.Application) (lending.Application, error) {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.CreatedAt.IsZero() {
		app.CreatedAt = time.Now().UTC()
	}

	riskJSON, err := json.Marshal(app.Risk)
	if err != nil {
		return lending.Application{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO fin_loan_applications (id, applicant_name, loan_amount, loan_type, income, credit_score, debt_to_income, property_value, down_payment, status, risk, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, app.ID, app.ApplicantName, app.LoanAmount, app.LoanType, app.Income, app.CreditScore, app.DebtToIncome, app.PropertyValue, app.DownPayment, app.Status, riskJSON, app.CreatedAt)
	if err != nil {
		return lending.Application{}, err
	}
	return app, nil
}

func (s *Store) GetApplication(ctx context.Context, id string) (lending.Application, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, applicant_name, loan_amount, loan_type, income, credit_score, debt_to_income, property_value, down_payment, status, risk, created_at
		FROM fin_loan_applications
		WHERE id = $1
	`, id)

	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return lending.Application{}, fault.NotFoundf("application", id)
	}
	return app, err
}

func (s *Store) ListApplications(ctx context.Context, statusFilter string) ([]lending.Application, error) {
	query := `
		SELECT id, applicant_name, loan_amount, loan_type, income, credit_score, debt_to_income, property_value, down_payment, status, risk, created_at
		FROM fin_loan_applications
	`
	args := []any{}
	if statusFilter != "" {
		query += ` WHERE status = $1`
		args = append(args, statusFilter)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []lending.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, app)
	}
	return result, rows.Err()
}

func scanApplication(row rowScanner) (lending.Application, error) {
	var (
		app     lending.Application
		riskRaw []byte
	)
	if err := row.Scan(&app.ID, &app.ApplicantName, &app.LoanAmount, &app.LoanType, &app.Income, &app.CreditScore, &app.DebtToIncome, &app.PropertyValue, &app.DownPayment, &app.Status, &riskRaw, &app.CreatedAt); err != nil {
		return lending.Application{}, err
	}
	if len(riskRaw) > 0 {
		_ = json.Unmarshal(riskRaw, &app.Risk)
	}
	return app, nil
}

// --- PolicyStore ------------------------------------------------------------

func (s *Store) CreatePolicy(ctx context.Context, p insurance.Policy) (insurance.Policy, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	metadataJSON, err := json.Marshal(p.Metadata)
	if err != nil {
		return insurance.Policy{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO fin_policies (id, holder, type, coverage_amount, premium, deductible, start_date, end_date, status, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.ID, p.Holder, p.Type, p.CoverageAmount, p.Premium, p.Deductible, p.StartDate, p.EndDate, p.Status, metadataJSON)
	if err != nil {
		return insurance.Policy{}, err
	}
	return p, nil
}

func (s *Store) GetPolicy(ctx context.Context, id string) (insurance.Policy, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, holder, type, coverage_amount, premium, deductible, start_date, end_date, status, metadata
		FROM fin_policies
		WHERE id = $1
	`, id)

	p, err := scanPolicy(row)
	if errors.Is(err, sql.ErrNoRows) {
		return insurance.Policy{}, fault.NotFoundf("policy", id)
	}
	return p, err
}

func (s *Store) ListPolicies(ctx context.Context, holder, status string) ([]insurance.Policy, error) {
	query := `
		SELECT id, holder, type, coverage_amount, premium, deductible, start_date, end_date, status, metadata
		FROM fin_policies
		WHERE ($1 = '' OR holder = $1) AND ($2 = '' OR status = $2)
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query, holder, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []insurance.Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func scanPolicy(row rowScanner) (insurance.Policy, error) {
	var (
		p           insurance.Policy
		metadataRaw []byte
	)
	if err := row.Scan(&p.ID, &p.Holder, &p.Type, &p.CoverageAmount, &p.Premium, &p.Deductible, &p.StartDate, &p.EndDate, &p.Status, &metadataRaw); err != nil {
		return insurance.Policy{}, err
	}
	if len(metadataRaw) > 0 {
		_ = json.Unmarshal(metadataRaw, &p.Metadata)
	}
	return p, nil
}

// --- MarketStore ------------------------------------------------------------

func (s *Store) SaveQuote(ctx context.Context, q market.Quote) error {
	if q.At.IsZero() {
		q.At = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fin_market_quotes (symbol, price, change, change_percent, volume, market_cap, kind, at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol) DO UPDATE
		SET price = EXCLUDED.price, change = EXCLUDED.change, change_percent = EXCLUDED.change_percent,
		    volume = EXCLUDED.volume, market_cap = EXCLUDED.market_cap, kind = EXCLUDED.kind, at = EXCLUDED.at
	`, q.Symbol, q.Price, q.Change, q.ChangePercent, q.Volume, q.MarketCap, q.Kind, q.At)
	return err
}

func (s *Store) LatestQuote(ctx context.Context, symbol string) (market.Quote, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT symbol, price, change, change_percent, volume, market_cap, kind, at
		FROM fin_market_quotes
		WHERE symbol = $1
	`, symbol)

	var q market.Quote
	err := row.Scan(&q.Symbol, &q.Price, &q.Change, &q.ChangePercent, &q.Volume, &q.MarketCap, &q.Kind, &q.At)
	if errors.Is(err, sql.ErrNoRows) {
		return market.Quote{}, fault.NotFoundf("quote", symbol)
	}
	if err != nil {
		return market.Quote{}, err
	}
	return q, nil
}
