// Package lending implements the loan agent: application intake with
// rule-based risk scoring, status lookup, and mortgage amortization.
package lending

import (
	"context"
	"fmt"
	"strings"

	"github.com/HLKC779/financial-agents/internal/domain/fault"
	"github.com/HLKC779/financial-agents/internal/domain/lending"
	"github.com/HLKC779/financial-agents/internal/storage"
	"github.com/HLKC779/financial-agents/pkg/logger"
)

// Defaults applied to optional application fields.
const (
	DefaultCreditScore  = 650
	DefaultDebtToIncome = 0.30
)

// Service is the lending agent.
type Service struct {
	store storage.LoanStore
	log   *logger.Logger
}

// New constructs a lending service.
func New(store storage.LoanStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("lending")
	}
	return &Service{store: store, log: log}
}

// SubmitInput carries the fields of a new loan application. CreditScore and
// DebtToIncome are optional; zero values take the agent defaults.
type SubmitInput struct {
	ApplicantName string
	LoanAmount    float64
	LoanType      string
	Income        float64
	CreditScore   int
	DebtToIncome  float64
	PropertyValue float64
	DownPayment   float64
}

// Submit validates an application, scores its risk, derives the initial
// status from the risk level, and persists it.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (lending.Application, error) {
	in.ApplicantName = strings.TrimSpace(in.ApplicantName)
	in.LoanType = strings.TrimSpace(in.LoanType)

	if in.ApplicantName == "" {
		return lending.Application{}, fault.Required("applicant_name")
	}
	if in.LoanAmount <= 0 {
		return lending.Application{}, fault.Invalid("loan_amount", "must be positive")
	}
	if in.Income < 0 {
		return lending.Application{}, fault.Invalid("income", "must not be negative")
	}
	if in.CreditScore == 0 {
		in.CreditScore = DefaultCreditScore
	}
	if in.CreditScore < 300 || in.CreditScore > 850 {
		return lending.Application{}, fault.Invalid("credit_score", "must be between 300 and 850")
	}
	if in.DebtToIncome == 0 {
		in.DebtToIncome = DefaultDebtToIncome
	}
	if in.DebtToIncome < 0 || in.DebtToIncome > 1 {
		return lending.Application{}, fault.Invalid("debt_to_income", "must be between 0 and 1")
	}

	app := lending.Application{
		ApplicantName: in.ApplicantName,
		LoanAmount:    in.LoanAmount,
		LoanType:      in.LoanType,
		Income:        in.Income,
		CreditScore:   in.CreditScore,
		DebtToIncome:  in.DebtToIncome,
		PropertyValue: in.PropertyValue,
		DownPayment:   in.DownPayment,
		Status:        lending.StatusPending,
	}
	app.Risk = AssessRisk(app)
	app.Status = StatusForRisk(app.Risk.Level)

	app, err := s.store.CreateApplication(ctx, app)
	if err != nil {
		return lending.Application{}, fmt.Errorf("create application: %w", err)
	}

	s.log.WithField("application_id", app.ID).
		WithField("status", app.Status).
		WithField("risk_level", app.Risk.Level).
		Info("loan application submitted")
	return app, nil
}

// Status returns the stored application with its risk assessment.
func (s *Service) Status(ctx context.Context, applicationID string) (lending.Application, error) {
	applicationID = strings.TrimSpace(applicationID)
	if applicationID == "" {
		return lending.Application{}, fault.Required("application_id")
	}
	return s.store.GetApplication(ctx, applicationID)
}

// List returns applications, optionally filtered by status.
func (s *Service) List(ctx context.Context, statusFilter string) ([]lending.Application, error) {
	return s.store.ListApplications(ctx, strings.TrimSpace(statusFilter))
}

// CalculateMortgage runs the amortization engine.
func (s *Service) CalculateMortgage(_ context.Context, principal, annualRate float64, termYears int) (lending.Amortization, error) {
	return Amortize(principal, annualRate, termYears)
}
