// Package insurance implements the underwriting agent: premium quoting,
// policy issuance, and claim processing.
package insurance

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/HLKC779/financial-agents/internal/domain/fault"
	"github.com/HLKC779/financial-agents/internal/domain/insurance"
	"github.com/HLKC779/financial-agents/internal/storage"
	"github.com/HLKC779/financial-agents/pkg/logger"
)

// DefaultDeductible applies when a policy is issued without one.
const DefaultDeductible = 500

// Quotes expire thirty days after generation.
const quoteValidity = 30 * 24 * time.Hour

// Service is the insurance agent.
type Service struct {
	store storage.PolicyStore
	log   *logger.Logger
	now   func() time.Time
}

// New constructs an insurance service.
func New(store storage.PolicyStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("insurance")
	}
	return &Service{store: store, log: log, now: time.Now}
}

// Quote rates an annual premium for the given policy type and coverage.
func (s *Service) Quote(_ context.Context, policyType string, coverage float64, profile RiskProfile) (insurance.Quote, error) {
	policyType = strings.TrimSpace(strings.ToLower(policyType))
	if policyType == "" {
		return insurance.Quote{}, fault.Required("policy_type")
	}
	if coverage <= 0 {
		return insurance.Quote{}, fault.Invalid("coverage_amount", "must be positive")
	}

	multiplier, factors := rate(policyType, profile)
	annual := coverage * baseRate(policyType) * multiplier

	now := s.now().UTC()
	quote := insurance.Quote{
		ID:             uuid.NewString(),
		PolicyType:     policyType,
		CoverageAmount: coverage,
		AnnualPremium:  round2(annual),
		MonthlyPremium: round2(annual / 12),
		RiskMultiplier: round2(multiplier),
		RiskFactors:    factors,
		ExpiresAt:      now.Add(quoteValidity),
		GeneratedAt:    now,
	}

	s.log.WithField("quote_id", quote.ID).
		WithField("policy_type", policyType).
		WithField("annual_premium", quote.AnnualPremium).
		Info("quote generated")
	return quote, nil
}

// CreatePolicyInput carries the fields of a new policy. Zero dates default
// to a one-year term starting now; a zero deductible takes the default.
type CreatePolicyInput struct {
	Holder         string
	Type           string
	CoverageAmount float64
	Premium        float64
	Deductible     float64
	StartDate      time.Time
	EndDate        time.Time
	Metadata       map[string]string
}

// CreatePolicy issues an active policy.
func (s *Service) CreatePolicy(ctx context.Context, in CreatePolicyInput) (insurance.Policy, error) {
	in.Holder = strings.TrimSpace(in.Holder)
	in.Type = strings.TrimSpace(strings.ToLower(in.Type))

	if in.Holder == "" {
		return insurance.Policy{}, fault.Required("policy_holder")
	}
	if in.Type == "" {
		return insurance.Policy{}, fault.Required("policy_type")
	}
	if in.CoverageAmount <= 0 {
		return insurance.Policy{}, fault.Invalid("coverage_amount", "must be positive")
	}
	if in.Premium <= 0 {
		return insurance.Policy{}, fault.Invalid("premium", "must be positive")
	}
	if in.Deductible < 0 {
		return insurance.Policy{}, fault.Invalid("deductible", "must not be negative")
	}
	if in.Deductible == 0 {
		in.Deductible = DefaultDeductible
	}

	now := s.now().UTC()
	if in.StartDate.IsZero() {
		in.StartDate = now
	}
	if in.EndDate.IsZero() {
		in.EndDate = in.StartDate.AddDate(1, 0, 0)
	}
	if !in.EndDate.After(in.StartDate) {
		return insurance.Policy{}, fault.Invalid("end_date", "must be after start_date")
	}

	policy, err := s.store.CreatePolicy(ctx, insurance.Policy{
		Holder:         in.Holder,
		Type:           in.Type,
		CoverageAmount: in.CoverageAmount,
		Premium:        in.Premium,
		Deductible:     in.Deductible,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		Status:         insurance.StatusActive,
		Metadata:       in.Metadata,
	})
	if err != nil {
		return insurance.Policy{}, fmt.Errorf("create policy: %w", err)
	}

	s.log.WithField("policy_id", policy.ID).
		WithField("holder", policy.Holder).
		WithField("type", policy.Type).
		Info("policy created")
	return policy, nil
}

// ProcessClaim settles a claim against an active policy. A claim above the
// coverage or at or below the deductible is denied; otherwise the payout is
// the claim minus the deductible, capped at the coverage.
func (s *Service) ProcessClaim(ctx context.Context, policyID string, claimAmount float64) (insurance.ClaimResult, error) {
	policyID = strings.TrimSpace(policyID)
	if policyID == "" {
		return insurance.ClaimResult{}, fault.Required("policy_id")
	}
	if claimAmount <= 0 {
		return insurance.ClaimResult{}, fault.Invalid("claim_amount", "must be positive")
	}

	policy, err := s.store.GetPolicy(ctx, policyID)
	if err != nil {
		return insurance.ClaimResult{}, err
	}
	if policy.Status != insurance.StatusActive {
		return insurance.ClaimResult{}, fault.Rejected("policy %s is not active", policyID)
	}

	result := insurance.ClaimResult{
		ClaimID:     uuid.NewString(),
		PolicyID:    policy.ID,
		PolicyType:  policy.Type,
		ClaimAmount: claimAmount,
		Deductible:  policy.Deductible,
		ProcessedAt: s.now().UTC(),
	}
	switch {
	case claimAmount > policy.CoverageAmount:
		result.Status = insurance.ClaimDenied
		result.Reason = "Claim exceeds coverage amount"
	case claimAmount <= policy.Deductible:
		result.Status = insurance.ClaimDenied
		result.Reason = "Claim amount below deductible"
	default:
		result.Status = insurance.ClaimApproved
		result.Reason = "Claim approved"
		result.Payout = round2(math.Min(claimAmount-policy.Deductible, policy.CoverageAmount))
	}

	s.log.WithField("claim_id", result.ClaimID).
		WithField("policy_id", policy.ID).
		WithField("status", result.Status).
		Info("claim processed")
	return result, nil
}

// ActivePolicies lists active policies, optionally for one holder.
func (s *Service) ActivePolicies(ctx context.Context, holder string) ([]insurance.Policy, error) {
	return s.store.ListPolicies(ctx, strings.TrimSpace(holder), insurance.StatusActive)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
