package insurance

import "time"

// Policy statuses.
const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
	StatusExpired   = "expired"
)

// Claim outcomes.
const (
	ClaimApproved = "approved"
	ClaimDenied   = "denied"
)

// Policy is an issued insurance policy.
type Policy struct {
	ID             string
	Holder         string
	Type           string
	CoverageAmount float64
	Premium        float64
	Deductible     float64
	StartDate      time.Time
	EndDate        time.Time
	Status         string
	Metadata       map[string]string
}

// Quote is a rated premium offer. RiskFactors are recorded in
// rule-evaluation order, mirroring the lending risk engine.
type Quote struct {
	ID             string    `json:"quote_id"`
	PolicyType     string    `json:"policy_type"`
	CoverageAmount float64   `json:"coverage_amount"`
	AnnualPremium  float64   `json:"annual_premium"`
	MonthlyPremium float64   `json:"monthly_premium"`
	RiskMultiplier float64   `json:"risk_multiplier"`
	RiskFactors    []string  `json:"risk_factors"`
	ExpiresAt      time.Time `json:"quote_expires"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// ClaimResult is the outcome of processing a claim against a policy.
type ClaimResult struct {
	ClaimID     string    `json:"claim_id"`
	PolicyID    string    `json:"policy_id"`
	PolicyType  string    `json:"policy_type"`
	ClaimAmount float64   `json:"claim_amount"`
	Deductible  float64   `json:"deductible"`
	Payout      float64   `json:"payout_amount"`
	Status      string    `json:"status"`
	Reason      string    `json:"reason"`
	ProcessedAt time.Time `json:"processed_at"`
}
