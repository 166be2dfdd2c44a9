package lending

import "time"

// Application statuses. The status is derived from the risk level exactly
// once, when the application is submitted; downstream workflow transitions
// are outside this module.
const (
	StatusPending     = "pending"
	StatusUnderReview = "under_review"
	StatusPreApproved = "pre_approved"
	StatusRejected    = "rejected"
)

// Risk levels.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Application is a submitted loan application with its attached risk
// assessment.
type Application struct {
	ID            string
	ApplicantName string
	LoanAmount    float64
	LoanType      string
	Income        float64
	CreditScore   int
	DebtToIncome  float64
	PropertyValue float64
	DownPayment   float64
	Status        string
	Risk          RiskAssessment
	CreatedAt     time.Time
}

// RiskAssessment is the output of the rule-based risk scoring engine.
// Factors are recorded in rule-evaluation order.
type RiskAssessment struct {
	Score        int      `json:"risk_score"`
	Level        string   `json:"risk_level"`
	Factors      []string `json:"risk_factors"`
	LoanToIncome float64  `json:"loan_to_income"`
	LoanToValue  float64  `json:"loan_to_value"`
}

// Entry is one month of an amortization schedule. Monetary fields are
// rounded to cents at the boundary.
type Entry struct {
	Month     int     `json:"month"`
	Payment   float64 `json:"payment"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Balance   float64 `json:"balance"`
}

// Amortization is the result of a mortgage calculation. Schedule holds the
// first twelve months; the full schedule is recomputable from the inputs.
type Amortization struct {
	Principal      float64 `json:"principal"`
	AnnualRate     float64 `json:"interest_rate"`
	TermYears      int     `json:"loan_term_years"`
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalPayment   float64 `json:"total_payment"`
	TotalInterest  float64 `json:"total_interest"`
	Schedule       []Entry `json:"first_year_amortization"`
}
