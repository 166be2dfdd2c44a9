package insurance

// Base annual premium rates by policy type, as a fraction of coverage.
var baseRates = map[string]float64{
	"auto":     0.02,
	"home":     0.005,
	"life":     0.01,
	"health":   0.08,
	"business": 0.03,
}

const defaultBaseRate = 0.02

// RiskProfile carries the optional underwriting inputs for a quote. Zero
// values take the underwriting defaults (age 30, clean record, ten year old
// home in a low-risk area, good health).
type RiskProfile struct {
	Age           int
	DrivingRecord string
	HomeAge       int
	LocationRisk  string
	HealthStatus  string
}

func (p RiskProfile) withDefaults() RiskProfile {
	if p.Age == 0 {
		p.Age = 30
	}
	if p.DrivingRecord == "" {
		p.DrivingRecord = "clean"
	}
	if p.HomeAge == 0 {
		p.HomeAge = 10
	}
	if p.LocationRisk == "" {
		p.LocationRisk = "low"
	}
	if p.HealthStatus == "" {
		p.HealthStatus = "good"
	}
	return p
}

// rate computes the risk multiplier for a policy type. The multiplier starts
// at 1.0 and each penalty rule adds its surcharge and factor label in a
// fixed per-type order. Types without rules (health, business) rate at 1.0.
func rate(policyType string, profile RiskProfile) (float64, []string) {
	profile = profile.withDefaults()

	multiplier := 1.0
	var factors []string

	switch policyType {
	case "auto":
		if profile.Age < 25 {
			multiplier += 0.5
			factors = append(factors, "Young driver")
		} else if profile.Age > 65 {
			multiplier += 0.2
			factors = append(factors, "Senior driver")
		}
		switch profile.DrivingRecord {
		case "violations":
			multiplier += 0.3
			factors = append(factors, "Traffic violations")
		case "accidents":
			multiplier += 0.4
			factors = append(factors, "Previous accidents")
		}

	case "home":
		if profile.HomeAge > 30 {
			multiplier += 0.1
			factors = append(factors, "Older property")
		}
		switch profile.LocationRisk {
		case "high":
			multiplier += 0.3
			factors = append(factors, "High-risk location")
		case "medium":
			multiplier += 0.1
			factors = append(factors, "Moderate-risk location")
		}

	case "life":
		if profile.Age > 50 {
			multiplier += float64(profile.Age-50) * 0.02
			factors = append(factors, "Age factor")
		}
		switch profile.HealthStatus {
		case "poor":
			multiplier += 0.5
			factors = append(factors, "Health concerns")
		case "fair":
			multiplier += 0.2
			factors = append(factors, "Moderate health")
		}
	}

	return multiplier, factors
}

func baseRate(policyType string) float64 {
	if r, ok := baseRates[policyType]; ok {
		return r
	}
	return defaultBaseRate
}
