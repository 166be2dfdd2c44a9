// Package dispatch routes named commands to the capability agents. The
// command set is closed: every supported command has a typed handler, and
// anything else earns an unknown-command envelope carrying the catalog.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/HLKC779/financial-agents/internal/agents/custody"
	"github.com/HLKC779/financial-agents/internal/agents/insurance"
	"github.com/HLKC779/financial-agents/internal/agents/inventory"
	"github.com/HLKC779/financial-agents/internal/agents/ledger"
	"github.com/HLKC779/financial-agents/internal/agents/lending"
	"github.com/HLKC779/financial-agents/internal/agents/marketwatch"
	"github.com/HLKC779/financial-agents/internal/agents/portfolio"
	"github.com/HLKC779/financial-agents/internal/domain/fault"
	"github.com/HLKC779/financial-agents/internal/inference"
	"github.com/HLKC779/financial-agents/internal/metrics"
	"github.com/HLKC779/financial-agents/pkg/logger"
)

// Error kinds reported in envelopes.
const (
	KindValidation     = "validation_error"
	KindNotFound       = "not_found"
	KindBusinessRule   = "business_rule_error"
	KindUnknownCommand = "unknown_command"
	KindHandlerFailure = "handler_failure"
)

// Envelope is the uniform result of a dispatched command. Exactly one of
// Value or Error is populated; Commands is set only for unknown commands.
type Envelope struct {
	OK        bool     `json:"ok"`
	Agent     string   `json:"agent,omitempty"`
	Value     any      `json:"value,omitempty"`
	ErrorKind string   `json:"error_kind,omitempty"`
	Error     string   `json:"error,omitempty"`
	Commands  []string `json:"available_commands,omitempty"`
}

type handler struct {
	agent string
	run   func(ctx context.Context, p Params) (any, error)
}

// Dispatcher routes commands to agents.
type Dispatcher struct {
	handlers map[Kind]handler
	log      *logger.Logger
}

// Agents bundles the capability agents a dispatcher routes to.
type Agents struct {
	Ledger    *ledger.Service
	Inventory *inventory.Service
	Lending   *lending.Service
	Insurance *insurance.Service
	Portfolio *portfolio.Service
	Custody   *custody.Service
	Market    *marketwatch.Service
	Advisor   inference.Advisor
}

// New constructs a dispatcher over the given agents.
func New(agents Agents, log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.NewDefault("dispatch")
	}
	d := &Dispatcher{log: log}
	d.handlers = map[Kind]handler{
		CmdCreateTransaction: {"ledger", func(ctx context.Context, p Params) (any, error) {
			amount, err := p.f64("amount")
			if err != nil {
				return nil, err
			}
			tags, err := p.strSlice("tags")
			if err != nil {
				return nil, err
			}
			metadata, err := p.strMap("metadata")
			if err != nil {
				return nil, err
			}
			return agents.Ledger.CreateTransaction(ctx, ledger.CreateTransactionInput{
				Type:        p.str("type"),
				Amount:      amount,
				Currency:    p.str("currency"),
				Description: p.str("description"),
				Category:    p.str("category"),
				AccountID:   p.str("account_id"),
				Tags:        tags,
				Metadata:    metadata,
			})
		}},
		CmdFinancialReport: {"ledger", func(ctx context.Context, p Params) (any, error) {
			from, err := parseDate(p, "start_date")
			if err != nil {
				return nil, err
			}
			to, err := parseDate(p, "end_date")
			if err != nil {
				return nil, err
			}
			return agents.Ledger.Report(ctx, from, to)
		}},
		CmdAccountBalance: {"ledger", func(ctx context.Context, p Params) (any, error) {
			return agents.Ledger.Balance(ctx, p.str("account_id"))
		}},
		CmdAddInventory: {"inventory", func(ctx context.Context, p Params) (any, error) {
			quantity, err := p.integer("quantity")
			if err != nil {
				return nil, err
			}
			unitPrice, err := p.f64("unit_price")
			if err != nil {
				return nil, err
			}
			minimum, err := p.integer("minimum_stock")
			if err != nil {
				return nil, err
			}
			metadata, err := p.strMap("metadata")
			if err != nil {
				return nil, err
			}
			return agents.Inventory.AddItem(ctx, inventory.AddItemInput{
				Name:         p.str("name"),
				Quantity:     quantity,
				UnitPrice:    unitPrice,
				Supplier:     p.str("supplier"),
				Category:     p.str("category"),
				MinimumStock: minimum,
				Metadata:     metadata,
			})
		}},
		CmdUpdateInventory: {"inventory", func(ctx context.Context, p Params) (any, error) {
			delta, err := p.integer("quantity_change")
			if err != nil {
				return nil, err
			}
			return agents.Inventory.AdjustQuantity(ctx, p.str("item_id"), delta)
		}},
		CmdInventoryReport: {"inventory", func(ctx context.Context, p Params) (any, error) {
			return agents.Inventory.Report(ctx)
		}},
		CmdSubmitLoan: {"lending", func(ctx context.Context, p Params) (any, error) {
			amount, err := p.f64("loan_amount")
			if err != nil {
				return nil, err
			}
			income, err := p.f64("income")
			if err != nil {
				return nil, err
			}
			creditScore, err := p.integer("credit_score")
			if err != nil {
				return nil, err
			}
			dti, err := p.f64("debt_to_income")
			if err != nil {
				return nil, err
			}
			propertyValue, err := p.f64("property_value")
			if err != nil {
				return nil, err
			}
			downPayment, err := p.f64("down_payment")
			if err != nil {
				return nil, err
			}
			return agents.Lending.Submit(ctx, lending.SubmitInput{
				ApplicantName: p.str("applicant_name"),
				LoanAmount:    amount,
				LoanType:      p.str("loan_type"),
				Income:        income,
				CreditScore:   creditScore,
				DebtToIncome:  dti,
				PropertyValue: propertyValue,
				DownPayment:   downPayment,
			})
		}},
		CmdLoanStatus: {"lending", func(ctx context.Context, p Params) (any, error) {
			return agents.Lending.Status(ctx, p.str("application_id"))
		}},
		CmdCalculateMortgage: {"lending", func(ctx context.Context, p Params) (any, error) {
			principal, err := p.f64("principal")
			if err != nil {
				return nil, err
			}
			rate, err := p.f64("rate")
			if err != nil {
				return nil, err
			}
			years, err := p.integer("years")
			if err != nil {
				return nil, err
			}
			return agents.Lending.CalculateMortgage(ctx, principal, rate, years)
		}},
		CmdInsuranceQuote: {"insurance", func(ctx context.Context, p Params) (any, error) {
			coverage, err := p.f64("coverage_amount")
			if err != nil {
				return nil, err
			}
			age, err := p.integer("age")
			if err != nil {
				return nil, err
			}
			homeAge, err := p.integer("home_age")
			if err != nil {
				return nil, err
			}
			return agents.Insurance.Quote(ctx, p.str("policy_type"), coverage, insurance.RiskProfile{
				Age:           age,
				DrivingRecord: p.str("driving_record"),
				HomeAge:       homeAge,
				LocationRisk:  p.str("location_risk"),
				HealthStatus:  p.str("health_status"),
			})
		}},
		CmdCreatePolicy: {"insurance", func(ctx context.Context, p Params) (any, error) {
			coverage, err := p.f64("coverage_amount")
			if err != nil {
				return nil, err
			}
			premium, err := p.f64("premium")
			if err != nil {
				return nil, err
			}
			deductible, err := p.f64("deductible")
			if err != nil {
				return nil, err
			}
			metadata, err := p.strMap("metadata")
			if err != nil {
				return nil, err
			}
			startDate, err := parseDate(p, "start_date")
			if err != nil {
				return nil, err
			}
			endDate, err := parseDate(p, "end_date")
			if err != nil {
				return nil, err
			}
			return agents.Insurance.CreatePolicy(ctx, insurance.CreatePolicyInput{
				Holder:         p.str("policy_holder"),
				Type:           p.str("policy_type"),
				CoverageAmount: coverage,
				Premium:        premium,
				Deductible:     deductible,
				StartDate:      startDate,
				EndDate:        endDate,
				Metadata:       metadata,
			})
		}},
		CmdProcessClaim: {"insurance", func(ctx context.Context, p Params) (any, error) {
			amount, err := p.f64("claim_amount")
			if err != nil {
				return nil, err
			}
			return agents.Insurance.ProcessClaim(ctx, p.str("policy_id"), amount)
		}},
		CmdAnalyzePortfolio: {"portfolio", func(ctx context.Context, p Params) (any, error) {
			symbols, err := p.strSlice("symbols")
			if err != nil {
				return nil, err
			}
			return agents.Portfolio.Analyze(ctx, symbols)
		}},
		CmdBudgetRecommendation: {"portfolio", func(ctx context.Context, p Params) (any, error) {
			income, err := p.f64("income")
			if err != nil {
				return nil, err
			}
			expenses, err := p.f64Map("expenses")
			if err != nil {
				return nil, err
			}
			return agents.Portfolio.RecommendBudget(ctx, income, expenses)
		}},
		CmdRetirementPlanning: {"portfolio", func(ctx context.Context, p Params) (any, error) {
			currentAge, err := p.integer("current_age")
			if err != nil {
				return nil, err
			}
			retirementAge, err := p.integer("retirement_age")
			if err != nil {
				return nil, err
			}
			savings, err := p.f64("current_savings")
			if err != nil {
				return nil, err
			}
			contribution, err := p.f64("monthly_contribution")
			if err != nil {
				return nil, err
			}
			expectedReturn, err := p.f64("expected_return")
			if err != nil {
				return nil, err
			}
			desiredIncome, err := p.f64("desired_annual_income")
			if err != nil {
				return nil, err
			}
			return agents.Portfolio.PlanRetirement(ctx, portfolio.RetirementInput{
				CurrentAge:          currentAge,
				RetirementAge:       retirementAge,
				CurrentSavings:      savings,
				MonthlyContribution: contribution,
				ExpectedReturn:      expectedReturn,
				DesiredAnnualIncome: desiredIncome,
			})
		}},
		CmdGetBalance: {"custody", func(ctx context.Context, p Params) (any, error) {
			return agents.Custody.Balance(ctx, p.str("address"))
		}},
		CmdGasPrices: {"custody", func(ctx context.Context, p Params) (any, error) {
			return agents.Custody.GasPrices(ctx)
		}},
		CmdMarketQuote: {"marketwatch", func(ctx context.Context, p Params) (any, error) {
			return agents.Market.Quote(ctx, p.str("symbol"))
		}},
		CmdAskQuestion: {"advisor", func(ctx context.Context, p Params) (any, error) {
			question := p.str("question")
			if question == "" {
				return nil, fault.Required("question")
			}
			return agents.Advisor.Answer(ctx, question)
		}},
	}
	return d
}

// Dispatch routes a command. It never returns an error: every outcome,
// including a panicking handler, is reported through the envelope.
func (d *Dispatcher) Dispatch(ctx context.Context, command string, params Params) (env Envelope) {
	start := time.Now()

	kind, ok := ParseKind(command)
	if !ok {
		// The caller-supplied name must not become a metric label; every
		// distinct garbage name would mint a new series.
		metrics.RecordCommand("unknown", KindUnknownCommand, time.Since(start))
		return Envelope{
			OK:        false,
			ErrorKind: KindUnknownCommand,
			Error:     fmt.Sprintf("unknown command: %s", kind),
			Commands:  Catalog(),
		}
	}

	h := d.handlers[kind]
	env.Agent = h.agent

	defer func() {
		if r := recover(); r != nil {
			d.log.WithField("command", string(kind)).
				WithField("panic", fmt.Sprint(r)).
				Error("command handler panicked")
			env = Envelope{
				OK:        false,
				Agent:     h.agent,
				ErrorKind: KindHandlerFailure,
				Error:     fmt.Sprintf("internal error handling %s", kind),
			}
		}
		outcome := "ok"
		if !env.OK {
			outcome = env.ErrorKind
		}
		metrics.RecordCommand(string(kind), outcome, time.Since(start))
	}()

	value, err := h.run(ctx, params)
	if err != nil {
		env.ErrorKind = classify(err)
		env.Error = err.Error()
		d.log.WithField("command", string(kind)).
			WithField("error_kind", env.ErrorKind).
			WithError(err).
			Warn("command failed")
		return env
	}

	env.OK = true
	env.Value = value
	return env
}

func classify(err error) string {
	switch {
	case fault.IsValidation(err):
		return KindValidation
	case fault.IsNotFound(err):
		return KindNotFound
	case fault.IsBusinessRule(err):
		return KindBusinessRule
	default:
		return KindHandlerFailure
	}
}

// parseDate accepts RFC 3339 timestamps or bare dates.
func parseDate(p Params, key string) (time.Time, error) {
	raw := p.str(key)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Time{}, fault.Invalid(key, "expected RFC 3339 timestamp or YYYY-MM-DD date")
}
