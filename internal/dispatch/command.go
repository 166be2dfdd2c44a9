package dispatch

import (
	"sort"
	"strings"
)

// Kind identifies a command in the closed catalog.
type Kind string

// The command catalog. Dispatch routes only these; anything else is an
// unknown command.
const (
	CmdCreateTransaction    Kind = "create_transaction"
	CmdFinancialReport      Kind = "financial_report"
	CmdAccountBalance       Kind = "account_balance"
	CmdAddInventory         Kind = "add_inventory"
	CmdUpdateInventory      Kind = "update_inventory"
	CmdInventoryReport      Kind = "inventory_report"
	CmdSubmitLoan           Kind = "submit_loan"
	CmdLoanStatus           Kind = "loan_status"
	CmdCalculateMortgage    Kind = "calculate_mortgage"
	CmdInsuranceQuote       Kind = "insurance_quote"
	CmdCreatePolicy         Kind = "create_policy"
	CmdProcessClaim         Kind = "process_claim"
	CmdAnalyzePortfolio     Kind = "analyze_portfolio"
	CmdBudgetRecommendation Kind = "budget_recommendation"
	CmdRetirementPlanning   Kind = "retirement_planning"
	CmdGetBalance           Kind = "get_balance"
	CmdGasPrices            Kind = "gas_prices"
	CmdMarketQuote          Kind = "market_quote"
	CmdAskQuestion          Kind = "ask_question"
)

var allCommands = []Kind{
	CmdCreateTransaction,
	CmdFinancialReport,
	CmdAccountBalance,
	CmdAddInventory,
	CmdUpdateInventory,
	CmdInventoryReport,
	CmdSubmitLoan,
	CmdLoanStatus,
	CmdCalculateMortgage,
	CmdInsuranceQuote,
	CmdCreatePolicy,
	CmdProcessClaim,
	CmdAnalyzePortfolio,
	CmdBudgetRecommendation,
	CmdRetirementPlanning,
	CmdGetBalance,
	CmdGasPrices,
	CmdMarketQuote,
	CmdAskQuestion,
}

// ParseKind normalizes a command name and reports whether it is in the
// catalog. Matching is case-insensitive with surrounding whitespace ignored.
func ParseKind(name string) (Kind, bool) {
	kind := Kind(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range allCommands {
		if kind == known {
			return kind, true
		}
	}
	return kind, false
}

// Catalog returns all command names in ascending order.
func Catalog() []string {
	names := make([]string, len(allCommands))
	for i, kind := range allCommands {
		names[i] = string(kind)
	}
	sort.Strings(names)
	return names
}
