// Package inference provides expense classification and free-form question
// answering. The default implementation is rule based; a model-backed
// implementation can be dropped in behind the same interfaces.
package inference

import (
	"context"
	"hash/fnv"
	"strings"
)

// Classifier assigns a spending category to a transaction description.
type Classifier interface {
	ClassifyExpense(ctx context.Context, description string) (string, error)
}

// Advisor answers free-form financial questions.
type Advisor interface {
	Answer(ctx context.Context, question string) (string, error)
}

// RuleBased implements Classifier and Advisor with keyword rules and a small
// pool of canned responses. It never fails.
type RuleBased struct{}

var _ Classifier = (*RuleBased)(nil)
var _ Advisor = (*RuleBased)(nil)

// NewRuleBased returns the rule-based engine.
func NewRuleBased() *RuleBased {
	return &RuleBased{}
}

var categoryKeywords = []struct {
	category string
	words    []string
}{
	{"food", []string{"food", "restaurant", "grocery", "coffee"}},
	{"transportation", []string{"gas", "uber", "taxi", "parking", "car"}},
	{"utilities", []string{"electric", "water", "internet", "phone"}},
	{"entertainment", []string{"movie", "netflix", "spotify", "game"}},
	{"healthcare", []string{"doctor", "pharmacy", "hospital", "medicine"}},
	{"shopping", []string{"amazon", "store", "mall", "shop"}},
}

// ClassifyExpense matches the description against keyword groups in a fixed
// order and returns the first matching category, or "other".
func (r *RuleBased) ClassifyExpense(_ context.Context, description string) (string, error) {
	lower := strings.ToLower(description)
	for _, group := range categoryKeywords {
		for _, word := range group.words {
			if strings.Contains(lower, word) {
				return group.category, nil
			}
		}
	}
	return "other", nil
}

var cannedAdvice = []string{
	"Based on the analysis, I recommend maintaining a diversified portfolio.",
	"Consider reviewing your spending patterns and adjusting your budget accordingly.",
	"It's important to maintain an emergency fund of 3-6 months of expenses.",
	"Regular financial review helps identify opportunities for optimization.",
}

// Answer picks a deterministic response for the question. The same question
// always yields the same answer.
func (r *RuleBased) Answer(_ context.Context, question string) (string, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.TrimSpace(question)))
	return cannedAdvice[h.Sum32()%uint32(len(cannedAdvice))], nil
}
