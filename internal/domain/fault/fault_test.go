package fault

import (
	"errors"
	"fmt"
	"testing"
)

func TestMessages(t *testing.T) {
	if got := Required("amount").Error(); got != "amount is required" {
		t.Errorf("Required = %q", got)
	}
	if got := Invalid("rate", "must be positive").Error(); got != "rate: must be positive" {
		t.Errorf("Invalid = %q", got)
	}
	if got := NotFoundf("policy", "p1").Error(); got != "policy p1 not found" {
		t.Errorf("NotFoundf = %q", got)
	}
	if got := Rejected("insufficient stock: have %d", 3).Error(); got != "insufficient stock: have 3" {
		t.Errorf("Rejected = %q", got)
	}
}

func TestPredicatesAreDisjoint(t *testing.T) {
	cases := []struct {
		err        error
		validation bool
		notFound   bool
		rule       bool
	}{
		{Required("name"), true, false, false},
		{NotFoundf("item", "7"), false, true, false},
		{Rejected("denied"), false, false, true},
		{errors.New("plain"), false, false, false},
	}
	for _, tc := range cases {
		if IsValidation(tc.err) != tc.validation {
			t.Errorf("IsValidation(%v) = %v", tc.err, !tc.validation)
		}
		if IsNotFound(tc.err) != tc.notFound {
			t.Errorf("IsNotFound(%v) = %v", tc.err, !tc.notFound)
		}
		if IsBusinessRule(tc.err) != tc.rule {
			t.Errorf("IsBusinessRule(%v) = %v", tc.err, !tc.rule)
		}
	}
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("load application: %w", NotFoundf("application", "a1"))
	if !IsNotFound(wrapped) {
		t.Error("wrapped NotFound not detected")
	}
	if IsValidation(wrapped) {
		t.Error("wrapped NotFound misclassified as validation")
	}
}
