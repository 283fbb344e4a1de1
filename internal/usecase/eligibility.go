package usecase

import (
	"time"

	"rental-booking/internal/data/entity"
	"rental-booking/pkg/utils"
)

type EligibilityInput struct {
	Policy             entity.CancellationPolicy
	CheckIn            time.Time
	TotalPaidCents     int64
	TotalRefundedCents int64
}

type EligibilityResult struct {
	Policy               entity.CancellationPolicy
	TotalPaidCents       int64
	TotalRefundedCents   int64
	AvailableCents       int64
	DaysUntilCheckIn     int
	RefundPercent        int
	PolicyAmountCents    int64
	SuggestedAmountCents int64
	IsPolicyEligible     bool
}

// EligibilityCalculator suggests a refund amount from the property's
// cancellation policy. Policy tables come from configuration.
type EligibilityCalculator struct {
	policies map[string][]utils.PolicyRule
}

func NewEligibilityCalculator(policies map[string][]utils.PolicyRule) *EligibilityCalculator {
	return &EligibilityCalculator{policies: policies}
}

func (c *EligibilityCalculator) Calculate(in EligibilityInput, now time.Time) EligibilityResult {
	days := 0
	if until := in.CheckIn.Sub(now); until > 0 {
		days = int(until / (24 * time.Hour))
	}

	available := in.TotalPaidCents - in.TotalRefundedCents
	if available < 0 {
		available = 0
	}

	// rules are ordered by MinDays descending
	rules := c.policies[string(in.Policy)]

	percent := 0
	for _, rule := range rules {
		if days >= rule.MinDays {
			percent = rule.Percent
			break
		}
	}

	noticeDays, hasNotice := 0, false
	for _, rule := range rules {
		if rule.Percent > 0 {
			noticeDays, hasNotice = rule.MinDays, true
		}
	}

	policyAmount := int64(0)
	if in.TotalPaidCents > 0 {
		policyAmount = in.TotalPaidCents * int64(percent) / 100
	}

	suggested := policyAmount
	if suggested > available {
		suggested = available
	}
	if suggested < 0 {
		suggested = 0
	}

	return EligibilityResult{
		Policy:               in.Policy,
		TotalPaidCents:       in.TotalPaidCents,
		TotalRefundedCents:   in.TotalRefundedCents,
		AvailableCents:       available,
		DaysUntilCheckIn:     days,
		RefundPercent:        percent,
		PolicyAmountCents:    policyAmount,
		SuggestedAmountCents: suggested,
		IsPolicyEligible:     in.TotalPaidCents > 0 && hasNotice && days >= noticeDays,
	}
}
