// Package split computes per-participant shares of a shared expense.
package split

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount  = errors.New("total amount must be greater than zero")
	ErrNoParticipants = errors.New("at least one participant is required")
	ErrReconciliation = errors.New("custom amounts do not sum to the total")
	ErrMissingAmount  = errors.New("custom split requires an amount for every participant")
	ErrNegativeShare  = errors.New("custom amounts must be greater than zero")
)

// reconcileTolerance is the maximum allowed difference between the sum of
// custom amounts and the total, in currency units.
var reconcileTolerance = decimal.RequireFromString("0.01")

// Mode selects how a split's total is divided.
type Mode string

const (
	ModeEqual  Mode = "equal"
	ModeCustom Mode = "custom"
)

// ParseMode validates a split mode tag. An empty tag defaults to equal,
// matching the create-split form.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeEqual, ModeCustom:
		return Mode(s), nil
	case "":
		return ModeEqual, nil
	}
	return "", fmt.Errorf("unknown split mode %q", s)
}

// Allocate computes the amount each listed participant owes.
//
// Equal mode divides the total by len(participantIDs)+1: the creator is not
// listed but owns one share. Custom mode requires an explicit positive
// amount for every listed participant and fails with ErrReconciliation when
// the amounts do not sum to the total within the tolerance.
func Allocate(total decimal.Decimal, participantIDs []string, mode Mode, custom map[string]decimal.Decimal) (map[string]decimal.Decimal, error) {
	if total.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	// Deduplicate while preserving a set of IDs to allocate for.
	ids := make([]string, 0, len(participantIDs))
	seen := make(map[string]bool, len(participantIDs))
	for _, id := range participantIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, ErrNoParticipants
	}

	shares := make(map[string]decimal.Decimal, len(ids))

	switch mode {
	case ModeEqual:
		perPerson := total.Div(decimal.NewFromInt(int64(len(ids) + 1)))
		for _, id := range ids {
			shares[id] = perPerson
		}

	case ModeCustom:
		sum := decimal.Zero
		for _, id := range ids {
			amount, ok := custom[id]
			if !ok {
				return nil, fmt.Errorf("%w: participant %s", ErrMissingAmount, id)
			}
			if amount.LessThanOrEqual(decimal.Zero) {
				return nil, fmt.Errorf("%w: participant %s", ErrNegativeShare, id)
			}
			shares[id] = amount
			sum = sum.Add(amount)
		}
		if sum.Sub(total).Abs().GreaterThan(reconcileTolerance) {
			return nil, fmt.Errorf("%w: amounts sum to %s, total is %s", ErrReconciliation, sum.StringFixed(2), total.StringFixed(2))
		}

	default:
		return nil, fmt.Errorf("unknown split mode %q", mode)
	}

	return shares, nil
}

// CreatorShare is the creator's materialized portion: the total minus all
// explicit participant shares. For equal splits this equals one per-person
// share; for custom splits it absorbs the reconciliation remainder so that
// stored shares always sum exactly to the total.
func CreatorShare(total decimal.Decimal, shares map[string]decimal.Decimal) decimal.Decimal {
	remainder := total
	for _, s := range shares {
		remainder = remainder.Sub(s)
	}
	return remainder
}
