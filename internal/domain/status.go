package domain

import "github.com/shopspring/decimal"

// Status is the derived payment state of an obligation. It is never
// stored; every view derives it from the ledger through ResolveStatus.
type Status string

const (
	StatusUnpaid  Status = "unpaid"
	StatusPartial Status = "partial"
	StatusSettled Status = "settled"
	StatusFull    Status = "full"
)

// ResolveStatus derives the payment status of an obligation from the
// ledger sum, the amount owed and whether any refund was recorded.
// This is the single place status is computed; aggregates must call it
// instead of re-implementing the branches.
//
// A negative total (over-refund) resolves to unpaid. A partial total
// with refund history resolves to settled rather than partial: the
// remainder was forgiven, not left outstanding.
func ResolveStatus(totalPaid, amount decimal.Decimal, hasRefund bool) Status {
	if totalPaid.LessThanOrEqual(decimal.Zero) {
		return StatusUnpaid
	}
	if totalPaid.GreaterThanOrEqual(amount) {
		return StatusFull
	}
	if hasRefund {
		return StatusSettled
	}
	return StatusPartial
}

// Display returns the human-readable label for a status. This is the
// only conversion point to display strings.
func (s Status) Display() string {
	switch s {
	case StatusUnpaid:
		return "Unpaid"
	case StatusPartial:
		return "Partial"
	case StatusSettled:
		return "Settled"
	case StatusFull:
		return "Paid"
	default:
		return "Unknown"
	}
}
