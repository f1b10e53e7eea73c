package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Obligation is the amount one subscriber owes for one billing period.
// IsPaid and PaidDate are caches maintained by the reconciliation
// operations; the authoritative state is always re-derived from the
// ledger via ResolveStatus.
type Obligation struct {
	ID           int64           `json:"id"`
	SubscriberID int64           `json:"subscriberId"`
	Period       Period          `json:"period"`
	Amount       decimal.Decimal `json:"amount"`
	IsPaid       bool            `json:"isPaid"`
	PaidDate     *time.Time      `json:"paidDate,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// ObligationWithTotals is the snapshot read model for aggregate views:
// one obligation together with its live ledger sum, refund flag and
// directory identity, produced by a single store query so a view never
// mixes a stale obligation with fresh ledger entries.
type ObligationWithTotals struct {
	Obligation
	TotalPaid      decimal.Decimal `json:"totalPaid"`
	HasRefund      bool            `json:"hasRefund"`
	SubscriberName string          `json:"subscriberName"`
	BuildingID     int64           `json:"buildingId"`
	BuildingName   string          `json:"buildingName"`
}

// Status derives the payment status for this snapshot.
func (o *ObligationWithTotals) Status() Status {
	return ResolveStatus(o.TotalPaid, o.Amount, o.HasRefund)
}

// Remaining is the outstanding balance, never negative.
func (o *ObligationWithTotals) Remaining() decimal.Decimal {
	r := o.Amount.Sub(o.TotalPaid)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// ObligationRepository manages (subscriber, period) obligation records.
type ObligationRepository interface {
	// GetOrCreate returns the obligation for the key, creating it with
	// the default amount if absent. Idempotent by unique key.
	GetOrCreate(subscriberID int64, period Period, defaultAmount decimal.Decimal) (*Obligation, error)
	Get(subscriberID int64, period Period) (*Obligation, error)
	GetByID(id int64) (*Obligation, error)
	SetPaidFlag(subscriberID int64, period Period, isPaid bool, paidDate *time.Time) error
	UpdateAmount(subscriberID int64, period Period, amount decimal.Decimal) error
	Delete(id int64) error

	// UpdateFutureAmount bulk-updates the amount of every obligation of
	// the subscriber with period >= fromPeriod that has no ledger
	// entries. Frozen periods are skipped silently. Returns the number
	// of rows changed.
	UpdateFutureAmount(subscriberID int64, fromPeriod Period, newAmount decimal.Decimal) (int64, error)

	// FirstCleanPeriod returns the earliest entry-free period at or
	// after the subscriber's earliest unpaid period, or
	// ErrObligationNotFound when there is none.
	FirstCleanPeriod(subscriberID int64) (Period, error)

	ListByPeriod(period Period) ([]*Obligation, error)
	ListBySubscriber(subscriberID int64) ([]*Obligation, error)

	// Snapshot read-model queries: single-statement joins, ordered by
	// building/subscriber name (by period for the subscriber variant).
	ListWithTotalsByPeriod(period Period) ([]*ObligationWithTotals, error)
	ListWithTotalsBySubscriber(subscriberID int64) ([]*ObligationWithTotals, error)
}
