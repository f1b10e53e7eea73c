package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ledger entry note tags written by the reconciliation operations.
// Refund entries carry the caller-supplied reason instead.
const (
	NoteFullPayment    = "full payment"
	NotePartialPayment = "partial payment"
)

// LedgerEntry is one signed monetary event against an obligation:
// positive for payments, negative for refunds/reversals. Entries are
// never mutated, only inserted or deleted wholesale by id.
type LedgerEntry struct {
	ID           int64           `json:"id"`
	ObligationID int64           `json:"obligationId"`
	Amount       decimal.Decimal `json:"amount"`
	Notes        string          `json:"notes"`
	EntryDate    time.Time       `json:"entryDate"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// IsRefund reports whether the entry is a refund/reversal.
func (e *LedgerEntry) IsRefund() bool {
	return e.Amount.IsNegative()
}

// DailyActivityRow is one subscriber's aggregated ledger activity for a
// day window, joined to the directory for grouping.
type DailyActivityRow struct {
	SubscriberID   int64           `json:"subscriberId"`
	SubscriberName string          `json:"subscriberName"`
	BuildingID     int64           `json:"buildingId"`
	BuildingName   string          `json:"buildingName"`
	TotalPaid      decimal.Decimal `json:"totalPaid"`
	HasRefund      bool            `json:"hasRefund"`
}

// LedgerRepository is the append-only log of monetary events. The
// running sum for an obligation is always the sum over its live
// entries, never a stored counter.
type LedgerRepository interface {
	Append(obligationID int64, amount decimal.Decimal, notes string, entryDate time.Time) (*LedgerEntry, error)
	GetByID(id int64) (*LedgerEntry, error)
	DeleteByID(id int64) error

	SumFor(obligationID int64) (decimal.Decimal, error)
	// SumForMany is the batched form of SumFor; results are identical
	// to calling the singular form per id. Ids with no entries are
	// absent from the map.
	SumForMany(obligationIDs []int64) (map[int64]decimal.Decimal, error)

	HasNegativeEntry(obligationID int64) (bool, error)
	NegativeEntrySet(obligationIDs []int64) (map[int64]bool, error)

	// ListFor returns entries ordered by entry date ascending.
	ListFor(obligationID int64) ([]*LedgerEntry, error)
	// DeleteAllFor erases the obligation's history wholesale; used when
	// unmarking a period as paid.
	DeleteAllFor(obligationID int64) error

	// DailyActivity aggregates entries with entry date in
	// [dayStart, dayEnd) per subscriber, joined to the directory.
	DailyActivity(dayStart, dayEnd time.Time) ([]*DailyActivityRow, error)
}
