package service

import (
	"testing"
	"time"

	"github.com/mertdogan/duesly/duesly-backend/internal/domain"
	"github.com/mertdogan/duesly/duesly-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSubscriber(t *testing.T, mocks *testutil.Mocks) *domain.Subscriber {
	t.Helper()
	building, err := mocks.Buildings.Create(&domain.Building{Name: "Cedar Court"})
	require.NoError(t, err)
	sub, err := mocks.Subscribers.Create(&domain.Subscriber{
		BuildingID:  building.ID,
		Name:        "Alice Demir",
		MonthlyFee:  decimal.NewFromInt(100),
		StartPeriod: "2026-01",
	})
	require.NoError(t, err)
	return sub
}

func TestMarkFullPayment(t *testing.T) {
	mocks := testutil.NewMocks()
	svc := NewReconciliationService(mocks.Obligations, mocks.Ledger)
	sub := seedSubscriber(t, mocks)

	result, err := svc.MarkFullPayment(sub.ID, "2026-01", decimal.NewFromInt(100))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusFull, result.Status)
	assert.True(t, result.TotalPaid.Equal(decimal.NewFromInt(100)))
	assert.True(t, result.Obligation.IsPaid)
	require.NotNil(t, result.Obligation.PaidDate)

	entries, err := mocks.Ledger.ListFor(result.Obligation.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.NoteFullPayment, entries[0].Notes)
}

func TestMarkFullPaymentIdempotent(t *testing.T) {
	mocks := testutil.NewMocks()
	svc := NewReconciliationService(mocks.Obligations, mocks.Ledger)
	sub := seedSubscriber(t, mocks)

	amount := decimal.NewFromInt(100)
	first, err := svc.MarkFullPayment(sub.ID, "2026-01", amount)
	require.NoError(t, err)
	second, err := svc.MarkFullPayment(sub.ID, "2026-01", amount)
	require.NoError(t, err)

	assert.Equal(t, first.Obligation.ID, second.Obligation.ID)
	assert.True(t, second.TotalPaid.Equal(amount))

	// Repeating the call must not append a second entry.
	entries, err := mocks.Ledger.ListFor(first.Obligation.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestMarkFullPaymentCompletesPartial(t *testing.T) {
	mocks := testutil.NewMocks()
	svc := NewReconciliationService(mocks.Obligations, mocks.Ledger)
	sub := seedSubscriber(t, mocks)

	_, err := svc.AddPartialPayment(sub.ID, "2026-01", decimal.NewFromInt(100), decimal.NewFromInt(30))
	require.NoError(t, err)

	result, err := svc.MarkFullPayment(sub.ID, "2026-01", decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFull, result.Status)
	assert.True(t, result.TotalPaid.Equal(decimal.NewFromInt(100)))

	// Only the remaining 70 was appended.
	entries, err := mocks.Ledger.ListFor(result.Obligation.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[1].Amount.Equal(decimal.NewFromInt(70)))
}

func TestMarkFullPaymentRejectsInvalidAmount(t *testing.T) {
	mocks := testutil.NewMocks()
	svc := NewReconciliationService(mocks.Obligations, mocks.Ledger)
	sub := seedSubscriber(t, mocks)

	_, err := svc.MarkFullPayment(sub.ID, "2026-01", decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.MarkFullPayment(sub.ID, "2026-01", decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestAddPartialPayment(t *testing.T) {
	mocks := testutil.NewMocks()
	svc := NewReconciliationService(mocks.Obligations, mocks.Ledger)
	sub := seedSubscriber(t, mocks)

	result, err := svc.AddPartialPayment(sub.ID, "2026-01", decimal.NewFromInt(100), decimal.NewFromInt(40))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPartial, result.Status)
	assert.True(t, result.TotalPaid.Equal(decimal.NewFromInt(40)))
	assert.False(t, result.Obligation.IsPaid)
	assert.Nil(t, result.Obligation.PaidDate)
}

func TestAddPartialPaymentReachesFull(t *testing.T) {
	mocks := testutil.NewMocks()
	svc := NewReconciliationService(mocks.Obligations, mocks.Ledger)
	sub := seedSubscriber(t, mocks)

	_, err := svc.AddPartialPayment(sub.ID, "2026-01", decimal.NewFromInt(100), decimal.NewFromInt(60))
	require.NoError(t, err)
	result, err := svc.AddPartialPayment(sub.ID, "2026-01", decimal.NewFromInt(100), decimal.NewFromInt(40))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusFull, result.Status)
	assert.True(t, result.Obligation.IsPaid)
	require.NotNil(t, result.Obligation.PaidDate)
}

func TestAddReverseTransactionSettles(t *testing.T) {
	mocks := testutil.NewMocks()
	svc := NewReconciliationService(mocks.Obligations, mocks.Ledger)
	sub := seedSubscriber(t, mocks)

	amount := decimal.NewFromInt(100)
	_, err := svc.AddPartialPayment(sub.ID, "2026-01", amount, decimal.NewFromInt(80))
	require.NoError(t, err)

	result, err := svc.AddReverseTransaction(sub.ID, "2026-01", amount, decimal.NewFromInt(20), "billing correction")
	require.NoError(t, err)

	// 80 paid minus 20 refunded: below the obligation, but the refund
	// settles the balance rather than leaving it partial.
	assert.True(t, result.TotalPaid.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, domain.StatusSettled, result.Status)
	assert.False(t, result.Obligation.IsPaid)

	entries, err := svc.ListEntries(sub.ID, "2026-01")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[1].IsRefund())
	assert.Equal(t, "billing correction", entries[1].Notes)
}

func TestAddReverseTransactionKeepsFullWhenCovered(t *testing.T) {
	mocks := testutil.NewMocks()
	svc := NewReconciliationService(mocks.Obligations, mocks.Ledger)
	sub := seedSubscriber(t, mocks)

	amount := decimal.NewFromInt(100)
	_, err := svc.AddPartialPayment(sub.ID, "2026-01", amount, decimal.NewFromInt(120))
	require.NoError(t, err)

	result, err := svc.AddReverseTransaction(sub.ID, "2026-01", amount, decimal.NewFromInt(20), "overpayment refund")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFull, result.Status)
	assert.True(t, result.Obligation.IsPaid)
}

func TestAddReverseTransactionRejectsLongReason(t *testing.T) {
	mocks := testutil.NewMocks()
	svc := NewReconciliationService(mocks.Obligations, mocks.Ledger)
	sub := seedSubscriber(t, mocks)

	long := make([]byte, domain.MaxNotesLength+1)
	for i := range long {
		long[i] = 'x'
	}
	_, err := svc.AddReverseTransaction(sub.ID, "2026-01", decimal.NewFromInt(100), decimal.NewFromInt(10), string(long))
	assert.ErrorIs(t, err, domain.ErrNotesTooLong)
}

func TestMarkAsUnpaid(t *testing.T) {
	mocks := testutil.NewMocks()
	svc := NewReconciliationService(mocks.Obligations, mocks.Ledger)
	sub := seedSubscriber(t, mocks)

	result, err := svc.MarkFullPayment(sub.ID, "2026-01", decimal.NewFromInt(100))
	require.NoError(t, err)

	require.NoError(t, svc.MarkAsUnpaid(sub.ID, "2026-01"))

	entries, err := mocks.Ledger.ListFor(result.Obligation.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	obligation, err := mocks.Obligations.Get(sub.ID, "2026-01")
	require.NoError(t, err)
	assert.False(t, obligation.IsPaid)
	assert.Nil(t, obligation.PaidDate)
}

func TestMarkAsUnpaidUnknownObligation(t *testing.T) {
	mocks := testutil.NewMocks()
	svc := NewReconciliationService(mocks.Obligations, mocks.Ledger)

	err := svc.MarkAsUnpaid(99, "2026-01")
	assert.ErrorIs(t, err, domain.ErrObligationNotFound)
}

func TestDeleteTransaction(t *testing.T) {
	mocks := testutil.NewMocks()
	svc := NewReconciliationService(mocks.Obligations, mocks.Ledger)
	sub := seedSubscriber(t, mocks)

	result, err := svc.MarkFullPayment(sub.ID, "2026-01", decimal.NewFromInt(100))
	require.NoError(t, err)
	entries, err := mocks.Ledger.ListFor(result.Obligation.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, svc.DeleteTransaction(entries[0].ID))

	// Deleting the only entry resets the derived state entirely.
	obligation, err := mocks.Obligations.Get(sub.ID, "2026-01")
	require.NoError(t, err)
	assert.False(t, obligation.IsPaid)
	assert.Nil(t, obligation.PaidDate)

	total, err := mocks.Ledger.SumFor(obligation.ID)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestDeleteTransactionKeepsFullWhenStillCovered(t *testing.T) {
	mocks := testutil.NewMocks()
	svc := NewReconciliationService(mocks.Obligations, mocks.Ledger)
	sub := seedSubscriber(t, mocks)

	amount := decimal.NewFromInt(100)
	_, err := svc.AddPartialPayment(sub.ID, "2026-01", amount, decimal.NewFromInt(100))
	require.NoError(t, err)
	extra, err := svc.AddPartialPayment(sub.ID, "2026-01", amount, decimal.NewFromInt(50))
	require.NoError(t, err)

	entries, err := mocks.Ledger.ListFor(extra.Obligation.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.NoError(t, svc.DeleteTransaction(entries[1].ID))

	obligation, err := mocks.Obligations.Get(sub.ID, "2026-01")
	require.NoError(t, err)
	assert.True(t, obligation.IsPaid)
	assert.NotNil(t, obligation.PaidDate)
}

func TestDeleteTransactionDoesNotInventPaidDate(t *testing.T) {
	mocks := testutil.NewMocks()
	svc := NewReconciliationService(mocks.Obligations, mocks.Ledger)
	sub := seedSubscriber(t, mocks)

	// Entries appended directly, so the paid flag and date were never
	// derived for this obligation.
	obligation, err := mocks.Obligations.GetOrCreate(sub.ID, "2026-01", decimal.NewFromInt(100))
	require.NoError(t, err)
	_, err = mocks.Ledger.Append(obligation.ID, decimal.NewFromInt(100), domain.NotePartialPayment, time.Now().UTC())
	require.NoError(t, err)
	extra, err := mocks.Ledger.Append(obligation.ID, decimal.NewFromInt(50), domain.NotePartialPayment, time.Now().UTC())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTransaction(extra.ID))

	// Still covered, so the flag flips on, but no payment timestamp is
	// fabricated for it.
	obligation, err = mocks.Obligations.Get(sub.ID, "2026-01")
	require.NoError(t, err)
	assert.True(t, obligation.IsPaid)
	assert.Nil(t, obligation.PaidDate)
}

func TestDeleteTransactionUnknownEntryIsNoOp(t *testing.T) {
	mocks := testutil.NewMocks()
	svc := NewReconciliationService(mocks.Obligations, mocks.Ledger)

	assert.NoError(t, svc.DeleteTransaction(12345))
}

func TestCreatePaymentsForSubscriber(t *testing.T) {
	mocks := testutil.NewMocks()
	svc := NewReconciliationService(mocks.Obligations, mocks.Ledger)
	sub := seedSubscriber(t, mocks)

	firstAmount := decimal.NewFromInt(30)
	periods := []domain.Period{"2026-03", "2026-01", "2026-02"}
	results, err := svc.CreatePaymentsForSubscriber(sub.ID, "2026-01", nil, decimal.NewFromInt(150), periods, &firstAmount)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Periods are processed in ascending order and only the earliest
	// gets the pro-rated first amount.
	assert.Equal(t, domain.Period("2026-01"), results[0].Obligation.Period)
	assert.True(t, results[0].Obligation.Amount.Equal(firstAmount))
	assert.True(t, results[1].Obligation.Amount.Equal(decimal.NewFromInt(150)))
	assert.True(t, results[2].Obligation.Amount.Equal(decimal.NewFromInt(150)))
	for _, r := range results {
		assert.Equal(t, domain.StatusUnpaid, r.Status)
		assert.True(t, r.TotalPaid.IsZero())
	}
}

func TestCreatePaymentsForSubscriberSkipsExisting(t *testing.T) {
	mocks := testutil.NewMocks()
	svc := NewReconciliationService(mocks.Obligations, mocks.Ledger)
	sub := seedSubscriber(t, mocks)

	existing, err := mocks.Obligations.GetOrCreate(sub.ID, "2026-02", decimal.NewFromInt(80))
	require.NoError(t, err)
	_, err = mocks.Ledger.Append(existing.ID, decimal.NewFromInt(80), domain.NoteFullPayment, time.Now().UTC())
	require.NoError(t, err)

	results, err := svc.CreatePaymentsForSubscriber(sub.ID, "2026-01", nil, decimal.NewFromInt(150), []domain.Period{"2026-01", "2026-02"}, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// The fresh period reports as unpaid; the pre-existing one keeps its
	// amount and surfaces its recorded payment.
	assert.Equal(t, domain.StatusUnpaid, results[0].Status)
	assert.Equal(t, existing.ID, results[1].Obligation.ID)
	assert.True(t, results[1].Obligation.Amount.Equal(decimal.NewFromInt(80)))
	assert.Equal(t, domain.StatusFull, results[1].Status)
	assert.True(t, results[1].TotalPaid.Equal(decimal.NewFromInt(80)))
}

func TestCreatePaymentsForSubscriberWindow(t *testing.T) {
	mocks := testutil.NewMocks()
	svc := NewReconciliationService(mocks.Obligations, mocks.Ledger)
	sub := seedSubscriber(t, mocks)

	end := domain.Period("2026-03")
	periods := []domain.Period{"2025-12", "2026-01", "2026-02", "2026-03", "2026-04"}
	results, err := svc.CreatePaymentsForSubscriber(sub.ID, "2026-01", &end, decimal.NewFromInt(150), periods, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, domain.Period("2026-01"), results[0].Obligation.Period)
	assert.Equal(t, domain.Period("2026-02"), results[1].Obligation.Period)
}

func TestListEntriesOrdered(t *testing.T) {
	mocks := testutil.NewMocks()
	svc := NewReconciliationService(mocks.Obligations, mocks.Ledger)
	sub := seedSubscriber(t, mocks)

	obligation, err := mocks.Obligations.GetOrCreate(sub.ID, "2026-01", decimal.NewFromInt(100))
	require.NoError(t, err)

	later := time.Date(2026, 1, 20, 10, 0, 0, 0, time.UTC)
	earlier := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	_, err = mocks.Ledger.Append(obligation.ID, decimal.NewFromInt(40), domain.NotePartialPayment, later)
	require.NoError(t, err)
	_, err = mocks.Ledger.Append(obligation.ID, decimal.NewFromInt(30), domain.NotePartialPayment, earlier)
	require.NoError(t, err)

	entries, err := svc.ListEntries(sub.ID, "2026-01")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].EntryDate.Before(entries[1].EntryDate))
}
