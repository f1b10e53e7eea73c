package service

import (
	"testing"

	"github.com/mertdogan/duesly/duesly-backend/internal/domain"
	"github.com/mertdogan/duesly/duesly-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFromMonthSkipsFrozenPeriods(t *testing.T) {
	mocks := testutil.NewMocks()
	reconciliation := NewReconciliationService(mocks.Obligations, mocks.Ledger)
	pricing := NewPricingService(mocks.Obligations, mocks.Subscribers)
	sub := seedSubscriber(t, mocks)

	oldAmount := decimal.NewFromInt(100)
	for _, p := range []domain.Period{"2026-01", "2026-02", "2026-03"} {
		_, err := mocks.Obligations.GetOrCreate(sub.ID, p, oldAmount)
		require.NoError(t, err)
	}
	// January has a ledger entry and is frozen.
	_, err := reconciliation.AddPartialPayment(sub.ID, "2026-01", oldAmount, decimal.NewFromInt(40))
	require.NoError(t, err)

	newAmount := decimal.NewFromInt(200)
	result, err := pricing.ApplyFromMonth(sub.ID, "2026-01", newAmount)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Updated)

	jan, err := mocks.Obligations.Get(sub.ID, "2026-01")
	require.NoError(t, err)
	assert.True(t, jan.Amount.Equal(oldAmount), "frozen period changed: %s", jan.Amount)

	for _, p := range []domain.Period{"2026-02", "2026-03"} {
		o, err := mocks.Obligations.Get(sub.ID, p)
		require.NoError(t, err)
		assert.True(t, o.Amount.Equal(newAmount), "period %s not updated", p)
	}

	updated, err := mocks.Subscribers.GetByID(sub.ID)
	require.NoError(t, err)
	assert.True(t, updated.MonthlyFee.Equal(newAmount))
}

func TestApplyFromMonthIgnoresEarlierPeriods(t *testing.T) {
	mocks := testutil.NewMocks()
	pricing := NewPricingService(mocks.Obligations, mocks.Subscribers)
	sub := seedSubscriber(t, mocks)

	oldAmount := decimal.NewFromInt(100)
	for _, p := range []domain.Period{"2026-01", "2026-02"} {
		_, err := mocks.Obligations.GetOrCreate(sub.ID, p, oldAmount)
		require.NoError(t, err)
	}

	result, err := pricing.ApplyFromMonth(sub.ID, "2026-02", decimal.NewFromInt(120))
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Updated)

	jan, err := mocks.Obligations.Get(sub.ID, "2026-01")
	require.NoError(t, err)
	assert.True(t, jan.Amount.Equal(oldAmount))
}

func TestApplyFromMonthRejectsInvalidAmount(t *testing.T) {
	mocks := testutil.NewMocks()
	pricing := NewPricingService(mocks.Obligations, mocks.Subscribers)
	sub := seedSubscriber(t, mocks)

	_, err := pricing.ApplyFromMonth(sub.ID, "2026-01", decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestApplyFromMonthUnknownSubscriber(t *testing.T) {
	mocks := testutil.NewMocks()
	pricing := NewPricingService(mocks.Obligations, mocks.Subscribers)

	_, err := pricing.ApplyFromMonth(42, "2026-01", decimal.NewFromInt(100))
	assert.ErrorIs(t, err, domain.ErrSubscriberNotFound)
}

func TestApplyFromNextCleanMonth(t *testing.T) {
	mocks := testutil.NewMocks()
	reconciliation := NewReconciliationService(mocks.Obligations, mocks.Ledger)
	pricing := NewPricingService(mocks.Obligations, mocks.Subscribers)
	sub := seedSubscriber(t, mocks)

	oldAmount := decimal.NewFromInt(100)
	for _, p := range []domain.Period{"2026-01", "2026-02", "2026-03"} {
		_, err := mocks.Obligations.GetOrCreate(sub.ID, p, oldAmount)
		require.NoError(t, err)
	}
	// January is unpaid but has activity, so the first clean month is
	// February.
	_, err := reconciliation.AddPartialPayment(sub.ID, "2026-01", oldAmount, decimal.NewFromInt(10))
	require.NoError(t, err)

	result, err := pricing.ApplyFromNextCleanMonth(sub.ID, decimal.NewFromInt(200))
	require.NoError(t, err)
	assert.Equal(t, domain.Period("2026-02"), result.FromPeriod)
	assert.Equal(t, int64(2), result.Updated)

	jan, err := mocks.Obligations.Get(sub.ID, "2026-01")
	require.NoError(t, err)
	assert.True(t, jan.Amount.Equal(oldAmount))
}

func TestApplyFromNextCleanMonthNoCandidate(t *testing.T) {
	mocks := testutil.NewMocks()
	reconciliation := NewReconciliationService(mocks.Obligations, mocks.Ledger)
	pricing := NewPricingService(mocks.Obligations, mocks.Subscribers)
	sub := seedSubscriber(t, mocks)

	_, err := reconciliation.MarkFullPayment(sub.ID, "2026-01", decimal.NewFromInt(100))
	require.NoError(t, err)

	_, err = pricing.ApplyFromNextCleanMonth(sub.ID, decimal.NewFromInt(200))
	assert.ErrorIs(t, err, domain.ErrObligationNotFound)
}
