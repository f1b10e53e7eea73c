package testutil

import (
	"testing"
	"time"

	"github.com/mertdogan/duesly/duesly-backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The batched ledger queries must agree with their singular forms for
// every id: same sums, refund membership matching HasNegativeEntry, and
// ids with no entries absent from the maps rather than present as zero.
func TestBatchedLedgerQueriesMatchSingular(t *testing.T) {
	mocks := NewMocks()
	now := time.Now().UTC()

	paid, err := mocks.Obligations.GetOrCreate(1, "2026-01", decimal.NewFromInt(100))
	require.NoError(t, err)
	refunded, err := mocks.Obligations.GetOrCreate(1, "2026-02", decimal.NewFromInt(100))
	require.NoError(t, err)
	untouched, err := mocks.Obligations.GetOrCreate(1, "2026-03", decimal.NewFromInt(100))
	require.NoError(t, err)

	_, err = mocks.Ledger.Append(paid.ID, decimal.NewFromInt(60), domain.NotePartialPayment, now)
	require.NoError(t, err)
	_, err = mocks.Ledger.Append(paid.ID, decimal.NewFromInt(40), domain.NotePartialPayment, now)
	require.NoError(t, err)
	_, err = mocks.Ledger.Append(refunded.ID, decimal.NewFromInt(80), domain.NotePartialPayment, now)
	require.NoError(t, err)
	_, err = mocks.Ledger.Append(refunded.ID, decimal.NewFromInt(-20), "correction", now)
	require.NoError(t, err)

	unknownID := untouched.ID + 1000
	ids := []int64{paid.ID, refunded.ID, untouched.ID, unknownID}

	sums, err := mocks.Ledger.SumForMany(ids)
	require.NoError(t, err)
	refunds, err := mocks.Ledger.NegativeEntrySet(ids)
	require.NoError(t, err)

	for _, id := range ids {
		single, err := mocks.Ledger.SumFor(id)
		require.NoError(t, err)
		hasRefund, err := mocks.Ledger.HasNegativeEntry(id)
		require.NoError(t, err)

		batched, present := sums[id]
		if present {
			assert.True(t, batched.Equal(single), "sum mismatch for obligation %d: %s vs %s", id, batched, single)
		} else {
			// Absent from the map means no entries; the singular form
			// reports the same thing as zero.
			assert.True(t, single.IsZero(), "obligation %d absent from batch but singular sum is %s", id, single)
		}
		assert.Equal(t, hasRefund, refunds[id], "refund flag mismatch for obligation %d", id)
	}

	assert.True(t, sums[paid.ID].Equal(decimal.NewFromInt(100)))
	assert.True(t, sums[refunded.ID].Equal(decimal.NewFromInt(60)))
	assert.NotContains(t, sums, untouched.ID)
	assert.NotContains(t, sums, unknownID)
	assert.True(t, refunds[refunded.ID])
	assert.False(t, refunds[paid.ID])
}
