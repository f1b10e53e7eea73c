package export

import (
	"testing"
	"time"

	"github.com/mertdogan/duesly/duesly-backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMonthlyReportXLSX(t *testing.T) {
	stats := &domain.MonthlyStats{
		Period:         "2026-01",
		TotalCount:     2,
		FullCount:      1,
		UnpaidCount:    1,
		TotalPaid:      decimal.NewFromInt(100),
		TotalRemaining: decimal.NewFromInt(100),
		SettledAmount:  decimal.Zero,
	}
	rows := []*domain.ObligationWithTotals{
		{
			Obligation:     domain.Obligation{SubscriberID: 1, Period: "2026-01", Amount: decimal.NewFromInt(100)},
			TotalPaid:      decimal.NewFromInt(100),
			SubscriberName: "Alice",
			BuildingName:   "Cedar Court",
		},
		{
			Obligation:     domain.Obligation{SubscriberID: 2, Period: "2026-01", Amount: decimal.NewFromInt(100)},
			TotalPaid:      decimal.Zero,
			SubscriberName: "Bora",
			BuildingName:   "Cedar Court",
		},
	}

	data, err := BuildMonthlyReportXLSX(stats, rows)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	// XLSX files are zip archives.
	assert.Equal(t, []byte{'P', 'K'}, data[:2])
}

func TestBuildDailyCollectionPDF(t *testing.T) {
	day := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	collection := &domain.DailyCollection{
		DayStart: day,
		DayEnd:   day.Add(24 * time.Hour),
		Period:   "2026-01",
		Buildings: []*domain.DailyBuildingGroup{
			{
				BuildingID:   1,
				BuildingName: "Cedar Court",
				Subscribers: []*domain.DailySubscriberRow{
					{
						SubscriberID:   1,
						SubscriberName: "Alice",
						TodayPaid:      decimal.NewFromInt(50),
						Kind:           domain.EntryKindPayment,
						Status:         domain.StatusPartial,
						Remaining:      decimal.NewFromInt(50),
					},
				},
				TotalCollected: decimal.NewFromInt(50),
			},
		},
		TotalCollected: decimal.NewFromInt(50),
	}

	data, err := BuildDailyCollectionPDF(collection)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Equal(t, []byte("%PDF"), data[:4])
}
