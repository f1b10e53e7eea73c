package service

import (
	"sort"
	"time"

	"github.com/mertdogan/duesly/duesly-backend/internal/domain"
	"github.com/mertdogan/duesly/duesly-backend/internal/observability/metrics"
	"github.com/shopspring/decimal"
)

// StatsService derives the read-side projections. Every view is
// recomputed from the stores on each call; nothing here maintains a
// counter that could drift from the ledger.
type StatsService struct {
	obligationRepo domain.ObligationRepository
	ledgerRepo     domain.LedgerRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(obligationRepo domain.ObligationRepository, ledgerRepo domain.LedgerRepository) *StatsService {
	return &StatsService{
		obligationRepo: obligationRepo,
		ledgerRepo:     ledgerRepo,
	}
}

// MonthlyStats classifies every obligation of the period and sums the
// collected and outstanding amounts. Settled remainders are excluded
// from TotalRemaining: a forgiven balance is not outstanding.
func (s *StatsService) MonthlyStats(period domain.Period) (*domain.MonthlyStats, error) {
	defer func(start time.Time) { metrics.ObserveView("monthly_stats", start) }(time.Now())

	rows, err := s.obligationRepo.ListWithTotalsByPeriod(period)
	if err != nil {
		return nil, err
	}

	stats := &domain.MonthlyStats{
		Period:         period,
		TotalCount:     len(rows),
		TotalPaid:      decimal.Zero,
		TotalRemaining: decimal.Zero,
		SettledAmount:  decimal.Zero,
	}

	for _, row := range rows {
		stats.TotalPaid = stats.TotalPaid.Add(row.TotalPaid)

		switch row.Status() {
		case domain.StatusFull:
			stats.FullCount++
		case domain.StatusPartial:
			stats.PartialCount++
			stats.TotalRemaining = stats.TotalRemaining.Add(row.Remaining())
		case domain.StatusSettled:
			stats.SettledCount++
			stats.SettledAmount = stats.SettledAmount.Add(row.Remaining())
		case domain.StatusUnpaid:
			stats.UnpaidCount++
			stats.TotalRemaining = stats.TotalRemaining.Add(row.Remaining())
		}
	}

	return stats, nil
}

// PeriodSnapshot returns the period's obligations with totals, for the
// report exports.
func (s *StatsService) PeriodSnapshot(period domain.Period) ([]*domain.ObligationWithTotals, error) {
	return s.obligationRepo.ListWithTotalsByPeriod(period)
}

// ClientMonths returns the subscriber's month-by-month view, sorted by
// period ascending.
func (s *StatsService) ClientMonths(subscriberID int64) ([]*domain.ClientMonthRow, error) {
	defer func(start time.Time) { metrics.ObserveView("client_months", start) }(time.Now())

	rows, err := s.obligationRepo.ListWithTotalsBySubscriber(subscriberID)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.ClientMonthRow, len(rows))
	for i, row := range rows {
		out[i] = &domain.ClientMonthRow{
			Period:           row.Period,
			ObligationAmount: row.Amount,
			TotalPaid:        row.TotalPaid,
			Remaining:        row.Remaining(),
			Status:           row.Status(),
			PaidDate:         row.PaidDate,
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period.Before(out[j].Period) })
	return out, nil
}

// TopUnpaid ranks the period's not-fully-paid obligations by remaining
// amount descending, capped at limit.
func (s *StatsService) TopUnpaid(period domain.Period, limit int) ([]*domain.UnpaidRank, error) {
	defer func(start time.Time) { metrics.ObserveView("top_unpaid", start) }(time.Now())

	rows, err := s.obligationRepo.ListWithTotalsByPeriod(period)
	if err != nil {
		return nil, err
	}

	var ranks []*domain.UnpaidRank
	for _, row := range rows {
		status := row.Status()
		if status == domain.StatusFull {
			continue
		}
		ranks = append(ranks, &domain.UnpaidRank{
			SubscriberID:   row.SubscriberID,
			SubscriberName: row.SubscriberName,
			BuildingName:   row.BuildingName,
			Period:         row.Period,
			Amount:         row.Amount,
			TotalPaid:      row.TotalPaid,
			Remaining:      row.Remaining(),
			Status:         status,
		})
	}

	sort.Slice(ranks, func(i, j int) bool {
		if !ranks[i].Remaining.Equal(ranks[j].Remaining) {
			return ranks[i].Remaining.GreaterThan(ranks[j].Remaining)
		}
		return ranks[i].SubscriberName < ranks[j].SubscriberName
	})

	if limit > 0 && len(ranks) > limit {
		ranks = ranks[:limit]
	}
	return ranks, nil
}

// DailyCollection groups the day's ledger activity by building and
// subscriber, then overlays the period's subscribers with no same-day
// activity who are not fully paid, so the view shows who is still
// outstanding even on days they paid nothing.
func (s *StatsService) DailyCollection(dayStart, dayEnd time.Time, period domain.Period) (*domain.DailyCollection, error) {
	defer func(start time.Time) { metrics.ObserveView("daily_collection", start) }(time.Now())

	activity, err := s.ledgerRepo.DailyActivity(dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	obligations, err := s.obligationRepo.ListWithTotalsByPeriod(period)
	if err != nil {
		return nil, err
	}

	periodBySubscriber := make(map[int64]*domain.ObligationWithTotals, len(obligations))
	for _, o := range obligations {
		periodBySubscriber[o.SubscriberID] = o
	}

	type buildingKey struct {
		id   int64
		name string
	}
	groups := make(map[buildingKey]*domain.DailyBuildingGroup)
	group := func(id int64, name string) *domain.DailyBuildingGroup {
		key := buildingKey{id: id, name: name}
		g, ok := groups[key]
		if !ok {
			g = &domain.DailyBuildingGroup{
				BuildingID:     id,
				BuildingName:   name,
				TotalCollected: decimal.Zero,
			}
			groups[key] = g
		}
		return g
	}

	seen := make(map[int64]bool, len(activity))
	for _, row := range activity {
		seen[row.SubscriberID] = true

		kind := domain.EntryKindPayment
		if row.HasRefund {
			kind = domain.EntryKindRefund
		}

		sub := &domain.DailySubscriberRow{
			SubscriberID:   row.SubscriberID,
			SubscriberName: row.SubscriberName,
			TodayPaid:      row.TotalPaid,
			Kind:           kind,
			Status:         domain.StatusUnpaid,
			Remaining:      decimal.Zero,
		}
		if o, ok := periodBySubscriber[row.SubscriberID]; ok {
			sub.Status = o.Status()
			sub.Remaining = o.Remaining()
		}

		g := group(row.BuildingID, row.BuildingName)
		g.Subscribers = append(g.Subscribers, sub)
		g.TotalCollected = g.TotalCollected.Add(row.TotalPaid)
	}

	// Overlay: outstanding subscribers with no activity today. Fully
	// paid subscribers are excluded.
	for _, o := range obligations {
		if seen[o.SubscriberID] || o.Status() == domain.StatusFull {
			continue
		}
		g := group(o.BuildingID, o.BuildingName)
		g.Subscribers = append(g.Subscribers, &domain.DailySubscriberRow{
			SubscriberID:   o.SubscriberID,
			SubscriberName: o.SubscriberName,
			TodayPaid:      decimal.Zero,
			Kind:           domain.EntryKindNone,
			Status:         o.Status(),
			Remaining:      o.Remaining(),
		})
	}

	collection := &domain.DailyCollection{
		DayStart:       dayStart,
		DayEnd:         dayEnd,
		Period:         period,
		TotalCollected: decimal.Zero,
	}
	for _, g := range groups {
		sort.Slice(g.Subscribers, func(i, j int) bool {
			return g.Subscribers[i].SubscriberName < g.Subscribers[j].SubscriberName
		})
		collection.Buildings = append(collection.Buildings, g)
		collection.TotalCollected = collection.TotalCollected.Add(g.TotalCollected)
	}
	sort.Slice(collection.Buildings, func(i, j int) bool {
		return collection.Buildings[i].BuildingName < collection.Buildings[j].BuildingName
	})

	return collection, nil
}

// DailyCollectionForDate is DailyCollection over the UTC calendar day
// containing date.
func (s *StatsService) DailyCollectionForDate(date time.Time, period domain.Period) (*domain.DailyCollection, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return s.DailyCollection(dayStart, dayStart.Add(24*time.Hour), period)
}
