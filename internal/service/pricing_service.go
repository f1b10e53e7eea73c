package service

import (
	"time"

	"github.com/mertdogan/duesly/duesly-backend/internal/domain"
	"github.com/mertdogan/duesly/duesly-backend/internal/observability/metrics"
	"github.com/mertdogan/duesly/duesly-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// PricingService propagates a new monthly amount to a subscriber's
// future, transaction-free periods. Periods with any recorded ledger
// entry are frozen and skipped silently.
type PricingService struct {
	obligationRepo domain.ObligationRepository
	subscriberRepo domain.SubscriberRepository
	eventPublisher websocket.EventPublisher
}

// NewPricingService creates a new PricingService
func NewPricingService(obligationRepo domain.ObligationRepository, subscriberRepo domain.SubscriberRepository) *PricingService {
	return &PricingService{
		obligationRepo: obligationRepo,
		subscriberRepo: subscriberRepo,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *PricingService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *PricingService) publishEvent(event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(event)
	}
}

// PriceChangeResult reports a propagated price change.
type PriceChangeResult struct {
	SubscriberID int64           `json:"subscriberId"`
	FromPeriod   domain.Period   `json:"fromPeriod"`
	NewAmount    decimal.Decimal `json:"newAmount"`
	Updated      int64           `json:"updated"`
}

// ApplyFromMonth sets the new amount on every clean obligation of the
// subscriber with period >= fromPeriod, updates the subscriber's
// default fee and reports how many periods changed.
func (s *PricingService) ApplyFromMonth(subscriberID int64, fromPeriod domain.Period, newAmount decimal.Decimal) (result *PriceChangeResult, err error) {
	defer func(start time.Time) { metrics.ObservePayment(metrics.OpPriceChange, start, err) }(time.Now())

	if newAmount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	subscriber, err := s.subscriberRepo.GetByID(subscriberID)
	if err != nil {
		return nil, err
	}

	updated, err := s.obligationRepo.UpdateFutureAmount(subscriberID, fromPeriod, newAmount)
	if err != nil {
		return nil, err
	}

	subscriber.MonthlyFee = newAmount
	if _, err = s.subscriberRepo.Update(subscriber); err != nil {
		return nil, err
	}

	result = &PriceChangeResult{
		SubscriberID: subscriberID,
		FromPeriod:   fromPeriod,
		NewAmount:    newAmount,
		Updated:      updated,
	}
	s.publishEvent(websocket.PriceApplied(result))
	return result, nil
}

// ApplyFromNextCleanMonth finds the first entry-free period at or after
// the subscriber's earliest unpaid period and applies the new amount
// from there. Returns ErrObligationNotFound when no such period exists.
func (s *PricingService) ApplyFromNextCleanMonth(subscriberID int64, newAmount decimal.Decimal) (*PriceChangeResult, error) {
	if newAmount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	fromPeriod, err := s.obligationRepo.FirstCleanPeriod(subscriberID)
	if err != nil {
		return nil, err
	}
	return s.ApplyFromMonth(subscriberID, fromPeriod, newAmount)
}
