package service

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/mertdogan/duesly/duesly-backend/internal/domain"
	"github.com/mertdogan/duesly/duesly-backend/internal/observability/metrics"
	"github.com/mertdogan/duesly/duesly-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// ReconciliationService implements the payment state machine over the
// obligation store and the transaction ledger. Every operation ends by
// re-deriving the paid flag from the ledger; the flag is a cache, the
// ledger is authoritative.
type ReconciliationService struct {
	obligationRepo domain.ObligationRepository
	ledgerRepo     domain.LedgerRepository
	eventPublisher websocket.EventPublisher
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(obligationRepo domain.ObligationRepository, ledgerRepo domain.LedgerRepository) *ReconciliationService {
	return &ReconciliationService{
		obligationRepo: obligationRepo,
		ledgerRepo:     ledgerRepo,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ReconciliationService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ReconciliationService) publishEvent(event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(event)
	}
}

// PaymentResult reports the outcome of a reconciliation operation.
type PaymentResult struct {
	Obligation *domain.Obligation `json:"obligation"`
	TotalPaid  decimal.Decimal    `json:"totalPaid"`
	Status     domain.Status      `json:"status"`
}

func (s *ReconciliationService) result(obligation *domain.Obligation) (*PaymentResult, error) {
	total, err := s.ledgerRepo.SumFor(obligation.ID)
	if err != nil {
		return nil, err
	}
	hasRefund, err := s.ledgerRepo.HasNegativeEntry(obligation.ID)
	if err != nil {
		return nil, err
	}
	return &PaymentResult{
		Obligation: obligation,
		TotalPaid:  total,
		Status:     domain.ResolveStatus(total, obligation.Amount, hasRefund),
	}, nil
}

// MarkFullPayment records payment of the whole obligation. Only the
// remaining balance is appended, so repeating the call neither double
// counts nor writes zero-amount entries.
func (s *ReconciliationService) MarkFullPayment(subscriberID int64, period domain.Period, amount decimal.Decimal) (result *PaymentResult, err error) {
	defer func(start time.Time) { metrics.ObservePayment(metrics.OpFullPayment, start, err) }(time.Now())

	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	obligation, err := s.obligationRepo.GetOrCreate(subscriberID, period, amount)
	if err != nil {
		return nil, err
	}

	total, err := s.ledgerRepo.SumFor(obligation.ID)
	if err != nil {
		return nil, err
	}

	remaining := amount.Sub(total)
	if remaining.IsPositive() {
		now := time.Now().UTC()
		if _, err = s.ledgerRepo.Append(obligation.ID, remaining, domain.NoteFullPayment, now); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	if err = s.obligationRepo.SetPaidFlag(subscriberID, period, true, &now); err != nil {
		return nil, err
	}
	obligation.IsPaid = true
	obligation.PaidDate = &now

	result, err = s.result(obligation)
	if err != nil {
		return nil, err
	}
	s.publishEvent(websocket.PaymentRecorded(result))
	return result, nil
}

// AddPartialPayment records a payment smaller than the obligation. If
// the running total reaches the obligation amount the period flips to
// fully paid.
func (s *ReconciliationService) AddPartialPayment(subscriberID int64, period domain.Period, obligationAmount, partialAmount decimal.Decimal) (result *PaymentResult, err error) {
	defer func(start time.Time) { metrics.ObservePayment(metrics.OpPartialPayment, start, err) }(time.Now())

	if obligationAmount.LessThanOrEqual(decimal.Zero) || partialAmount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	obligation, err := s.obligationRepo.GetOrCreate(subscriberID, period, obligationAmount)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if _, err = s.ledgerRepo.Append(obligation.ID, partialAmount, domain.NotePartialPayment, now); err != nil {
		return nil, err
	}

	total, err := s.ledgerRepo.SumFor(obligation.ID)
	if err != nil {
		return nil, err
	}

	if total.GreaterThanOrEqual(obligationAmount) {
		if err = s.obligationRepo.SetPaidFlag(subscriberID, period, true, &now); err != nil {
			return nil, err
		}
		obligation.IsPaid = true
		obligation.PaidDate = &now
	} else {
		if !obligation.Amount.Equal(obligationAmount) {
			if err = s.obligationRepo.UpdateAmount(subscriberID, period, obligationAmount); err != nil {
				return nil, err
			}
			obligation.Amount = obligationAmount
		}
		if err = s.obligationRepo.SetPaidFlag(subscriberID, period, false, nil); err != nil {
			return nil, err
		}
		obligation.IsPaid = false
		obligation.PaidDate = nil
	}

	result, err = s.result(obligation)
	if err != nil {
		return nil, err
	}
	s.publishEvent(websocket.PaymentRecorded(result))
	return result, nil
}

// AddReverseTransaction records a refund as a negative ledger entry
// tagged with the caller's reason. History is kept; contrast with
// MarkAsUnpaid which erases it.
func (s *ReconciliationService) AddReverseTransaction(subscriberID int64, period domain.Period, obligationAmount, refundAmount decimal.Decimal, reason string) (result *PaymentResult, err error) {
	defer func(start time.Time) { metrics.ObservePayment(metrics.OpReverse, start, err) }(time.Now())

	if obligationAmount.LessThanOrEqual(decimal.Zero) || refundAmount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	reason = strings.TrimSpace(reason)
	if len(reason) > domain.MaxNotesLength {
		return nil, domain.ErrNotesTooLong
	}

	obligation, err := s.obligationRepo.GetOrCreate(subscriberID, period, obligationAmount)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if _, err = s.ledgerRepo.Append(obligation.ID, refundAmount.Neg(), reason, now); err != nil {
		return nil, err
	}

	total, err := s.ledgerRepo.SumFor(obligation.ID)
	if err != nil {
		return nil, err
	}

	if total.GreaterThanOrEqual(obligation.Amount) {
		if err = s.obligationRepo.SetPaidFlag(subscriberID, period, true, &now); err != nil {
			return nil, err
		}
		obligation.IsPaid = true
		obligation.PaidDate = &now
	} else {
		if err = s.obligationRepo.SetPaidFlag(subscriberID, period, false, nil); err != nil {
			return nil, err
		}
		obligation.IsPaid = false
		obligation.PaidDate = nil
	}

	result, err = s.result(obligation)
	if err != nil {
		return nil, err
	}
	s.publishEvent(websocket.PaymentReversed(result))
	return result, nil
}

// MarkAsUnpaid deletes every ledger entry of the obligation and resets
// the paid flag. This is destructive: it erases history instead of
// recording a correction.
func (s *ReconciliationService) MarkAsUnpaid(subscriberID int64, period domain.Period) (err error) {
	defer func(start time.Time) { metrics.ObservePayment(metrics.OpUnmark, start, err) }(time.Now())

	obligation, err := s.obligationRepo.Get(subscriberID, period)
	if err != nil {
		return err
	}

	if err = s.ledgerRepo.DeleteAllFor(obligation.ID); err != nil {
		return err
	}
	if err = s.obligationRepo.SetPaidFlag(subscriberID, period, false, nil); err != nil {
		return err
	}

	s.publishEvent(websocket.ObligationUnmarked(obligation))
	return nil
}

// DeleteTransaction removes one ledger entry and re-derives the owning
// obligation's paid flag from the remaining entries. An unknown entry
// id is a no-op: the caller's intent is already satisfied.
func (s *ReconciliationService) DeleteTransaction(entryID int64) (err error) {
	defer func(start time.Time) { metrics.ObservePayment(metrics.OpDeleteEntry, start, err) }(time.Now())

	entry, err := s.ledgerRepo.GetByID(entryID)
	if err != nil {
		if errors.Is(err, domain.ErrEntryNotFound) {
			return nil
		}
		return err
	}

	obligation, err := s.obligationRepo.GetByID(entry.ObligationID)
	if err != nil {
		if errors.Is(err, domain.ErrObligationNotFound) {
			return nil
		}
		return err
	}

	if err = s.ledgerRepo.DeleteByID(entryID); err != nil {
		return err
	}

	total, err := s.ledgerRepo.SumFor(obligation.ID)
	if err != nil {
		return err
	}

	if total.GreaterThanOrEqual(obligation.Amount) {
		// Keep whatever paid date the obligation already carries; the
		// deletion is not a payment, so it never mints one.
		err = s.obligationRepo.SetPaidFlag(obligation.SubscriberID, obligation.Period, true, obligation.PaidDate)
	} else {
		err = s.obligationRepo.SetPaidFlag(obligation.SubscriberID, obligation.Period, false, nil)
	}
	if err != nil {
		return err
	}

	s.publishEvent(websocket.PaymentDeleted(map[string]any{
		"entryId":      entryID,
		"obligationId": obligation.ID,
		"subscriberId": obligation.SubscriberID,
		"period":       obligation.Period,
	}))
	return nil
}

// CreatePaymentsForSubscriber creates obligations for every candidate
// period in [startPeriod, endPeriod) — or period >= startPeriod when
// endPeriod is nil. The earliest created period uses firstPeriodAmount
// when provided, so a pro-rated first month can differ from the
// steady-state monthly price. Each result carries the obligation's
// current ledger-derived state, read in one batch, so re-enrolling over
// periods that already hold payments reports them as paid.
func (s *ReconciliationService) CreatePaymentsForSubscriber(subscriberID int64, startPeriod domain.Period, endPeriod *domain.Period, amount decimal.Decimal, allPeriods []domain.Period, firstPeriodAmount *decimal.Decimal) (results []*PaymentResult, err error) {
	defer func(start time.Time) { metrics.ObservePayment(metrics.OpEnroll, start, err) }(time.Now())

	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if firstPeriodAmount != nil && firstPeriodAmount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	var candidates []domain.Period
	for _, p := range allPeriods {
		if p.Before(startPeriod) {
			continue
		}
		if endPeriod != nil && !p.Before(*endPeriod) {
			continue
		}
		candidates = append(candidates, p)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Before(candidates[j]) })

	var obligations []*domain.Obligation
	for i, p := range candidates {
		periodAmount := amount
		if i == 0 && firstPeriodAmount != nil {
			periodAmount = *firstPeriodAmount
		}
		obligation, createErr := s.obligationRepo.GetOrCreate(subscriberID, p, periodAmount)
		if createErr != nil {
			err = createErr
			return nil, err
		}
		obligations = append(obligations, obligation)
	}
	if len(obligations) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(obligations))
	for i, o := range obligations {
		ids[i] = o.ID
	}
	sums, err := s.ledgerRepo.SumForMany(ids)
	if err != nil {
		return nil, err
	}
	refunds, err := s.ledgerRepo.NegativeEntrySet(ids)
	if err != nil {
		return nil, err
	}

	results = make([]*PaymentResult, len(obligations))
	for i, o := range obligations {
		total := decimal.Zero
		if sum, ok := sums[o.ID]; ok {
			total = sum
		}
		results[i] = &PaymentResult{
			Obligation: o,
			TotalPaid:  total,
			Status:     domain.ResolveStatus(total, o.Amount, refunds[o.ID]),
		}
	}

	s.publishEvent(websocket.ObligationsCreated(results))
	return results, nil
}

// ListEntries returns the ledger history for one obligation, oldest
// first.
func (s *ReconciliationService) ListEntries(subscriberID int64, period domain.Period) ([]*domain.LedgerEntry, error) {
	obligation, err := s.obligationRepo.Get(subscriberID, period)
	if err != nil {
		return nil, err
	}
	return s.ledgerRepo.ListFor(obligation.ID)
}
