package service

import (
	"github.com/mertdogan/duesly/duesly-backend/internal/domain"
	"github.com/mertdogan/duesly/duesly-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// SubscriberService handles the subscriber directory. Enrollment
// delegates obligation creation to the reconciliation service so the
// first pro-rated month and the steady-state fee follow one code path.
type SubscriberService struct {
	subscriberRepo domain.SubscriberRepository
	buildingRepo   domain.BuildingRepository
	reconciliation *ReconciliationService
	eventPublisher websocket.EventPublisher
}

// NewSubscriberService creates a new SubscriberService
func NewSubscriberService(subscriberRepo domain.SubscriberRepository, buildingRepo domain.BuildingRepository, reconciliation *ReconciliationService) *SubscriberService {
	return &SubscriberService{
		subscriberRepo: subscriberRepo,
		buildingRepo:   buildingRepo,
		reconciliation: reconciliation,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *SubscriberService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *SubscriberService) publishEvent(event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(event)
	}
}

// CreateSubscriberInput holds the input for creating a subscriber
type CreateSubscriberInput struct {
	BuildingID       int64
	Name             string
	Phone            *string
	MonthlyFee       decimal.Decimal
	StartPeriod      domain.Period
	FirstMonthAmount *decimal.Decimal
}

// CreateSubscriber creates a subscriber and enrolls it: obligations are
// bulk-created for every period from the start period through the
// current one.
func (s *SubscriberService) CreateSubscriber(input CreateSubscriberInput) (*domain.Subscriber, error) {
	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}
	if input.MonthlyFee.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if _, err := domain.ParsePeriod(string(input.StartPeriod)); err != nil {
		return nil, err
	}
	if _, err := s.buildingRepo.GetByID(input.BuildingID); err != nil {
		return nil, err
	}

	subscriber, err := s.subscriberRepo.Create(&domain.Subscriber{
		BuildingID:  input.BuildingID,
		Name:        name,
		Phone:       input.Phone,
		MonthlyFee:  input.MonthlyFee,
		StartPeriod: input.StartPeriod,
	})
	if err != nil {
		return nil, err
	}

	periods := domain.PeriodRange(input.StartPeriod, domain.CurrentPeriod())
	if len(periods) > 0 {
		if _, err := s.reconciliation.CreatePaymentsForSubscriber(subscriber.ID, input.StartPeriod, nil, input.MonthlyFee, periods, input.FirstMonthAmount); err != nil {
			return nil, err
		}
	}

	s.publishEvent(websocket.SubscriberCreated(subscriber))
	return subscriber, nil
}

// GetSubscribers retrieves all subscribers
func (s *SubscriberService) GetSubscribers() ([]*domain.Subscriber, error) {
	return s.subscriberRepo.GetAll()
}

// GetSubscribersByBuilding retrieves the subscribers of one building
func (s *SubscriberService) GetSubscribersByBuilding(buildingID int64) ([]*domain.Subscriber, error) {
	if _, err := s.buildingRepo.GetByID(buildingID); err != nil {
		return nil, err
	}
	return s.subscriberRepo.GetByBuilding(buildingID)
}

// GetSubscriberByID retrieves a subscriber by ID
func (s *SubscriberService) GetSubscriberByID(id int64) (*domain.Subscriber, error) {
	return s.subscriberRepo.GetByID(id)
}

// UpdateSubscriberInput holds the input for updating a subscriber
type UpdateSubscriberInput struct {
	BuildingID int64
	Name       string
	Phone      *string
}

// UpdateSubscriber updates a subscriber's directory details. The
// monthly fee is changed through the pricing service, not here, so
// frozen periods stay untouched.
func (s *SubscriberService) UpdateSubscriber(id int64, input UpdateSubscriberInput) (*domain.Subscriber, error) {
	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}
	if _, err := s.buildingRepo.GetByID(input.BuildingID); err != nil {
		return nil, err
	}

	subscriber, err := s.subscriberRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	subscriber.BuildingID = input.BuildingID
	subscriber.Name = name
	subscriber.Phone = input.Phone

	updated, err := s.subscriberRepo.Update(subscriber)
	if err != nil {
		return nil, err
	}
	s.publishEvent(websocket.SubscriberUpdated(updated))
	return updated, nil
}

// DeleteSubscriber removes the subscriber and, through the store's
// cascade, its obligations and ledger entries.
func (s *SubscriberService) DeleteSubscriber(id int64) error {
	if err := s.subscriberRepo.Delete(id); err != nil {
		return err
	}
	s.publishEvent(websocket.SubscriberDeleted(map[string]any{"id": id}))
	return nil
}
