package testutil

import (
	"sort"
	"time"

	"github.com/mertdogan/duesly/duesly-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Mocks bundles the in-memory repositories. The obligation and ledger
// mocks share state so cross-store queries (future-amount freezing,
// snapshot totals, daily activity) behave like the real store.
type Mocks struct {
	Buildings   *MockBuildingRepository
	Subscribers *MockSubscriberRepository
	Obligations *MockObligationRepository
	Ledger      *MockLedgerRepository
}

// NewMocks creates a wired set of mock repositories.
func NewMocks() *Mocks {
	buildings := &MockBuildingRepository{Buildings: make(map[int64]*domain.Building)}
	subscribers := &MockSubscriberRepository{Subscribers: make(map[int64]*domain.Subscriber)}
	ledger := &MockLedgerRepository{Entries: make(map[int64]*domain.LedgerEntry)}
	obligations := &MockObligationRepository{Obligations: make(map[int64]*domain.Obligation)}

	obligations.ledger = ledger
	obligations.subscribers = subscribers
	obligations.buildings = buildings
	ledger.obligations = obligations
	ledger.subscribers = subscribers
	ledger.buildings = buildings

	return &Mocks{
		Buildings:   buildings,
		Subscribers: subscribers,
		Obligations: obligations,
		Ledger:      ledger,
	}
}

// MockBuildingRepository is an in-memory domain.BuildingRepository.
type MockBuildingRepository struct {
	Buildings map[int64]*domain.Building
	nextID    int64
}

func (m *MockBuildingRepository) Create(b *domain.Building) (*domain.Building, error) {
	m.nextID++
	b.ID = m.nextID
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	m.Buildings[b.ID] = b
	return b, nil
}

func (m *MockBuildingRepository) GetByID(id int64) (*domain.Building, error) {
	if b, ok := m.Buildings[id]; ok {
		return b, nil
	}
	return nil, domain.ErrBuildingNotFound
}

func (m *MockBuildingRepository) GetAll() ([]*domain.Building, error) {
	out := make([]*domain.Building, 0, len(m.Buildings))
	for _, b := range m.Buildings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockBuildingRepository) Update(b *domain.Building) (*domain.Building, error) {
	if _, ok := m.Buildings[b.ID]; !ok {
		return nil, domain.ErrBuildingNotFound
	}
	b.UpdatedAt = time.Now().UTC()
	m.Buildings[b.ID] = b
	return b, nil
}

func (m *MockBuildingRepository) Delete(id int64) error {
	if _, ok := m.Buildings[id]; !ok {
		return domain.ErrBuildingNotFound
	}
	delete(m.Buildings, id)
	return nil
}

// MockSubscriberRepository is an in-memory domain.SubscriberRepository.
type MockSubscriberRepository struct {
	Subscribers map[int64]*domain.Subscriber
	nextID      int64
}

// AddSubscriber seeds a subscriber with a fixed ID.
func (m *MockSubscriberRepository) AddSubscriber(s *domain.Subscriber) {
	if s.ID > m.nextID {
		m.nextID = s.ID
	}
	m.Subscribers[s.ID] = s
}

func (m *MockSubscriberRepository) Create(s *domain.Subscriber) (*domain.Subscriber, error) {
	m.nextID++
	s.ID = m.nextID
	s.CreatedAt = time.Now().UTC()
	s.UpdatedAt = s.CreatedAt
	m.Subscribers[s.ID] = s
	return s, nil
}

func (m *MockSubscriberRepository) GetByID(id int64) (*domain.Subscriber, error) {
	if s, ok := m.Subscribers[id]; ok {
		return s, nil
	}
	return nil, domain.ErrSubscriberNotFound
}

func (m *MockSubscriberRepository) GetAll() ([]*domain.Subscriber, error) {
	out := make([]*domain.Subscriber, 0, len(m.Subscribers))
	for _, s := range m.Subscribers {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockSubscriberRepository) GetByBuilding(buildingID int64) ([]*domain.Subscriber, error) {
	var out []*domain.Subscriber
	for _, s := range m.Subscribers {
		if s.BuildingID == buildingID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockSubscriberRepository) Update(s *domain.Subscriber) (*domain.Subscriber, error) {
	if _, ok := m.Subscribers[s.ID]; !ok {
		return nil, domain.ErrSubscriberNotFound
	}
	s.UpdatedAt = time.Now().UTC()
	m.Subscribers[s.ID] = s
	return s, nil
}

func (m *MockSubscriberRepository) Delete(id int64) error {
	if _, ok := m.Subscribers[id]; !ok {
		return domain.ErrSubscriberNotFound
	}
	delete(m.Subscribers, id)
	return nil
}

// MockObligationRepository is an in-memory domain.ObligationRepository.
type MockObligationRepository struct {
	Obligations map[int64]*domain.Obligation
	nextID      int64

	ledger      *MockLedgerRepository
	subscribers *MockSubscriberRepository
	buildings   *MockBuildingRepository
}

func (m *MockObligationRepository) find(subscriberID int64, period domain.Period) *domain.Obligation {
	for _, o := range m.Obligations {
		if o.SubscriberID == subscriberID && o.Period == period {
			return o
		}
	}
	return nil
}

func (m *MockObligationRepository) GetOrCreate(subscriberID int64, period domain.Period, defaultAmount decimal.Decimal) (*domain.Obligation, error) {
	if o := m.find(subscriberID, period); o != nil {
		return o, nil
	}
	m.nextID++
	now := time.Now().UTC()
	o := &domain.Obligation{
		ID:           m.nextID,
		SubscriberID: subscriberID,
		Period:       period,
		Amount:       defaultAmount,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.Obligations[o.ID] = o
	return o, nil
}

func (m *MockObligationRepository) Get(subscriberID int64, period domain.Period) (*domain.Obligation, error) {
	if o := m.find(subscriberID, period); o != nil {
		return o, nil
	}
	return nil, domain.ErrObligationNotFound
}

func (m *MockObligationRepository) GetByID(id int64) (*domain.Obligation, error) {
	if o, ok := m.Obligations[id]; ok {
		return o, nil
	}
	return nil, domain.ErrObligationNotFound
}

func (m *MockObligationRepository) SetPaidFlag(subscriberID int64, period domain.Period, isPaid bool, paidDate *time.Time) error {
	o := m.find(subscriberID, period)
	if o == nil {
		return domain.ErrObligationNotFound
	}
	o.IsPaid = isPaid
	o.PaidDate = paidDate
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MockObligationRepository) UpdateAmount(subscriberID int64, period domain.Period, amount decimal.Decimal) error {
	o := m.find(subscriberID, period)
	if o == nil {
		return domain.ErrObligationNotFound
	}
	o.Amount = amount
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MockObligationRepository) Delete(id int64) error {
	if _, ok := m.Obligations[id]; !ok {
		return domain.ErrObligationNotFound
	}
	delete(m.Obligations, id)
	return nil
}

func (m *MockObligationRepository) UpdateFutureAmount(subscriberID int64, fromPeriod domain.Period, newAmount decimal.Decimal) (int64, error) {
	var changed int64
	for _, o := range m.Obligations {
		if o.SubscriberID != subscriberID || o.Period.Before(fromPeriod) {
			continue
		}
		if m.ledger.countFor(o.ID) > 0 {
			continue
		}
		o.Amount = newAmount
		o.UpdatedAt = time.Now().UTC()
		changed++
	}
	return changed, nil
}

func (m *MockObligationRepository) FirstCleanPeriod(subscriberID int64) (domain.Period, error) {
	var anchor domain.Period
	for _, o := range m.Obligations {
		if o.SubscriberID == subscriberID && !o.IsPaid {
			if anchor == "" || o.Period.Before(anchor) {
				anchor = o.Period
			}
		}
	}
	if anchor == "" {
		return "", domain.ErrObligationNotFound
	}
	var clean domain.Period
	for _, o := range m.Obligations {
		if o.SubscriberID != subscriberID || o.Period.Before(anchor) {
			continue
		}
		if m.ledger.countFor(o.ID) > 0 {
			continue
		}
		if clean == "" || o.Period.Before(clean) {
			clean = o.Period
		}
	}
	if clean == "" {
		return "", domain.ErrObligationNotFound
	}
	return clean, nil
}

func (m *MockObligationRepository) ListByPeriod(period domain.Period) ([]*domain.Obligation, error) {
	var out []*domain.Obligation
	for _, o := range m.Obligations {
		if o.Period == period {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockObligationRepository) ListBySubscriber(subscriberID int64) ([]*domain.Obligation, error) {
	var out []*domain.Obligation
	for _, o := range m.Obligations {
		if o.SubscriberID == subscriberID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period.Before(out[j].Period) })
	return out, nil
}

func (m *MockObligationRepository) withTotals(o *domain.Obligation) *domain.ObligationWithTotals {
	owt := &domain.ObligationWithTotals{
		Obligation: *o,
		TotalPaid:  m.ledger.sumFor(o.ID),
		HasRefund:  m.ledger.hasNegative(o.ID),
	}
	if s, ok := m.subscribers.Subscribers[o.SubscriberID]; ok {
		owt.SubscriberName = s.Name
		owt.BuildingID = s.BuildingID
		if b, ok := m.buildings.Buildings[s.BuildingID]; ok {
			owt.BuildingName = b.Name
		}
	}
	return owt
}

func (m *MockObligationRepository) ListWithTotalsByPeriod(period domain.Period) ([]*domain.ObligationWithTotals, error) {
	obls, _ := m.ListByPeriod(period)
	out := make([]*domain.ObligationWithTotals, len(obls))
	for i, o := range obls {
		out[i] = m.withTotals(o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BuildingName != out[j].BuildingName {
			return out[i].BuildingName < out[j].BuildingName
		}
		return out[i].SubscriberName < out[j].SubscriberName
	})
	return out, nil
}

func (m *MockObligationRepository) ListWithTotalsBySubscriber(subscriberID int64) ([]*domain.ObligationWithTotals, error) {
	obls, _ := m.ListBySubscriber(subscriberID)
	out := make([]*domain.ObligationWithTotals, len(obls))
	for i, o := range obls {
		out[i] = m.withTotals(o)
	}
	return out, nil
}

// MockLedgerRepository is an in-memory domain.LedgerRepository.
type MockLedgerRepository struct {
	Entries map[int64]*domain.LedgerEntry
	nextID  int64

	obligations *MockObligationRepository
	subscribers *MockSubscriberRepository
	buildings   *MockBuildingRepository
}

func (m *MockLedgerRepository) Append(obligationID int64, amount decimal.Decimal, notes string, entryDate time.Time) (*domain.LedgerEntry, error) {
	m.nextID++
	e := &domain.LedgerEntry{
		ID:           m.nextID,
		ObligationID: obligationID,
		Amount:       amount,
		Notes:        notes,
		EntryDate:    entryDate,
		CreatedAt:    time.Now().UTC(),
	}
	m.Entries[e.ID] = e
	return e, nil
}

func (m *MockLedgerRepository) GetByID(id int64) (*domain.LedgerEntry, error) {
	if e, ok := m.Entries[id]; ok {
		return e, nil
	}
	return nil, domain.ErrEntryNotFound
}

func (m *MockLedgerRepository) DeleteByID(id int64) error {
	if _, ok := m.Entries[id]; !ok {
		return domain.ErrEntryNotFound
	}
	delete(m.Entries, id)
	return nil
}

func (m *MockLedgerRepository) sumFor(obligationID int64) decimal.Decimal {
	total := decimal.Zero
	for _, e := range m.Entries {
		if e.ObligationID == obligationID {
			total = total.Add(e.Amount)
		}
	}
	return total
}

func (m *MockLedgerRepository) countFor(obligationID int64) int {
	n := 0
	for _, e := range m.Entries {
		if e.ObligationID == obligationID {
			n++
		}
	}
	return n
}

func (m *MockLedgerRepository) hasNegative(obligationID int64) bool {
	for _, e := range m.Entries {
		if e.ObligationID == obligationID && e.Amount.IsNegative() {
			return true
		}
	}
	return false
}

func (m *MockLedgerRepository) SumFor(obligationID int64) (decimal.Decimal, error) {
	return m.sumFor(obligationID), nil
}

func (m *MockLedgerRepository) SumForMany(obligationIDs []int64) (map[int64]decimal.Decimal, error) {
	out := make(map[int64]decimal.Decimal)
	for _, id := range obligationIDs {
		if m.countFor(id) > 0 {
			out[id] = m.sumFor(id)
		}
	}
	return out, nil
}

func (m *MockLedgerRepository) HasNegativeEntry(obligationID int64) (bool, error) {
	return m.hasNegative(obligationID), nil
}

func (m *MockLedgerRepository) NegativeEntrySet(obligationIDs []int64) (map[int64]bool, error) {
	out := make(map[int64]bool)
	for _, id := range obligationIDs {
		if m.hasNegative(id) {
			out[id] = true
		}
	}
	return out, nil
}

func (m *MockLedgerRepository) ListFor(obligationID int64) ([]*domain.LedgerEntry, error) {
	var out []*domain.LedgerEntry
	for _, e := range m.Entries {
		if e.ObligationID == obligationID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EntryDate.Equal(out[j].EntryDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].EntryDate.Before(out[j].EntryDate)
	})
	return out, nil
}

func (m *MockLedgerRepository) DeleteAllFor(obligationID int64) error {
	for id, e := range m.Entries {
		if e.ObligationID == obligationID {
			delete(m.Entries, id)
		}
	}
	return nil
}

func (m *MockLedgerRepository) DailyActivity(dayStart, dayEnd time.Time) ([]*domain.DailyActivityRow, error) {
	bySubscriber := make(map[int64]*domain.DailyActivityRow)
	for _, e := range m.Entries {
		if e.EntryDate.Before(dayStart) || !e.EntryDate.Before(dayEnd) {
			continue
		}
		o, ok := m.obligations.Obligations[e.ObligationID]
		if !ok {
			continue
		}
		row, ok := bySubscriber[o.SubscriberID]
		if !ok {
			row = &domain.DailyActivityRow{SubscriberID: o.SubscriberID, TotalPaid: decimal.Zero}
			if s, ok := m.subscribers.Subscribers[o.SubscriberID]; ok {
				row.SubscriberName = s.Name
				row.BuildingID = s.BuildingID
				if b, ok := m.buildings.Buildings[s.BuildingID]; ok {
					row.BuildingName = b.Name
				}
			}
			bySubscriber[o.SubscriberID] = row
		}
		row.TotalPaid = row.TotalPaid.Add(e.Amount)
		if e.Amount.IsNegative() {
			row.HasRefund = true
		}
	}

	out := make([]*domain.DailyActivityRow, 0, len(bySubscriber))
	for _, row := range bySubscriber {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BuildingName != out[j].BuildingName {
			return out[i].BuildingName < out[j].BuildingName
		}
		return out[i].SubscriberName < out[j].SubscriberName
	})
	return out, nil
}
