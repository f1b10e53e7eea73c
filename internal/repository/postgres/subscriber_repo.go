package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mertdogan/duesly/duesly-backend/internal/domain"
)

// SubscriberRepository implements domain.SubscriberRepository using PostgreSQL
type SubscriberRepository struct {
	pool *pgxpool.Pool
}

// NewSubscriberRepository creates a new SubscriberRepository
func NewSubscriberRepository(pool *pgxpool.Pool) *SubscriberRepository {
	return &SubscriberRepository{pool: pool}
}

const subscriberColumns = `id, building_id, name, phone, monthly_fee, start_period, created_at, updated_at`

func scanSubscriber(row pgx.Row) (*domain.Subscriber, error) {
	var s domain.Subscriber
	var phone pgtype.Text
	var fee pgtype.Numeric
	if err := row.Scan(&s.ID, &s.BuildingID, &s.Name, &phone, &fee, &s.StartPeriod, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Phone = pgTextToStringPtr(phone)
	s.MonthlyFee = pgNumericToDecimal(fee)
	return &s, nil
}

// Create creates a new subscriber
func (r *SubscriberRepository) Create(subscriber *domain.Subscriber) (*domain.Subscriber, error) {
	ctx := context.Background()

	feeNum, err := decimalToPgNumeric(subscriber.MonthlyFee)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO subscribers (building_id, name, phone, monthly_fee, start_period)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+subscriberColumns,
		subscriber.BuildingID, subscriber.Name, textPtrToPgText(subscriber.Phone),
		feeNum, string(subscriber.StartPeriod))
	return scanSubscriber(row)
}

// GetByID retrieves a subscriber by ID
func (r *SubscriberRepository) GetByID(id int64) (*domain.Subscriber, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		SELECT `+subscriberColumns+`
		FROM subscribers
		WHERE id = $1`, id)
	s, err := scanSubscriber(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrSubscriberNotFound
		}
		return nil, err
	}
	return s, nil
}

// GetAll retrieves all subscribers ordered by name
func (r *SubscriberRepository) GetAll() ([]*domain.Subscriber, error) {
	return r.list(`ORDER BY name`)
}

// GetByBuilding retrieves the subscribers of one building
func (r *SubscriberRepository) GetByBuilding(buildingID int64) ([]*domain.Subscriber, error) {
	return r.list(`WHERE building_id = $1 ORDER BY name`, buildingID)
}

func (r *SubscriberRepository) list(clause string, args ...any) ([]*domain.Subscriber, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `SELECT `+subscriberColumns+` FROM subscribers `+clause, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Subscriber
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// Update updates a subscriber
func (r *SubscriberRepository) Update(subscriber *domain.Subscriber) (*domain.Subscriber, error) {
	ctx := context.Background()

	feeNum, err := decimalToPgNumeric(subscriber.MonthlyFee)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE subscribers
		SET building_id = $2, name = $3, phone = $4, monthly_fee = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING `+subscriberColumns,
		subscriber.ID, subscriber.BuildingID, subscriber.Name,
		textPtrToPgText(subscriber.Phone), feeNum)
	s, err := scanSubscriber(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrSubscriberNotFound
		}
		return nil, err
	}
	return s, nil
}

// Delete removes a subscriber; obligations and ledger entries follow
// via the foreign key cascades.
func (r *SubscriberRepository) Delete(id int64) error {
	ctx := context.Background()

	tag, err := r.pool.Exec(ctx, `DELETE FROM subscribers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubscriberNotFound
	}
	return nil
}
