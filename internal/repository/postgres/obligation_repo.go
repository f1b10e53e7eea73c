package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mertdogan/duesly/duesly-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// ObligationRepository implements domain.ObligationRepository using PostgreSQL
type ObligationRepository struct {
	pool *pgxpool.Pool
}

// NewObligationRepository creates a new ObligationRepository
func NewObligationRepository(pool *pgxpool.Pool) *ObligationRepository {
	return &ObligationRepository{pool: pool}
}

const obligationColumns = `id, subscriber_id, period, amount, is_paid, paid_date, created_at, updated_at`

func scanObligation(row pgx.Row) (*domain.Obligation, error) {
	var o domain.Obligation
	var amount pgtype.Numeric
	var paidDate pgtype.Timestamptz
	if err := row.Scan(&o.ID, &o.SubscriberID, &o.Period, &amount, &o.IsPaid, &paidDate, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Amount = pgNumericToDecimal(amount)
	o.PaidDate = pgTimestampToTimePtr(paidDate)
	return &o, nil
}

// GetOrCreate returns the obligation for (subscriber, period), creating
// it with the default amount when absent. The insert relies on the
// unique (subscriber_id, period) key, so concurrent callers converge on
// one row.
func (r *ObligationRepository) GetOrCreate(subscriberID int64, period domain.Period, defaultAmount decimal.Decimal) (*domain.Obligation, error) {
	ctx := context.Background()

	amountNum, err := decimalToPgNumeric(defaultAmount)
	if err != nil {
		return nil, err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO obligations (subscriber_id, period, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (subscriber_id, period) DO NOTHING`,
		subscriberID, string(period), amountNum)
	if err != nil {
		return nil, err
	}
	return r.Get(subscriberID, period)
}

// Get retrieves an obligation by subscriber and period
func (r *ObligationRepository) Get(subscriberID int64, period domain.Period) (*domain.Obligation, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		SELECT `+obligationColumns+`
		FROM obligations
		WHERE subscriber_id = $1 AND period = $2`,
		subscriberID, string(period))
	o, err := scanObligation(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrObligationNotFound
		}
		return nil, err
	}
	return o, nil
}

// GetByID retrieves an obligation by ID
func (r *ObligationRepository) GetByID(id int64) (*domain.Obligation, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		SELECT `+obligationColumns+`
		FROM obligations
		WHERE id = $1`, id)
	o, err := scanObligation(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrObligationNotFound
		}
		return nil, err
	}
	return o, nil
}

// SetPaidFlag updates the cached paid flag and paid date
func (r *ObligationRepository) SetPaidFlag(subscriberID int64, period domain.Period, isPaid bool, paidDate *time.Time) error {
	ctx := context.Background()

	tag, err := r.pool.Exec(ctx, `
		UPDATE obligations
		SET is_paid = $3, paid_date = $4, updated_at = NOW()
		WHERE subscriber_id = $1 AND period = $2`,
		subscriberID, string(period), isPaid, timePtrToPgTimestamp(paidDate))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrObligationNotFound
	}
	return nil
}

// UpdateAmount updates the obligation amount
func (r *ObligationRepository) UpdateAmount(subscriberID int64, period domain.Period, amount decimal.Decimal) error {
	ctx := context.Background()

	amountNum, err := decimalToPgNumeric(amount)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE obligations
		SET amount = $3, updated_at = NOW()
		WHERE subscriber_id = $1 AND period = $2`,
		subscriberID, string(period), amountNum)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrObligationNotFound
	}
	return nil
}

// Delete removes an obligation; its ledger entries go with it via the
// foreign key cascade.
func (r *ObligationRepository) Delete(id int64) error {
	ctx := context.Background()

	tag, err := r.pool.Exec(ctx, `DELETE FROM obligations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrObligationNotFound
	}
	return nil
}

// UpdateFutureAmount bulk-updates the subscriber's entry-free periods
// from fromPeriod on. Periods with any ledger entry are frozen and left
// untouched.
func (r *ObligationRepository) UpdateFutureAmount(subscriberID int64, fromPeriod domain.Period, newAmount decimal.Decimal) (int64, error) {
	ctx := context.Background()

	amountNum, err := decimalToPgNumeric(newAmount)
	if err != nil {
		return 0, err
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE obligations o
		SET amount = $3, updated_at = NOW()
		WHERE o.subscriber_id = $1
		  AND o.period >= $2
		  AND NOT EXISTS (
			SELECT 1 FROM ledger_entries e WHERE e.obligation_id = o.id
		  )`,
		subscriberID, string(fromPeriod), amountNum)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// FirstCleanPeriod finds the earliest entry-free period at or after the
// subscriber's earliest unpaid period.
func (r *ObligationRepository) FirstCleanPeriod(subscriberID int64) (domain.Period, error) {
	ctx := context.Background()

	var period string
	err := r.pool.QueryRow(ctx, `
		WITH anchor AS (
			SELECT MIN(period) AS period
			FROM obligations
			WHERE subscriber_id = $1 AND is_paid = FALSE
		)
		SELECT o.period
		FROM obligations o, anchor a
		WHERE o.subscriber_id = $1
		  AND a.period IS NOT NULL
		  AND o.period >= a.period
		  AND NOT EXISTS (
			SELECT 1 FROM ledger_entries e WHERE e.obligation_id = o.id
		  )
		ORDER BY o.period
		LIMIT 1`, subscriberID).Scan(&period)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", domain.ErrObligationNotFound
		}
		return "", err
	}
	return domain.Period(period), nil
}

// ListByPeriod retrieves all obligations for a period
func (r *ObligationRepository) ListByPeriod(period domain.Period) ([]*domain.Obligation, error) {
	return r.list(`WHERE period = $1 ORDER BY id`, string(period))
}

// ListBySubscriber retrieves all obligations of a subscriber, oldest
// period first.
func (r *ObligationRepository) ListBySubscriber(subscriberID int64) ([]*domain.Obligation, error) {
	return r.list(`WHERE subscriber_id = $1 ORDER BY period`, subscriberID)
}

func (r *ObligationRepository) list(clause string, arg any) ([]*domain.Obligation, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `SELECT `+obligationColumns+` FROM obligations `+clause, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Obligation
	for rows.Next() {
		o, err := scanObligation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

const obligationTotalsQuery = `
	SELECT o.id, o.subscriber_id, o.period, o.amount, o.is_paid, o.paid_date,
	       o.created_at, o.updated_at,
	       COALESCE(SUM(e.amount), 0) AS total_paid,
	       COALESCE(BOOL_OR(e.amount < 0), FALSE) AS has_refund,
	       s.name AS subscriber_name,
	       b.id AS building_id,
	       b.name AS building_name
	FROM obligations o
	JOIN subscribers s ON s.id = o.subscriber_id
	JOIN buildings b ON b.id = s.building_id
	LEFT JOIN ledger_entries e ON e.obligation_id = o.id`

func (r *ObligationRepository) listWithTotals(clause string, arg any) ([]*domain.ObligationWithTotals, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, obligationTotalsQuery+` `+clause, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.ObligationWithTotals
	for rows.Next() {
		var owt domain.ObligationWithTotals
		var amount, totalPaid pgtype.Numeric
		var paidDate pgtype.Timestamptz
		err := rows.Scan(
			&owt.ID, &owt.SubscriberID, &owt.Period, &amount, &owt.IsPaid, &paidDate,
			&owt.CreatedAt, &owt.UpdatedAt,
			&totalPaid, &owt.HasRefund,
			&owt.SubscriberName, &owt.BuildingID, &owt.BuildingName,
		)
		if err != nil {
			return nil, err
		}
		owt.Amount = pgNumericToDecimal(amount)
		owt.PaidDate = pgTimestampToTimePtr(paidDate)
		owt.TotalPaid = pgNumericToDecimal(totalPaid)
		result = append(result, &owt)
	}
	return result, rows.Err()
}

// ListWithTotalsByPeriod returns the period's obligations together with
// their ledger sums in one statement, so status derivation never mixes
// reads from different moments.
func (r *ObligationRepository) ListWithTotalsByPeriod(period domain.Period) ([]*domain.ObligationWithTotals, error) {
	return r.listWithTotals(`
		WHERE o.period = $1
		GROUP BY o.id, s.name, b.id, b.name
		ORDER BY b.name, s.name`, string(period))
}

// ListWithTotalsBySubscriber returns the subscriber's obligations with
// ledger sums, oldest period first.
func (r *ObligationRepository) ListWithTotalsBySubscriber(subscriberID int64) ([]*domain.ObligationWithTotals, error) {
	return r.listWithTotals(`
		WHERE o.subscriber_id = $1
		GROUP BY o.id, s.name, b.id, b.name
		ORDER BY o.period`, subscriberID)
}
