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

// LedgerRepository implements domain.LedgerRepository using PostgreSQL
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

const ledgerColumns = `id, obligation_id, amount, notes, entry_date, created_at`

func scanLedgerEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	var amount pgtype.Numeric
	if err := row.Scan(&e.ID, &e.ObligationID, &amount, &e.Notes, &e.EntryDate, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Amount = pgNumericToDecimal(amount)
	return &e, nil
}

// Append inserts a new ledger entry
func (r *LedgerRepository) Append(obligationID int64, amount decimal.Decimal, notes string, entryDate time.Time) (*domain.LedgerEntry, error) {
	ctx := context.Background()

	amountNum, err := decimalToPgNumeric(amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO ledger_entries (obligation_id, amount, notes, entry_date)
		VALUES ($1, $2, $3, $4)
		RETURNING `+ledgerColumns,
		obligationID, amountNum, notes, timeToPgTimestamp(entryDate))
	return scanLedgerEntry(row)
}

// GetByID retrieves a ledger entry by ID
func (r *LedgerRepository) GetByID(id int64) (*domain.LedgerEntry, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		SELECT `+ledgerColumns+`
		FROM ledger_entries
		WHERE id = $1`, id)
	e, err := scanLedgerEntry(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrEntryNotFound
		}
		return nil, err
	}
	return e, nil
}

// DeleteByID removes one ledger entry
func (r *LedgerRepository) DeleteByID(id int64) error {
	ctx := context.Background()

	tag, err := r.pool.Exec(ctx, `DELETE FROM ledger_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}

// SumFor returns the signed sum over the obligation's entries
func (r *LedgerRepository) SumFor(obligationID int64) (decimal.Decimal, error) {
	ctx := context.Background()

	var total pgtype.Numeric
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM ledger_entries
		WHERE obligation_id = $1`, obligationID).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}

// SumForMany returns the signed sums for a batch of obligations
func (r *LedgerRepository) SumForMany(obligationIDs []int64) (map[int64]decimal.Decimal, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT obligation_id, SUM(amount)
		FROM ledger_entries
		WHERE obligation_id = ANY($1)
		GROUP BY obligation_id`, obligationIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64]decimal.Decimal)
	for rows.Next() {
		var id int64
		var total pgtype.Numeric
		if err := rows.Scan(&id, &total); err != nil {
			return nil, err
		}
		result[id] = pgNumericToDecimal(total)
	}
	return result, rows.Err()
}

// HasNegativeEntry reports whether the obligation has any refund entry
func (r *LedgerRepository) HasNegativeEntry(obligationID int64) (bool, error) {
	ctx := context.Background()

	var has bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM ledger_entries
			WHERE obligation_id = $1 AND amount < 0
		)`, obligationID).Scan(&has)
	return has, err
}

// NegativeEntrySet reports which of the obligations have refund entries
func (r *LedgerRepository) NegativeEntrySet(obligationIDs []int64) (map[int64]bool, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT obligation_id
		FROM ledger_entries
		WHERE obligation_id = ANY($1) AND amount < 0`, obligationIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result[id] = true
	}
	return result, rows.Err()
}

// ListFor retrieves the obligation's entries, oldest first
func (r *LedgerRepository) ListFor(obligationID int64) ([]*domain.LedgerEntry, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT `+ledgerColumns+`
		FROM ledger_entries
		WHERE obligation_id = $1
		ORDER BY entry_date, id`, obligationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// DeleteAllFor erases the obligation's entire ledger history
func (r *LedgerRepository) DeleteAllFor(obligationID int64) error {
	ctx := context.Background()

	_, err := r.pool.Exec(ctx, `DELETE FROM ledger_entries WHERE obligation_id = $1`, obligationID)
	return err
}

// DailyActivity aggregates the window's entries per subscriber, joined
// to the directory for grouping.
func (r *LedgerRepository) DailyActivity(dayStart, dayEnd time.Time) ([]*domain.DailyActivityRow, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.name, b.id, b.name,
		       SUM(e.amount) AS total_paid,
		       BOOL_OR(e.amount < 0) AS has_refund
		FROM ledger_entries e
		JOIN obligations o ON o.id = e.obligation_id
		JOIN subscribers s ON s.id = o.subscriber_id
		JOIN buildings b ON b.id = s.building_id
		WHERE e.entry_date >= $1 AND e.entry_date < $2
		GROUP BY s.id, s.name, b.id, b.name
		ORDER BY b.name, s.name`,
		timeToPgTimestamp(dayStart), timeToPgTimestamp(dayEnd))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.DailyActivityRow
	for rows.Next() {
		var row domain.DailyActivityRow
		var total pgtype.Numeric
		if err := rows.Scan(&row.SubscriberID, &row.SubscriberName, &row.BuildingID, &row.BuildingName, &total, &row.HasRefund); err != nil {
			return nil, err
		}
		row.TotalPaid = pgNumericToDecimal(total)
		result = append(result, &row)
	}
	return result, rows.Err()
}
