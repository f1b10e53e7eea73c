package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mertdogan/duesly/duesly-backend/internal/domain"
)

// BuildingRepository implements domain.BuildingRepository using PostgreSQL
type BuildingRepository struct {
	pool *pgxpool.Pool
}

// NewBuildingRepository creates a new BuildingRepository
func NewBuildingRepository(pool *pgxpool.Pool) *BuildingRepository {
	return &BuildingRepository{pool: pool}
}

const buildingColumns = `id, name, address, created_at, updated_at`

func scanBuilding(row pgx.Row) (*domain.Building, error) {
	var b domain.Building
	var address pgtype.Text
	if err := row.Scan(&b.ID, &b.Name, &address, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.Address = pgTextToStringPtr(address)
	return &b, nil
}

// Create creates a new building
func (r *BuildingRepository) Create(building *domain.Building) (*domain.Building, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO buildings (name, address)
		VALUES ($1, $2)
		RETURNING `+buildingColumns,
		building.Name, textPtrToPgText(building.Address))
	return scanBuilding(row)
}

// GetByID retrieves a building by ID
func (r *BuildingRepository) GetByID(id int64) (*domain.Building, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		SELECT `+buildingColumns+`
		FROM buildings
		WHERE id = $1`, id)
	b, err := scanBuilding(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrBuildingNotFound
		}
		return nil, err
	}
	return b, nil
}

// GetAll retrieves all buildings ordered by name
func (r *BuildingRepository) GetAll() ([]*domain.Building, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT `+buildingColumns+`
		FROM buildings
		ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Building
	for rows.Next() {
		b, err := scanBuilding(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

// Update updates a building
func (r *BuildingRepository) Update(building *domain.Building) (*domain.Building, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		UPDATE buildings
		SET name = $2, address = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+buildingColumns,
		building.ID, building.Name, textPtrToPgText(building.Address))
	b, err := scanBuilding(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrBuildingNotFound
		}
		return nil, err
	}
	return b, nil
}

// Delete removes a building
func (r *BuildingRepository) Delete(id int64) error {
	ctx := context.Background()

	tag, err := r.pool.Exec(ctx, `DELETE FROM buildings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBuildingNotFound
	}
	return nil
}
