package domain

import "time"

// Building groups subscribers for the directory and the daily
// collection view. It plays no part in reconciliation itself.
type Building struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type BuildingRepository interface {
	Create(building *Building) (*Building, error)
	GetByID(id int64) (*Building, error)
	GetAll() ([]*Building, error)
	Update(building *Building) (*Building, error)
	Delete(id int64) error
}
