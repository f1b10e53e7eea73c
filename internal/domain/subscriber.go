package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Subscriber is one paying customer of the service provider.
// MonthlyFee is the default amount used when an obligation is created
// lazily; existing obligations keep their own amount.
type Subscriber struct {
	ID          int64           `json:"id"`
	BuildingID  int64           `json:"buildingId"`
	Name        string          `json:"name"`
	Phone       *string         `json:"phone,omitempty"`
	MonthlyFee  decimal.Decimal `json:"monthlyFee"`
	StartPeriod Period          `json:"startPeriod"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type SubscriberRepository interface {
	Create(subscriber *Subscriber) (*Subscriber, error)
	GetByID(id int64) (*Subscriber, error)
	GetAll() ([]*Subscriber, error)
	GetByBuilding(buildingID int64) ([]*Subscriber, error)
	Update(subscriber *Subscriber) (*Subscriber, error)
	// Delete removes the subscriber together with its obligations and
	// their ledger entries.
	Delete(id int64) error
}
