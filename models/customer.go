package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Customer is a registered diner holding a loyalty points balance.
type Customer struct {
	ID            string          `gorm:"type:varchar(36);primaryKey" json:"customer_id"`
	UserID        string          `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`
	Phone         string          `gorm:"type:varchar(30)" json:"phone"`
	PointsBalance decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"points_balance"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// PointTransaction is an append-only loyalty ledger entry.
type PointTransaction struct {
	ID              string          `gorm:"type:varchar(36);primaryKey" json:"transaction_id"`
	CustomerID      string          `gorm:"type:varchar(36);not null;index" json:"customer_id"`
	BillID          *string         `gorm:"type:varchar(36);index" json:"bill_id"`
	TransactionType string          `gorm:"type:varchar(10);not null" json:"transaction_type"`
	PointsAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"points_amount"`
	Description     string          `gorm:"type:varchar(255)" json:"description"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (p *PointTransaction) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
