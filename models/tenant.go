package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Tenant struct {
	ID              string          `gorm:"type:varchar(36);primaryKey" json:"tenant_id"`
	Name            string          `gorm:"type:varchar(255);not null" json:"tenant_name"`
	Status          string          `gorm:"type:varchar(20);not null" json:"status"`
	CashbackPercent decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"cashback_percent"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	ensureID(&t.ID)
	return nil
}
