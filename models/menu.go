package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MenuItem struct {
	ID              string          `gorm:"type:varchar(36);primaryKey" json:"menu_item_id"`
	CategoryID      string          `gorm:"type:varchar(36);not null;index" json:"category_id"`
	Category        Category        `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	BranchID        string          `gorm:"type:varchar(36);not null;index" json:"branch_id"`
	Name            string          `gorm:"type:varchar(255);not null" json:"item_name"`
	Description     *string         `gorm:"type:text" json:"description"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"discount_percent"`
	Status          string          `gorm:"type:varchar(20);not null" json:"status"`
	Image           *string         `gorm:"type:varchar(500)" json:"image"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (m *MenuItem) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
