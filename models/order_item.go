package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderItem is an immutable line; Price is the effective menu price captured when ordered.
type OrderItem struct {
	ID         string          `gorm:"type:varchar(36);primaryKey" json:"order_item_id"`
	OrderID    string          `gorm:"type:varchar(36);not null;index" json:"order_id"`
	MenuItemID string          `gorm:"type:varchar(36);not null;index" json:"menu_item_id"`
	MenuItem   MenuItem        `gorm:"foreignKey:MenuItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Note       *string         `gorm:"type:text" json:"note"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// Subtotal is price times quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
