package models

import (
	"time"

	"gorm.io/gorm"
)

// Order is the single growing order of a session.
type Order struct {
	ID        string      `gorm:"type:varchar(36);primaryKey" json:"order_id"`
	SessionID string      `gorm:"type:varchar(36);not null;index" json:"session_id"`
	OrderTime time.Time   `gorm:"not null;index" json:"order_time"`
	Status    string      `gorm:"type:varchar(20);not null" json:"status"`
	Items     []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	ensureID(&o.ID)
	if o.OrderTime.IsZero() {
		o.OrderTime = time.Now()
	}
	return nil
}
