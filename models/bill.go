package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Bill is the running payable total of a session; at most one per session.
type Bill struct {
	ID             string          `gorm:"type:varchar(36);primaryKey" json:"bill_id"`
	SessionID      string          `gorm:"type:varchar(36);uniqueIndex;not null" json:"session_id"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	PointsEarned   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"points_earned"`
	PointsRedeemed decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"points_redeemed"`
	PaymentMethod  *string         `gorm:"type:varchar(20)" json:"payment_method"`
	Status         string          `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt      time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (b *Bill) BeforeCreate(tx *gorm.DB) error {
	ensureID(&b.ID)
	return nil
}
