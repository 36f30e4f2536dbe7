package models

import (
	"time"

	"gorm.io/gorm"
)

// Category groups menu items and is shared by all branches of a tenant.
type Category struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"category_id"`
	TenantID    string    `gorm:"type:varchar(36);not null;index" json:"tenant_id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"category_name"`
	Description *string   `gorm:"type:text" json:"description"`
	Status      string    `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
