package models

import (
	"time"

	"gorm.io/gorm"
)

type DiningTable struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"table_id"`
	BranchID    string    `gorm:"type:varchar(36);not null;index" json:"branch_id"`
	TableNumber string    `gorm:"type:varchar(50);not null" json:"table_number"`
	Capacity    int       `json:"capacity"`
	Status      string    `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t *DiningTable) BeforeCreate(tx *gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

// QRCode is the printed code guests scan; its content is "<branch_id>|<table_id>".
type QRCode struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"qr_id"`
	TableID   string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"table_id"`
	Content   string    `gorm:"type:varchar(255);not null" json:"qr_content"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (q *QRCode) BeforeCreate(tx *gorm.DB) error {
	ensureID(&q.ID)
	return nil
}

func QRContent(branchID, tableID string) string {
	return branchID + "|" + tableID
}
