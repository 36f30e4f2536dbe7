package models

import (
	"time"

	"gorm.io/gorm"
)

// Session is one dining visit at one table. CustomerID is nil for anonymous guests.
type Session struct {
	ID         string     `gorm:"type:varchar(36);primaryKey" json:"session_id"`
	TableID    string     `gorm:"type:varchar(36);not null;index" json:"table_id"`
	CustomerID *string    `gorm:"type:varchar(36);index" json:"customer_id"`
	StartTime  time.Time  `gorm:"not null;index" json:"start_time"`
	EndTime    *time.Time `json:"end_time"`
	Status     string     `gorm:"type:varchar(20);not null" json:"status"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	if s.StartTime.IsZero() {
		s.StartTime = time.Now()
	}
	return nil
}

// Complete closes the visit.
func (s *Session) Complete(at time.Time) {
	s.Status = SessionCompleted
	s.EndTime = &at
}
