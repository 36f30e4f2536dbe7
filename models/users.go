package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"user_id"`
	TenantID     string    `gorm:"type:varchar(36);not null;index" json:"tenant_id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	FullName     string    `gorm:"type:varchar(255);not null" json:"full_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

// Staff links a user to the branch they work at. Position "Chef" marks kitchen staff.
type Staff struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"staff_id"`
	UserID    string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`
	BranchID  string    `gorm:"type:varchar(36);not null;index" json:"branch_id"`
	Position  string    `gorm:"type:varchar(50);not null" json:"position"`
	Status    string    `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Staff) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

const PositionChef = "Chef"

// User roles derived from Staff/Customer rows.
const (
	RoleOwner    = "owner"
	RoleStaff    = "staff"
	RoleChef     = "chef"
	RoleCustomer = "customer"
)
