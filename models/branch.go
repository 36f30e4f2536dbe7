package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Branch is one physical restaurant location of a tenant.
type Branch struct {
	ID                string          `gorm:"type:varchar(36);primaryKey" json:"branch_id"`
	TenantID          string          `gorm:"type:varchar(36);not null;index" json:"tenant_id"`
	Name              string          `gorm:"type:varchar(255);not null" json:"branch_name"`
	Address           string          `gorm:"type:varchar(255)" json:"address"`
	Province          string          `gorm:"type:varchar(100)" json:"province"`
	Phone             string          `gorm:"type:varchar(30)" json:"phone"`
	ManagerName       string          `gorm:"type:varchar(255)" json:"manager_name"`
	Image             *string         `gorm:"type:varchar(500)" json:"image"`
	Status            string          `gorm:"type:varchar(20);not null" json:"status"`
	CashbackPercent   decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"cashback_percent"`
	BankCode          *string         `gorm:"type:varchar(20)" json:"bank_code"`
	BankAccountNumber *string         `gorm:"type:varchar(50)" json:"bank_account_number"`
	BankAccountName   *string         `gorm:"type:varchar(255)" json:"bank_account_name"`
	OpeningHours      string          `gorm:"type:varchar(5)" json:"opening_hours"`
	ClosingHours      string          `gorm:"type:varchar(5)" json:"closing_hours"`
	GoogleMapsLink    string          `gorm:"type:varchar(500)" json:"google_maps_link"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (b *Branch) BeforeCreate(tx *gorm.DB) error {
	ensureID(&b.ID)
	return nil
}

// BankInfo is the transfer destination shown to guests paying by QR.
type BankInfo struct {
	BankCode          *string `json:"bank_code"`
	BankAccountNumber *string `json:"bank_account_number"`
	BankAccountName   *string `json:"bank_account_name"`
}

func (b *Branch) BankInfo() BankInfo {
	return BankInfo{
		BankCode:          b.BankCode,
		BankAccountNumber: b.BankAccountNumber,
		BankAccountName:   b.BankAccountName,
	}
}
