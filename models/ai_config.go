package models

import "gorm.io/gorm"

// AIConfig holds the global chat assistant settings; a single row is expected.
// Temperature is on a 0-100 scale.
type AIConfig struct {
	ID           string `gorm:"type:varchar(36);primaryKey" json:"config_id"`
	SystemPrompt string `gorm:"type:text;not null" json:"system_prompt"`
	Temperature  int    `gorm:"not null" json:"temperature"`
}

func (AIConfig) TableName() string {
	return "ai_config"
}

func (a *AIConfig) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
