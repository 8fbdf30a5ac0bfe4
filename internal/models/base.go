package models

import (
	"time"

	"aisle/internal/uuid"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Monetary amounts serialize as JSON numbers, not quoted strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Base contains common columns for all tables.
type Base struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// BeforeCreate hook generates a UUIDv7 for new records.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}
