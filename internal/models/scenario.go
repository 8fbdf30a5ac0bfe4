package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Scenario is one budget plan for a wedding. Each scenario owns its own
// node tree; nodes are never shared across scenarios.
type Scenario struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string          `gorm:"not null" json:"name"`
	EventDate   *time.Time      `json:"event_date,omitempty"`
	Currency    string          `gorm:"size:3;default:USD" json:"currency"`
	TotalBudget decimal.Decimal `gorm:"type:decimal(20,4)" json:"total_budget"`
	Notes       string          `json:"notes"`

	Nodes    []BudgetNode `gorm:"foreignKey:ScenarioID" json:"nodes,omitempty"`
	Payments []Payment    `gorm:"foreignKey:ScenarioID" json:"payments,omitempty"`
}
