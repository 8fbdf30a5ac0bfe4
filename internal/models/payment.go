package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentKind classifies a payment ledger entry. Refunds and credits
// reduce a node's effective spent figure.
type PaymentKind string

const (
	PaymentKindPayment PaymentKind = "payment"
	PaymentKindRefund  PaymentKind = "refund"
	PaymentKindCredit  PaymentKind = "credit"
)

// Payment is one scheduled or settled payment against a budget item.
// The payment ledger is the source of the "effective spent" figure the
// hierarchy engine consumes for rollups.
type Payment struct {
	Base
	UserID     string          `gorm:"type:uuid;not null;index" json:"user_id"`
	ScenarioID string          `gorm:"type:uuid;not null;index" json:"scenario_id"`
	NodeID     string          `gorm:"type:uuid;not null;index" json:"node_id"`
	VendorID   *string         `gorm:"type:uuid" json:"vendor_id,omitempty"`
	Kind       PaymentKind     `gorm:"not null" json:"kind"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	DueDate    *time.Time      `json:"due_date,omitempty"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
	Notes      string          `json:"notes"`

	Node   BudgetNode `gorm:"foreignKey:NodeID" json:"node,omitempty"`
	Vendor *Vendor    `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
}

// IsPaid reports whether the payment has been settled.
func (p *Payment) IsPaid() bool {
	return p.PaidAt != nil
}
