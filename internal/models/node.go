package models

import "github.com/shopspring/decimal"

// NodeKind distinguishes grouping folders from budget line items.
type NodeKind string

const (
	NodeKindFolder NodeKind = "folder"
	NodeKindItem   NodeKind = "item"
)

// BudgetNode is one node of a scenario's category tree: either a
// folder (pure grouping container, derives totals from children) or an
// item (carries the actual allocated and spent amounts). The parent
// relation must always form a forest; the hierarchy engine validates
// every structural mutation before it is persisted.
type BudgetNode struct {
	Base
	ScenarioID   string          `gorm:"type:uuid;not null;index" json:"scenario_id"`
	ParentID     *string         `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Name         string          `gorm:"not null" json:"name"`
	Kind         NodeKind        `gorm:"not null" json:"kind"`
	Color        string          `gorm:"size:7" json:"color"`
	Notes        string          `json:"notes"`
	Allocated    decimal.Decimal `gorm:"type:decimal(20,4)" json:"allocated"`
	Spent        decimal.Decimal `gorm:"type:decimal(20,4)" json:"spent"`
	DisplayOrder int             `gorm:"default:0" json:"display_order"`
	VendorID     *string         `gorm:"type:uuid" json:"vendor_id,omitempty"`

	Parent   *BudgetNode  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children []BudgetNode `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	Vendor   *Vendor      `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	Payments []Payment    `gorm:"foreignKey:NodeID" json:"payments,omitempty"`
}

// IsFolder reports whether the node is a grouping container.
func (n *BudgetNode) IsFolder() bool {
	return n.Kind == NodeKindFolder
}
