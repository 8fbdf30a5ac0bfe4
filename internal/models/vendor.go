package models

// Vendor is a wedding supplier (caterer, florist, photographer) that
// budget items and payments can be attached to.
type Vendor struct {
	Base
	UserID      string `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string `gorm:"not null" json:"name"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Website     string `json:"website"`
	Notes       string `json:"notes"`

	Nodes    []BudgetNode `gorm:"foreignKey:VendorID" json:"nodes,omitempty"`
	Payments []Payment    `gorm:"foreignKey:VendorID" json:"payments,omitempty"`
}
