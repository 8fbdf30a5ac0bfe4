package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"aisle/internal/amqp"
	"aisle/internal/hierarchy"
	"aisle/internal/models"
	"aisle/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// ScenarioServicer defines the contract for budget scenario management.
type ScenarioServicer interface {
	CreateScenario(userID, name string, eventDate *time.Time, currency string, totalBudget decimal.Decimal, notes string) (*models.Scenario, error)
	GetUserScenarios(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Scenario], error)
	GetScenarioByID(userID, scenarioID string) (*models.Scenario, error)
	UpdateScenario(userID, scenarioID, name string, eventDate *time.Time, totalBudget *decimal.Decimal, notes *string) (*models.Scenario, error)
	DeleteScenario(userID, scenarioID string) error
}

// NodeUpdate carries the optional field updates for a budget node.
// Strongly typed on purpose: no stringly-typed field-name dispatch.
type NodeUpdate struct {
	Name      *string
	Notes     *string
	Color     *string
	Allocated *decimal.Decimal
	Spent     *decimal.Decimal
	VendorID  *string
}

// FolderView is one folder card: the folder node plus its rollup over
// direct children and its breadcrumb path.
type FolderView struct {
	Node           models.BudgetNode `json:"node"`
	Allocated      decimal.Decimal   `json:"allocated"`
	Spent          decimal.Decimal   `json:"spent"`
	EffectiveSpent decimal.Decimal   `json:"effective_spent"`
	PercentSpent   float64           `json:"percent_spent"`
	ItemCount      int               `json:"item_count"`
	Breadcrumb     string            `json:"breadcrumb"`
	Color          string            `json:"color"`
}

// TreeView is the flat node list of one scenario plus per-folder
// rollups, enough for a client to render the whole tree.
type TreeView struct {
	ScenarioID string              `json:"scenario_id"`
	Nodes      []models.BudgetNode `json:"nodes"`
	Folders    []FolderView        `json:"folders"`
}

// NodeServicer defines the contract for budget node management. Every
// structural mutation is validated by the hierarchy engine against a
// snapshot loaded in the same transaction before it is persisted.
type NodeServicer interface {
	CreateFolder(userID, scenarioID, name, color string, parentID *string) (*models.BudgetNode, error)
	CreateItem(userID, scenarioID, name string, parentID *string, allocated decimal.Decimal, vendorID *string) (*models.BudgetNode, error)
	GetNodeByID(userID, nodeID string) (*models.BudgetNode, error)
	GetScenarioTree(userID, scenarioID string) (*TreeView, error)
	UpdateNode(userID, nodeID string, update NodeUpdate) (*models.BudgetNode, error)
	ReorderNode(userID, nodeID string, displayOrder int) (*models.BudgetNode, error)
	CheckMove(userID, nodeID string, newParentID *string) error
	MoveNode(userID, nodeID string, newParentID *string) (*models.BudgetNode, error)
	MoveTargets(userID, nodeID string) ([]models.BudgetNode, error)
	DeleteNode(userID, nodeID string, policy hierarchy.ChildPolicy) error
	Breadcrumb(userID, nodeID string) (string, error)
	FolderTotals(userID, folderID string) (*FolderView, error)
}

// VendorServicer defines the contract for vendor management.
type VendorServicer interface {
	CreateVendor(userID, name, contactName, email, phone, website, notes string) (*models.Vendor, error)
	GetUserVendors(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Vendor], error)
	GetVendorByID(userID, vendorID string) (*models.Vendor, error)
	UpdateVendor(userID, vendorID string, name, contactName, email, phone, website, notes *string) (*models.Vendor, error)
	DeleteVendor(userID, vendorID string) error
}

// PaymentServicer defines the contract for the payment ledger, the
// source of each node's effective spent figure.
type PaymentServicer interface {
	CreatePayment(userID, nodeID string, kind models.PaymentKind, amount decimal.Decimal, dueDate *time.Time, vendorID *string, notes string) (*models.Payment, error)
	GetNodePayments(userID, nodeID string, page pagination.PageRequest) (*pagination.PageResponse[models.Payment], error)
	GetScenarioPayments(userID, scenarioID string, page pagination.PageRequest) (*pagination.PageResponse[models.Payment], error)
	GetPaymentByID(userID, paymentID string) (*models.Payment, error)
	MarkPaid(userID, paymentID string, paidAt time.Time) (*models.Payment, error)
	DeletePayment(userID, paymentID string) error
	UpcomingPayments(userID, scenarioID string, within time.Duration) ([]models.Payment, error)
	EffectiveSpentByNode(scenarioID string) (map[string]decimal.Decimal, error)
}

// VendorSpend is the paid total attributed to one vendor.
type VendorSpend struct {
	VendorID   string          `json:"vendor_id"`
	VendorName string          `json:"vendor_name"`
	Paid       decimal.Decimal `json:"paid"`
}

// ScenarioSummary is the dashboard rollup for one scenario.
type ScenarioSummary struct {
	ScenarioID       string          `json:"scenario_id"`
	TotalBudget      decimal.Decimal `json:"total_budget"`
	Allocated        decimal.Decimal `json:"allocated"`
	Spent            decimal.Decimal `json:"spent"`
	EffectiveSpent   decimal.Decimal `json:"effective_spent"`
	PercentSpent     float64         `json:"percent_spent"`
	RootFolders      []FolderView    `json:"root_folders"`
	UpcomingPayments int             `json:"upcoming_payments"`
	OverduePayments  int             `json:"overdue_payments"`
	VendorSpend      []VendorSpend   `json:"vendor_spend"`
}

// DashboardServicer defines the contract for scenario dashboards.
type DashboardServicer interface {
	GetScenarioSummary(userID, scenarioID string) (*ScenarioSummary, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}

// ReminderPublisher is the outbound port for payment reminders. The
// AMQP client satisfies it; the worker degrades to log-only when no
// broker is configured.
type ReminderPublisher interface {
	PublishReminder(ctx context.Context, msg *amqp.PaymentReminderMessage) error
}
