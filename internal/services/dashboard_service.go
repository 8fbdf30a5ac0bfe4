package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "aisle/internal/errors"
	"aisle/internal/hierarchy"
	"aisle/internal/models"
)

// dashboardService assembles scenario-level rollups for the overview
// screen.
type dashboardService struct {
	db        *gorm.DB
	scenarios ScenarioServicer
	payments  PaymentServicer
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(db *gorm.DB, scenarios ScenarioServicer, payments PaymentServicer) DashboardServicer {
	return &dashboardService{db: db, scenarios: scenarios, payments: payments}
}

// upcomingWindow bounds the dashboard's "due soon" count.
const upcomingWindow = 30 * 24 * time.Hour

// GetScenarioSummary builds the dashboard rollup: scenario-wide
// totals, root folder cards, payment schedule counts, and per-vendor
// settled spend.
func (s *dashboardService) GetScenarioSummary(userID, scenarioID string) (*ScenarioSummary, error) {
	scenario, err := s.scenarios.GetScenarioByID(userID, scenarioID)
	if err != nil {
		return nil, err
	}

	var nodes []models.BudgetNode
	if err := s.db.Where("scenario_id = ?", scenarioID).Order("display_order ASC, id ASC").Find(&nodes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	ledger, err := s.payments.EffectiveSpentByNode(scenarioID)
	if err != nil {
		return nil, err
	}

	engineNodes := make([]hierarchy.Node, len(nodes))
	for i, n := range nodes {
		engineNodes[i] = toEngineNode(n)
	}
	snapshot := hierarchy.NewSnapshot(engineNodes)
	effective := effectiveFunc(ledger)

	summary := &ScenarioSummary{
		ScenarioID:  scenarioID,
		TotalBudget: scenario.TotalBudget,
		Allocated:   decimal.Zero,
		Spent:       decimal.Zero,
		RootFolders: []FolderView{},
		VendorSpend: []VendorSpend{},
	}

	// Scenario totals sum the items directly; folders only aggregate.
	for _, n := range nodes {
		if n.IsFolder() {
			continue
		}
		summary.Allocated = summary.Allocated.Add(n.Allocated)
		summary.Spent = summary.Spent.Add(n.Spent)
		summary.EffectiveSpent = summary.EffectiveSpent.Add(effective(toEngineNode(n)))
	}
	// Same 0-100 scale as the folder cards' PercentSpent.
	if !scenario.TotalBudget.IsZero() {
		pct, _ := summary.EffectiveSpent.Div(scenario.TotalBudget).Mul(decimal.NewFromInt(100)).Float64()
		summary.PercentSpent = pct
	}

	for _, n := range nodes {
		if n.IsFolder() && n.ParentID == nil {
			summary.RootFolders = append(summary.RootFolders, folderView(snapshot, n, effective))
		}
	}

	now := time.Now()
	var upcoming, overdue int64
	unpaid := s.db.Model(&models.Payment{}).
		Where("scenario_id = ? AND kind = ? AND paid_at IS NULL AND due_date IS NOT NULL", scenarioID, models.PaymentKindPayment)
	if err := unpaid.Session(&gorm.Session{}).Where("due_date >= ? AND due_date <= ?", now, now.Add(upcomingWindow)).Count(&upcoming).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := unpaid.Session(&gorm.Session{}).Where("due_date < ?", now).Count(&overdue).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	summary.UpcomingPayments = int(upcoming)
	summary.OverduePayments = int(overdue)

	vendorSpend, err := s.vendorSpend(scenarioID)
	if err != nil {
		return nil, err
	}
	summary.VendorSpend = vendorSpend

	return summary, nil
}

// vendorSpendRow is the scan target for per-vendor settled totals.
type vendorSpendRow struct {
	VendorID   string
	VendorName string
	Kind       models.PaymentKind
	Total      decimal.Decimal
}

// vendorSpend aggregates settled ledger entries per vendor, largest
// spend first.
func (s *dashboardService) vendorSpend(scenarioID string) ([]VendorSpend, error) {
	var rows []vendorSpendRow
	if err := s.db.Model(&models.Payment{}).
		Select("payments.vendor_id, vendors.name AS vendor_name, payments.kind, SUM(payments.amount) AS total").
		Joins("JOIN vendors ON vendors.id = payments.vendor_id").
		Where("payments.scenario_id = ? AND payments.paid_at IS NOT NULL AND payments.vendor_id IS NOT NULL", scenarioID).
		Group("payments.vendor_id, vendors.name, payments.kind").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	byVendor := make(map[string]*VendorSpend)
	for _, row := range rows {
		entry, ok := byVendor[row.VendorID]
		if !ok {
			entry = &VendorSpend{VendorID: row.VendorID, VendorName: row.VendorName}
			byVendor[row.VendorID] = entry
		}
		if row.Kind == models.PaymentKindPayment {
			entry.Paid = entry.Paid.Add(row.Total)
		} else {
			entry.Paid = entry.Paid.Sub(row.Total)
		}
	}

	result := make([]VendorSpend, 0, len(byVendor))
	for _, entry := range byVendor {
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Paid.Equal(result[j].Paid) {
			return result[i].VendorName < result[j].VendorName
		}
		return result[i].Paid.GreaterThan(result[j].Paid)
	})
	return result, nil
}
