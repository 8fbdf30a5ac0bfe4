package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "aisle/internal/errors"
	"aisle/internal/models"
	"aisle/internal/pagination"
)

// paymentService handles the payment ledger. Paid entries are the
// authoritative source of each node's effective spent figure: payments
// add to it, refunds and credits subtract from it.
type paymentService struct {
	db *gorm.DB
}

// NewPaymentService creates a new PaymentServicer.
func NewPaymentService(db *gorm.DB) PaymentServicer {
	return &paymentService{db: db}
}

// CreatePayment records a ledger entry against a budget item.
func (s *paymentService) CreatePayment(userID, nodeID string, kind models.PaymentKind, amount decimal.Decimal, dueDate *time.Time, vendorID *string, notes string) (*models.Payment, error) {
	switch kind {
	case models.PaymentKindPayment, models.PaymentKindRefund, models.PaymentKindCredit:
	default:
		return nil, apperrors.ErrInvalidPaymentKind
	}
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "payment amount must be positive")
	}

	var node models.BudgetNode
	if err := s.db.Where("id = ?", nodeID).First(&node).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNodeNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	var owned int64
	if err := s.db.Model(&models.Scenario{}).Where("id = ? AND user_id = ?", node.ScenarioID, userID).Count(&owned).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if owned == 0 {
		return nil, apperrors.ErrNodeNotFound
	}
	if node.IsFolder() {
		return nil, apperrors.WithMessage(apperrors.ErrNodeNotFolder, "payments attach to items, not folders")
	}
	if vendorID != nil {
		var count int64
		if err := s.db.Model(&models.Vendor{}).Where("id = ? AND user_id = ?", *vendorID, userID).Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return nil, apperrors.ErrVendorNotFound
		}
	}

	payment := &models.Payment{
		UserID:     userID,
		ScenarioID: node.ScenarioID,
		NodeID:     nodeID,
		VendorID:   vendorID,
		Kind:       kind,
		Amount:     amount,
		DueDate:    dueDate,
		Notes:      notes,
	}

	if err := s.db.Create(payment).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return payment, nil
}

// GetNodePayments lists the ledger entries of one node.
func (s *paymentService) GetNodePayments(userID, nodeID string, page pagination.PageRequest) (*pagination.PageResponse[models.Payment], error) {
	page.Defaults()

	base := s.db.Model(&models.Payment{}).Where("user_id = ? AND node_id = ?", userID, nodeID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var payments []models.Payment
	if err := base.Order("created_at DESC").Scopes(pagination.Paginate(page)).Find(&payments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(payments, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetScenarioPayments lists all ledger entries of one scenario.
func (s *paymentService) GetScenarioPayments(userID, scenarioID string, page pagination.PageRequest) (*pagination.PageResponse[models.Payment], error) {
	page.Defaults()

	base := s.db.Model(&models.Payment{}).Where("user_id = ? AND scenario_id = ?", userID, scenarioID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var payments []models.Payment
	if err := base.Order("due_date ASC NULLS LAST, created_at DESC").Scopes(pagination.Paginate(page)).Find(&payments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(payments, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetPaymentByID retrieves a payment by ID if it belongs to the user.
func (s *paymentService) GetPaymentByID(userID, paymentID string) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.Where("id = ? AND user_id = ?", paymentID, userID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &payment, nil
}

// MarkPaid settles a payment. Settling is what moves the entry into
// the effective spent figure, so it cannot be repeated.
func (s *paymentService) MarkPaid(userID, paymentID string, paidAt time.Time) (*models.Payment, error) {
	payment, err := s.GetPaymentByID(userID, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.IsPaid() {
		return nil, apperrors.ErrPaymentAlreadyPaid
	}

	if err := s.db.Model(payment).Update("paid_at", paidAt).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	payment.PaidAt = &paidAt
	return payment, nil
}

// DeletePayment soft-deletes a ledger entry.
func (s *paymentService) DeletePayment(userID, paymentID string) error {
	payment, err := s.GetPaymentByID(userID, paymentID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(payment).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// UpcomingPayments returns the unpaid payments of a scenario falling
// due within the window, soonest first. Refunds and credits have no
// due dates worth chasing, so only kind=payment entries qualify.
func (s *paymentService) UpcomingPayments(userID, scenarioID string, within time.Duration) ([]models.Payment, error) {
	now := time.Now()
	cutoff := now.Add(within)

	var payments []models.Payment
	if err := s.db.
		Where("user_id = ? AND scenario_id = ? AND kind = ?", userID, scenarioID, models.PaymentKindPayment).
		Where("paid_at IS NULL AND due_date IS NOT NULL AND due_date <= ?", cutoff).
		Order("due_date ASC").
		Find(&payments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return payments, nil
}

// nodeLedgerRow is the scan target for the per-node settled totals.
type nodeLedgerRow struct {
	NodeID string
	Kind   models.PaymentKind
	Total  decimal.Decimal
}

// EffectiveSpentByNode aggregates the settled ledger per node for one
// scenario: paid payments add, paid refunds and credits subtract.
// Nodes with no settled entries are absent from the map; callers fall
// back to the node's manually entered spent amount for those.
func (s *paymentService) EffectiveSpentByNode(scenarioID string) (map[string]decimal.Decimal, error) {
	var rows []nodeLedgerRow
	if err := s.db.Model(&models.Payment{}).
		Select("node_id, kind, SUM(amount) AS total").
		Where("scenario_id = ? AND paid_at IS NOT NULL", scenarioID).
		Group("node_id, kind").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	ledger := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		current := ledger[row.NodeID]
		switch row.Kind {
		case models.PaymentKindPayment:
			ledger[row.NodeID] = current.Add(row.Total)
		case models.PaymentKindRefund, models.PaymentKindCredit:
			ledger[row.NodeID] = current.Sub(row.Total)
		}
	}
	return ledger, nil
}
