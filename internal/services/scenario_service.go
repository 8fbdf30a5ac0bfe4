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

// scenarioService handles budget scenario business logic.
type scenarioService struct {
	db *gorm.DB
}

// NewScenarioService creates a new ScenarioServicer.
func NewScenarioService(db *gorm.DB) ScenarioServicer {
	return &scenarioService{db: db}
}

// CreateScenario creates a new budget scenario for a user.
func (s *scenarioService) CreateScenario(userID, name string, eventDate *time.Time, currency string, totalBudget decimal.Decimal, notes string) (*models.Scenario, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "scenario name is required")
	}
	if currency == "" {
		currency = "USD"
	}
	if totalBudget.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "total budget cannot be negative")
	}

	scenario := &models.Scenario{
		UserID:      userID,
		Name:        name,
		EventDate:   eventDate,
		Currency:    currency,
		TotalBudget: totalBudget,
		Notes:       notes,
	}

	if err := s.db.Create(scenario).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return scenario, nil
}

// GetUserScenarios retrieves a paginated list of scenarios for a user.
func (s *scenarioService) GetUserScenarios(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Scenario], error) {
	page.Defaults()

	base := s.db.Model(&models.Scenario{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var scenarios []models.Scenario
	if err := base.Order("created_at DESC").Scopes(pagination.Paginate(page)).Find(&scenarios).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(scenarios, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetScenarioByID retrieves a scenario by ID if it belongs to the user.
func (s *scenarioService) GetScenarioByID(userID, scenarioID string) (*models.Scenario, error) {
	var scenario models.Scenario
	if err := s.db.Where("id = ? AND user_id = ?", scenarioID, userID).First(&scenario).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrScenarioNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &scenario, nil
}

// UpdateScenario updates an existing scenario's fields.
func (s *scenarioService) UpdateScenario(userID, scenarioID, name string, eventDate *time.Time, totalBudget *decimal.Decimal, notes *string) (*models.Scenario, error) {
	scenario, err := s.GetScenarioByID(userID, scenarioID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if eventDate != nil {
		updates["event_date"] = eventDate
	}
	if totalBudget != nil {
		if totalBudget.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "total budget cannot be negative")
		}
		updates["total_budget"] = *totalBudget
	}
	if notes != nil {
		updates["notes"] = *notes
	}

	if len(updates) > 0 {
		if err := s.db.Model(scenario).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return scenario, nil
}

// DeleteScenario soft-deletes a scenario together with its nodes and
// payments. The whole tree goes; per-node delete policies apply only
// to node-level deletes.
func (s *scenarioService) DeleteScenario(userID, scenarioID string) error {
	scenario, err := s.GetScenarioByID(userID, scenarioID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("scenario_id = ?", scenarioID).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("scenario_id = ?", scenarioID).Delete(&models.BudgetNode{}).Error; err != nil {
			return err
		}
		return tx.Delete(scenario).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
