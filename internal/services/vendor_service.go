package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "aisle/internal/errors"
	"aisle/internal/models"
	"aisle/internal/pagination"
)

// vendorService handles vendor business logic.
type vendorService struct {
	db *gorm.DB
}

// NewVendorService creates a new VendorServicer.
func NewVendorService(db *gorm.DB) VendorServicer {
	return &vendorService{db: db}
}

// CreateVendor creates a new vendor for a user.
func (s *vendorService) CreateVendor(userID, name, contactName, email, phone, website, notes string) (*models.Vendor, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "vendor name is required")
	}

	vendor := &models.Vendor{
		UserID:      userID,
		Name:        name,
		ContactName: contactName,
		Email:       email,
		Phone:       phone,
		Website:     website,
		Notes:       notes,
	}

	if err := s.db.Create(vendor).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return vendor, nil
}

// GetUserVendors retrieves a paginated list of the user's vendors.
func (s *vendorService) GetUserVendors(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Vendor], error) {
	page.Defaults()

	base := s.db.Model(&models.Vendor{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var vendors []models.Vendor
	if err := base.Order("name ASC").Scopes(pagination.Paginate(page)).Find(&vendors).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(vendors, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetVendorByID retrieves a vendor by ID if it belongs to the user.
func (s *vendorService) GetVendorByID(userID, vendorID string) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := s.db.Where("id = ? AND user_id = ?", vendorID, userID).First(&vendor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrVendorNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &vendor, nil
}

// UpdateVendor updates an existing vendor's fields.
func (s *vendorService) UpdateVendor(userID, vendorID string, name, contactName, email, phone, website, notes *string) (*models.Vendor, error) {
	vendor, err := s.GetVendorByID(userID, vendorID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != nil {
		if *name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "vendor name cannot be empty")
		}
		updates["name"] = *name
	}
	if contactName != nil {
		updates["contact_name"] = *contactName
	}
	if email != nil {
		updates["email"] = *email
	}
	if phone != nil {
		updates["phone"] = *phone
	}
	if website != nil {
		updates["website"] = *website
	}
	if notes != nil {
		updates["notes"] = *notes
	}

	if len(updates) > 0 {
		if err := s.db.Model(vendor).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return vendor, nil
}

// DeleteVendor soft-deletes a vendor and detaches it from any nodes
// and payments that referenced it.
func (s *vendorService) DeleteVendor(userID, vendorID string) error {
	vendor, err := s.GetVendorByID(userID, vendorID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.BudgetNode{}).Where("vendor_id = ?", vendorID).Update("vendor_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Payment{}).Where("vendor_id = ?", vendorID).Update("vendor_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(vendor).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
