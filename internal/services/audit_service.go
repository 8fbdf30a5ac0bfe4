package services

import (
	"encoding/json"

	"gorm.io/gorm"

	"aisle/internal/logger"
	"aisle/internal/models"
)

// auditService records sensitive operations. Logging is best-effort:
// a failed audit write never fails the operation it describes.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log writes an audit entry for the given action.
func (s *auditService) Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{}) {
	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
	}

	if len(changes) > 0 {
		data, err := json.Marshal(changes)
		if err != nil {
			logger.Get().Warnw("failed to marshal audit changes", "action", action, "error", err)
		} else {
			entry.Changes = string(data)
		}
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to write audit log", "action", action, "resource_type", resourceType, "error", err)
	}
}
