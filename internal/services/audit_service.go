package services

import (
	"encoding/json"
	"strings"

	"pocketpilot/internal/logger"
	"pocketpilot/internal/models"

	"gorm.io/gorm"
)

const redacted = "[redacted]"

// sensitiveAuditKeys never reach the audit table with their values.
// Share tokens are bearer credentials for the public goal view.
var sensitiveAuditKeys = map[string]bool{
	"password":      true,
	"token":         true,
	"access_token":  true,
	"refresh_token": true,
	"share_token":   true,
	"api_key":       true,
}

type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records a mutation against resourceType/resourceID. Credential-like
// keys in changes are masked. Failures are logged and never reach the caller.
func (s *auditService) Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any) {
	log := logger.With("user_id", userID, "action", action, "resource_type", resourceType, "resource_id", resourceID)

	var changesJSON string
	if len(changes) > 0 {
		data, err := json.Marshal(redactChanges(changes))
		if err != nil {
			log.Errorw("failed to marshal audit changes", "error", err)
			changesJSON = "{}"
		} else {
			changesJSON = string(data)
		}
	}

	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      changesJSON,
	}
	if err := s.db.Create(entry).Error; err != nil {
		log.Errorw("failed to create audit log entry", "error", err)
	}
}

// redactChanges copies changes with sensitive values masked, descending
// into nested maps. The caller's map is left untouched.
func redactChanges(changes map[string]any) map[string]any {
	out := make(map[string]any, len(changes))
	for k, v := range changes {
		if sensitiveAuditKeys[strings.ToLower(k)] {
			out[k] = redacted
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			out[k] = redactChanges(nested)
			continue
		}
		out[k] = v
	}
	return out
}
