// Package audit writes the event log. Best effort on purpose: a
// logging failure must never abort the business operation it records.
package audit

import (
	"encoding/json"

	"facturation-backend/logger"
	"facturation-backend/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Record stores one event log row for a direct-execution attempt. On
// erreur outcomes a notification row is created as well so operators
// see the failure without querying logs. Errors here are logged and
// swallowed.
func Record(db *gorm.DB, tenantID, operation, entityType, entityID string, payload map[string]any, outcome, errorMessage string) {
	log := logger.WithComponent("audit")

	raw, err := json.Marshal(payload)
	if err != nil {
		raw = []byte(`{}`)
	}

	row := models.EventLog{
		TenantID:     tenantID,
		Operation:    operation,
		EntityType:   entityType,
		EntityID:     entityID,
		Payload:      datatypes.JSON(raw),
		Outcome:      outcome,
		ErrorMessage: errorMessage,
	}
	if err := db.Create(&row).Error; err != nil {
		log.Error().Err(err).Str("operation", operation).Msg("event log write failed")
		return
	}

	if outcome != models.OutcomeError {
		return
	}

	data, err := json.Marshal(map[string]any{
		"entity_type": entityType,
		"entity_id":   entityID,
		"operation":   operation,
	})
	if err != nil {
		data = []byte(`{}`)
	}
	notif := models.Notification{
		TenantID: tenantID,
		Type:     operation + "_erreur",
		Title:    "Erreur: " + operation,
		Message:  errorMessage,
		Data:     datatypes.JSON(data),
	}
	if err := db.Create(&notif).Error; err != nil {
		log.Error().Err(err).Str("operation", operation).Msg("notification write failed")
	}
}
