package sweep

import (
	"time"

	"facturation-backend/audit"
	"facturation-backend/lifecycle"
	"facturation-backend/logger"
	"facturation-backend/models"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

var log = logger.WithComponent("sweep")

// Start schedules the validity sweep. Quotes and proformas sitting in
// envoyee past their validity date become expiree; every other status
// is left alone (the transition table decides, not the sweep).
func Start(db *gorm.DB, spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if err := ExpireOverdue(db); err != nil {
			log.Error().Err(err).Msg("validity sweep failed")
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	log.Info().Str("schedule", spec).Msg("validity sweep scheduled")
	return c, nil
}

// ExpireOverdue is one sweep pass. Each candidate goes through the
// regular transition check and an optimistic status guard, so a
// concurrent acceptance always wins over the sweep.
func ExpireOverdue(db *gorm.DB) error {
	now := time.Now()

	var candidates []models.Document
	err := db.Where("deleted_at IS NULL AND validity_date < ? AND status = ?", now, models.StatusSent).
		Where("type IN ?", []models.DocType{models.DocTypeQuote, models.DocTypeProforma}).
		Find(&candidates).Error
	if err != nil {
		return err
	}

	expired := 0
	for _, doc := range candidates {
		if err := lifecycle.CheckTransition(doc.Type, doc.Status, models.StatusExpired); err != nil {
			continue
		}
		res := db.Model(&models.Document{}).
			Where("id = ? AND status = ?", doc.Id, doc.Status).
			Update("status", models.StatusExpired)
		if res.Error != nil {
			log.Error().Err(res.Error).Str("document", doc.Number).Msg("expiration failed")
			continue
		}
		if res.RowsAffected == 0 {
			continue
		}
		expired++
		audit.Record(db, doc.TenantID, string(doc.Type)+"_expire", "Document", doc.Id,
			map[string]any{"number": doc.Number, "validity_date": doc.ValidityDate}, models.OutcomeSuccess, "")
	}
	if expired > 0 {
		log.Info().Int("expired", expired).Msg("validity sweep done")
	}
	return nil
}
