package controllers

import (
	"facturation-backend/apperrors"
	"facturation-backend/database"
	"facturation-backend/models"

	"github.com/gofiber/fiber/v2"
)

// ListEventLogs exposes the audit trail. Read-only, newest first,
// filterable by operation, entity and outcome.
func ListEventLogs(c *fiber.Ctx) error {
	tenant := tenantID(c)
	page, limit, offset := paginationParams(c)

	q := database.DB.Model(&models.EventLog{}).Where("tenant_id = ?", tenant)
	if op := c.Query("operation"); op != "" {
		q = q.Where("operation = ?", op)
	}
	if entity := c.Query("entity_id"); entity != "" {
		q = q.Where("entity_id = ?", entity)
	}
	if outcome := c.Query("outcome"); outcome != "" {
		q = q.Where("outcome = ?", outcome)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return apperrors.Wrap(apperrors.Internal, "liste des evenements impossible", err)
	}

	var logs []models.EventLog
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return apperrors.Wrap(apperrors.Internal, "liste des evenements impossible", err)
	}

	return c.JSON(fiber.Map{
		"logs":        logs,
		"count":       len(logs),
		"total":       total,
		"page":        page,
		"limit":       limit,
		"total_pages": totalPages(total, limit),
	})
}

func ListNotifications(c *fiber.Ctx) error {
	tenant := tenantID(c)
	page, limit, offset := paginationParams(c)

	q := database.DB.Model(&models.Notification{}).Where("tenant_id = ?", tenant)
	if c.Query("unread") == "true" {
		q = q.Where("read_at IS NULL")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return apperrors.Wrap(apperrors.Internal, "liste des notifications impossible", err)
	}

	var notifications []models.Notification
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&notifications).Error; err != nil {
		return apperrors.Wrap(apperrors.Internal, "liste des notifications impossible", err)
	}

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"count":         len(notifications),
		"total":         total,
		"page":          page,
		"limit":         limit,
		"total_pages":   totalPages(total, limit),
	})
}
