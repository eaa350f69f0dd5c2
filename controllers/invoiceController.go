package controllers

import (
	"errors"

	"facturation-backend/apperrors"
	"facturation-backend/audit"
	"facturation-backend/automation"
	"facturation-backend/database"
	"facturation-backend/lifecycle"
	"facturation-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func findInvoice(db *gorm.DB, tenant, id string, withLines bool) (*models.Invoice, error) {
	q := db.Where("tenant_id = ? AND id = ?", tenant, id).Preload("Client")
	if withLines {
		q = q.Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})
	}
	var inv models.Invoice
	if err := q.First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.NotFound, "facture non trouvee")
		}
		return nil, apperrors.Wrap(apperrors.Internal, "lecture de la facture impossible", err)
	}
	return &inv, nil
}

func ListInvoices(c *fiber.Ctx) error {
	tenant := tenantID(c)
	page, limit, offset := paginationParams(c)

	if !isDirect(c) {
		return automation.Dispatch(c, "facture_list", map[string]any{
			"page":   page,
			"limit":  limit,
			"statut": c.Query("statut"),
			"client": c.Query("client_id"),
		}, fiber.StatusOK)
	}

	q := database.DB.Model(&models.Invoice{}).
		Where("tenant_id = ? AND deleted_at IS NULL", tenant)
	if statut := c.Query("statut"); statut != "" {
		q = q.Where("status = ?", statut)
	}
	if clientID := c.Query("client_id"); clientID != "" {
		q = q.Where("client_id = ?", clientID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return apperrors.Wrap(apperrors.Internal, "liste des factures impossible", err)
	}

	var invoices []models.Invoice
	err := q.Preload("Client").
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("issue_date DESC").
		Offset(offset).Limit(limit).
		Find(&invoices).Error
	if err != nil {
		return apperrors.Wrap(apperrors.Internal, "liste des factures impossible", err)
	}

	return c.JSON(fiber.Map{
		"factures":    invoices,
		"count":       len(invoices),
		"total":       total,
		"page":        page,
		"limit":       limit,
		"total_pages": totalPages(total, limit),
	})
}

func GetInvoice(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.New(apperrors.Validation, "identifiant invalide")
	}

	if !isDirect(c) {
		return automation.Dispatch(c, "facture_get", map[string]any{
			"factureId": id,
		}, fiber.StatusOK)
	}

	inv, err := findInvoice(database.DB, tenantID(c), id, true)
	if err != nil {
		return err
	}
	return c.JSON(inv)
}

// InvoiceTransition builds the handler for one explicit invoice status
// change (send, pay, overdue, cancel).
func InvoiceTransition(opSuffix, target string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return apperrors.New(apperrors.Validation, "identifiant invalide")
		}
		tenant := tenantID(c)
		op := "facture_" + opSuffix

		inv, err := findInvoice(database.DB, tenant, id, false)
		if err != nil {
			return err
		}
		if inv.DeletedAt != nil {
			return apperrors.New(apperrors.NotFound, "facture non trouvee")
		}
		if err := lifecycle.CheckInvoiceTransition(inv.Status, target); err != nil {
			return err
		}

		if !isDirect(c) {
			if err := requireWriteAccess(c); err != nil {
				return err
			}
			return automation.Dispatch(c, op, map[string]any{
				"factureId": id,
			}, fiber.StatusOK)
		}

		var updated models.Invoice
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			fresh, err := findInvoice(tx, tenant, id, false)
			if err != nil {
				return err
			}
			if err := lifecycle.CheckInvoiceTransition(fresh.Status, target); err != nil {
				return err
			}
			res := tx.Model(&models.Invoice{}).
				Where("id = ? AND tenant_id = ? AND status = ?", id, tenant, fresh.Status).
				Update("status", target)
			if res.Error != nil {
				return apperrors.Wrap(apperrors.Internal, "changement de statut impossible", res.Error)
			}
			if res.RowsAffected == 0 {
				return apperrors.Newf(apperrors.InvalidTransition,
					"transition %s interdite: statut modifie concurremment", target)
			}
			fresh.Status = target
			updated = *fresh
			return nil
		})
		if err != nil {
			audit.Record(database.DB, tenant, op, "Facture", id,
				map[string]any{"error": err.Error()}, models.OutcomeError, err.Error())
			return err
		}
		audit.Record(database.DB, tenant, op, "Facture", id,
			map[string]any{"number": updated.Number, "status": updated.Status}, models.OutcomeSuccess, "")
		return c.JSON(updated)
	}
}
