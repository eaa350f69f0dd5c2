package controllers

import (
	"errors"
	"time"

	"facturation-backend/apperrors"
	"facturation-backend/audit"
	"facturation-backend/automation"
	"facturation-backend/database"
	"facturation-backend/lifecycle"
	"facturation-backend/middlewares"
	"facturation-backend/models"
	"facturation-backend/money"
	"facturation-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentFamily parameterizes the shared handlers for one document
// type. Entity names the audit entity, OpPrefix the automation
// operation namespace (devis_create, bdc_validate, ...).
type DocumentFamily struct {
	Type     models.DocType
	Entity   string
	OpPrefix string
}

var (
	Quotes         = DocumentFamily{Type: models.DocTypeQuote, Entity: "Devis", OpPrefix: "devis"}
	PurchaseOrders = DocumentFamily{Type: models.DocTypePurchaseOrder, Entity: "BonCommande", OpPrefix: "bdc"}
	Proformas      = DocumentFamily{Type: models.DocTypeProforma, Entity: "Proforma", OpPrefix: "proforma"}
)

const defaultTaxRate = 20.0

// defaultValidity is the validity/due window applied when the caller
// does not supply a date.
const defaultValidity = 30 * 24 * time.Hour

type documentLineInput struct {
	ArticleCode *string `json:"article_code"`
	Label       string  `json:"label" validate:"required"`
	Quantity    int     `json:"quantity" validate:"omitempty,gt=0"`
	UnitPrice   float64 `json:"unit_price" validate:"required,gt=0"`
}

type createDocumentInput struct {
	ClientID     string              `json:"client_id" validate:"required,uuid4"`
	NetTotal     float64             `json:"net_total" validate:"omitempty,gt=0"`
	TaxRate      *float64            `json:"tax_rate" validate:"omitempty,gte=0,lte=100"`
	IssueDate    string              `json:"issue_date"`
	ValidityDate string              `json:"validity_date"`
	Description  string              `json:"description"`
	PaymentMode  string              `json:"payment_mode"`
	Lines        []documentLineInput `json:"lines" validate:"omitempty,dive"`
	// Callbacks carry the tenant in the body; ignored otherwise.
	TenantID string `json:"tenantId"`
}

type updateDocumentInput struct {
	ClientID     *string             `json:"client_id" validate:"omitempty,uuid4"`
	NetTotal     *float64            `json:"net_total" validate:"omitempty,gt=0"`
	TaxRate      *float64            `json:"tax_rate" validate:"omitempty,gte=0,lte=100"`
	IssueDate    *string             `json:"issue_date"`
	ValidityDate *string             `json:"validity_date"`
	Description  *string             `json:"description"`
	PaymentMode  *string             `json:"payment_mode"`
	Lines        []documentLineInput `json:"lines" validate:"omitempty,dive"`
}

func parseDocumentID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperrors.New(apperrors.Validation, "identifiant invalide")
	}
	return id, nil
}

// findDocument loads a tenant-scoped document. Soft-deleted rows stay
// addressable by id (audit); listings exclude them instead.
func (f DocumentFamily) findDocument(db *gorm.DB, tenant, id string, withLines bool) (*models.Document, error) {
	q := db.Where("tenant_id = ? AND type = ? AND id = ?", tenant, f.Type, id).
		Preload("Client")
	if withLines {
		q = q.Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).Preload("Invoice")
	}
	var doc models.Document
	if err := q.First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.NotFound, "document non trouve")
		}
		return nil, apperrors.Wrap(apperrors.Internal, "lecture du document impossible", err)
	}
	return &doc, nil
}

func moneyLines(lines []documentLineInput) []money.Line {
	out := make([]money.Line, 0, len(lines))
	for _, l := range lines {
		qty := l.Quantity
		if qty == 0 {
			qty = 1
		}
		out = append(out, money.Line{Quantity: qty, UnitPrice: l.UnitPrice})
	}
	return out
}

func buildLines(lines []documentLineInput) []models.DocumentLine {
	out := make([]models.DocumentLine, 0, len(lines))
	for i, l := range lines {
		qty := l.Quantity
		if qty == 0 {
			qty = 1
		}
		out = append(out, models.DocumentLine{
			ArticleCode: l.ArticleCode,
			Label:       l.Label,
			Quantity:    qty,
			UnitPrice:   l.UnitPrice,
			LineTotal:   money.LineTotal(qty, l.UnitPrice),
			Position:    i,
		})
	}
	return out
}

// List returns the paginated, filtered collection. User calls are
// forwarded to the automation engine like every other operation.
func (f DocumentFamily) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenant := tenantID(c)
		page, limit, offset := paginationParams(c)

		if !isDirect(c) {
			return automation.Dispatch(c, f.OpPrefix+"_list", map[string]any{
				"page":   page,
				"limit":  limit,
				"statut": c.Query("statut"),
				"client": c.Query("client_id"),
			}, fiber.StatusOK)
		}

		q := database.DB.Model(&models.Document{}).
			Where("tenant_id = ? AND type = ? AND deleted_at IS NULL", tenant, f.Type)
		if statut := c.Query("statut"); statut != "" {
			q = q.Where("status = ?", statut)
		}
		if clientID := c.Query("client_id"); clientID != "" {
			q = q.Where("client_id = ?", clientID)
		}

		var total int64
		if err := q.Count(&total).Error; err != nil {
			return apperrors.Wrap(apperrors.Internal, "liste des documents impossible", err)
		}

		var docs []models.Document
		err := q.Preload("Client").
			Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
			Order("issue_date DESC").
			Offset(offset).Limit(limit).
			Find(&docs).Error
		if err != nil {
			return apperrors.Wrap(apperrors.Internal, "liste des documents impossible", err)
		}

		return c.JSON(fiber.Map{
			"documents":   docs,
			"count":       len(docs),
			"total":       total,
			"page":        page,
			"limit":       limit,
			"total_pages": totalPages(total, limit),
		})
	}
}

func (f DocumentFamily) Get() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseDocumentID(c)
		if err != nil {
			return err
		}

		if !isDirect(c) {
			return automation.Dispatch(c, f.OpPrefix+"_get", map[string]any{
				f.OpPrefix + "Id": id,
			}, fiber.StatusOK)
		}

		doc, err := f.findDocument(database.DB, tenantID(c), id, true)
		if err != nil {
			return err
		}
		return c.JSON(doc)
	}
}

func (f DocumentFamily) Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input createDocumentInput
		if err := middlewares.BindAndValidate(c, &input); err != nil {
			return err
		}
		utils.NormalizeDTO(&input)
		tenant := tenantID(c)

		// Client reference is validated in both modes, before any
		// command leaves the building.
		var client models.Client
		if err := database.DB.Where("tenant_id = ? AND id = ?", tenant, input.ClientID).First(&client).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.NotFound, "client non trouve")
			}
			return apperrors.Wrap(apperrors.Internal, "verification du client impossible", err)
		}

		if !isDirect(c) {
			if err := requireWriteAccess(c); err != nil {
				return err
			}
			payload := map[string]any{
				"client_id":     input.ClientID,
				"net_total":     input.NetTotal,
				"tax_rate":      input.TaxRate,
				"issue_date":    input.IssueDate,
				"validity_date": input.ValidityDate,
				"description":   input.Description,
				"payment_mode":  input.PaymentMode,
				"lines":         input.Lines,
			}
			return automation.Dispatch(c, f.OpPrefix+"_create", payload, fiber.StatusCreated)
		}

		op := f.OpPrefix + "_create"
		doc, err := f.createDirect(tenant, &input)
		if err != nil {
			audit.Record(database.DB, tenant, op, f.Entity, "unknown",
				map[string]any{"error": err.Error()}, models.OutcomeError, err.Error())
			return err
		}
		audit.Record(database.DB, tenant, op, f.Entity, doc.Id,
			map[string]any{"number": doc.Number, "gross_total": doc.GrossTotal}, models.OutcomeSuccess, "")
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

func (f DocumentFamily) createDirect(tenant string, input *createDocumentInput) (*models.Document, error) {
	taxRate := defaultTaxRate
	if input.TaxRate != nil {
		taxRate = *input.TaxRate
	}
	net, gross, err := money.Compute(moneyLines(input.Lines), taxRate, input.NetTotal)
	if err != nil {
		return nil, err
	}

	issueDate := time.Now()
	if t, ok := utils.ParseFlexibleDate(input.IssueDate); ok {
		issueDate = t
	}
	validityDate := issueDate.Add(defaultValidity)
	if t, ok := utils.ParseFlexibleDate(input.ValidityDate); ok {
		validityDate = t
	}

	var doc models.Document
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		year := database.CurrentYear()
		number, err := database.NextReference(tx, tenant, f.Type, year)
		if err != nil {
			return err
		}
		doc = models.Document{
			TenantID:     tenant,
			Type:         f.Type,
			Number:       number,
			IssueDate:    issueDate,
			ValidityDate: validityDate,
			ClientID:     input.ClientID,
			TaxRate:      taxRate,
			NetTotal:     net,
			GrossTotal:   gross,
			Description:  input.Description,
			PaymentMode:  input.PaymentMode,
			Status:       models.StatusDraft,
			Lines:        buildLines(input.Lines),
		}
		if err := tx.Create(&doc).Error; err != nil {
			return apperrors.Wrap(apperrors.Internal, "creation du document impossible", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Update replaces editable fields and, when provided, the whole line
// set. Allowed after validation/acceptance but never after conversion.
// The line swap happens inside one transaction so readers never see an
// empty document.
func (f DocumentFamily) Update() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseDocumentID(c)
		if err != nil {
			return err
		}
		var input updateDocumentInput
		if err := middlewares.BindAndValidate(c, &input); err != nil {
			return err
		}
		utils.NormalizePtrDTO(&input)
		tenant := tenantID(c)

		if !isDirect(c) {
			if err := requireWriteAccess(c); err != nil {
				return err
			}
			return automation.Dispatch(c, f.OpPrefix+"_update", map[string]any{
				f.OpPrefix + "Id": id,
				"changes":         input,
			}, fiber.StatusOK)
		}

		op := f.OpPrefix + "_update"
		doc, err := f.updateDirect(tenant, id, &input)
		if err != nil {
			audit.Record(database.DB, tenant, op, f.Entity, id,
				map[string]any{"error": err.Error()}, models.OutcomeError, err.Error())
			return err
		}
		audit.Record(database.DB, tenant, op, f.Entity, doc.Id,
			map[string]any{"number": doc.Number}, models.OutcomeSuccess, "")
		return c.JSON(doc)
	}
}

func (f DocumentFamily) updateDirect(tenant, id string, input *updateDocumentInput) (*models.Document, error) {
	var updated models.Document
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		doc, err := f.findDocument(tx, tenant, id, true)
		if err != nil {
			return err
		}
		if doc.DeletedAt != nil {
			return apperrors.New(apperrors.NotFound, "document non trouve")
		}
		if doc.Converted() {
			return apperrors.Newf(apperrors.InvalidTransition,
				"document deja converti (statut %s), modification interdite", doc.Status)
		}

		if input.ClientID != nil {
			var client models.Client
			if err := tx.Where("tenant_id = ? AND id = ?", tenant, *input.ClientID).First(&client).Error; err != nil {
				return apperrors.New(apperrors.NotFound, "client non trouve")
			}
		}

		changes := utils.UpdatesFromPtrDTO(input, nil)
		delete(changes, "net_total")
		if input.IssueDate != nil {
			t, ok := utils.ParseFlexibleDate(*input.IssueDate)
			if !ok {
				return apperrors.New(apperrors.Validation, "issue_date invalide")
			}
			changes["issue_date"] = t
		}
		if input.ValidityDate != nil {
			t, ok := utils.ParseFlexibleDate(*input.ValidityDate)
			if !ok {
				return apperrors.New(apperrors.Validation, "validity_date invalide")
			}
			changes["validity_date"] = t
		}
		if len(changes) > 0 {
			if err := tx.Model(doc).Updates(changes).Error; err != nil {
				return apperrors.Wrap(apperrors.Internal, "mise a jour du document impossible", err)
			}
		}

		if input.Lines != nil {
			if err := tx.Where("document_id = ?", doc.Id).Delete(&models.DocumentLine{}).Error; err != nil {
				return apperrors.Wrap(apperrors.Internal, "remplacement des lignes impossible", err)
			}
			lines := buildLines(input.Lines)
			for i := range lines {
				lines[i].DocumentID = doc.Id
			}
			if len(lines) > 0 {
				if err := tx.Create(&lines).Error; err != nil {
					return apperrors.Wrap(apperrors.Internal, "remplacement des lignes impossible", err)
				}
			}
		}

		// Recompute totals from the resulting state.
		fresh, err := f.findDocument(tx, tenant, id, true)
		if err != nil {
			return err
		}
		fallback := fresh.NetTotal
		if input.NetTotal != nil {
			fallback = *input.NetTotal
		}
		mLines := make([]money.Line, 0, len(fresh.Lines))
		for _, l := range fresh.Lines {
			mLines = append(mLines, money.Line{Quantity: l.Quantity, UnitPrice: l.UnitPrice})
		}
		net, gross, err := money.Compute(mLines, fresh.TaxRate, fallback)
		if err != nil {
			return err
		}
		if err := tx.Model(fresh).Updates(map[string]any{
			"net_total":   net,
			"gross_total": gross,
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.Internal, "mise a jour des totaux impossible", err)
		}
		fresh.NetTotal = net
		fresh.GrossTotal = gross
		updated = *fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Transition builds the handler for one explicit transition endpoint.
// No free-form status field is ever accepted.
func (f DocumentFamily) Transition(opSuffix, target string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseDocumentID(c)
		if err != nil {
			return err
		}
		tenant := tenantID(c)
		op := f.OpPrefix + "_" + opSuffix

		doc, err := f.findDocument(database.DB, tenant, id, false)
		if err != nil {
			return err
		}
		if doc.DeletedAt != nil {
			return apperrors.New(apperrors.NotFound, "document non trouve")
		}
		if err := lifecycle.CheckTransition(f.Type, doc.Status, target); err != nil {
			return err
		}

		if !isDirect(c) {
			if err := requireWriteAccess(c); err != nil {
				return err
			}
			return automation.Dispatch(c, op, map[string]any{
				f.OpPrefix + "Id": id,
			}, fiber.StatusOK)
		}

		updated, err := f.transitionDirect(tenant, id, target)
		if err != nil {
			audit.Record(database.DB, tenant, op, f.Entity, id,
				map[string]any{"error": err.Error()}, models.OutcomeError, err.Error())
			return err
		}
		audit.Record(database.DB, tenant, op, f.Entity, id,
			map[string]any{"number": updated.Number, "status": updated.Status}, models.OutcomeSuccess, "")
		return c.JSON(updated)
	}
}

// transitionDirect re-reads and re-validates inside the transaction:
// a concurrent writer loses with InvalidTransition instead of silently
// overwriting.
func (f DocumentFamily) transitionDirect(tenant, id, target string) (*models.Document, error) {
	var updated models.Document
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		doc, err := f.findDocument(tx, tenant, id, false)
		if err != nil {
			return err
		}
		if err := lifecycle.CheckTransition(f.Type, doc.Status, target); err != nil {
			return err
		}
		res := tx.Model(&models.Document{}).
			Where("id = ? AND tenant_id = ? AND status = ?", id, tenant, doc.Status).
			Update("status", target)
		if res.Error != nil {
			return apperrors.Wrap(apperrors.Internal, "changement de statut impossible", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.Newf(apperrors.InvalidTransition,
				"transition %s interdite: statut modifie concurremment", target)
		}
		doc.Status = target
		updated = *doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ConvertToInvoice performs the one-way transactional conversion: a
// new invoice is created with totals and lines copied verbatim, and
// the source atomically takes its invoiced status plus the
// back-reference. Nothing persists on failure.
func (f DocumentFamily) ConvertToInvoice() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseDocumentID(c)
		if err != nil {
			return err
		}
		tenant := tenantID(c)
		op := f.OpPrefix + "_convert_to_invoice"

		doc, err := f.findDocument(database.DB, tenant, id, false)
		if err != nil {
			return err
		}
		if doc.DeletedAt != nil {
			return apperrors.New(apperrors.NotFound, "document non trouve")
		}
		if err := lifecycle.CheckConvertibleToInvoice(doc); err != nil {
			return err
		}

		if !isDirect(c) {
			if err := requireWriteAccess(c); err != nil {
				return err
			}
			return automation.Dispatch(c, op, map[string]any{
				f.OpPrefix + "Id": id,
			}, fiber.StatusCreated)
		}

		invoice, err := f.convertToInvoiceDirect(tenant, id)
		if err != nil {
			audit.Record(database.DB, tenant, op, f.Entity, id,
				map[string]any{"error": err.Error()}, models.OutcomeError, err.Error())
			return err
		}
		audit.Record(database.DB, tenant, op, f.Entity, id,
			map[string]any{"number": doc.Number, "invoice_number": invoice.Number}, models.OutcomeSuccess, "")
		return c.Status(fiber.StatusCreated).JSON(invoice)
	}
}

func (f DocumentFamily) convertToInvoiceDirect(tenant, id string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		doc, err := f.findDocument(tx, tenant, id, true)
		if err != nil {
			return err
		}
		if err := lifecycle.CheckConvertibleToInvoice(doc); err != nil {
			return err
		}

		year := database.CurrentYear()
		number, err := database.NextInvoiceReference(tx, tenant, year)
		if err != nil {
			return err
		}

		description := "Depuis " + f.Entity + " " + doc.Number
		if doc.Description != "" {
			description = f.Entity + " " + doc.Number + " - " + doc.Description
		}

		now := time.Now()
		srcType := doc.Type
		invoice = models.Invoice{
			TenantID:    tenant,
			Number:      number,
			IssueDate:   now,
			DueDate:     now.Add(defaultValidity),
			ClientID:    doc.ClientID,
			TaxRate:     doc.TaxRate,
			NetTotal:    doc.NetTotal,
			GrossTotal:  doc.GrossTotal,
			Description: description,
			PaymentMode: doc.PaymentMode,
			Status:      models.InvoiceStatusDraft,
			SourceType:  &srcType,
			SourceID:    &doc.Id,
		}
		// Lines are duplicated verbatim, never recomputed.
		for _, l := range doc.Lines {
			invoice.Lines = append(invoice.Lines, models.InvoiceLine{
				ArticleCode: l.ArticleCode,
				Label:       l.Label,
				Quantity:    l.Quantity,
				UnitPrice:   l.UnitPrice,
				LineTotal:   l.LineTotal,
				Position:    l.Position,
			})
		}
		if err := tx.Create(&invoice).Error; err != nil {
			return apperrors.Wrap(apperrors.Internal, "creation de la facture impossible", err)
		}

		res := tx.Model(&models.Document{}).
			Where("id = ? AND tenant_id = ? AND status = ? AND invoice_id IS NULL", id, tenant, doc.Status).
			Updates(map[string]any{
				"status":     lifecycle.InvoicedStatus(f.Type),
				"invoice_id": invoice.Id,
			})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.Internal, "mise a jour du document source impossible", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.New(apperrors.InvalidTransition, "document converti concurremment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// ConvertToOrder handles the quote -> purchase order path. The quote
// records the commandee status and the order back-reference; the new
// order starts its own lifecycle in brouillon.
func (f DocumentFamily) ConvertToOrder() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseDocumentID(c)
		if err != nil {
			return err
		}
		tenant := tenantID(c)
		op := f.OpPrefix + "_convert_to_bdc"

		doc, err := f.findDocument(database.DB, tenant, id, false)
		if err != nil {
			return err
		}
		if doc.DeletedAt != nil {
			return apperrors.New(apperrors.NotFound, "document non trouve")
		}
		if err := lifecycle.CheckConvertibleToOrder(doc); err != nil {
			return err
		}

		if !isDirect(c) {
			if err := requireWriteAccess(c); err != nil {
				return err
			}
			return automation.Dispatch(c, op, map[string]any{
				f.OpPrefix + "Id": id,
			}, fiber.StatusCreated)
		}

		order, err := f.convertToOrderDirect(tenant, id)
		if err != nil {
			audit.Record(database.DB, tenant, op, f.Entity, id,
				map[string]any{"error": err.Error()}, models.OutcomeError, err.Error())
			return err
		}
		audit.Record(database.DB, tenant, op, f.Entity, id,
			map[string]any{"number": doc.Number, "order_number": order.Number}, models.OutcomeSuccess, "")
		return c.Status(fiber.StatusCreated).JSON(order)
	}
}

func (f DocumentFamily) convertToOrderDirect(tenant, id string) (*models.Document, error) {
	var order models.Document
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		doc, err := f.findDocument(tx, tenant, id, true)
		if err != nil {
			return err
		}
		if err := lifecycle.CheckConvertibleToOrder(doc); err != nil {
			return err
		}

		year := database.CurrentYear()
		number, err := database.NextReference(tx, tenant, models.DocTypePurchaseOrder, year)
		if err != nil {
			return err
		}

		description := "Depuis devis " + doc.Number
		if doc.Description != "" {
			description = "Devis " + doc.Number + " - " + doc.Description
		}

		now := time.Now()
		order = models.Document{
			TenantID:     tenant,
			Type:         models.DocTypePurchaseOrder,
			Number:       number,
			IssueDate:    now,
			ValidityDate: now.Add(defaultValidity),
			ClientID:     doc.ClientID,
			TaxRate:      doc.TaxRate,
			NetTotal:     doc.NetTotal,
			GrossTotal:   doc.GrossTotal,
			Description:  description,
			PaymentMode:  doc.PaymentMode,
			Status:       models.StatusDraft,
		}
		for _, l := range doc.Lines {
			order.Lines = append(order.Lines, models.DocumentLine{
				ArticleCode: l.ArticleCode,
				Label:       l.Label,
				Quantity:    l.Quantity,
				UnitPrice:   l.UnitPrice,
				LineTotal:   l.LineTotal,
				Position:    l.Position,
			})
		}
		if err := tx.Create(&order).Error; err != nil {
			return apperrors.Wrap(apperrors.Internal, "creation du bon de commande impossible", err)
		}

		res := tx.Model(&models.Document{}).
			Where("id = ? AND tenant_id = ? AND status = ? AND invoice_id IS NULL AND order_id IS NULL", id, tenant, doc.Status).
			Updates(map[string]any{
				"status":   models.StatusOrdered,
				"order_id": order.Id,
			})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.Internal, "mise a jour du devis impossible", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.New(apperrors.InvalidTransition, "devis converti concurremment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Delete soft-deletes: the row keeps its data and stays addressable by
// id, but disappears from listings. Converted documents are immutable.
func (f DocumentFamily) Delete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseDocumentID(c)
		if err != nil {
			return err
		}
		tenant := tenantID(c)
		op := f.OpPrefix + "_delete"

		doc, err := f.findDocument(database.DB, tenant, id, false)
		if err != nil {
			return err
		}
		if doc.DeletedAt != nil {
			return apperrors.New(apperrors.NotFound, "document non trouve")
		}
		if doc.Converted() {
			return apperrors.Newf(apperrors.InvalidTransition,
				"suppression interdite: document deja converti (statut %s)", doc.Status)
		}

		if !isDirect(c) {
			if err := requireWriteAccess(c); err != nil {
				return err
			}
			return automation.Dispatch(c, op, map[string]any{
				f.OpPrefix + "Id": id,
			}, fiber.StatusOK)
		}

		now := time.Now()
		res := database.DB.Model(&models.Document{}).
			Where("id = ? AND tenant_id = ? AND deleted_at IS NULL AND invoice_id IS NULL AND order_id IS NULL", id, tenant).
			Update("deleted_at", &now)
		if res.Error != nil {
			audit.Record(database.DB, tenant, op, f.Entity, id,
				map[string]any{"error": res.Error.Error()}, models.OutcomeError, res.Error.Error())
			return apperrors.Wrap(apperrors.Internal, "suppression impossible", res.Error)
		}
		if res.RowsAffected == 0 {
			err := apperrors.New(apperrors.InvalidTransition, "document converti ou supprime concurremment")
			audit.Record(database.DB, tenant, op, f.Entity, id,
				map[string]any{"error": err.Error()}, models.OutcomeError, err.Error())
			return err
		}

		audit.Record(database.DB, tenant, op, f.Entity, id,
			map[string]any{"number": doc.Number}, models.OutcomeSuccess, "")
		return c.JSON(fiber.Map{"message": "document supprime"})
	}
}
