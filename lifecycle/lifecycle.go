// Package lifecycle holds the per-family state machines. Every status
// change and every conversion precondition goes through this table, so
// no handler carries its own status checks.
package lifecycle

import (
	"facturation-backend/apperrors"
	"facturation-backend/models"
)

// transitions maps document type -> current status -> allowed targets.
var transitions = map[models.DocType]map[string][]string{
	models.DocTypeQuote: {
		models.StatusDraft:    {models.StatusSent, models.StatusExpired},
		models.StatusSent:     {models.StatusAccepted, models.StatusRefused, models.StatusExpired},
		models.StatusAccepted: {models.StatusInvoiced, models.StatusOrdered, models.StatusExpired},
	},
	models.DocTypePurchaseOrder: {
		models.StatusDraft:     {models.StatusValidated, models.StatusCancelled},
		models.StatusValidated: {models.StatusPOInvoiced},
	},
	models.DocTypeProforma: {
		models.StatusDraft:    {models.StatusSent, models.StatusExpired},
		models.StatusSent:     {models.StatusAccepted, models.StatusRefused, models.StatusExpired},
		models.StatusAccepted: {models.StatusInvoiced, models.StatusExpired},
	},
}

var invoiceTransitions = map[string][]string{
	models.InvoiceStatusDraft:   {models.InvoiceStatusSent, models.InvoiceStatusCancelled},
	models.InvoiceStatusSent:    {models.InvoiceStatusPaid, models.InvoiceStatusOverdue, models.InvoiceStatusCancelled},
	models.InvoiceStatusOverdue: {models.InvoiceStatusPaid},
}

// invoicedStatus is the terminal status a source document takes once
// converted to an invoice.
var invoicedStatus = map[models.DocType]string{
	models.DocTypeQuote:         models.StatusInvoiced,
	models.DocTypePurchaseOrder: models.StatusPOInvoiced,
	models.DocTypeProforma:      models.StatusInvoiced,
}

// convertibleStatus is the status a document must hold to be turned
// into an invoice.
var convertibleStatus = map[models.DocType]string{
	models.DocTypeQuote:         models.StatusAccepted,
	models.DocTypePurchaseOrder: models.StatusValidated,
	models.DocTypeProforma:      models.StatusAccepted,
}

// CheckTransition validates a status change for a document family.
func CheckTransition(docType models.DocType, current, target string) error {
	table, ok := transitions[docType]
	if !ok {
		return apperrors.Newf(apperrors.Validation, "type de document inconnu: %s", docType)
	}
	for _, allowed := range table[current] {
		if allowed == target {
			return nil
		}
	}
	return apperrors.Newf(apperrors.InvalidTransition,
		"transition %s interdite depuis le statut %s", target, current)
}

// CheckInvoiceTransition validates a status change on an invoice.
func CheckInvoiceTransition(current, target string) error {
	for _, allowed := range invoiceTransitions[current] {
		if allowed == target {
			return nil
		}
	}
	return apperrors.Newf(apperrors.InvalidTransition,
		"transition %s interdite depuis le statut %s", target, current)
}

// IsTerminal reports whether no transition leaves the given status.
func IsTerminal(docType models.DocType, status string) bool {
	return len(transitions[docType][status]) == 0
}

// CheckConvertibleToInvoice validates the conversion preconditions:
// the status must be the one that legally precedes invoicing and the
// document must not already hold a conversion back-reference.
func CheckConvertibleToInvoice(doc *models.Document) error {
	if doc.InvoiceID != nil {
		return apperrors.Newf(apperrors.InvalidTransition,
			"document deja converti en facture (statut %s)", doc.Status)
	}
	if doc.Status != convertibleStatus[doc.Type] {
		return apperrors.Newf(apperrors.InvalidTransition,
			"conversion en facture interdite depuis le statut %s", doc.Status)
	}
	return nil
}

// CheckConvertibleToOrder validates the quote -> purchase order path.
func CheckConvertibleToOrder(doc *models.Document) error {
	if doc.Type != models.DocTypeQuote {
		return apperrors.Newf(apperrors.Validation,
			"seul un devis peut etre converti en bon de commande")
	}
	if doc.Converted() {
		return apperrors.Newf(apperrors.InvalidTransition,
			"devis deja converti (statut %s)", doc.Status)
	}
	if doc.Status != models.StatusAccepted {
		return apperrors.Newf(apperrors.InvalidTransition,
			"conversion en bon de commande interdite depuis le statut %s", doc.Status)
	}
	return nil
}

// InvoicedStatus returns the terminal status written on the source
// when its invoice is created.
func InvoicedStatus(docType models.DocType) string {
	return invoicedStatus[docType]
}
