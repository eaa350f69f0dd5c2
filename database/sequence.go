package database

import (
	"fmt"
	"time"

	"facturation-backend/apperrors"
	"facturation-backend/models"

	"gorm.io/gorm"
)

// invoiceSeqType keys the invoice counter in document_sequences.
const invoiceSeqType = "facture"

// nextCounter atomically increments and returns the counter for one
// (tenant, type, year) key. The upsert rides the unique index, so two
// concurrent calls can never observe the same value; a plain
// count-rows-plus-one read would.
func nextCounter(tx *gorm.DB, tenantID, seqType string, year int) (int64, error) {
	var counter int64
	err := tx.Raw(`
		INSERT INTO document_sequences (tenant_id, doc_type, year, counter)
		VALUES (?, ?, ?, 1)
		ON CONFLICT (tenant_id, doc_type, year)
		DO UPDATE SET counter = counter + 1
		RETURNING counter`,
		tenantID, seqType, year,
	).Scan(&counter).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.Internal, "attribution du numero impossible", err)
	}
	return counter, nil
}

// NextReference issues the next reference for a document family, e.g.
// DEV-2026-000001. References are unique and strictly increasing per
// (tenant, type, year).
func NextReference(tx *gorm.DB, tenantID string, docType models.DocType, year int) (string, error) {
	n, err := nextCounter(tx, tenantID, string(docType), year)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%06d", docType.Prefix(), year, n), nil
}

// NextInvoiceReference issues the next INV-YYYY-NNNNNN reference.
func NextInvoiceReference(tx *gorm.DB, tenantID string, year int) (string, error) {
	n, err := nextCounter(tx, tenantID, invoiceSeqType, year)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%d-%06d", year, n), nil
}

// CurrentYear exists so tests can pin the numbering year.
var CurrentYear = func() int { return time.Now().Year() }
