package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocType tags the document family a row belongs to.
type DocType string

const (
	DocTypeQuote         DocType = "devis"
	DocTypePurchaseOrder DocType = "bon_commande"
	DocTypeProforma      DocType = "proforma"
)

// Prefix returns the reference prefix used by the numbering authority.
func (t DocType) Prefix() string {
	switch t {
	case DocTypeQuote:
		return "DEV"
	case DocTypePurchaseOrder:
		return "BDC"
	case DocTypeProforma:
		return "PRO"
	}
	return "DOC"
}

// Status vocabulary. Quotes and proformas share the envoyee/acceptee
// chain; purchase orders use valide/facture/annule; commandee marks a
// quote turned into a purchase order.
const (
	StatusDraft     = "brouillon"
	StatusSent      = "envoyee"
	StatusAccepted  = "acceptee"
	StatusRefused   = "refusee"
	StatusExpired   = "expiree"
	StatusInvoiced  = "facturee"
	StatusOrdered   = "commandee"
	StatusValidated = "valide"
	StatusPOInvoiced = "facture"
	StatusCancelled  = "annule"
)

// Document is the common shape of quotes, purchase orders and
// proformas. The soft-delete timestamp is an explicit column: deleted
// rows drop out of listings but stay addressable by id.
type Document struct {
	Id       string  `json:"id" gorm:"primaryKey"`
	TenantID string  `json:"tenant_id" gorm:"not null;index;uniqueIndex:idx_documents_tenant_number,priority:1"`
	Type     DocType `json:"type" gorm:"type:varchar(20);not null;index"`
	Number   string  `json:"number" gorm:"not null;uniqueIndex:idx_documents_tenant_number,priority:2"`

	IssueDate    time.Time `json:"issue_date"`
	ValidityDate time.Time `json:"validity_date"`

	ClientID string  `json:"client_id" gorm:"not null;index"`
	Client   *Client `json:"client,omitempty" gorm:"foreignKey:ClientID;references:Id"`

	TaxRate    float64 `json:"tax_rate"`
	NetTotal   float64 `json:"net_total" gorm:"type:numeric(12,2)"`
	GrossTotal float64 `json:"gross_total" gorm:"type:numeric(12,2)"`

	Description string `json:"description"`
	PaymentMode string `json:"payment_mode"`
	Status      string `json:"status" gorm:"type:varchar(20);not null;index"`

	// Back-references written by the conversion engine.
	InvoiceID *string  `json:"invoice_id"`
	Invoice   *Invoice `json:"invoice,omitempty" gorm:"foreignKey:InvoiceID;references:Id"`
	OrderID   *string  `json:"order_id"`

	Lines []DocumentLine `json:"lines" gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" gorm:"index"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) (err error) {
	if d.Id == "" {
		d.Id = uuid.NewString()
	}
	return
}

// Converted reports whether the document already produced an invoice
// or a purchase order.
func (d *Document) Converted() bool {
	return d.InvoiceID != nil || d.OrderID != nil
}

// DocumentLine is one ordered line of a document. LineTotal is always
// quantity times unit price, computed at write time.
type DocumentLine struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	DocumentID  string  `json:"-" gorm:"not null;index"`
	ArticleCode *string `json:"article_code"`
	Label       string  `json:"label" gorm:"not null"`
	Quantity    int     `json:"quantity" gorm:"not null"`
	UnitPrice   float64 `json:"unit_price" gorm:"type:numeric(12,2)"`
	LineTotal   float64 `json:"line_total" gorm:"type:numeric(12,2)"`
	Position    int     `json:"position" gorm:"not null"`
}
