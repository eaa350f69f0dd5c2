package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invoice lifecycle.
const (
	InvoiceStatusDraft     = "brouillon"
	InvoiceStatusSent      = "envoyee"
	InvoiceStatusPaid      = "payee"
	InvoiceStatusOverdue   = "en_retard"
	InvoiceStatusCancelled = "annulee"
)

// Invoice is produced by the conversion engine and is never itself
// convertible. Totals are copied verbatim from the source document.
type Invoice struct {
	Id       string `json:"id" gorm:"primaryKey"`
	TenantID string `json:"tenant_id" gorm:"not null;index;uniqueIndex:idx_invoices_tenant_number,priority:1"`
	Number   string `json:"number" gorm:"not null;uniqueIndex:idx_invoices_tenant_number,priority:2"`

	IssueDate time.Time `json:"issue_date"`
	DueDate   time.Time `json:"due_date"`

	ClientID string  `json:"client_id" gorm:"not null;index"`
	Client   *Client `json:"client,omitempty" gorm:"foreignKey:ClientID;references:Id"`

	TaxRate    float64 `json:"tax_rate"`
	NetTotal   float64 `json:"net_total" gorm:"type:numeric(12,2)"`
	GrossTotal float64 `json:"gross_total" gorm:"type:numeric(12,2)"`

	Description string `json:"description"`
	PaymentMode string `json:"payment_mode"`
	Status      string `json:"status" gorm:"type:varchar(20);not null;index"`

	// Provenance: which document this invoice came from.
	SourceType *DocType `json:"source_type" gorm:"type:varchar(20)"`
	SourceID   *string  `json:"source_id"`

	Lines []InvoiceLine `json:"lines" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" gorm:"index"`
}

func (inv *Invoice) BeforeCreate(tx *gorm.DB) (err error) {
	if inv.Id == "" {
		inv.Id = uuid.NewString()
	}
	return
}

type InvoiceLine struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	InvoiceID   string  `json:"-" gorm:"not null;index"`
	ArticleCode *string `json:"article_code"`
	Label       string  `json:"label" gorm:"not null"`
	Quantity    int     `json:"quantity" gorm:"not null"`
	UnitPrice   float64 `json:"unit_price" gorm:"type:numeric(12,2)"`
	LineTotal   float64 `json:"line_total" gorm:"type:numeric(12,2)"`
	Position    int     `json:"position" gorm:"not null"`
}
