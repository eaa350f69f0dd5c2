package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"facturation-backend/apperrors"
	"facturation-backend/database"
	"facturation-backend/models"

	"github.com/gofiber/fiber/v2"
)

// PDFRendererURL is set at startup. When empty the handlers return the
// normalized render payload as JSON instead of a rendered document.
var PDFRendererURL string

var pdfHTTP = &http.Client{Timeout: 30 * time.Second}

type renderLine struct {
	ArticleCode *string `json:"article_code"`
	Label       string  `json:"label"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	LineTotal   float64 `json:"line_total"`
}

type renderParty struct {
	Name        string `json:"name"`
	Siret       string `json:"siret,omitempty"`
	VatNumber   string `json:"vat_number,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Address     string `json:"address,omitempty"`
	Zip         string `json:"zip,omitempty"`
	City        string `json:"city,omitempty"`
	Country     string `json:"country,omitempty"`
}

// renderPayload is the document shape handed to the PDF renderer:
// everything the template needs, nothing it has to look up.
type renderPayload struct {
	Kind        string       `json:"kind"`
	Number      string       `json:"number"`
	Status      string       `json:"status"`
	IssueDate   string       `json:"issue_date"`
	DueDate     string       `json:"due_date,omitempty"`
	Description string       `json:"description,omitempty"`
	PaymentMode string       `json:"payment_mode,omitempty"`
	TaxRate     float64      `json:"tax_rate"`
	NetTotal    float64      `json:"net_total"`
	GrossTotal  float64      `json:"gross_total"`
	Issuer      renderParty  `json:"issuer"`
	Client      renderParty  `json:"client"`
	Lines       []renderLine `json:"lines"`
}

func issuerParty(tenantID string) renderParty {
	var tenant models.Tenant
	if err := database.DB.First(&tenant, "id = ?", tenantID).Error; err != nil {
		return renderParty{}
	}
	return renderParty{
		Name:        tenant.CompanyName,
		Siret:       tenant.Siret,
		VatNumber:   tenant.VatNumber,
		Email:       tenant.Email,
		PhoneNumber: tenant.PhoneNumber,
		Address:     tenant.Address,
		Zip:         tenant.Zip,
		City:        tenant.City,
		Country:     tenant.Country,
	}
}

func clientParty(client *models.Client) renderParty {
	if client == nil {
		return renderParty{}
	}
	return renderParty{
		Name:        client.DisplayName(),
		Email:       client.Email,
		PhoneNumber: client.PhoneNumber,
		Address:     client.Address,
		Zip:         client.Zip,
		City:        client.City,
		Country:     client.Country,
	}
}

func render(c *fiber.Ctx, payload renderPayload) error {
	if PDFRendererURL == "" {
		return c.JSON(payload)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return apperrors.Wrap(apperrors.Internal, "serialisation du document impossible", err)
	}
	resp, err := pdfHTTP.Post(PDFRendererURL, fiber.MIMEApplicationJSON, bytes.NewReader(body))
	if err != nil {
		return apperrors.Wrap(apperrors.Upstream, "rendu PDF indisponible", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.Newf(apperrors.Upstream, "rendu PDF refuse (HTTP %d)", resp.StatusCode)
	}
	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Wrap(apperrors.Upstream, "lecture du PDF impossible", err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+payload.Number+`.pdf"`)
	return c.Send(pdf)
}

// PDF builds the render payload for one document. It reads the
// database directly in both execution modes: rendering is not a state
// change, so nothing is delegated.
func (f DocumentFamily) PDF() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseDocumentID(c)
		if err != nil {
			return err
		}
		tenant := tenantID(c)
		doc, err := f.findDocument(database.DB, tenant, id, true)
		if err != nil {
			return err
		}

		payload := renderPayload{
			Kind:        string(f.Type),
			Number:      doc.Number,
			Status:      doc.Status,
			IssueDate:   doc.IssueDate.Format("2006-01-02"),
			DueDate:     doc.ValidityDate.Format("2006-01-02"),
			Description: doc.Description,
			PaymentMode: doc.PaymentMode,
			TaxRate:     doc.TaxRate,
			NetTotal:    doc.NetTotal,
			GrossTotal:  doc.GrossTotal,
			Issuer:      issuerParty(tenant),
			Client:      clientParty(doc.Client),
		}
		for _, l := range doc.Lines {
			payload.Lines = append(payload.Lines, renderLine{
				ArticleCode: l.ArticleCode,
				Label:       l.Label,
				Quantity:    l.Quantity,
				UnitPrice:   l.UnitPrice,
				LineTotal:   l.LineTotal,
			})
		}
		return render(c, payload)
	}
}

func InvoicePDF(c *fiber.Ctx) error {
	id, err := parseDocumentID(c)
	if err != nil {
		return err
	}
	tenant := tenantID(c)
	inv, err := findInvoice(database.DB, tenant, id, true)
	if err != nil {
		return err
	}

	payload := renderPayload{
		Kind:        "facture",
		Number:      inv.Number,
		Status:      inv.Status,
		IssueDate:   inv.IssueDate.Format("2006-01-02"),
		DueDate:     inv.DueDate.Format("2006-01-02"),
		Description: inv.Description,
		PaymentMode: inv.PaymentMode,
		TaxRate:     inv.TaxRate,
		NetTotal:    inv.NetTotal,
		GrossTotal:  inv.GrossTotal,
		Issuer:      issuerParty(tenant),
		Client:      clientParty(inv.Client),
	}
	for _, l := range inv.Lines {
		payload.Lines = append(payload.Lines, renderLine{
			ArticleCode: l.ArticleCode,
			Label:       l.Label,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			LineTotal:   l.LineTotal,
		})
	}
	return render(c, payload)
}
