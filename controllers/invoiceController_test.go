package controllers_test

import (
	"testing"

	"facturation-backend/database"
	"facturation-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func seedInvoice(t *testing.T, tenant, client, status string) models.Invoice {
	t.Helper()
	inv := models.Invoice{
		Id:         uuid.NewString(),
		TenantID:   tenant,
		Number:     "INV-2026-" + uuid.NewString()[:6],
		ClientID:   client,
		TaxRate:    20,
		NetTotal:   100,
		GrossTotal: 120,
		Status:     status,
	}
	if err := database.DB.Create(&inv).Error; err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	return inv
}

func TestInvoiceTransitions(t *testing.T) {
	cases := []struct {
		name       string
		from       string
		action     string
		wantStatus int
		wantState  string
	}{
		{"send draft", models.InvoiceStatusDraft, "send", fiber.StatusOK, models.InvoiceStatusSent},
		{"pay sent", models.InvoiceStatusSent, "pay", fiber.StatusOK, models.InvoiceStatusPaid},
		{"overdue sent", models.InvoiceStatusSent, "overdue", fiber.StatusOK, models.InvoiceStatusOverdue},
		{"pay overdue", models.InvoiceStatusOverdue, "pay", fiber.StatusOK, models.InvoiceStatusPaid},
		{"cancel draft", models.InvoiceStatusDraft, "cancel", fiber.StatusOK, models.InvoiceStatusCancelled},
		{"pay draft", models.InvoiceStatusDraft, "pay", fiber.StatusConflict, models.InvoiceStatusDraft},
		{"send paid", models.InvoiceStatusPaid, "send", fiber.StatusConflict, models.InvoiceStatusPaid},
		{"cancel paid", models.InvoiceStatusPaid, "cancel", fiber.StatusConflict, models.InvoiceStatusPaid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app, tenant, client := setupApp(t)
			inv := seedInvoice(t, tenant, client, tc.from)

			status, body := callback(t, app, fiber.MethodPut, "/api/factures/"+inv.Id+"/"+tc.action, tenant, nil)
			if status != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %v)", status, tc.wantStatus, body)
			}

			var after models.Invoice
			if err := database.DB.First(&after, "id = ?", inv.Id).Error; err != nil {
				t.Fatal(err)
			}
			if after.Status != tc.wantState {
				t.Errorf("invoice status = %s, want %s", after.Status, tc.wantState)
			}
		})
	}
}

func TestInvoiceListScopedToTenant(t *testing.T) {
	app, tenant, client := setupApp(t)
	seedInvoice(t, tenant, client, models.InvoiceStatusDraft)

	other := models.Tenant{Id: uuid.NewString(), CompanyName: "Autre " + uuid.NewString()}
	if err := database.DB.Create(&other).Error; err != nil {
		t.Fatal(err)
	}
	seedInvoice(t, other.Id, client, models.InvoiceStatusDraft)

	status, body := callback(t, app, fiber.MethodGet, "/api/factures", tenant, nil)
	if status != fiber.StatusOK {
		t.Fatalf("list: status %d", status)
	}
	factures, _ := body["factures"].([]any)
	if len(factures) != 1 {
		t.Errorf("list returned %d invoices, want 1 (tenant isolation)", len(factures))
	}
}

func TestInvoiceStatusFilter(t *testing.T) {
	app, tenant, client := setupApp(t)
	seedInvoice(t, tenant, client, models.InvoiceStatusDraft)
	paid := seedInvoice(t, tenant, client, models.InvoiceStatusPaid)

	status, body := callback(t, app, fiber.MethodGet, "/api/factures?statut="+models.InvoiceStatusPaid, tenant, nil)
	if status != fiber.StatusOK {
		t.Fatalf("list: status %d", status)
	}
	factures, _ := body["factures"].([]any)
	if len(factures) != 1 {
		t.Fatalf("filtered list returned %d invoices, want 1", len(factures))
	}
	first, _ := factures[0].(map[string]any)
	if first["id"] != paid.Id {
		t.Errorf("filtered id = %v, want %s", first["id"], paid.Id)
	}
}
