package controllers_test

import (
	"testing"

	"facturation-backend/database"
	"facturation-backend/models"

	"github.com/gofiber/fiber/v2"
)

func TestClientCreateRequiresNameAndEmail(t *testing.T) {
	app, tenant, _ := setupApp(t)

	status, created := callback(t, app, fiber.MethodPost, "/api/clients", tenant, map[string]any{
		"company_name": "Nouvelle SARL",
		"email":        "contact@nouvelle.fr",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("create client: status %d, body %v", status, created)
	}
	if created["tenant_id"] != tenant {
		t.Errorf("client tenant = %v, want %v", created["tenant_id"], tenant)
	}

	status, _ = callback(t, app, fiber.MethodPost, "/api/clients", tenant, map[string]any{
		"email": "anonyme@exemple.fr",
	})
	if status != fiber.StatusBadRequest {
		t.Errorf("client without any name: status %d, want 400", status)
	}

	status, _ = callback(t, app, fiber.MethodPost, "/api/clients", tenant, map[string]any{
		"company_name": "Sans Adresse",
		"email":        "pas-un-email",
	})
	if status != fiber.StatusBadRequest {
		t.Errorf("client with bad email: status %d, want 400", status)
	}
}

func TestClientDeactivationHidesFromListKeepsDocuments(t *testing.T) {
	app, tenant, clientID := setupApp(t)

	quote := createQuote(t, app, tenant, clientID)

	status, _ := callback(t, app, fiber.MethodDelete, "/api/clients/"+clientID, tenant, nil)
	if status != fiber.StatusOK {
		t.Fatalf("deactivate client: status %d", status)
	}

	_, list := callback(t, app, fiber.MethodGet, "/api/clients", tenant, nil)
	clients, _ := list["clients"].([]any)
	if len(clients) != 0 {
		t.Errorf("deactivated client still listed: %v", clients)
	}

	// The document keeps its reference.
	var doc models.Document
	if err := database.DB.First(&doc, "id = ?", quote["id"]).Error; err != nil {
		t.Fatal(err)
	}
	if doc.ClientID != clientID {
		t.Errorf("document client reference = %s, want %s", doc.ClientID, clientID)
	}
}
