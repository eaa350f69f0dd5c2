package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"facturation-backend/database"
	"facturation-backend/models"

	"github.com/gofiber/fiber/v2"
)

func postJSON(t *testing.T, app *fiber.App, path string, body any) (int, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	data, _ := io.ReadAll(resp.Body)
	if len(data) > 0 {
		_ = json.Unmarshal(data, &out)
	}
	return resp.StatusCode, out
}

func TestRegistrationAndLogin(t *testing.T) {
	app, _, _ := setupApp(t)

	status, user := postJSON(t, app, "/api/registration", map[string]any{
		"company_name": "Dupont Conseil",
		"first_name":   "Marie",
		"last_name":    "Dupont",
		"email":        "marie@dupont-conseil.fr",
		"password":     "tres-secret-1",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("registration: status %d, body %v", status, user)
	}
	if user["role"] != models.RoleAdmin {
		t.Errorf("first user role = %v, want %s", user["role"], models.RoleAdmin)
	}
	if user["tenant_id"] == "" || user["tenant_id"] == nil {
		t.Error("registered user has no tenant")
	}
	if _, leaked := user["password"]; leaked {
		t.Error("password hash leaked in response")
	}

	status, session := postJSON(t, app, "/api/login", map[string]any{
		"email":    "marie@dupont-conseil.fr",
		"password": "tres-secret-1",
	})
	if status != fiber.StatusOK {
		t.Fatalf("login: status %d, body %v", status, session)
	}
	if token, _ := session["token"].(string); token == "" {
		t.Error("login returned no token")
	}

	status, body := postJSON(t, app, "/api/login", map[string]any{
		"email":    "marie@dupont-conseil.fr",
		"password": "wrong",
	})
	if status != fiber.StatusUnauthorized {
		t.Errorf("bad password: status %d, body %v", status, body)
	}
}

func TestRegistrationRejectsDuplicateCompany(t *testing.T) {
	app, _, _ := setupApp(t)

	input := map[string]any{
		"company_name": "Durand SA",
		"first_name":   "Paul",
		"last_name":    "Durand",
		"email":        "paul@durand.fr",
		"password":     "tres-secret-1",
	}
	if status, body := postJSON(t, app, "/api/registration", input); status != fiber.StatusCreated {
		t.Fatalf("first registration: status %d, body %v", status, body)
	}

	input["email"] = "autre@durand.fr"
	status, _ := postJSON(t, app, "/api/registration", input)
	if status != fiber.StatusBadRequest {
		t.Errorf("duplicate company: status %d, want 400", status)
	}

	var users int64
	if err := database.DB.Model(&models.User{}).Where("email = ?", "autre@durand.fr").Count(&users).Error; err != nil {
		t.Fatal(err)
	}
	if users != 0 {
		t.Error("failed registration left a user behind")
	}
}
