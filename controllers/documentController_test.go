package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"facturation-backend/automation"
	"facturation-backend/database"
	"facturation-backend/middlewares"
	"facturation-backend/models"
	"facturation-backend/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testAutomationSecret = "test-automation-secret"

func TestMain(m *testing.M) {
	os.Setenv("AUTOMATION_SECRET", testAutomationSecret)
	os.Setenv("JWT_SECRET", "test-jwt-secret")
	os.Exit(m.Run())
}

var dbSeq atomic.Int64

// setupApp wires a fresh in-memory database and the full route table.
// It returns the app plus a seeded tenant and client id.
func setupApp(t *testing.T) (*fiber.App, string, string) {
	t.Helper()

	dsn := fmt.Sprintf("file:ctrl%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	database.DB = db
	if err := database.AutoMigrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	// No engine configured: a forwarded request in a direct-mode test
	// would fail loudly instead of passing by accident.
	automation.Default = automation.NewClient("")

	tenant := models.Tenant{Id: uuid.NewString(), CompanyName: "ACME " + uuid.NewString()}
	if err := db.Create(&tenant).Error; err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	client := models.Client{
		Id:          uuid.NewString(),
		TenantID:    tenant.Id,
		CompanyName: "Client SARL",
		Email:       "client@example.com",
		Active:      true,
	}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}

	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler})
	routes.Register(app)
	return app, tenant.Id, client.Id
}

// callback issues a request the way the automation engine does: shared
// secret header plus the tenant in the query string.
func callback(t *testing.T, app *fiber.App, method, path, tenant string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	sep := "?"
	if bytes.ContainsRune([]byte(path), '?') {
		sep = "&"
	}
	req := httptest.NewRequest(method, path+sep+"tenantId="+tenant, reader)
	req.Header.Set(middlewares.AutomationSecretHeader, testAutomationSecret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp.StatusCode, out
}

func createQuote(t *testing.T, app *fiber.App, tenant, client string) map[string]any {
	t.Helper()
	status, body := callback(t, app, fiber.MethodPost, "/api/devis", tenant, map[string]any{
		"client_id": client,
		"lines": []map[string]any{
			{"label": "Prestation A", "quantity": 2, "unit_price": 100},
			{"label": "Prestation B", "unit_price": 50},
		},
	})
	if status != fiber.StatusCreated {
		t.Fatalf("create quote: status %d, body %v", status, body)
	}
	return body
}

func TestQuoteLifecycleThroughInvoice(t *testing.T) {
	app, tenant, client := setupApp(t)

	quote := createQuote(t, app, tenant, client)
	id, _ := quote["id"].(string)
	if id == "" {
		t.Fatalf("quote has no id: %v", quote)
	}
	if got := quote["status"]; got != models.StatusDraft {
		t.Errorf("new quote status = %v, want %s", got, models.StatusDraft)
	}
	if got := quote["net_total"]; got != 250.0 {
		t.Errorf("net_total = %v, want 250", got)
	}
	if got := quote["gross_total"]; got != 300.0 {
		t.Errorf("gross_total = %v, want 300", got)
	}
	number, _ := quote["number"].(string)
	if len(number) < 4 || number[:4] != "DEV-" {
		t.Errorf("number = %q, want DEV- prefix", number)
	}

	status, body := callback(t, app, fiber.MethodPut, "/api/devis/"+id+"/send", tenant, nil)
	if status != fiber.StatusOK || body["status"] != models.StatusSent {
		t.Fatalf("send: status %d, doc %v", status, body)
	}
	status, body = callback(t, app, fiber.MethodPut, "/api/devis/"+id+"/accept", tenant, nil)
	if status != fiber.StatusOK || body["status"] != models.StatusAccepted {
		t.Fatalf("accept: status %d, doc %v", status, body)
	}

	status, invoice := callback(t, app, fiber.MethodPut, "/api/devis/"+id+"/convert-to-facture", tenant, nil)
	if status != fiber.StatusCreated {
		t.Fatalf("convert: status %d, body %v", status, invoice)
	}
	invNumber, _ := invoice["number"].(string)
	if len(invNumber) < 4 || invNumber[:4] != "INV-" {
		t.Errorf("invoice number = %q, want INV- prefix", invNumber)
	}
	if got := invoice["net_total"]; got != 250.0 {
		t.Errorf("invoice net_total = %v, want 250", got)
	}
	if got := invoice["status"]; got != models.InvoiceStatusDraft {
		t.Errorf("invoice status = %v, want %s", got, models.InvoiceStatusDraft)
	}
	lines, _ := invoice["lines"].([]any)
	if len(lines) != 2 {
		t.Fatalf("invoice lines = %d, want 2 copied verbatim", len(lines))
	}

	status, after := callback(t, app, fiber.MethodGet, "/api/devis/"+id, tenant, nil)
	if status != fiber.StatusOK {
		t.Fatalf("get quote after convert: status %d", status)
	}
	if after["status"] != models.StatusInvoiced {
		t.Errorf("quote status after convert = %v, want %s", after["status"], models.StatusInvoiced)
	}
	if after["invoice_id"] != invoice["id"] {
		t.Errorf("quote invoice_id = %v, want %v", after["invoice_id"], invoice["id"])
	}
}

func TestAcceptDraftQuoteRejected(t *testing.T) {
	app, tenant, client := setupApp(t)

	quote := createQuote(t, app, tenant, client)
	id := quote["id"].(string)

	status, body := callback(t, app, fiber.MethodPut, "/api/devis/"+id+"/accept", tenant, nil)
	if status != fiber.StatusConflict {
		t.Fatalf("accept on draft: status %d, body %v", status, body)
	}
	msg, _ := body["message"].(string)
	if !bytes.Contains([]byte(msg), []byte(models.StatusDraft)) {
		t.Errorf("error message %q should name the current status", msg)
	}

	_, after := callback(t, app, fiber.MethodGet, "/api/devis/"+id, tenant, nil)
	if after["status"] != models.StatusDraft {
		t.Errorf("status changed to %v after rejected transition", after["status"])
	}
}

func TestSecondConversionRejected(t *testing.T) {
	app, tenant, client := setupApp(t)

	quote := createQuote(t, app, tenant, client)
	id := quote["id"].(string)
	callback(t, app, fiber.MethodPut, "/api/devis/"+id+"/send", tenant, nil)
	callback(t, app, fiber.MethodPut, "/api/devis/"+id+"/accept", tenant, nil)

	status, _ := callback(t, app, fiber.MethodPut, "/api/devis/"+id+"/convert-to-facture", tenant, nil)
	if status != fiber.StatusCreated {
		t.Fatalf("first convert: status %d", status)
	}
	status, body := callback(t, app, fiber.MethodPut, "/api/devis/"+id+"/convert-to-facture", tenant, nil)
	if status != fiber.StatusConflict {
		t.Fatalf("second convert: status %d, body %v", status, body)
	}

	var count int64
	if err := database.DB.Model(&models.Invoice{}).Where("tenant_id = ?", tenant).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("invoice count = %d, want exactly 1", count)
	}
}

func TestSoftDeletedQuoteHiddenFromListButFetchable(t *testing.T) {
	app, tenant, client := setupApp(t)

	kept := createQuote(t, app, tenant, client)
	dropped := createQuote(t, app, tenant, client)
	droppedID := dropped["id"].(string)

	status, _ := callback(t, app, fiber.MethodDelete, "/api/devis/"+droppedID, tenant, nil)
	if status != fiber.StatusOK {
		t.Fatalf("delete: status %d", status)
	}

	_, list := callback(t, app, fiber.MethodGet, "/api/devis", tenant, nil)
	docs, _ := list["documents"].([]any)
	if len(docs) != 1 {
		t.Fatalf("list = %d documents, want 1", len(docs))
	}
	first, _ := docs[0].(map[string]any)
	if first["id"] != kept["id"] {
		t.Errorf("listed id = %v, want the kept quote %v", first["id"], kept["id"])
	}

	status, fetched := callback(t, app, fiber.MethodGet, "/api/devis/"+droppedID, tenant, nil)
	if status != fiber.StatusOK {
		t.Fatalf("deleted quote should stay addressable by id, got %d", status)
	}
	if fetched["deleted_at"] == nil {
		t.Error("fetched quote should carry its deletion timestamp")
	}
}

func TestDeleteConvertedOrderRejected(t *testing.T) {
	app, tenant, client := setupApp(t)

	status, order := callback(t, app, fiber.MethodPost, "/api/bons-commande", tenant, map[string]any{
		"client_id": client,
		"lines":     []map[string]any{{"label": "Fourniture", "quantity": 3, "unit_price": 40}},
	})
	if status != fiber.StatusCreated {
		t.Fatalf("create order: status %d, body %v", status, order)
	}
	id := order["id"].(string)

	callback(t, app, fiber.MethodPut, "/api/bons-commande/"+id+"/validate", tenant, nil)
	status, _ = callback(t, app, fiber.MethodPut, "/api/bons-commande/"+id+"/convert-to-facture", tenant, nil)
	if status != fiber.StatusCreated {
		t.Fatalf("convert order: status %d", status)
	}

	status, body := callback(t, app, fiber.MethodDelete, "/api/bons-commande/"+id, tenant, nil)
	if status != fiber.StatusConflict {
		t.Fatalf("delete converted order: status %d, body %v", status, body)
	}
}

func TestQuoteToOrderConversion(t *testing.T) {
	app, tenant, client := setupApp(t)

	quote := createQuote(t, app, tenant, client)
	id := quote["id"].(string)
	callback(t, app, fiber.MethodPut, "/api/devis/"+id+"/send", tenant, nil)
	callback(t, app, fiber.MethodPut, "/api/devis/"+id+"/accept", tenant, nil)

	status, order := callback(t, app, fiber.MethodPut, "/api/devis/"+id+"/convert-to-bdc", tenant, nil)
	if status != fiber.StatusCreated {
		t.Fatalf("convert to order: status %d, body %v", status, order)
	}
	number, _ := order["number"].(string)
	if len(number) < 4 || number[:4] != "BDC-" {
		t.Errorf("order number = %q, want BDC- prefix", number)
	}
	if order["status"] != models.StatusDraft {
		t.Errorf("new order status = %v, want %s", order["status"], models.StatusDraft)
	}

	_, after := callback(t, app, fiber.MethodGet, "/api/devis/"+id, tenant, nil)
	if after["status"] != models.StatusOrdered {
		t.Errorf("quote status = %v, want %s", after["status"], models.StatusOrdered)
	}
	if after["order_id"] != order["id"] {
		t.Errorf("quote order_id = %v, want %v", after["order_id"], order["id"])
	}
}

func TestUserRequestForwardedToEngine(t *testing.T) {
	app, tenant, client := setupApp(t)

	var captured automation.Command
	var capturedPath string
	engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"accepted":true}`))
	}))
	defer engine.Close()
	automation.Default = automation.NewClient(engine.URL)

	token, err := middlewares.GenerateJWT(uuid.NewString(), tenant, models.RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	payload, _ := json.Marshal(map[string]any{
		"client_id": client,
		"lines":     []map[string]any{{"label": "Prestation", "unit_price": 100}},
	})
	req := httptest.NewRequest(fiber.MethodPost, "/api/devis", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("forwarded create: status %d, body %s", resp.StatusCode, raw)
	}
	raw, _ := io.ReadAll(resp.Body)
	var relayed map[string]any
	if err := json.Unmarshal(raw, &relayed); err != nil || relayed["accepted"] != true {
		t.Errorf("engine response not relayed verbatim: %s", raw)
	}

	if capturedPath != "/webhook/devis-created" {
		t.Errorf("webhook path = %q, want /webhook/devis-created", capturedPath)
	}
	if captured.Event != "devis_create" {
		t.Errorf("event = %q, want devis_create", captured.Event)
	}
	if captured.TenantID != tenant {
		t.Errorf("tenantId = %q, want %q", captured.TenantID, tenant)
	}

	// Nothing persisted locally: the engine owns the write, which comes
	// back later as a callback.
	var count int64
	if err := database.DB.Model(&models.Document{}).Where("tenant_id = ?", tenant).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("forwarded create persisted %d documents locally", count)
	}
}
