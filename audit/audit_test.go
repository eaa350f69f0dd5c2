package audit

import (
	"testing"

	"facturation-backend/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupAuditDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.EventLog{}, &models.Notification{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestRecordSuccessWritesLogOnly(t *testing.T) {
	db := setupAuditDB(t)

	Record(db, "tenant-a", "devis_create", "Devis", "doc-1",
		map[string]any{"number": "DEV-2026-000001"}, models.OutcomeSuccess, "")

	var logs []models.EventLog
	if err := db.Find(&logs).Error; err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 log row, got %d", len(logs))
	}
	if logs[0].Outcome != models.OutcomeSuccess || logs[0].Operation != "devis_create" {
		t.Fatalf("unexpected row: %+v", logs[0])
	}

	var count int64
	db.Model(&models.Notification{}).Count(&count)
	if count != 0 {
		t.Fatalf("success must not create notifications, got %d", count)
	}
}

func TestRecordErrorCreatesNotification(t *testing.T) {
	db := setupAuditDB(t)

	Record(db, "tenant-a", "devis_convert_to_invoice", "Devis", "doc-1",
		map[string]any{"error": "boom"}, models.OutcomeError, "boom")

	var notif models.Notification
	if err := db.First(&notif).Error; err != nil {
		t.Fatalf("expected a notification: %v", err)
	}
	if notif.Type != "devis_convert_to_invoice_erreur" {
		t.Fatalf("type = %s", notif.Type)
	}
	if notif.Message != "boom" {
		t.Fatalf("message = %s", notif.Message)
	}
}

func TestRecordSwallowsStorageFailures(t *testing.T) {
	db := setupAuditDB(t)
	// Dropping the table makes every write fail; Record must not panic
	// or surface the error.
	if err := db.Migrator().DropTable(&models.EventLog{}); err != nil {
		t.Fatal(err)
	}
	Record(db, "tenant-a", "devis_create", "Devis", "doc-1", nil, models.OutcomeSuccess, "")
}
