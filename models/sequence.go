package models

// DocumentSequence backs the numbering authority. One counter per
// (tenant, document type, year); the unique index is what makes the
// upsert increment atomic.
type DocumentSequence struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	TenantID string `json:"tenant_id" gorm:"not null;uniqueIndex:idx_document_sequences_key,priority:1"`
	DocType  string `json:"doc_type" gorm:"type:varchar(20);not null;uniqueIndex:idx_document_sequences_key,priority:2"`
	Year     int    `json:"year" gorm:"not null;uniqueIndex:idx_document_sequences_key,priority:3"`
	Counter  int64  `json:"counter" gorm:"not null;default:0"`
}
