package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant is the issuing company. Its identity fields feed the
// document-for-rendering payload handed to the PDF collaborator.
type Tenant struct {
	Id          string `json:"id" gorm:"primaryKey"`
	CompanyName string `json:"company_name" gorm:"not null;unique"`
	Siret       string `json:"siret"`
	VatNumber   string `json:"vat_number"`
	Address     string `json:"address"`
	Zip         string `json:"zip"`
	City        string `json:"city"`
	Country     string `json:"country"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
}

func (tenant *Tenant) BeforeCreate(tx *gorm.DB) (err error) {
	if tenant.Id == "" {
		tenant.Id = uuid.NewString()
	}
	return
}
