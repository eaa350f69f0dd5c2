package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client is a tenant-scoped entry of the client registry. Documents
// reference clients by id; creation validates the reference exists.
type Client struct {
	Id          string `json:"id" gorm:"primaryKey"`
	TenantID    string `json:"tenant_id" gorm:"not null;index"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	CompanyName string `json:"company_name"`
	Email       string `json:"email" gorm:"not null"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Zip         string `json:"zip"`
	Country     string `json:"country"`
	Active      bool   `json:"-" gorm:"default:true"`
}

func (client *Client) BeforeCreate(tx *gorm.DB) (err error) {
	if client.Id == "" {
		client.Id = uuid.NewString()
	}
	return
}

// DisplayName prefers the company name over the person name.
func (client *Client) DisplayName() string {
	if client.CompanyName != "" {
		return client.CompanyName
	}
	return client.FirstName + " " + client.LastName
}
