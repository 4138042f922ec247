package domain

import (
	"strings"
	"time"
)

// Address is embedded into clients (billing) and locations
type Address struct {
	Line1      string `gorm:"column:address_line1;type:varchar(255)" json:"address_line1"`
	Line2      string `gorm:"column:address_line2;type:varchar(255)" json:"address_line2,omitempty"`
	City       string `gorm:"type:varchar(100)" json:"city"`
	State      string `gorm:"type:varchar(100)" json:"state"`
	PostalCode string `gorm:"type:varchar(20)" json:"postal_code"`
	Country    string `gorm:"type:varchar(100)" json:"country"`
}

type Client struct {
	ID             string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	TenantID       string    `gorm:"type:uuid;not null;index" json:"tenant_id"`
	CompanyName    string    `gorm:"type:varchar(255);not null" json:"company_name"`
	ContactName    string    `gorm:"type:varchar(255)" json:"contact_name"`
	Email          string    `gorm:"type:varchar(180)" json:"email"`
	Phone          string    `gorm:"type:varchar(50)" json:"phone"`
	BillingAddress Address   `gorm:"embedded;embeddedPrefix:billing_" json:"billing_address"`
	IsActive       bool      `gorm:"not null" json:"is_active"`
	CreatedAt      time.Time `gorm:"type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time `gorm:"type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Client) TableName() string {
	return "clients"
}

// NewClient leaves TenantID empty; the tenancy layer assigns the bound tenant on insert
func NewClient(companyName, contactName, email, phone string, billing Address, now time.Time) *Client {
	return &Client{
		CompanyName:    strings.TrimSpace(companyName),
		ContactName:    strings.TrimSpace(contactName),
		Email:          NormalizeEmail(email),
		Phone:          strings.TrimSpace(phone),
		BillingAddress: billing,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
