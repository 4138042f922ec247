package domain

import "time"

const DefaultCountry = "Canada"

type Location struct {
	ID                  string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	TenantID            string    `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ClientID            string    `gorm:"type:uuid;not null;index" json:"client_id"`
	Address             Address   `gorm:"embedded" json:"address"`
	Latitude            *float64  `gorm:"type:decimal(10,8)" json:"latitude,omitempty"`
	Longitude           *float64  `gorm:"type:decimal(11,8)" json:"longitude,omitempty"`
	SpecialInstructions string    `gorm:"type:text" json:"special_instructions,omitempty"`
	IsPrimary           bool      `gorm:"not null" json:"is_primary"`
	CreatedAt           time.Time `gorm:"type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time `gorm:"type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"updated_at"`
	Client              *Client   `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Location) TableName() string {
	return "locations"
}

func NewLocation(clientID string, address Address, now time.Time) *Location {
	if address.Country == "" {
		address.Country = DefaultCountry
	}
	return &Location{
		ClientID:  clientID,
		Address:   address,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
