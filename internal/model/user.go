package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role enum constants
const (
	RoleBuyer  = "buyer"
	RoleVendor = "vendor"
	RoleAdmin  = "admin"
)

// Account status enum constants. Registration starts at pending; only an
// admin moves an account to active, and login requires active.
const (
	UserStatusPending   = "pending"
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
	UserStatusRejected  = "rejected"
)

// User is the central account entity shared by all three roles.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Role         string    `gorm:"type:varchar(20);not null;index" json:"role"`
	Status       string    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// BuyerProfile is the 1:1 company profile for a buyer account.
// Tax IDs are unique within buyer profiles, not globally.
type BuyerProfile struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	CompanyName     string    `gorm:"type:varchar(255);not null" json:"company_name"`
	CompanyNameAr   string    `gorm:"type:varchar(255)" json:"company_name_ar"`
	TaxID           string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"tax_id"`
	Address         string    `gorm:"type:text;not null" json:"address"`
	AddressAr       string    `gorm:"type:text" json:"address_ar"`
	City            string    `gorm:"type:varchar(100);not null" json:"city"`
	CityAr          string    `gorm:"type:varchar(100)" json:"city_ar"`
	ContactPerson   string    `gorm:"type:varchar(255);not null" json:"contact_person"`
	ContactPersonAr string    `gorm:"type:varchar(255)" json:"contact_person_ar"`
	Phone           string    `gorm:"type:varchar(20);not null" json:"phone"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (p *BuyerProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// VendorProfile is the 1:1 company profile for a vendor account.
// Categories is a JSON-encoded list of category tags.
type VendorProfile struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	CompanyName     string    `gorm:"type:varchar(255);not null" json:"company_name"`
	CompanyNameAr   string    `gorm:"type:varchar(255)" json:"company_name_ar"`
	TaxID           string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"tax_id"`
	Address         string    `gorm:"type:text;not null" json:"address"`
	AddressAr       string    `gorm:"type:text" json:"address_ar"`
	City            string    `gorm:"type:varchar(100);not null" json:"city"`
	CityAr          string    `gorm:"type:varchar(100)" json:"city_ar"`
	ContactPerson   string    `gorm:"type:varchar(255);not null" json:"contact_person"`
	ContactPersonAr string    `gorm:"type:varchar(255)" json:"contact_person_ar"`
	Phone           string    `gorm:"type:varchar(20);not null" json:"phone"`
	Categories      string    `gorm:"type:text" json:"categories"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (p *VendorProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
