package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category groups catalog products, bilingual.
type Category struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	NameAr       string    `gorm:"type:varchar(255)" json:"name_ar"`
	DisplayOrder int       `gorm:"default:0" json:"display_order"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Product is a read-only catalog entry used to seed RFQ line items.
type Product struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CategoryID     *uuid.UUID      `gorm:"type:uuid;index" json:"category_id"`
	Category       *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	SKU            string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku"`
	Name           string          `gorm:"type:varchar(255);not null" json:"name"`
	NameAr         string          `gorm:"type:varchar(255)" json:"name_ar"`
	Description    string          `gorm:"type:text" json:"description"`
	DescriptionAr  string          `gorm:"type:text" json:"description_ar"`
	Unit           string          `gorm:"type:varchar(50);not null" json:"unit"`
	UnitAr         string          `gorm:"type:varchar(50)" json:"unit_ar"`
	EstimatedPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"estimated_price"`
	IsActive       bool            `gorm:"default:true;index" json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
