package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Bid status enum constants
const (
	BidStatusPending  = "pending"
	BidStatusAccepted = "accepted"
	BidStatusRejected = "rejected"
)

// Bid is a vendor's offer against one RFQ. The composite unique index on
// (rfq_id, vendor_id) enforces at most one bid per vendor per RFQ at the
// storage layer, closing the check-then-insert race.
type Bid struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BidNumber       string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"bid_number"`
	RFQID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_bids_rfq_vendor" json:"rfq_id"`
	VendorID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_bids_rfq_vendor" json:"vendor_id"`
	VendorProfileID uuid.UUID       `gorm:"type:uuid;not null" json:"vendor_profile_id"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_amount"`
	Notes           string          `gorm:"type:text" json:"notes"`
	Status          string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ReviewedBy      *uuid.UUID      `gorm:"type:uuid" json:"reviewed_by"`
	ReviewedAt      *time.Time      `json:"reviewed_at"`
	ReviewNotes     string          `gorm:"type:text" json:"review_notes"`
	Items           []BidItem       `gorm:"foreignKey:BidID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (b *Bid) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// BidItem prices one RFQ line item. LineTotal = unit_price × rfq_item.quantity,
// always computed server-side.
type BidItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BidID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"bid_id"`
	RFQItemID    uuid.UUID       `gorm:"type:uuid;not null" json:"rfq_item_id"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	LeadTimeDays int             `gorm:"not null" json:"lead_time_days"`
	LineTotal    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"line_total"`
	Notes        string          `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (i *BidItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
