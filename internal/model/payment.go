package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment type enum constants. Both sub-types share the payments table.
const (
	PaymentTypeBuyer  = "buyer_payment"
	PaymentTypeVendor = "vendor_payment"
)

// Payment status enum constants
const (
	PaymentStatusPendingVerification = "pending_verification"
	PaymentStatusVerified            = "verified"
	PaymentStatusRejected            = "rejected"
	PaymentStatusReleased            = "released"
)

// Payment records one leg of the escrow flow. The partial unique index on
// order_id limited to vendor_payment rows makes release at-most-once per
// order; buyer payments may repeat after a rejection resets the order.
type Payment struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PaymentNumber        string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"payment_number"`
	OrderID              uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:uniq_payments_vendor_per_order,where:payment_type = 'vendor_payment'" json:"order_id"`
	BuyerID              *uuid.UUID      `gorm:"type:uuid;index" json:"buyer_id"`
	VendorID             *uuid.UUID      `gorm:"type:uuid;index" json:"vendor_id"`
	Amount               decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	PaymentMethod        string          `gorm:"type:varchar(50);not null;default:'bank_transfer'" json:"payment_method"`
	TransactionReference string          `gorm:"type:varchar(255)" json:"transaction_reference"`
	Status               string          `gorm:"type:varchar(30);not null;index" json:"status"`
	PaymentType          string          `gorm:"type:varchar(20);not null;index" json:"payment_type"`
	VerificationNotes    string          `gorm:"type:text" json:"verification_notes"`
	VerifiedBy           *uuid.UUID      `gorm:"type:uuid" json:"verified_by"`
	VerifiedAt           *time.Time      `json:"verified_at"`
	ReleasedBy           *uuid.UUID      `gorm:"type:uuid" json:"released_by"`
	ReleasedAt           *time.Time      `json:"released_at"`
	Notes                string          `gorm:"type:text" json:"notes"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
