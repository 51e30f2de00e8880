package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RFQ status enum constants. Draft RFQs are editable; an RFQ accepts bids
// while in submitted, pending, or bids_received. vendor_assigned and
// quotation_sent are part of the admin status vocabulary but are never set
// by the bid flow.
const (
	RFQStatusDraft            = "draft"
	RFQStatusSubmitted        = "submitted"
	RFQStatusPending          = "pending"
	RFQStatusVendorAssigned   = "vendor_assigned"
	RFQStatusBidsReceived     = "bids_received"
	RFQStatusQuotationSent    = "quotation_sent"
	RFQStatusAccepted         = "accepted"
	RFQStatusConvertedToOrder = "converted_to_order"
	RFQStatusCancelled        = "cancelled"
	RFQStatusRejected         = "rejected"
)

// Upload type enum constants
const (
	UploadTypeManual = "manual"
	UploadTypeExcel  = "excel"
	UploadTypePDF    = "pdf"
	UploadTypeImage  = "image"
	UploadTypeOCR    = "ocr"
)

// RFQ is a buyer-owned request for quotation.
type RFQ struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RFQNumber            string     `gorm:"type:varchar(30);uniqueIndex;not null" json:"rfq_number"`
	BuyerID              uuid.UUID  `gorm:"type:uuid;not null;index" json:"buyer_id"`
	BuyerProfileID       uuid.UUID  `gorm:"type:uuid;not null" json:"buyer_profile_id"`
	Title                string     `gorm:"type:varchar(255);not null" json:"title"`
	TitleAr              string     `gorm:"type:varchar(255)" json:"title_ar"`
	Description          string     `gorm:"type:text" json:"description"`
	DeliveryAddress      string     `gorm:"type:text;not null" json:"delivery_address"`
	DeliveryAddressAr    string     `gorm:"type:text" json:"delivery_address_ar"`
	RequiredDeliveryDate *time.Time `json:"required_delivery_date"`
	Status               string     `gorm:"type:varchar(30);not null;default:'draft';index" json:"status"`
	UploadType           string     `gorm:"type:varchar(20);not null;default:'manual'" json:"upload_type"`
	TotalItems           int        `gorm:"not null;default:0" json:"total_items"`
	SubmittedAt          *time.Time `json:"submitted_at"`
	Items                []RFQItem  `gorm:"foreignKey:RFQID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func (r *RFQ) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// AcceptsBids reports whether new bids may be placed against the RFQ.
func (r *RFQ) AcceptsBids() bool {
	switch r.Status {
	case RFQStatusSubmitted, RFQStatusPending, RFQStatusBidsReceived:
		return true
	}
	return false
}

// RFQItem is an RFQ line item. Items are immutable once the RFQ is
// submitted; quantity is the basis for all downstream totals.
type RFQItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	RFQID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"rfq_id"`
	ItemName       string          `gorm:"type:varchar(255);not null" json:"item_name"`
	ItemNameAr     string          `gorm:"type:varchar(255)" json:"item_name_ar"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Unit           string          `gorm:"type:varchar(50);not null" json:"unit"`
	UnitAr         string          `gorm:"type:varchar(50)" json:"unit_ar"`
	Brand          string          `gorm:"type:varchar(255)" json:"brand"`
	BrandAr        string          `gorm:"type:varchar(255)" json:"brand_ar"`
	Specifications string          `gorm:"type:text" json:"specifications"`
	LineNumber     int             `gorm:"not null" json:"line_number"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (i *RFQItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
