package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order status enum constants. Status updates are validated against this
// allow-list; admin may set any listed value, cancelled is reachable from
// any point.
const (
	OrderStatusPendingPayment  = "pending_payment"
	OrderStatusPaymentReceived = "payment_received"
	OrderStatusConfirmed       = "confirmed"
	OrderStatusInWarehouse     = "in_warehouse"
	OrderStatusQAPending       = "qa_pending"
	OrderStatusQAPassed        = "qa_passed"
	OrderStatusQAFailed        = "qa_failed"
	OrderStatusShipped         = "shipped"
	OrderStatusDelivered       = "delivered"
	OrderStatusCompleted       = "completed"
	OrderStatusCancelled       = "cancelled"
)

// QA status enum constants
const (
	QAStatusPending = "pending"
	QAStatusPassed  = "passed"
	QAStatusFailed  = "failed"
)

// OrderStatuses is the allow-list used when validating status updates.
var OrderStatuses = []string{
	OrderStatusPendingPayment,
	OrderStatusPaymentReceived,
	OrderStatusConfirmed,
	OrderStatusInWarehouse,
	OrderStatusQAPending,
	OrderStatusQAPassed,
	OrderStatusQAFailed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// Order is created from exactly one accepted bid; the unique index on
// bid_id guarantees at most one order per bid. Subtotal is the vendor
// payout basis, TotalAmount the buyer-facing price after markup.
type Order struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderNumber       string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"order_number"`
	RFQID             uuid.UUID       `gorm:"type:uuid;not null;index" json:"rfq_id"`
	BidID             uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"bid_id"`
	BuyerID           uuid.UUID       `gorm:"type:uuid;not null;index" json:"buyer_id"`
	BuyerProfileID    uuid.UUID       `gorm:"type:uuid;not null" json:"buyer_profile_id"`
	VendorID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"vendor_id"`
	VendorProfileID   uuid.UUID       `gorm:"type:uuid;not null" json:"vendor_profile_id"`
	Subtotal          decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"subtotal"`
	MarkupPercent     decimal.Decimal `gorm:"type:decimal(8,4);not null" json:"markup_percent"`
	MarkupAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"markup_amount"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_amount"`
	DeliveryAddress   string          `gorm:"type:text" json:"delivery_address"`
	Status            string          `gorm:"type:varchar(30);not null;default:'pending_payment';index" json:"status"`
	QAStatus          string          `gorm:"type:varchar(20);not null;default:'pending'" json:"qa_status"`
	QANotes           string          `gorm:"type:text" json:"qa_notes"`
	QACheckedBy       *uuid.UUID      `gorm:"type:uuid" json:"qa_checked_by"`
	QACheckedAt       *time.Time      `json:"qa_checked_at"`
	Notes             string          `gorm:"type:text" json:"notes"`
	CreatedBy         uuid.UUID       `gorm:"type:uuid;not null" json:"created_by"`
	PaymentReceivedAt *time.Time      `json:"payment_received_at"`
	ConfirmedAt       *time.Time      `json:"confirmed_at"`
	ShippedAt         *time.Time      `json:"shipped_at"`
	DeliveredAt       *time.Time      `json:"delivered_at"`
	CompletedAt       *time.Time      `json:"completed_at"`
	Items             []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem is a denormalized snapshot of the winning bid item at
// conversion time; later changes to bid or RFQ data never affect it.
type OrderItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	RFQItemID       uuid.UUID       `gorm:"type:uuid;not null" json:"rfq_item_id"`
	ItemName        string          `gorm:"type:varchar(255);not null" json:"item_name"`
	ItemNameAr      string          `gorm:"type:varchar(255)" json:"item_name_ar"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Unit            string          `gorm:"type:varchar(50);not null" json:"unit"`
	UnitAr          string          `gorm:"type:varchar(50)" json:"unit_ar"`
	VendorUnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"vendor_unit_price"`
	BuyerUnitPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"buyer_unit_price"`
	LineTotal       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"line_total"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
