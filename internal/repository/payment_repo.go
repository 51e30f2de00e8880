package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentSummary is a payment list row with joined order metadata.
type PaymentSummary struct {
	model.Payment
	OrderNumber string          `gorm:"column:order_number" json:"order_number"`
	OrderStatus string          `gorm:"column:order_status" json:"order_status"`
	OrderTotal  decimal.Decimal `gorm:"column:order_total" json:"order_total"`
}

// PaymentListFilter narrows payment listings. BuyerID/VendorID scope the
// list to one party; both nil means an admin listing.
type PaymentListFilter struct {
	BuyerID     *uuid.UUID
	VendorID    *uuid.UUID
	Status      string
	PaymentType string
	Page        int
	Limit       int
}

// EscrowSummary aggregates money held and released across the ledger.
// EscrowBalance counts buyer payments verified but not yet released;
// PlatformRevenue is the realized spread between money in and money out.
type EscrowSummary struct {
	TotalReceived       decimal.Decimal `json:"total_received"`
	ReceivedCount       int64           `json:"received_count"`
	TotalReleased       decimal.Decimal `json:"total_released"`
	ReleasedCount       int64           `json:"released_count"`
	EscrowBalance       decimal.Decimal `json:"escrow_balance"`
	PlatformRevenue     decimal.Decimal `json:"platform_revenue"`
	PendingVerification decimal.Decimal `json:"pending_verification"`
	PendingCount        int64           `json:"pending_count"`
}

// PaymentRepository defines data access for the payment ledger.
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	FindDetail(ctx context.Context, id uuid.UUID) (*PaymentSummary, error)
	FindVendorPaymentByOrder(ctx context.Context, orderID uuid.UUID) (*model.Payment, error)
	List(ctx context.Context, filter PaymentListFilter) ([]PaymentSummary, int64, error)
	Updates(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Escrow(ctx context.Context) (*EscrowSummary, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentOrderSelect = `payments.*,
	orders.order_number, orders.status AS order_status, orders.total_amount AS order_total`

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return GetDB(ctx, r.db).Create(payment).Error
}

func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	if err := GetDB(ctx, r.db).First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindDetail(ctx context.Context, id uuid.UUID) (*PaymentSummary, error) {
	var row PaymentSummary
	err := GetDB(ctx, r.db).Model(&model.Payment{}).
		Select(paymentOrderSelect).
		Joins("JOIN orders ON orders.id = payments.order_id").
		Where("payments.id = ?", id).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *paymentRepository) FindVendorPaymentByOrder(ctx context.Context, orderID uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	err := GetDB(ctx, r.db).
		Where("order_id = ? AND payment_type = ?", orderID, model.PaymentTypeVendor).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) List(ctx context.Context, filter PaymentListFilter) ([]PaymentSummary, int64, error) {
	db := GetDB(ctx, r.db)

	apply := func(q *gorm.DB) *gorm.DB {
		if filter.BuyerID != nil {
			q = q.Where("payments.buyer_id = ?", *filter.BuyerID)
		}
		if filter.VendorID != nil {
			q = q.Where("payments.vendor_id = ?", *filter.VendorID)
		}
		if filter.Status != "" {
			q = q.Where("payments.status = ?", filter.Status)
		}
		if filter.PaymentType != "" {
			q = q.Where("payments.payment_type = ?", filter.PaymentType)
		}
		return q
	}

	var total int64
	if err := apply(db.Model(&model.Payment{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []PaymentSummary
	offset := (filter.Page - 1) * filter.Limit
	query := apply(db.Model(&model.Payment{}).
		Select(paymentOrderSelect).
		Joins("JOIN orders ON orders.id = payments.order_id"))
	if err := query.Order("payments.created_at desc").Offset(offset).Limit(filter.Limit).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *paymentRepository) Updates(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return GetDB(ctx, r.db).Model(&model.Payment{}).Where("id = ?", id).Updates(fields).Error
}

func (r *paymentRepository) Escrow(ctx context.Context) (*EscrowSummary, error) {
	db := GetDB(ctx, r.db)

	type sumRow struct {
		Total decimal.Decimal `gorm:"column:total"`
		Count int64           `gorm:"column:count"`
	}

	sum := func(paymentType string, statuses []string) (sumRow, error) {
		var row sumRow
		err := db.Model(&model.Payment{}).
			Select("COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
			Where("payment_type = ? AND status IN ?", paymentType, statuses).
			Scan(&row).Error
		return row, err
	}

	received, err := sum(model.PaymentTypeBuyer, []string{model.PaymentStatusVerified, model.PaymentStatusReleased})
	if err != nil {
		return nil, err
	}
	released, err := sum(model.PaymentTypeVendor, []string{model.PaymentStatusReleased})
	if err != nil {
		return nil, err
	}
	held, err := sum(model.PaymentTypeBuyer, []string{model.PaymentStatusVerified})
	if err != nil {
		return nil, err
	}
	pending, err := sum(model.PaymentTypeBuyer, []string{model.PaymentStatusPendingVerification})
	if err != nil {
		return nil, err
	}

	return &EscrowSummary{
		TotalReceived:       received.Total,
		ReceivedCount:       received.Count,
		TotalReleased:       released.Total,
		ReleasedCount:       released.Count,
		EscrowBalance:       held.Total,
		PlatformRevenue:     received.Total.Sub(released.Total),
		PendingVerification: pending.Total,
		PendingCount:        pending.Count,
	}, nil
}
