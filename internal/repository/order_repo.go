package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderSummary is an order list row with joined party metadata.
type OrderSummary struct {
	model.Order
	BuyerEmail    string `gorm:"column:buyer_email" json:"buyer_email"`
	BuyerCompany  string `gorm:"column:buyer_company" json:"buyer_company"`
	VendorEmail   string `gorm:"column:vendor_email" json:"vendor_email"`
	VendorCompany string `gorm:"column:vendor_company" json:"vendor_company"`
	RFQNumber     string `gorm:"column:rfq_number" json:"rfq_number,omitempty"`
	RFQTitle      string `gorm:"column:rfq_title" json:"rfq_title,omitempty"`
}

// OrderListFilter narrows order listings. BuyerID/VendorID scope the list
// to one party; both nil means an admin listing.
type OrderListFilter struct {
	BuyerID  *uuid.UUID
	VendorID *uuid.UUID
	Status   string
	Page     int
	Limit    int
}

// OrderRepository defines data access for orders and their snapshot items.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	CreateItem(ctx context.Context, item *model.OrderItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	FindDetail(ctx context.Context, id uuid.UUID) (*OrderSummary, error)
	FindItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error)
	ExistsForBid(ctx context.Context, bidID uuid.UUID) (bool, error)
	List(ctx context.Context, filter OrderListFilter) ([]OrderSummary, int64, error)
	Updates(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderPartySelect = `orders.*,
	bu.email AS buyer_email, bp.company_name AS buyer_company,
	vu.email AS vendor_email, vp.company_name AS vendor_company`

func orderPartyJoins(db *gorm.DB) *gorm.DB {
	return db.
		Joins("JOIN users bu ON bu.id = orders.buyer_id").
		Joins("JOIN buyer_profiles bp ON bp.id = orders.buyer_profile_id").
		Joins("JOIN users vu ON vu.id = orders.vendor_id").
		Joins("JOIN vendor_profiles vp ON vp.id = orders.vendor_profile_id")
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return GetDB(ctx, r.db).Omit("Items").Create(order).Error
}

func (r *orderRepository) CreateItem(ctx context.Context, item *model.OrderItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := GetDB(ctx, r.db).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindDetail(ctx context.Context, id uuid.UUID) (*OrderSummary, error) {
	var row OrderSummary
	query := orderPartyJoins(GetDB(ctx, r.db).Model(&model.Order{})).
		Select(orderPartySelect + ", rfqs.rfq_number, rfqs.title AS rfq_title").
		Joins("JOIN rfqs ON rfqs.id = orders.rfq_id").
		Where("orders.id = ?", id)
	if err := query.First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *orderRepository) FindItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := GetDB(ctx, r.db).Where("order_id = ?", orderID).Order("created_at asc").Find(&items).Error
	return items, err
}

func (r *orderRepository) ExistsForBid(ctx context.Context, bidID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Order{}).Where("bid_id = ?", bidID).Count(&count).Error
	return count > 0, err
}

func (r *orderRepository) List(ctx context.Context, filter OrderListFilter) ([]OrderSummary, int64, error) {
	db := GetDB(ctx, r.db)

	apply := func(q *gorm.DB) *gorm.DB {
		if filter.BuyerID != nil {
			q = q.Where("orders.buyer_id = ?", *filter.BuyerID)
		}
		if filter.VendorID != nil {
			q = q.Where("orders.vendor_id = ?", *filter.VendorID)
		}
		if filter.Status != "" {
			q = q.Where("orders.status = ?", filter.Status)
		}
		return q
	}

	var total int64
	if err := apply(db.Model(&model.Order{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []OrderSummary
	offset := (filter.Page - 1) * filter.Limit
	query := apply(orderPartyJoins(db.Model(&model.Order{})).Select(orderPartySelect))
	if err := query.Order("orders.created_at desc").Offset(offset).Limit(filter.Limit).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *orderRepository) Updates(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return GetDB(ctx, r.db).Model(&model.Order{}).Where("id = ?", id).Updates(fields).Error
}
