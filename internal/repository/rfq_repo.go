package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RFQSummary is an RFQ list row with joined metadata.
type RFQSummary struct {
	model.RFQ
	ItemCount  int64  `gorm:"column:item_count" json:"item_count"`
	BuyerEmail string `gorm:"column:buyer_email" json:"buyer_email,omitempty"`
	BidCount   int64  `gorm:"column:bid_count" json:"bid_count"`
}

// RFQListFilter narrows RFQ listings.
type RFQListFilter struct {
	Status string
	Page   int
	Limit  int
}

// RFQRepository defines data access for RFQs and their line items.
type RFQRepository interface {
	Create(ctx context.Context, rfq *model.RFQ) error
	CreateItem(ctx context.Context, item *model.RFQItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RFQ, error)
	FindByIDForBuyer(ctx context.Context, id, buyerID uuid.UUID) (*model.RFQ, error)
	FindItems(ctx context.Context, rfqID uuid.UUID) ([]model.RFQItem, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, filter RFQListFilter) ([]RFQSummary, int64, error)
	ListAll(ctx context.Context, filter RFQListFilter) ([]RFQSummary, int64, error)
	ListAvailableForVendor(ctx context.Context, vendorID uuid.UUID, page, limit int) ([]RFQSummary, int64, error)
	MarkSubmitted(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type rfqRepository struct {
	db *gorm.DB
}

func NewRFQRepository(db *gorm.DB) RFQRepository {
	return &rfqRepository{db: db}
}

// openStatuses are the RFQ states that accept new bids.
var openStatuses = []string{model.RFQStatusSubmitted, model.RFQStatusPending, model.RFQStatusBidsReceived}

const rfqItemCountSelect = "(SELECT COUNT(*) FROM rfq_items WHERE rfq_items.rfq_id = rfqs.id) AS item_count"

func (r *rfqRepository) Create(ctx context.Context, rfq *model.RFQ) error {
	return GetDB(ctx, r.db).Omit("Items").Create(rfq).Error
}

func (r *rfqRepository) CreateItem(ctx context.Context, item *model.RFQItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *rfqRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.RFQ, error) {
	var rfq model.RFQ
	if err := GetDB(ctx, r.db).First(&rfq, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rfq, nil
}

func (r *rfqRepository) FindByIDForBuyer(ctx context.Context, id, buyerID uuid.UUID) (*model.RFQ, error) {
	var rfq model.RFQ
	if err := GetDB(ctx, r.db).First(&rfq, "id = ? AND buyer_id = ?", id, buyerID).Error; err != nil {
		return nil, err
	}
	return &rfq, nil
}

func (r *rfqRepository) FindItems(ctx context.Context, rfqID uuid.UUID) ([]model.RFQItem, error) {
	var items []model.RFQItem
	err := GetDB(ctx, r.db).Where("rfq_id = ?", rfqID).Order("line_number asc").Find(&items).Error
	return items, err
}

func (r *rfqRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID, filter RFQListFilter) ([]RFQSummary, int64, error) {
	db := GetDB(ctx, r.db)

	countQuery := db.Model(&model.RFQ{}).Where("buyer_id = ?", buyerID)
	if filter.Status != "" {
		countQuery = countQuery.Where("status = ?", filter.Status)
	}
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := db.Model(&model.RFQ{}).
		Select("rfqs.*, " + rfqItemCountSelect).
		Where("buyer_id = ?", buyerID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var rows []RFQSummary
	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at desc").Offset(offset).Limit(filter.Limit).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *rfqRepository) ListAll(ctx context.Context, filter RFQListFilter) ([]RFQSummary, int64, error) {
	db := GetDB(ctx, r.db)

	countQuery := db.Model(&model.RFQ{})
	if filter.Status != "" {
		countQuery = countQuery.Where("status = ?", filter.Status)
	}
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := db.Model(&model.RFQ{}).
		Select("rfqs.*, users.email AS buyer_email, (SELECT COUNT(*) FROM bids WHERE bids.rfq_id = rfqs.id) AS bid_count, "+rfqItemCountSelect).
		Joins("JOIN users ON users.id = rfqs.buyer_id")
	if filter.Status != "" {
		query = query.Where("rfqs.status = ?", filter.Status)
	}

	var rows []RFQSummary
	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("rfqs.created_at desc").Offset(offset).Limit(filter.Limit).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListAvailableForVendor returns open RFQs the vendor has not bid on.
// Exclusion is a left join, not a NOT IN subquery, so the (rfq_id, vendor_id)
// index on bids can serve it.
func (r *rfqRepository) ListAvailableForVendor(ctx context.Context, vendorID uuid.UUID, page, limit int) ([]RFQSummary, int64, error) {
	db := GetDB(ctx, r.db)

	base := db.Model(&model.RFQ{}).
		Joins("LEFT JOIN bids ON bids.rfq_id = rfqs.id AND bids.vendor_id = ?", vendorID).
		Where("rfqs.status IN ?", openStatuses).
		Where("bids.id IS NULL")

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []RFQSummary
	offset := (page - 1) * limit
	err := base.Session(&gorm.Session{}).
		Select("rfqs.*, " + rfqItemCountSelect).
		Order("rfqs.created_at desc").
		Offset(offset).Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *rfqRepository) MarkSubmitted(ctx context.Context, id uuid.UUID, at time.Time) error {
	return GetDB(ctx, r.db).Model(&model.RFQ{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       model.RFQStatusSubmitted,
			"submitted_at": at,
		}).Error
}

func (r *rfqRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return GetDB(ctx, r.db).Model(&model.RFQ{}).Where("id = ?", id).Update("status", status).Error
}
