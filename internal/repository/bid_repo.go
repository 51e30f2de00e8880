package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BidSummary is a bid list row with joined RFQ/vendor metadata.
type BidSummary struct {
	model.Bid
	RFQNumber     string `gorm:"column:rfq_number" json:"rfq_number"`
	RFQTitle      string `gorm:"column:rfq_title" json:"rfq_title"`
	RFQTitleAr    string `gorm:"column:rfq_title_ar" json:"rfq_title_ar"`
	VendorEmail   string `gorm:"column:vendor_email" json:"vendor_email,omitempty"`
	VendorCompany string `gorm:"column:vendor_company" json:"vendor_company,omitempty"`
}

// BidItemDetail is a bid item joined with its RFQ line item.
type BidItemDetail struct {
	model.BidItem
	ItemName   string          `gorm:"column:item_name" json:"item_name"`
	ItemNameAr string          `gorm:"column:item_name_ar" json:"item_name_ar"`
	Quantity   decimal.Decimal `gorm:"column:quantity" json:"quantity"`
	Unit       string          `gorm:"column:unit" json:"unit"`
	UnitAr     string          `gorm:"column:unit_ar" json:"unit_ar"`
}

// BidListFilter narrows vendor bid listings.
type BidListFilter struct {
	Status string
	Page   int
	Limit  int
}

// BidRepository defines data access for bids and their items.
type BidRepository interface {
	Create(ctx context.Context, bid *model.Bid) error
	CreateItem(ctx context.Context, item *model.BidItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Bid, error)
	FindByIDForVendor(ctx context.Context, id, vendorID uuid.UUID) (*model.Bid, error)
	ExistsForRFQAndVendor(ctx context.Context, rfqID, vendorID uuid.UUID) (bool, error)
	FindItems(ctx context.Context, bidID uuid.UUID) ([]model.BidItem, error)
	FindItemDetails(ctx context.Context, bidID uuid.UUID) ([]BidItemDetail, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, filter BidListFilter) ([]BidSummary, int64, error)
	ListByRFQ(ctx context.Context, rfqID uuid.UUID) ([]BidSummary, error)
	Save(ctx context.Context, bid *model.Bid) error
	RejectOthers(ctx context.Context, rfqID, acceptedBidID, reviewerID uuid.UUID, at time.Time) error
}

type bidRepository struct {
	db *gorm.DB
}

func NewBidRepository(db *gorm.DB) BidRepository {
	return &bidRepository{db: db}
}

func (r *bidRepository) Create(ctx context.Context, bid *model.Bid) error {
	return GetDB(ctx, r.db).Omit("Items").Create(bid).Error
}

func (r *bidRepository) CreateItem(ctx context.Context, item *model.BidItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *bidRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Bid, error) {
	var bid model.Bid
	if err := GetDB(ctx, r.db).First(&bid, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &bid, nil
}

func (r *bidRepository) FindByIDForVendor(ctx context.Context, id, vendorID uuid.UUID) (*model.Bid, error) {
	var bid model.Bid
	if err := GetDB(ctx, r.db).First(&bid, "id = ? AND vendor_id = ?", id, vendorID).Error; err != nil {
		return nil, err
	}
	return &bid, nil
}

func (r *bidRepository) ExistsForRFQAndVendor(ctx context.Context, rfqID, vendorID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Bid{}).
		Where("rfq_id = ? AND vendor_id = ?", rfqID, vendorID).
		Count(&count).Error
	return count > 0, err
}

func (r *bidRepository) FindItems(ctx context.Context, bidID uuid.UUID) ([]model.BidItem, error) {
	var items []model.BidItem
	err := GetDB(ctx, r.db).Where("bid_id = ?", bidID).Find(&items).Error
	return items, err
}

func (r *bidRepository) FindItemDetails(ctx context.Context, bidID uuid.UUID) ([]BidItemDetail, error) {
	var rows []BidItemDetail
	err := GetDB(ctx, r.db).Model(&model.BidItem{}).
		Select("bid_items.*, rfq_items.item_name, rfq_items.item_name_ar, rfq_items.quantity, rfq_items.unit, rfq_items.unit_ar").
		Joins("JOIN rfq_items ON rfq_items.id = bid_items.rfq_item_id").
		Where("bid_items.bid_id = ?", bidID).
		Scan(&rows).Error
	return rows, err
}

func (r *bidRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID, filter BidListFilter) ([]BidSummary, int64, error) {
	db := GetDB(ctx, r.db)

	countQuery := db.Model(&model.Bid{}).Where("vendor_id = ?", vendorID)
	if filter.Status != "" {
		countQuery = countQuery.Where("status = ?", filter.Status)
	}
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := db.Model(&model.Bid{}).
		Select("bids.*, rfqs.rfq_number, rfqs.title AS rfq_title, rfqs.title_ar AS rfq_title_ar").
		Joins("JOIN rfqs ON rfqs.id = bids.rfq_id").
		Where("bids.vendor_id = ?", vendorID)
	if filter.Status != "" {
		query = query.Where("bids.status = ?", filter.Status)
	}

	var rows []BidSummary
	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("bids.created_at desc").Offset(offset).Limit(filter.Limit).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListByRFQ returns all bids for an RFQ ordered cheapest first, for admin review.
func (r *bidRepository) ListByRFQ(ctx context.Context, rfqID uuid.UUID) ([]BidSummary, error) {
	var rows []BidSummary
	err := GetDB(ctx, r.db).Model(&model.Bid{}).
		Select("bids.*, users.email AS vendor_email, vendor_profiles.company_name AS vendor_company").
		Joins("JOIN users ON users.id = bids.vendor_id").
		Joins("JOIN vendor_profiles ON vendor_profiles.id = bids.vendor_profile_id").
		Where("bids.rfq_id = ?", rfqID).
		Order("bids.total_amount asc").
		Scan(&rows).Error
	return rows, err
}

func (r *bidRepository) Save(ctx context.Context, bid *model.Bid) error {
	return GetDB(ctx, r.db).Omit("Items").Save(bid).Error
}

// RejectOthers marks every still-pending sibling bid on the RFQ rejected
// once one bid has been accepted.
func (r *bidRepository) RejectOthers(ctx context.Context, rfqID, acceptedBidID, reviewerID uuid.UUID, at time.Time) error {
	return GetDB(ctx, r.db).Model(&model.Bid{}).
		Where("rfq_id = ? AND id <> ? AND status = ?", rfqID, acceptedBidID, model.BidStatusPending).
		Updates(map[string]interface{}{
			"status":      model.BidStatusRejected,
			"reviewed_by": reviewerID,
			"reviewed_at": at,
		}).Error
}
