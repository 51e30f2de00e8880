package service

import (
	"context"
	"errors"
	"time"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/refnum"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateRFQItemRequest is one line item of a new RFQ.
type CreateRFQItemRequest struct {
	ItemName       string          `json:"item_name" binding:"required"`
	ItemNameAr     string          `json:"item_name_ar"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required"`
	Unit           string          `json:"unit" binding:"required"`
	UnitAr         string          `json:"unit_ar"`
	Brand          string          `json:"brand"`
	BrandAr        string          `json:"brand_ar"`
	Specifications string          `json:"specifications"`
}

// CreateRFQRequest is the buyer RFQ creation payload.
type CreateRFQRequest struct {
	Title                string                 `json:"title" binding:"required"`
	TitleAr              string                 `json:"title_ar"`
	Description          string                 `json:"description"`
	DeliveryAddress      string                 `json:"delivery_address" binding:"required"`
	DeliveryAddressAr    string                 `json:"delivery_address_ar"`
	RequiredDeliveryDate *time.Time             `json:"required_delivery_date"`
	Items                []CreateRFQItemRequest `json:"items" binding:"required,min=1,dive"`
}

// RFQDetail is an RFQ with its line items loaded.
type RFQDetail struct {
	*model.RFQ
	Items []model.RFQItem `json:"items"`
}

// RFQService covers the buyer-side RFQ lifecycle plus admin listings.
type RFQService interface {
	Create(ctx context.Context, buyerID uuid.UUID, req CreateRFQRequest) (*RFQDetail, error)
	ListMine(ctx context.Context, buyerID uuid.UUID, filter repository.RFQListFilter) ([]repository.RFQSummary, int64, error)
	ListAll(ctx context.Context, filter repository.RFQListFilter) ([]repository.RFQSummary, int64, error)
	Get(ctx context.Context, id, callerID uuid.UUID, role string) (*RFQDetail, error)
	Submit(ctx context.Context, id, buyerID uuid.UUID) (*model.RFQ, error)
}

type rfqService struct {
	rfqs     repository.RFQRepository
	profiles repository.ProfileRepository
	txM      repository.TransactionManager
}

func NewRFQService(rfqs repository.RFQRepository, profiles repository.ProfileRepository, txM repository.TransactionManager) RFQService {
	return &rfqService{rfqs: rfqs, profiles: profiles, txM: txM}
}

var errRFQNotFound = apperr.New(apperr.NotFound, "RFQ not found", "طلب عرض الأسعار غير موجود")

func (s *rfqService) Create(ctx context.Context, buyerID uuid.UUID, req CreateRFQRequest) (*RFQDetail, error) {
	for _, item := range req.Items {
		if item.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, apperr.New(apperr.Validation,
				"Item quantity must be greater than zero", "يجب أن تكون كمية الصنف أكبر من صفر")
		}
	}

	profile, err := s.profiles.FindBuyerByUserID(ctx, buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.Forbidden, "Buyer profile not found", "ملف المشتري غير موجود")
		}
		return nil, apperr.Internalf("Failed to load buyer profile", "فشل تحميل ملف المشتري", err)
	}

	rfq := &model.RFQ{
		RFQNumber:            refnum.Generate("RFQ"),
		BuyerID:              buyerID,
		BuyerProfileID:       profile.ID,
		Title:                req.Title,
		TitleAr:              req.TitleAr,
		Description:          req.Description,
		DeliveryAddress:      req.DeliveryAddress,
		DeliveryAddressAr:    req.DeliveryAddressAr,
		RequiredDeliveryDate: req.RequiredDeliveryDate,
		Status:               model.RFQStatusDraft,
		UploadType:           model.UploadTypeManual,
		TotalItems:           len(req.Items),
	}

	var items []model.RFQItem
	err = s.txM.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.rfqs.Create(txCtx, rfq); err != nil {
			return apperr.Internalf("Failed to create RFQ", "فشل إنشاء طلب عرض الأسعار", err)
		}
		for i, reqItem := range req.Items {
			item := model.RFQItem{
				RFQID:          rfq.ID,
				ItemName:       reqItem.ItemName,
				ItemNameAr:     reqItem.ItemNameAr,
				Quantity:       reqItem.Quantity,
				Unit:           reqItem.Unit,
				UnitAr:         reqItem.UnitAr,
				Brand:          reqItem.Brand,
				BrandAr:        reqItem.BrandAr,
				Specifications: reqItem.Specifications,
				LineNumber:     i + 1,
			}
			if err := s.rfqs.CreateItem(txCtx, &item); err != nil {
				return apperr.Internalf("Failed to create RFQ item", "فشل إنشاء صنف طلب عرض الأسعار", err)
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &RFQDetail{RFQ: rfq, Items: items}, nil
}

func (s *rfqService) ListMine(ctx context.Context, buyerID uuid.UUID, filter repository.RFQListFilter) ([]repository.RFQSummary, int64, error) {
	rows, total, err := s.rfqs.ListByBuyer(ctx, buyerID, filter)
	if err != nil {
		return nil, 0, apperr.Internalf("Failed to list RFQs", "فشل جلب طلبات عروض الأسعار", err)
	}
	return rows, total, nil
}

func (s *rfqService) ListAll(ctx context.Context, filter repository.RFQListFilter) ([]repository.RFQSummary, int64, error) {
	rows, total, err := s.rfqs.ListAll(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Internalf("Failed to list RFQs", "فشل جلب طلبات عروض الأسعار", err)
	}
	return rows, total, nil
}

// Get loads an RFQ with its items. Buyers only see their own; a foreign
// RFQ id answers NotFound rather than Forbidden.
func (s *rfqService) Get(ctx context.Context, id, callerID uuid.UUID, role string) (*RFQDetail, error) {
	var (
		rfq *model.RFQ
		err error
	)
	if role == model.RoleBuyer {
		rfq, err = s.rfqs.FindByIDForBuyer(ctx, id, callerID)
	} else {
		rfq, err = s.rfqs.FindByID(ctx, id)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errRFQNotFound
		}
		return nil, apperr.Internalf("Failed to load RFQ", "فشل تحميل طلب عرض الأسعار", err)
	}

	items, err := s.rfqs.FindItems(ctx, rfq.ID)
	if err != nil {
		return nil, apperr.Internalf("Failed to load RFQ items", "فشل تحميل أصناف طلب عرض الأسعار", err)
	}
	return &RFQDetail{RFQ: rfq, Items: items}, nil
}

// Submit moves a draft RFQ to submitted, opening it for bids.
func (s *rfqService) Submit(ctx context.Context, id, buyerID uuid.UUID) (*model.RFQ, error) {
	rfq, err := s.rfqs.FindByIDForBuyer(ctx, id, buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errRFQNotFound
		}
		return nil, apperr.Internalf("Failed to load RFQ", "فشل تحميل طلب عرض الأسعار", err)
	}
	if rfq.Status != model.RFQStatusDraft {
		return nil, apperr.New(apperr.InvalidState,
			"Only draft RFQs can be submitted", "يمكن تقديم طلبات عروض الأسعار في حالة المسودة فقط")
	}

	now := time.Now()
	if err := s.rfqs.MarkSubmitted(ctx, rfq.ID, now); err != nil {
		return nil, apperr.Internalf("Failed to submit RFQ", "فشل تقديم طلب عرض الأسعار", err)
	}
	rfq.Status = model.RFQStatusSubmitted
	rfq.SubmittedAt = &now
	return rfq, nil
}
