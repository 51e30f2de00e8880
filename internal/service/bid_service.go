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

// SubmitBidItemRequest prices one RFQ line item.
type SubmitBidItemRequest struct {
	RFQItemID    uuid.UUID       `json:"rfq_item_id" binding:"required"`
	UnitPrice    decimal.Decimal `json:"unit_price" binding:"required"`
	LeadTimeDays int             `json:"lead_time_days" binding:"min=0"`
	Notes        string          `json:"notes"`
}

// SubmitBidRequest is the vendor bid payload. Every RFQ item must be
// priced; line and bid totals are computed server-side.
type SubmitBidRequest struct {
	RFQID uuid.UUID              `json:"rfq_id" binding:"required"`
	Notes string                 `json:"notes"`
	Items []SubmitBidItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ReviewBidRequest is the admin accept/reject decision on a pending bid.
type ReviewBidRequest struct {
	Status string `json:"status" binding:"required,oneof=accepted rejected"`
	Notes  string `json:"notes"`
}

// BidDetail is a bid with its priced items joined to the RFQ lines.
type BidDetail struct {
	*model.Bid
	Items []repository.BidItemDetail `json:"items"`
}

// BidService covers the vendor bidding flow plus admin bid review listings.
type BidService interface {
	ListAvailableRFQs(ctx context.Context, vendorID uuid.UUID, page, limit int) ([]repository.RFQSummary, int64, error)
	GetRFQForBidding(ctx context.Context, vendorID, rfqID uuid.UUID) (*RFQDetail, error)
	Submit(ctx context.Context, vendorID uuid.UUID, req SubmitBidRequest) (*BidDetail, error)
	ListMine(ctx context.Context, vendorID uuid.UUID, filter repository.BidListFilter) ([]repository.BidSummary, int64, error)
	Get(ctx context.Context, id, callerID uuid.UUID, role string) (*BidDetail, error)
	ListForRFQ(ctx context.Context, rfqID uuid.UUID) ([]repository.BidSummary, error)
	Review(ctx context.Context, id, adminID uuid.UUID, req ReviewBidRequest) (*model.Bid, error)
}

type bidService struct {
	bids     repository.BidRepository
	rfqs     repository.RFQRepository
	profiles repository.ProfileRepository
	txM      repository.TransactionManager
	notifier Notifier
}

func NewBidService(bids repository.BidRepository, rfqs repository.RFQRepository, profiles repository.ProfileRepository, txM repository.TransactionManager, notifier Notifier) BidService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &bidService{bids: bids, rfqs: rfqs, profiles: profiles, txM: txM, notifier: notifier}
}

var errBidNotFound = apperr.New(apperr.NotFound, "Bid not found", "العرض غير موجود")

func (s *bidService) ListAvailableRFQs(ctx context.Context, vendorID uuid.UUID, page, limit int) ([]repository.RFQSummary, int64, error) {
	rows, total, err := s.rfqs.ListAvailableForVendor(ctx, vendorID, page, limit)
	if err != nil {
		return nil, 0, apperr.Internalf("Failed to list available RFQs", "فشل جلب طلبات عروض الأسعار المتاحة", err)
	}
	return rows, total, nil
}

// GetRFQForBidding loads an open RFQ with its items for a vendor preparing
// a bid. Closed RFQs and ones the vendor already bid on answer NotFound.
func (s *bidService) GetRFQForBidding(ctx context.Context, vendorID, rfqID uuid.UUID) (*RFQDetail, error) {
	rfq, err := s.rfqs.FindByID(ctx, rfqID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errRFQNotFound
		}
		return nil, apperr.Internalf("Failed to load RFQ", "فشل تحميل طلب عرض الأسعار", err)
	}
	if !rfq.AcceptsBids() {
		return nil, errRFQNotFound
	}
	already, err := s.bids.ExistsForRFQAndVendor(ctx, rfqID, vendorID)
	if err != nil {
		return nil, apperr.Internalf("Failed to check existing bid", "فشل التحقق من العرض الحالي", err)
	}
	if already {
		return nil, errRFQNotFound
	}

	items, err := s.rfqs.FindItems(ctx, rfqID)
	if err != nil {
		return nil, apperr.Internalf("Failed to load RFQ items", "فشل تحميل أصناف طلب عرض الأسعار", err)
	}
	return &RFQDetail{RFQ: rfq, Items: items}, nil
}

func (s *bidService) Submit(ctx context.Context, vendorID uuid.UUID, req SubmitBidRequest) (*BidDetail, error) {
	profile, err := s.profiles.FindVendorByUserID(ctx, vendorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.Forbidden, "Vendor profile not found", "ملف المورد غير موجود")
		}
		return nil, apperr.Internalf("Failed to load vendor profile", "فشل تحميل ملف المورد", err)
	}

	rfq, err := s.rfqs.FindByID(ctx, req.RFQID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errRFQNotFound
		}
		return nil, apperr.Internalf("Failed to load RFQ", "فشل تحميل طلب عرض الأسعار", err)
	}
	if !rfq.AcceptsBids() {
		return nil, apperr.New(apperr.InvalidState,
			"This RFQ is not accepting bids", "طلب عرض الأسعار هذا لا يقبل العروض")
	}

	already, err := s.bids.ExistsForRFQAndVendor(ctx, req.RFQID, vendorID)
	if err != nil {
		return nil, apperr.Internalf("Failed to check existing bid", "فشل التحقق من العرض الحالي", err)
	}
	if already {
		return nil, apperr.New(apperr.Conflict,
			"You have already submitted a bid for this RFQ", "لقد قدمت عرضاً لهذا الطلب مسبقاً")
	}

	rfqItems, err := s.rfqs.FindItems(ctx, req.RFQID)
	if err != nil {
		return nil, apperr.Internalf("Failed to load RFQ items", "فشل تحميل أصناف طلب عرض الأسعار", err)
	}
	itemsByID := make(map[uuid.UUID]model.RFQItem, len(rfqItems))
	for _, item := range rfqItems {
		itemsByID[item.ID] = item
	}

	// Partial bids are allowed; each referenced line must belong to the
	// RFQ and may be priced at most once.
	total := decimal.Zero
	bidItems := make([]model.BidItem, 0, len(req.Items))
	priced := make(map[uuid.UUID]bool, len(req.Items))
	for _, reqItem := range req.Items {
		rfqItem, ok := itemsByID[reqItem.RFQItemID]
		if !ok {
			return nil, apperr.New(apperr.Validation,
				"Bid item does not belong to this RFQ", "صنف العرض لا ينتمي إلى هذا الطلب")
		}
		if priced[reqItem.RFQItemID] {
			return nil, apperr.New(apperr.Validation,
				"An RFQ item cannot be priced more than once", "لا يمكن تسعير الصنف نفسه أكثر من مرة")
		}
		priced[reqItem.RFQItemID] = true
		if reqItem.UnitPrice.LessThanOrEqual(decimal.Zero) {
			return nil, apperr.New(apperr.Validation,
				"Unit price must be greater than zero", "يجب أن يكون سعر الوحدة أكبر من صفر")
		}

		lineTotal := reqItem.UnitPrice.Mul(rfqItem.Quantity)
		total = total.Add(lineTotal)
		bidItems = append(bidItems, model.BidItem{
			RFQItemID:    reqItem.RFQItemID,
			UnitPrice:    reqItem.UnitPrice,
			LeadTimeDays: reqItem.LeadTimeDays,
			LineTotal:    lineTotal,
			Notes:        reqItem.Notes,
		})
	}

	bid := &model.Bid{
		BidNumber:       refnum.Generate("BID"),
		RFQID:           req.RFQID,
		VendorID:        vendorID,
		VendorProfileID: profile.ID,
		TotalAmount:     total,
		Notes:           req.Notes,
		Status:          model.BidStatusPending,
	}

	err = s.txM.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.bids.Create(txCtx, bid); err != nil {
			return classifyDuplicate(err,
				"You have already submitted a bid for this RFQ", "لقد قدمت عرضاً لهذا الطلب مسبقاً")
		}
		for i := range bidItems {
			bidItems[i].BidID = bid.ID
			if err := s.bids.CreateItem(txCtx, &bidItems[i]); err != nil {
				return apperr.Internalf("Failed to create bid item", "فشل إنشاء صنف العرض", err)
			}
		}
		if rfq.Status != model.RFQStatusBidsReceived {
			if err := s.rfqs.UpdateStatus(txCtx, rfq.ID, model.RFQStatusBidsReceived); err != nil {
				return apperr.Internalf("Failed to update RFQ status", "فشل تحديث حالة طلب عرض الأسعار", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Broadcast(EventBidReceived, map[string]interface{}{
		"bid_id":       bid.ID,
		"bid_number":   bid.BidNumber,
		"rfq_id":       rfq.ID,
		"rfq_number":   rfq.RFQNumber,
		"total_amount": bid.TotalAmount,
	})

	details, err := s.bids.FindItemDetails(ctx, bid.ID)
	if err != nil {
		return nil, apperr.Internalf("Failed to load bid items", "فشل تحميل أصناف العرض", err)
	}
	return &BidDetail{Bid: bid, Items: details}, nil
}

func (s *bidService) ListMine(ctx context.Context, vendorID uuid.UUID, filter repository.BidListFilter) ([]repository.BidSummary, int64, error) {
	rows, total, err := s.bids.ListByVendor(ctx, vendorID, filter)
	if err != nil {
		return nil, 0, apperr.Internalf("Failed to list bids", "فشل جلب العروض", err)
	}
	return rows, total, nil
}

// Get loads a bid with its items. Vendors only see their own bids.
func (s *bidService) Get(ctx context.Context, id, callerID uuid.UUID, role string) (*BidDetail, error) {
	var (
		bid *model.Bid
		err error
	)
	if role == model.RoleVendor {
		bid, err = s.bids.FindByIDForVendor(ctx, id, callerID)
	} else {
		bid, err = s.bids.FindByID(ctx, id)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBidNotFound
		}
		return nil, apperr.Internalf("Failed to load bid", "فشل تحميل العرض", err)
	}

	items, err := s.bids.FindItemDetails(ctx, bid.ID)
	if err != nil {
		return nil, apperr.Internalf("Failed to load bid items", "فشل تحميل أصناف العرض", err)
	}
	return &BidDetail{Bid: bid, Items: items}, nil
}

func (s *bidService) ListForRFQ(ctx context.Context, rfqID uuid.UUID) ([]repository.BidSummary, error) {
	if _, err := s.rfqs.FindByID(ctx, rfqID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errRFQNotFound
		}
		return nil, apperr.Internalf("Failed to load RFQ", "فشل تحميل طلب عرض الأسعار", err)
	}
	rows, err := s.bids.ListByRFQ(ctx, rfqID)
	if err != nil {
		return nil, apperr.Internalf("Failed to list bids", "فشل جلب العروض", err)
	}
	return rows, err
}

// Review records the admin's accept or reject decision. Only pending bids
// can be reviewed; conversion to an order happens separately and requires
// an accepted bid.
func (s *bidService) Review(ctx context.Context, id, adminID uuid.UUID, req ReviewBidRequest) (*model.Bid, error) {
	bid, err := s.bids.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBidNotFound
		}
		return nil, apperr.Internalf("Failed to load bid", "فشل تحميل العرض", err)
	}
	if bid.Status != model.BidStatusPending {
		return nil, apperr.New(apperr.InvalidState,
			"Only pending bids can be reviewed", "يمكن مراجعة العروض المعلقة فقط")
	}

	now := time.Now()
	bid.Status = req.Status
	bid.ReviewedBy = &adminID
	bid.ReviewedAt = &now
	bid.ReviewNotes = req.Notes
	if err := s.bids.Save(ctx, bid); err != nil {
		return nil, apperr.Internalf("Failed to record bid review", "فشل تسجيل مراجعة العرض", err)
	}
	return bid, nil
}
