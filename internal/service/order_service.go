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

// ConvertBidRequest accepts one bid and converts it into an order.
type ConvertBidRequest struct {
	BidID uuid.UUID `json:"bid_id" binding:"required"`
	Notes string    `json:"notes"`
}

// UpdateOrderStatusRequest is the admin fulfilment status payload.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// UpdateQARequest records a warehouse quality check result.
type UpdateQARequest struct {
	QAStatus string `json:"qa_status" binding:"required,oneof=passed failed"`
	Notes    string `json:"notes"`
}

// OrderDetail is an order with party metadata and snapshot items.
type OrderDetail struct {
	*repository.OrderSummary
	Items []model.OrderItem `json:"items"`
}

// OrderService covers bid-to-order conversion and the fulfilment lifecycle.
type OrderService interface {
	ConvertBid(ctx context.Context, adminID uuid.UUID, req ConvertBidRequest) (*OrderDetail, error)
	List(ctx context.Context, callerID uuid.UUID, role, status string, page, limit int) ([]repository.OrderSummary, int64, error)
	Get(ctx context.Context, id, callerID uuid.UUID, role string) (*OrderDetail, error)
	UpdateStatus(ctx context.Context, id, adminID uuid.UUID, req UpdateOrderStatusRequest) (*model.Order, error)
	UpdateQA(ctx context.Context, id, adminID uuid.UUID, req UpdateQARequest) (*model.Order, error)
}

type orderService struct {
	orders        repository.OrderRepository
	bids          repository.BidRepository
	rfqs          repository.RFQRepository
	txM           repository.TransactionManager
	notifier      Notifier
	markupPercent decimal.Decimal
}

func NewOrderService(orders repository.OrderRepository, bids repository.BidRepository, rfqs repository.RFQRepository, txM repository.TransactionManager, notifier Notifier, markupPercent decimal.Decimal) OrderService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &orderService{
		orders:        orders,
		bids:          bids,
		rfqs:          rfqs,
		txM:           txM,
		notifier:      notifier,
		markupPercent: markupPercent,
	}
}

var errOrderNotFound = apperr.New(apperr.NotFound, "Order not found", "الطلبية غير موجودة")

// ConvertBid turns an accepted bid into an order: it snapshots the bid items
// with marked-up buyer prices, rejects leftover pending sibling bids, and
// closes the RFQ. The unique index on orders.bid_id makes conversion
// at-most-once per bid.
func (s *orderService) ConvertBid(ctx context.Context, adminID uuid.UUID, req ConvertBidRequest) (*OrderDetail, error) {
	bid, err := s.bids.FindByID(ctx, req.BidID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBidNotFound
		}
		return nil, apperr.Internalf("Failed to load bid", "فشل تحميل العرض", err)
	}
	if bid.Status != model.BidStatusAccepted {
		return nil, apperr.New(apperr.InvalidState,
			"Only accepted bids can be converted to orders", "يمكن تحويل العروض المقبولة فقط إلى طلبيات")
	}

	exists, err := s.orders.ExistsForBid(ctx, bid.ID)
	if err != nil {
		return nil, apperr.Internalf("Failed to check existing order", "فشل التحقق من الطلبية الحالية", err)
	}
	if exists {
		return nil, apperr.New(apperr.Conflict,
			"This bid has already been converted to an order", "تم تحويل هذا العرض إلى طلبية مسبقاً")
	}

	rfq, err := s.rfqs.FindByID(ctx, bid.RFQID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errRFQNotFound
		}
		return nil, apperr.Internalf("Failed to load RFQ", "فشل تحميل طلب عرض الأسعار", err)
	}
	if rfq.Status == model.RFQStatusConvertedToOrder || rfq.Status == model.RFQStatusCancelled {
		return nil, apperr.New(apperr.InvalidState,
			"This RFQ is no longer open for conversion", "طلب عرض الأسعار لم يعد متاحاً للتحويل")
	}

	bidItems, err := s.bids.FindItemDetails(ctx, bid.ID)
	if err != nil {
		return nil, apperr.Internalf("Failed to load bid items", "فشل تحميل أصناف العرض", err)
	}

	one := decimal.NewFromInt(1)
	subtotal := bid.TotalAmount
	markup := subtotal.Mul(s.markupPercent)
	total := subtotal.Add(markup)

	order := &model.Order{
		OrderNumber:     refnum.Generate("ORD"),
		RFQID:           rfq.ID,
		BidID:           bid.ID,
		BuyerID:         rfq.BuyerID,
		BuyerProfileID:  rfq.BuyerProfileID,
		VendorID:        bid.VendorID,
		VendorProfileID: bid.VendorProfileID,
		Subtotal:        subtotal,
		MarkupPercent:   s.markupPercent,
		MarkupAmount:    markup,
		TotalAmount:     total,
		DeliveryAddress: rfq.DeliveryAddress,
		Status:          model.OrderStatusPendingPayment,
		QAStatus:        model.QAStatusPending,
		Notes:           req.Notes,
		CreatedBy:       adminID,
	}

	now := time.Now()
	var orderItems []model.OrderItem
	err = s.txM.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.orders.Create(txCtx, order); err != nil {
			return classifyDuplicate(err,
				"This bid has already been converted to an order", "تم تحويل هذا العرض إلى طلبية مسبقاً")
		}
		for _, bi := range bidItems {
			buyerUnit := bi.UnitPrice.Mul(one.Add(s.markupPercent))
			item := model.OrderItem{
				OrderID:         order.ID,
				RFQItemID:       bi.RFQItemID,
				ItemName:        bi.ItemName,
				ItemNameAr:      bi.ItemNameAr,
				Quantity:        bi.Quantity,
				Unit:            bi.Unit,
				UnitAr:          bi.UnitAr,
				VendorUnitPrice: bi.UnitPrice,
				BuyerUnitPrice:  buyerUnit,
				LineTotal:       buyerUnit.Mul(bi.Quantity),
			}
			if err := s.orders.CreateItem(txCtx, &item); err != nil {
				return apperr.Internalf("Failed to create order item", "فشل إنشاء صنف الطلبية", err)
			}
			orderItems = append(orderItems, item)
		}

		if err := s.bids.RejectOthers(txCtx, rfq.ID, bid.ID, adminID, now); err != nil {
			return apperr.Internalf("Failed to reject sibling bids", "فشل رفض العروض الأخرى", err)
		}
		if err := s.rfqs.UpdateStatus(txCtx, rfq.ID, model.RFQStatusConvertedToOrder); err != nil {
			return apperr.Internalf("Failed to update RFQ status", "فشل تحديث حالة طلب عرض الأسعار", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Broadcast(EventOrderCreated, map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"rfq_number":   rfq.RFQNumber,
		"total_amount": order.TotalAmount,
	})

	detail, err := s.orders.FindDetail(ctx, order.ID)
	if err != nil {
		return nil, apperr.Internalf("Failed to load order", "فشل تحميل الطلبية", err)
	}
	return &OrderDetail{OrderSummary: detail, Items: orderItems}, nil
}

func (s *orderService) List(ctx context.Context, callerID uuid.UUID, role, status string, page, limit int) ([]repository.OrderSummary, int64, error) {
	filter := repository.OrderListFilter{Status: status, Page: page, Limit: limit}
	switch role {
	case model.RoleBuyer:
		filter.BuyerID = &callerID
	case model.RoleVendor:
		filter.VendorID = &callerID
	}
	rows, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Internalf("Failed to list orders", "فشل جلب الطلبيات", err)
	}
	return rows, total, nil
}

// Get loads an order with items. Buyers and vendors only see their own
// orders; a foreign order id answers NotFound.
func (s *orderService) Get(ctx context.Context, id, callerID uuid.UUID, role string) (*OrderDetail, error) {
	detail, err := s.orders.FindDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errOrderNotFound
		}
		return nil, apperr.Internalf("Failed to load order", "فشل تحميل الطلبية", err)
	}
	switch role {
	case model.RoleBuyer:
		if detail.BuyerID != callerID {
			return nil, errOrderNotFound
		}
	case model.RoleVendor:
		if detail.VendorID != callerID {
			return nil, errOrderNotFound
		}
	}

	items, err := s.orders.FindItems(ctx, id)
	if err != nil {
		return nil, apperr.Internalf("Failed to load order items", "فشل تحميل أصناف الطلبية", err)
	}
	// Vendors never see buyer-side pricing.
	if role == model.RoleVendor {
		for i := range items {
			items[i].BuyerUnitPrice = decimal.Zero
			items[i].LineTotal = decimal.Zero
		}
	}
	return &OrderDetail{OrderSummary: detail, Items: items}, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, id, adminID uuid.UUID, req UpdateOrderStatusRequest) (*model.Order, error) {
	valid := false
	for _, status := range model.OrderStatuses {
		if req.Status == status {
			valid = true
			break
		}
	}
	if !valid {
		return nil, apperr.New(apperr.Validation, "Unknown order status", "حالة الطلبية غير معروفة")
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errOrderNotFound
		}
		return nil, apperr.Internalf("Failed to load order", "فشل تحميل الطلبية", err)
	}
	if order.Status == model.OrderStatusCompleted || order.Status == model.OrderStatusCancelled {
		return nil, apperr.New(apperr.InvalidState,
			"Completed or cancelled orders cannot change status", "لا يمكن تغيير حالة الطلبيات المكتملة أو الملغاة")
	}

	now := time.Now()
	fields := map[string]interface{}{"status": req.Status}
	if req.Notes != "" {
		fields["notes"] = req.Notes
	}
	switch req.Status {
	case model.OrderStatusConfirmed:
		fields["confirmed_at"] = now
	case model.OrderStatusShipped:
		fields["shipped_at"] = now
	case model.OrderStatusDelivered:
		fields["delivered_at"] = now
	case model.OrderStatusCompleted:
		fields["completed_at"] = now
	}

	if err := s.orders.Updates(ctx, order.ID, fields); err != nil {
		return nil, apperr.Internalf("Failed to update order status", "فشل تحديث حالة الطلبية", err)
	}
	order.Status = req.Status
	return order, nil
}

// UpdateQA records the warehouse quality check. Goods cannot be checked
// before the buyer's payment is in escrow.
func (s *orderService) UpdateQA(ctx context.Context, id, adminID uuid.UUID, req UpdateQARequest) (*model.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errOrderNotFound
		}
		return nil, apperr.Internalf("Failed to load order", "فشل تحميل الطلبية", err)
	}
	switch order.Status {
	case model.OrderStatusPendingPayment:
		return nil, apperr.New(apperr.InvalidState,
			"QA cannot be recorded before payment is received", "لا يمكن تسجيل فحص الجودة قبل استلام الدفعة")
	case model.OrderStatusCompleted, model.OrderStatusCancelled:
		return nil, apperr.New(apperr.InvalidState,
			"Completed or cancelled orders cannot be QA checked", "لا يمكن فحص جودة الطلبيات المكتملة أو الملغاة")
	}

	now := time.Now()
	status := model.OrderStatusQAPassed
	if req.QAStatus == model.QAStatusFailed {
		status = model.OrderStatusQAFailed
	}
	fields := map[string]interface{}{
		"qa_status":     req.QAStatus,
		"qa_notes":      req.Notes,
		"qa_checked_by": adminID,
		"qa_checked_at": now,
		"status":        status,
	}
	if err := s.orders.Updates(ctx, order.ID, fields); err != nil {
		return nil, apperr.Internalf("Failed to record QA result", "فشل تسجيل نتيجة فحص الجودة", err)
	}
	order.QAStatus = req.QAStatus
	order.QANotes = req.Notes
	order.QACheckedBy = &adminID
	order.QACheckedAt = &now
	order.Status = status
	return order, nil
}
