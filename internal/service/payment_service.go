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

// ConfirmPaymentRequest is the buyer's notice that the order total has
// been transferred. The amount is always the order total, never client input.
type ConfirmPaymentRequest struct {
	PaymentMethod        string `json:"payment_method"`
	TransactionReference string `json:"transaction_reference"`
	Notes                string `json:"notes"`
}

// VerifyPaymentRequest is the admin decision on a pending buyer payment.
type VerifyPaymentRequest struct {
	Approved bool   `json:"approved"`
	Notes    string `json:"notes"`
}

// ReleasePaymentRequest pays the vendor out of escrow. Amount defaults to
// the order subtotal when omitted.
type ReleasePaymentRequest struct {
	Amount *decimal.Decimal `json:"amount"`
	Notes  string           `json:"notes"`
}

// PaymentService is the escrow ledger: buyer money in, vendor money out,
// both legs admin-gated.
type PaymentService interface {
	Confirm(ctx context.Context, buyerID, orderID uuid.UUID, req ConfirmPaymentRequest) (*model.Payment, error)
	Verify(ctx context.Context, paymentID, adminID uuid.UUID, req VerifyPaymentRequest) (*model.Payment, error)
	Release(ctx context.Context, paymentID, adminID uuid.UUID, req ReleasePaymentRequest) (*model.Payment, error)
	List(ctx context.Context, callerID uuid.UUID, role string, filter repository.PaymentListFilter) ([]repository.PaymentSummary, int64, error)
	Get(ctx context.Context, id, callerID uuid.UUID, role string) (*repository.PaymentSummary, error)
	Escrow(ctx context.Context) (*repository.EscrowSummary, error)
}

type paymentService struct {
	payments repository.PaymentRepository
	orders   repository.OrderRepository
	txM      repository.TransactionManager
	notifier Notifier
}

func NewPaymentService(payments repository.PaymentRepository, orders repository.OrderRepository, txM repository.TransactionManager, notifier Notifier) PaymentService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &paymentService{payments: payments, orders: orders, txM: txM, notifier: notifier}
}

var errPaymentNotFound = apperr.New(apperr.NotFound, "Payment not found", "الدفعة غير موجودة")

// Confirm records the buyer's transfer as pending verification and moves
// the order to payment_received. The money is not in escrow until an admin
// verifies it arrived.
func (s *paymentService) Confirm(ctx context.Context, buyerID, orderID uuid.UUID, req ConfirmPaymentRequest) (*model.Payment, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errOrderNotFound
		}
		return nil, apperr.Internalf("Failed to load order", "فشل تحميل الطلبية", err)
	}
	if order.BuyerID != buyerID {
		return nil, errOrderNotFound
	}
	if order.Status != model.OrderStatusPendingPayment {
		return nil, apperr.New(apperr.InvalidState,
			"This order is not awaiting payment", "هذه الطلبية ليست في انتظار الدفع")
	}

	method := req.PaymentMethod
	if method == "" {
		method = "bank_transfer"
	}
	payment := &model.Payment{
		PaymentNumber:        refnum.Generate("PAY"),
		OrderID:              order.ID,
		BuyerID:              &order.BuyerID,
		Amount:               order.TotalAmount,
		PaymentMethod:        method,
		TransactionReference: req.TransactionReference,
		Status:               model.PaymentStatusPendingVerification,
		PaymentType:          model.PaymentTypeBuyer,
		Notes:                req.Notes,
	}
	now := time.Now()
	err = s.txM.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.payments.Create(txCtx, payment); err != nil {
			return apperr.Internalf("Failed to record payment", "فشل تسجيل الدفعة", err)
		}
		if err := s.orders.Updates(txCtx, order.ID, map[string]interface{}{
			"status":              model.OrderStatusPaymentReceived,
			"payment_received_at": now,
		}); err != nil {
			return apperr.Internalf("Failed to update order", "فشل تحديث الطلبية", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Broadcast(EventPaymentPending, map[string]interface{}{
		"payment_id":     payment.ID,
		"payment_number": payment.PaymentNumber,
		"order_id":       order.ID,
		"order_number":   order.OrderNumber,
		"amount":         payment.Amount,
	})
	return payment, nil
}

// Verify settles or rejects a pending buyer payment. Approval puts the
// money in escrow and confirms the order; rejection returns the order to
// pending_payment so the buyer can confirm a corrected transfer.
func (s *paymentService) Verify(ctx context.Context, paymentID, adminID uuid.UUID, req VerifyPaymentRequest) (*model.Payment, error) {
	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errPaymentNotFound
		}
		return nil, apperr.Internalf("Failed to load payment", "فشل تحميل الدفعة", err)
	}
	if payment.PaymentType != model.PaymentTypeBuyer {
		return nil, apperr.New(apperr.InvalidState,
			"Only buyer payments are verified", "يتم التحقق من دفعات المشترين فقط")
	}
	if payment.Status != model.PaymentStatusPendingVerification {
		return nil, apperr.New(apperr.InvalidState,
			"This payment is not pending verification", "هذه الدفعة ليست في انتظار التحقق")
	}

	order, err := s.orders.FindByID(ctx, payment.OrderID)
	if err != nil {
		return nil, apperr.Internalf("Failed to load order", "فشل تحميل الطلبية", err)
	}

	now := time.Now()
	status := model.PaymentStatusVerified
	if !req.Approved {
		status = model.PaymentStatusRejected
	}

	err = s.txM.RunInTx(ctx, func(txCtx context.Context) error {
		fields := map[string]interface{}{
			"status":             status,
			"verification_notes": req.Notes,
			"verified_by":        adminID,
			"verified_at":        now,
		}
		if err := s.payments.Updates(txCtx, payment.ID, fields); err != nil {
			return apperr.Internalf("Failed to update payment", "فشل تحديث الدفعة", err)
		}
		orderFields := map[string]interface{}{
			"status":       model.OrderStatusConfirmed,
			"confirmed_at": now,
		}
		if !req.Approved {
			// The buyer gets another chance to pay.
			orderFields = map[string]interface{}{
				"status":              model.OrderStatusPendingPayment,
				"payment_received_at": nil,
			}
		}
		if err := s.orders.Updates(txCtx, order.ID, orderFields); err != nil {
			return apperr.Internalf("Failed to update order", "فشل تحديث الطلبية", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	payment.Status = status
	payment.VerificationNotes = req.Notes
	payment.VerifiedBy = &adminID
	payment.VerifiedAt = &now

	if req.Approved {
		s.notifier.Broadcast(EventPaymentVerified, map[string]interface{}{
			"payment_id":   payment.ID,
			"order_id":     order.ID,
			"order_number": order.OrderNumber,
			"amount":       payment.Amount,
		})
	}
	return payment, nil
}

// Release pays the vendor out of escrow against a verified buyer payment.
// It is gated on a passed QA check and capped at the order subtotal; the
// partial unique index on vendor payments makes it at-most-once per order.
// On success the buyer payment is marked released and the order completed.
func (s *paymentService) Release(ctx context.Context, paymentID, adminID uuid.UUID, req ReleasePaymentRequest) (*model.Payment, error) {
	buyerPayment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errPaymentNotFound
		}
		return nil, apperr.Internalf("Failed to load payment", "فشل تحميل الدفعة", err)
	}
	if buyerPayment.PaymentType != model.PaymentTypeBuyer {
		return nil, apperr.New(apperr.InvalidState,
			"Release is driven by the order's buyer payment", "يتم الصرف بناءً على دفعة المشتري للطلبية")
	}
	if buyerPayment.Status != model.PaymentStatusVerified {
		return nil, apperr.New(apperr.InvalidState,
			"Buyer payment must be verified before release", "يجب التحقق من دفعة المشتري قبل الصرف")
	}

	order, err := s.orders.FindByID(ctx, buyerPayment.OrderID)
	if err != nil {
		return nil, apperr.Internalf("Failed to load order", "فشل تحميل الطلبية", err)
	}
	if order.QAStatus != model.QAStatusPassed {
		return nil, apperr.New(apperr.InvalidState,
			"Vendor payment requires a passed QA check", "يتطلب دفع المورد اجتياز فحص الجودة")
	}

	if _, err := s.payments.FindVendorPaymentByOrder(ctx, order.ID); err == nil {
		return nil, apperr.New(apperr.Conflict,
			"Vendor payment has already been released for this order", "تم صرف دفعة المورد لهذه الطلبية مسبقاً")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internalf("Failed to check vendor payment", "فشل التحقق من دفعة المورد", err)
	}

	amount := order.Subtotal
	if req.Amount != nil {
		amount = *req.Amount
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperr.New(apperr.Validation,
			"Release amount must be greater than zero", "يجب أن يكون مبلغ الصرف أكبر من صفر")
	}
	if amount.GreaterThan(order.Subtotal) {
		return nil, apperr.New(apperr.Validation,
			"Release amount cannot exceed the order subtotal", "لا يمكن أن يتجاوز مبلغ الصرف المجموع الفرعي للطلبية")
	}

	now := time.Now()
	payment := &model.Payment{
		PaymentNumber: refnum.Generate("VPAY"),
		OrderID:       order.ID,
		VendorID:      &order.VendorID,
		Amount:        amount,
		PaymentMethod: "bank_transfer",
		Status:        model.PaymentStatusReleased,
		PaymentType:   model.PaymentTypeVendor,
		ReleasedBy:    &adminID,
		ReleasedAt:    &now,
		Notes:         req.Notes,
	}
	err = s.txM.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.payments.Create(txCtx, payment); err != nil {
			return classifyDuplicate(err,
				"Vendor payment has already been released for this order", "تم صرف دفعة المورد لهذه الطلبية مسبقاً")
		}
		if err := s.payments.Updates(txCtx, buyerPayment.ID, map[string]interface{}{
			"status":      model.PaymentStatusReleased,
			"released_by": adminID,
			"released_at": now,
		}); err != nil {
			return apperr.Internalf("Failed to update buyer payment", "فشل تحديث دفعة المشتري", err)
		}
		if err := s.orders.Updates(txCtx, order.ID, map[string]interface{}{
			"status":       model.OrderStatusCompleted,
			"completed_at": now,
		}); err != nil {
			return apperr.Internalf("Failed to update order", "فشل تحديث الطلبية", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Broadcast(EventPaymentReleased, map[string]interface{}{
		"payment_id":   payment.ID,
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"amount":       payment.Amount,
	})
	return payment, nil
}

func (s *paymentService) List(ctx context.Context, callerID uuid.UUID, role string, filter repository.PaymentListFilter) ([]repository.PaymentSummary, int64, error) {
	switch role {
	case model.RoleBuyer:
		filter.BuyerID = &callerID
	case model.RoleVendor:
		filter.VendorID = &callerID
	}
	rows, total, err := s.payments.List(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Internalf("Failed to list payments", "فشل جلب الدفعات", err)
	}
	return rows, total, nil
}

func (s *paymentService) Get(ctx context.Context, id, callerID uuid.UUID, role string) (*repository.PaymentSummary, error) {
	row, err := s.payments.FindDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errPaymentNotFound
		}
		return nil, apperr.Internalf("Failed to load payment", "فشل تحميل الدفعة", err)
	}
	switch role {
	case model.RoleBuyer:
		if row.BuyerID == nil || *row.BuyerID != callerID {
			return nil, errPaymentNotFound
		}
	case model.RoleVendor:
		if row.VendorID == nil || *row.VendorID != callerID {
			return nil, errPaymentNotFound
		}
	}
	return row, nil
}

func (s *paymentService) Escrow(ctx context.Context) (*repository.EscrowSummary, error) {
	summary, err := s.payments.Escrow(ctx)
	if err != nil {
		return nil, apperr.Internalf("Failed to compute escrow summary", "فشل حساب ملخص الضمان", err)
	}
	return summary, nil
}
