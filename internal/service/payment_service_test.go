package service

import (
	"context"
	"strings"
	"testing"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// paidOrder drives the escrow flow up to a verified buyer payment.
func paidOrder(t *testing.T, env *testEnv) (*OrderDetail, *model.Payment, *model.User, *model.User, *model.User) {
	t.Helper()
	ctx := context.Background()
	order, buyer, vendor, admin := convertedOrder(t, env)

	payment, err := env.payments.Confirm(ctx, buyer.ID, order.ID, ConfirmPaymentRequest{
		TransactionReference: "TRX-001",
	})
	require.NoError(t, err)

	payment, err = env.payments.Verify(ctx, payment.ID, admin.ID, VerifyPaymentRequest{Approved: true})
	require.NoError(t, err)
	return order, payment, buyer, vendor, admin
}

func TestConfirmPaymentUsesOrderTotal(t *testing.T) {
	env := newTestEnv(t)
	order, buyer, _, admin := convertedOrder(t, env)
	ctx := context.Background()

	// The transfer reference is optional at confirmation time.
	payment, err := env.payments.Confirm(ctx, buyer.ID, order.ID, ConfirmPaymentRequest{})
	require.NoError(t, err)
	require.Equal(t, model.PaymentTypeBuyer, payment.PaymentType)
	require.Equal(t, model.PaymentStatusPendingVerification, payment.Status)
	require.True(t, payment.Amount.Equal(decimal.RequireFromString("1337.50")), "amount %s", payment.Amount)
	require.Equal(t, "bank_transfer", payment.PaymentMethod)
	require.Empty(t, payment.TransactionReference)

	reloaded, err := env.orders.Get(ctx, order.ID, admin.ID, model.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, model.OrderStatusPaymentReceived, reloaded.Status)
	require.NotNil(t, reloaded.PaymentReceivedAt)

	// A foreign buyer cannot confirm against this order.
	outsider := registerActiveBuyer(t, env, "9")
	_, err = env.payments.Confirm(ctx, outsider.ID, order.ID, ConfirmPaymentRequest{
		TransactionReference: "TRX-002",
	})
	require.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestVerifyApprovalConfirmsOrder(t *testing.T) {
	env := newTestEnv(t)
	order, payment, _, _, admin := paidOrder(t, env)
	ctx := context.Background()

	require.Equal(t, model.PaymentStatusVerified, payment.Status)
	require.NotNil(t, payment.VerifiedAt)

	reloaded, err := env.orders.Get(ctx, order.ID, admin.ID, model.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, model.OrderStatusConfirmed, reloaded.Status)
	require.NotNil(t, reloaded.ConfirmedAt)

	// Verification is one-shot.
	_, err = env.payments.Verify(ctx, payment.ID, admin.ID, VerifyPaymentRequest{Approved: true})
	require.True(t, apperr.IsKind(err, apperr.InvalidState))
}

func TestRejectedPaymentLeavesOrderPayable(t *testing.T) {
	env := newTestEnv(t)
	order, buyer, _, admin := convertedOrder(t, env)
	ctx := context.Background()

	first, err := env.payments.Confirm(ctx, buyer.ID, order.ID, ConfirmPaymentRequest{
		TransactionReference: "TRX-BAD",
	})
	require.NoError(t, err)

	rejected, err := env.payments.Verify(ctx, first.ID, admin.ID, VerifyPaymentRequest{
		Approved: false,
		Notes:    "amount did not arrive",
	})
	require.NoError(t, err)
	require.Equal(t, model.PaymentStatusRejected, rejected.Status)

	reloaded, err := env.orders.Get(ctx, order.ID, admin.ID, model.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, model.OrderStatusPendingPayment, reloaded.Status)

	// The buyer can confirm a corrected transfer.
	second, err := env.payments.Confirm(ctx, buyer.ID, order.ID, ConfirmPaymentRequest{
		TransactionReference: "TRX-GOOD",
	})
	require.NoError(t, err)
	_, err = env.payments.Verify(ctx, second.ID, admin.ID, VerifyPaymentRequest{Approved: true})
	require.NoError(t, err)
}

func TestReleaseGatedOnQAPass(t *testing.T) {
	env := newTestEnv(t)
	order, payment, _, _, admin := paidOrder(t, env)
	ctx := context.Background()

	// Before QA, no release.
	_, err := env.payments.Release(ctx, payment.ID, admin.ID, ReleasePaymentRequest{})
	require.True(t, apperr.IsKind(err, apperr.InvalidState))

	_, err = env.orders.UpdateQA(ctx, order.ID, admin.ID, UpdateQARequest{QAStatus: model.QAStatusFailed})
	require.NoError(t, err)
	_, err = env.payments.Release(ctx, payment.ID, admin.ID, ReleasePaymentRequest{})
	require.True(t, apperr.IsKind(err, apperr.InvalidState))

	_, err = env.orders.UpdateQA(ctx, order.ID, admin.ID, UpdateQARequest{QAStatus: model.QAStatusPassed})
	require.NoError(t, err)

	released, err := env.payments.Release(ctx, payment.ID, admin.ID, ReleasePaymentRequest{})
	require.NoError(t, err)
	require.Equal(t, model.PaymentTypeVendor, released.PaymentType)
	require.Equal(t, model.PaymentStatusReleased, released.Status)
	require.True(t, strings.HasPrefix(released.PaymentNumber, "VPAY-"), "number %s", released.PaymentNumber)
	// Defaults to the vendor subtotal, never the marked-up total.
	require.True(t, released.Amount.Equal(decimal.RequireFromString("1250")), "amount %s", released.Amount)

	// Settlement: buyer money no longer held, order closed.
	settled, err := env.payments.Get(ctx, payment.ID, admin.ID, model.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, model.PaymentStatusReleased, settled.Status)
	reloaded, err := env.orders.Get(ctx, order.ID, admin.ID, model.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, model.OrderStatusCompleted, reloaded.Status)
	require.NotNil(t, reloaded.CompletedAt)

	// At most one vendor payout per order.
	_, err = env.payments.Release(ctx, payment.ID, admin.ID, ReleasePaymentRequest{})
	require.True(t, apperr.IsKind(err, apperr.InvalidState))
}

func TestReleaseAmountBounds(t *testing.T) {
	env := newTestEnv(t)
	order, payment, _, _, admin := paidOrder(t, env)
	ctx := context.Background()

	_, err := env.orders.UpdateQA(ctx, order.ID, admin.ID, UpdateQARequest{QAStatus: model.QAStatusPassed})
	require.NoError(t, err)

	tooMuch := decimal.RequireFromString("1250.01")
	_, err = env.payments.Release(ctx, payment.ID, admin.ID, ReleasePaymentRequest{Amount: &tooMuch})
	require.True(t, apperr.IsKind(err, apperr.Validation))

	negative := decimal.RequireFromString("-1")
	_, err = env.payments.Release(ctx, payment.ID, admin.ID, ReleasePaymentRequest{Amount: &negative})
	require.True(t, apperr.IsKind(err, apperr.Validation))

	partial := decimal.RequireFromString("1200")
	released, err := env.payments.Release(ctx, payment.ID, admin.ID, ReleasePaymentRequest{Amount: &partial})
	require.NoError(t, err)
	require.True(t, released.Amount.Equal(partial))
}

func TestEscrowSummary(t *testing.T) {
	env := newTestEnv(t)
	order, payment, _, _, admin := paidOrder(t, env)
	ctx := context.Background()

	summary, err := env.payments.Escrow(ctx)
	require.NoError(t, err)
	require.True(t, summary.TotalReceived.Equal(decimal.RequireFromString("1337.5")), "received %s", summary.TotalReceived)
	require.EqualValues(t, 1, summary.ReceivedCount)
	require.True(t, summary.TotalReleased.IsZero())
	// Everything verified is still held.
	require.True(t, summary.EscrowBalance.Equal(summary.TotalReceived))

	_, err = env.orders.UpdateQA(ctx, order.ID, admin.ID, UpdateQARequest{QAStatus: model.QAStatusPassed})
	require.NoError(t, err)
	_, err = env.payments.Release(ctx, payment.ID, admin.ID, ReleasePaymentRequest{})
	require.NoError(t, err)

	summary, err = env.payments.Escrow(ctx)
	require.NoError(t, err)
	require.True(t, summary.TotalReleased.Equal(decimal.RequireFromString("1250")))
	require.EqualValues(t, 1, summary.ReleasedCount)
	// The buyer payment left escrow; the spread is the realized revenue.
	require.True(t, summary.EscrowBalance.IsZero(), "balance %s", summary.EscrowBalance)
	require.True(t, summary.PlatformRevenue.Equal(decimal.RequireFromString("87.5")), "revenue %s", summary.PlatformRevenue)
}

func TestPaymentListScoping(t *testing.T) {
	env := newTestEnv(t)
	_, payment, buyer, vendor, admin := paidOrder(t, env)
	ctx := context.Background()

	mine, total, err := env.payments.List(ctx, buyer.ID, model.RoleBuyer, repository.PaymentListFilter{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.NotEmpty(t, mine[0].OrderNumber)

	// The vendor has no payout yet, so nothing is visible.
	_, total, err = env.payments.List(ctx, vendor.ID, model.RoleVendor, repository.PaymentListFilter{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.EqualValues(t, 0, total)

	_, err = env.payments.Get(ctx, payment.ID, vendor.ID, model.RoleVendor)
	require.True(t, apperr.IsKind(err, apperr.NotFound))
	_, err = env.payments.Get(ctx, payment.ID, admin.ID, model.RoleAdmin)
	require.NoError(t, err)
}

func TestDashboardStats(t *testing.T) {
	env := newTestEnv(t)
	paidOrder(t, env)

	stats, err := env.admin.Stats(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, stats.UsersByRole)
	require.NotEmpty(t, stats.RFQsByStatus)
	require.NotEmpty(t, stats.BidsByStatus)
	require.NotEmpty(t, stats.OrdersByStatus)
	require.NotNil(t, stats.Escrow)
	// No completed orders yet, so no realized markup.
	require.True(t, stats.RealizedMarkup.IsZero())
}
