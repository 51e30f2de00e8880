package service

import (
	"context"
	"testing"

	"backend/internal/apperr"
	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// acceptBid records the admin accept decision on a pending bid.
func acceptBid(t *testing.T, env *testEnv, admin *model.User, bidID uuid.UUID) {
	t.Helper()
	_, err := env.bids.Review(context.Background(), bidID, admin.ID, ReviewBidRequest{Status: model.BidStatusAccepted})
	require.NoError(t, err)
}

// convertedOrder drives the happy path up to an order awaiting payment.
func convertedOrder(t *testing.T, env *testEnv) (*OrderDetail, *model.User, *model.User, *model.User) {
	t.Helper()
	buyer := registerActiveBuyer(t, env, "1")
	vendor := registerActiveVendor(t, env, "1")
	admin := createAdmin(t, env, "1")

	rfq := submittedRFQ(t, env, buyer)
	bid := submitStandardBid(t, env, vendor, rfq)
	acceptBid(t, env, admin, bid.ID)

	order, err := env.orders.ConvertBid(context.Background(), admin.ID, ConvertBidRequest{BidID: bid.ID})
	require.NoError(t, err)
	return order, buyer, vendor, admin
}

func TestConvertRequiresAcceptedBid(t *testing.T) {
	env := newTestEnv(t)
	buyer := registerActiveBuyer(t, env, "1")
	vendor := registerActiveVendor(t, env, "1")
	admin := createAdmin(t, env, "1")

	rfq := submittedRFQ(t, env, buyer)
	bid := submitStandardBid(t, env, vendor, rfq)

	// Still pending, never reviewed.
	_, err := env.orders.ConvertBid(context.Background(), admin.ID, ConvertBidRequest{BidID: bid.ID})
	require.True(t, apperr.IsKind(err, apperr.InvalidState))
}

func TestConvertBidAppliesMarkup(t *testing.T) {
	env := newTestEnv(t)
	order, _, _, _ := convertedOrder(t, env)

	require.True(t, order.Subtotal.Equal(decimal.RequireFromString("1250")), "subtotal %s", order.Subtotal)
	require.True(t, order.MarkupAmount.Equal(decimal.RequireFromString("87.50")), "markup %s", order.MarkupAmount)
	require.True(t, order.TotalAmount.Equal(decimal.RequireFromString("1337.50")), "total %s", order.TotalAmount)
	require.Equal(t, model.OrderStatusPendingPayment, order.Status)
	require.Equal(t, model.QAStatusPending, order.QAStatus)

	// Item snapshot carries both price sides, buyer side marked up.
	require.Len(t, order.Items, 2)
	require.True(t, order.Items[0].VendorUnitPrice.Equal(decimal.RequireFromString("10.00")))
	require.True(t, order.Items[0].BuyerUnitPrice.Equal(decimal.RequireFromString("10.70")))
	require.True(t, order.Items[0].LineTotal.Equal(decimal.RequireFromString("1070")))

	lineSum := decimal.Zero
	for _, item := range order.Items {
		lineSum = lineSum.Add(item.LineTotal)
	}
	require.True(t, lineSum.Equal(order.TotalAmount), "items %s vs total %s", lineSum, order.TotalAmount)
}

func TestConvertBidSettlesRFQAndSiblings(t *testing.T) {
	env := newTestEnv(t)
	buyer := registerActiveBuyer(t, env, "1")
	winner := registerActiveVendor(t, env, "1")
	loser := registerActiveVendor(t, env, "2")
	admin := createAdmin(t, env, "1")
	ctx := context.Background()

	rfq := submittedRFQ(t, env, buyer)
	winning := submitStandardBid(t, env, winner, rfq)
	losing, err := env.bids.Submit(ctx, loser.ID, SubmitBidRequest{
		RFQID: rfq.RFQ.ID,
		Items: []SubmitBidItemRequest{
			{RFQItemID: rfq.Items[0].ID, UnitPrice: decimal.RequireFromString("11.00")},
			{RFQItemID: rfq.Items[1].ID, UnitPrice: decimal.RequireFromString("6.00")},
		},
	})
	require.NoError(t, err)

	acceptBid(t, env, admin, winning.ID)
	_, err = env.orders.ConvertBid(ctx, admin.ID, ConvertBidRequest{BidID: winning.ID})
	require.NoError(t, err)

	accepted, err := env.bids.Get(ctx, winning.ID, admin.ID, model.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, model.BidStatusAccepted, accepted.Status)

	rejected, err := env.bids.Get(ctx, losing.ID, admin.ID, model.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, model.BidStatusRejected, rejected.Status)

	detail, err := env.rfqs.Get(ctx, rfq.RFQ.ID, admin.ID, model.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, model.RFQStatusConvertedToOrder, detail.RFQ.Status)

	// The losing bid can no longer be converted.
	_, err = env.orders.ConvertBid(ctx, admin.ID, ConvertBidRequest{BidID: losing.ID})
	require.True(t, apperr.IsKind(err, apperr.InvalidState))
}

func TestConvertBidTwiceConflicts(t *testing.T) {
	env := newTestEnv(t)
	buyer := registerActiveBuyer(t, env, "1")
	vendor := registerActiveVendor(t, env, "1")
	admin := createAdmin(t, env, "1")
	ctx := context.Background()

	rfq := submittedRFQ(t, env, buyer)
	bid := submitStandardBid(t, env, vendor, rfq)
	acceptBid(t, env, admin, bid.ID)

	_, err := env.orders.ConvertBid(ctx, admin.ID, ConvertBidRequest{BidID: bid.ID})
	require.NoError(t, err)
	_, err = env.orders.ConvertBid(ctx, admin.ID, ConvertBidRequest{BidID: bid.ID})
	require.True(t, apperr.IsKind(err, apperr.Conflict), "got %v", err)
}

func TestOrderVisibilityAndVendorPriceRedaction(t *testing.T) {
	env := newTestEnv(t)
	order, buyer, vendor, admin := convertedOrder(t, env)
	ctx := context.Background()
	outsider := registerActiveBuyer(t, env, "9")

	_, err := env.orders.Get(ctx, order.ID, outsider.ID, model.RoleBuyer)
	require.True(t, apperr.IsKind(err, apperr.NotFound))

	buyerView, err := env.orders.Get(ctx, order.ID, buyer.ID, model.RoleBuyer)
	require.NoError(t, err)
	require.True(t, buyerView.Items[0].BuyerUnitPrice.GreaterThan(decimal.Zero))

	vendorView, err := env.orders.Get(ctx, order.ID, vendor.ID, model.RoleVendor)
	require.NoError(t, err)
	require.True(t, vendorView.Items[0].BuyerUnitPrice.IsZero())
	require.True(t, vendorView.Items[0].VendorUnitPrice.Equal(decimal.RequireFromString("10.00")))

	rows, total, err := env.orders.List(ctx, admin.ID, model.RoleAdmin, "", 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.NotEmpty(t, rows[0].BuyerCompany)
	require.NotEmpty(t, rows[0].VendorCompany)

	_, total, err = env.orders.List(ctx, outsider.ID, model.RoleBuyer, "", 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 0, total)
}

func TestUpdateOrderStatusValidation(t *testing.T) {
	env := newTestEnv(t)
	order, _, _, admin := convertedOrder(t, env)
	ctx := context.Background()

	_, err := env.orders.UpdateStatus(ctx, order.ID, admin.ID, UpdateOrderStatusRequest{Status: "teleported"})
	require.True(t, apperr.IsKind(err, apperr.Validation))

	updated, err := env.orders.UpdateStatus(ctx, order.ID, admin.ID, UpdateOrderStatusRequest{Status: model.OrderStatusCancelled})
	require.NoError(t, err)
	require.Equal(t, model.OrderStatusCancelled, updated.Status)

	// Cancelled orders are frozen.
	_, err = env.orders.UpdateStatus(ctx, order.ID, admin.ID, UpdateOrderStatusRequest{Status: model.OrderStatusConfirmed})
	require.True(t, apperr.IsKind(err, apperr.InvalidState))
}

func TestQARequiresPaymentFirst(t *testing.T) {
	env := newTestEnv(t)
	order, _, _, admin := convertedOrder(t, env)

	_, err := env.orders.UpdateQA(context.Background(), order.ID, admin.ID, UpdateQARequest{QAStatus: model.QAStatusPassed})
	require.True(t, apperr.IsKind(err, apperr.InvalidState))
}
