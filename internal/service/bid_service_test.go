package service

import (
	"context"
	"testing"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestSubmitBidComputesTotalsServerSide(t *testing.T) {
	env := newTestEnv(t)
	buyer := registerActiveBuyer(t, env, "1")
	vendor := registerActiveVendor(t, env, "1")

	rfq := submittedRFQ(t, env, buyer)
	bid := submitStandardBid(t, env, vendor, rfq)

	// 100 × 10.00 + 50 × 5.00
	require.True(t, bid.TotalAmount.Equal(decimal.RequireFromString("1250")),
		"got %s", bid.TotalAmount)
	require.Equal(t, model.BidStatusPending, bid.Status)
	require.Len(t, bid.Items, 2)
	require.True(t, bid.Items[0].LineTotal.Equal(decimal.RequireFromString("1000")))
	require.True(t, bid.Items[1].LineTotal.Equal(decimal.RequireFromString("250")))
}

func TestFirstBidMovesRFQToBidsReceived(t *testing.T) {
	env := newTestEnv(t)
	buyer := registerActiveBuyer(t, env, "1")
	vendor := registerActiveVendor(t, env, "1")
	ctx := context.Background()

	rfq := submittedRFQ(t, env, buyer)
	submitStandardBid(t, env, vendor, rfq)

	detail, err := env.rfqs.Get(ctx, rfq.RFQ.ID, buyer.ID, model.RoleBuyer)
	require.NoError(t, err)
	require.Equal(t, model.RFQStatusBidsReceived, detail.RFQ.Status)

	// A second vendor can still bid while bids_received.
	second := registerActiveVendor(t, env, "2")
	cheap, err := env.bids.Submit(ctx, second.ID, SubmitBidRequest{
		RFQID: rfq.RFQ.ID,
		Items: []SubmitBidItemRequest{
			{RFQItemID: rfq.Items[0].ID, UnitPrice: decimal.RequireFromString("9.50")},
			{RFQItemID: rfq.Items[1].ID, UnitPrice: decimal.RequireFromString("4.75")},
		},
	})
	require.NoError(t, err)
	require.True(t, cheap.TotalAmount.Equal(decimal.RequireFromString("1187.5")))
}

func TestSecondBidBySameVendorConflicts(t *testing.T) {
	env := newTestEnv(t)
	buyer := registerActiveBuyer(t, env, "1")
	vendor := registerActiveVendor(t, env, "1")

	rfq := submittedRFQ(t, env, buyer)
	submitStandardBid(t, env, vendor, rfq)

	_, err := env.bids.Submit(context.Background(), vendor.ID, SubmitBidRequest{
		RFQID: rfq.RFQ.ID,
		Items: []SubmitBidItemRequest{
			{RFQItemID: rfq.Items[0].ID, UnitPrice: decimal.NewFromInt(1)},
			{RFQItemID: rfq.Items[1].ID, UnitPrice: decimal.NewFromInt(1)},
		},
	})
	require.True(t, apperr.IsKind(err, apperr.Conflict))
}

func TestBidOnDraftRFQIsInvalid(t *testing.T) {
	env := newTestEnv(t)
	buyer := registerActiveBuyer(t, env, "1")
	vendor := registerActiveVendor(t, env, "1")
	ctx := context.Background()

	draft, err := env.rfqs.Create(ctx, buyer.ID, CreateRFQRequest{
		Title:           "Not open yet",
		DeliveryAddress: "Depot",
		Items:           []CreateRFQItemRequest{{ItemName: "Pipe", Quantity: decimal.NewFromInt(5), Unit: "m"}},
	})
	require.NoError(t, err)

	_, err = env.bids.Submit(ctx, vendor.ID, SubmitBidRequest{
		RFQID: draft.RFQ.ID,
		Items: []SubmitBidItemRequest{{RFQItemID: draft.Items[0].ID, UnitPrice: decimal.NewFromInt(2)}},
	})
	require.True(t, apperr.IsKind(err, apperr.InvalidState))
}

func TestBidItemValidation(t *testing.T) {
	env := newTestEnv(t)
	buyer := registerActiveBuyer(t, env, "1")
	vendor := registerActiveVendor(t, env, "1")
	ctx := context.Background()

	rfq := submittedRFQ(t, env, buyer)

	// Same line priced twice.
	_, err := env.bids.Submit(ctx, vendor.ID, SubmitBidRequest{
		RFQID: rfq.RFQ.ID,
		Items: []SubmitBidItemRequest{
			{RFQItemID: rfq.Items[0].ID, UnitPrice: decimal.NewFromInt(10)},
			{RFQItemID: rfq.Items[0].ID, UnitPrice: decimal.NewFromInt(11)},
		},
	})
	require.True(t, apperr.IsKind(err, apperr.Validation))

	// Zero unit price.
	_, err = env.bids.Submit(ctx, vendor.ID, SubmitBidRequest{
		RFQID: rfq.RFQ.ID,
		Items: []SubmitBidItemRequest{
			{RFQItemID: rfq.Items[0].ID, UnitPrice: decimal.Zero},
			{RFQItemID: rfq.Items[1].ID, UnitPrice: decimal.NewFromInt(5)},
		},
	})
	require.True(t, apperr.IsKind(err, apperr.Validation))

	// A vendor may leave lines unpriced; the total covers only the
	// lines it quoted.
	partial, err := env.bids.Submit(ctx, vendor.ID, SubmitBidRequest{
		RFQID: rfq.RFQ.ID,
		Items: []SubmitBidItemRequest{{RFQItemID: rfq.Items[0].ID, UnitPrice: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)
	require.Len(t, partial.Items, 1)
	require.True(t, partial.TotalAmount.Equal(decimal.NewFromInt(1000)), "total %s", partial.TotalAmount)
}

func TestAvailableRFQsExcludeAlreadyBid(t *testing.T) {
	env := newTestEnv(t)
	buyer := registerActiveBuyer(t, env, "1")
	vendor := registerActiveVendor(t, env, "1")
	ctx := context.Background()

	first := submittedRFQ(t, env, buyer)
	second, err := env.rfqs.Create(ctx, buyer.ID, CreateRFQRequest{
		Title:           "Second request",
		DeliveryAddress: "Depot",
		Items:           []CreateRFQItemRequest{{ItemName: "Cable", Quantity: decimal.NewFromInt(200), Unit: "m"}},
	})
	require.NoError(t, err)
	_, err = env.rfqs.Submit(ctx, second.RFQ.ID, buyer.ID)
	require.NoError(t, err)

	available, total, err := env.bids.ListAvailableRFQs(ctx, vendor.ID, 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, available, 2)

	submitStandardBid(t, env, vendor, first)

	available, total, err = env.bids.ListAvailableRFQs(ctx, vendor.ID, 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, second.RFQ.ID, available[0].ID)

	// And the bid-on RFQ is gone from the bidding view too.
	_, err = env.bids.GetRFQForBidding(ctx, vendor.ID, first.RFQ.ID)
	require.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestReviewBidRecordsDecision(t *testing.T) {
	env := newTestEnv(t)
	buyer := registerActiveBuyer(t, env, "1")
	vendor := registerActiveVendor(t, env, "1")
	admin := createAdmin(t, env, "1")
	ctx := context.Background()

	rfq := submittedRFQ(t, env, buyer)
	bid := submitStandardBid(t, env, vendor, rfq)

	reviewed, err := env.bids.Review(ctx, bid.ID, admin.ID, ReviewBidRequest{
		Status: model.BidStatusAccepted,
		Notes:  "best price",
	})
	require.NoError(t, err)
	require.Equal(t, model.BidStatusAccepted, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	require.Equal(t, admin.ID, *reviewed.ReviewedBy)
	require.NotNil(t, reviewed.ReviewedAt)
	require.Equal(t, "best price", reviewed.ReviewNotes)

	// A decision is final; re-review is refused.
	_, err = env.bids.Review(ctx, bid.ID, admin.ID, ReviewBidRequest{Status: model.BidStatusRejected})
	require.True(t, apperr.IsKind(err, apperr.InvalidState))
}

func TestVendorBidVisibility(t *testing.T) {
	env := newTestEnv(t)
	buyer := registerActiveBuyer(t, env, "1")
	vendor := registerActiveVendor(t, env, "1")
	rival := registerActiveVendor(t, env, "2")
	ctx := context.Background()

	rfq := submittedRFQ(t, env, buyer)
	bid := submitStandardBid(t, env, vendor, rfq)

	// The owner sees it, a rival vendor does not.
	_, err := env.bids.Get(ctx, bid.ID, vendor.ID, model.RoleVendor)
	require.NoError(t, err)
	_, err = env.bids.Get(ctx, bid.ID, rival.ID, model.RoleVendor)
	require.True(t, apperr.IsKind(err, apperr.NotFound))

	mine, total, err := env.bids.ListMine(ctx, vendor.ID, repository.BidListFilter{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, rfq.RFQ.RFQNumber, mine[0].RFQNumber)

	forRFQ, err := env.bids.ListForRFQ(ctx, rfq.RFQ.ID)
	require.NoError(t, err)
	require.Len(t, forRFQ, 1)
	require.NotEmpty(t, forRFQ[0].VendorCompany)
}
