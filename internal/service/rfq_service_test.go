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

func TestCreateRFQNumbersLinesInOrder(t *testing.T) {
	env := newTestEnv(t)
	buyer := registerActiveBuyer(t, env, "1")

	detail, err := env.rfqs.Create(context.Background(), buyer.ID, CreateRFQRequest{
		Title:           "Office fit-out",
		DeliveryAddress: "HQ, King Fahd Rd",
		Items: []CreateRFQItemRequest{
			{ItemName: "Desk", Quantity: decimal.NewFromInt(20), Unit: "piece"},
			{ItemName: "Chair", Quantity: decimal.NewFromInt(40), Unit: "piece"},
			{ItemName: "Lamp", Quantity: decimal.NewFromInt(20), Unit: "piece"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, model.RFQStatusDraft, detail.RFQ.Status)
	require.True(t, strings.HasPrefix(detail.RFQ.RFQNumber, "RFQ-"))
	require.Equal(t, 3, detail.RFQ.TotalItems)
	for i, item := range detail.Items {
		require.Equal(t, i+1, item.LineNumber)
	}
}

func TestCreateRFQRejectsNonPositiveQuantity(t *testing.T) {
	env := newTestEnv(t)
	buyer := registerActiveBuyer(t, env, "1")

	_, err := env.rfqs.Create(context.Background(), buyer.ID, CreateRFQRequest{
		Title:           "Bad request",
		DeliveryAddress: "Anywhere",
		Items: []CreateRFQItemRequest{
			{ItemName: "Desk", Quantity: decimal.Zero, Unit: "piece"},
		},
	})
	require.True(t, apperr.IsKind(err, apperr.Validation))
}

func TestSubmitRFQOnlyFromDraft(t *testing.T) {
	env := newTestEnv(t)
	buyer := registerActiveBuyer(t, env, "1")
	ctx := context.Background()

	detail, err := env.rfqs.Create(ctx, buyer.ID, CreateRFQRequest{
		Title:           "One-liner",
		DeliveryAddress: "Depot",
		Items:           []CreateRFQItemRequest{{ItemName: "Pipe", Quantity: decimal.NewFromInt(5), Unit: "m"}},
	})
	require.NoError(t, err)

	submitted, err := env.rfqs.Submit(ctx, detail.RFQ.ID, buyer.ID)
	require.NoError(t, err)
	require.Equal(t, model.RFQStatusSubmitted, submitted.Status)
	require.NotNil(t, submitted.SubmittedAt)

	_, err = env.rfqs.Submit(ctx, detail.RFQ.ID, buyer.ID)
	require.True(t, apperr.IsKind(err, apperr.InvalidState))
}

func TestForeignRFQLooksAbsentToOtherBuyer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := registerActiveBuyer(t, env, "1")
	other := registerActiveBuyer(t, env, "2")

	rfq := submittedRFQ(t, env, owner)

	_, err := env.rfqs.Get(ctx, rfq.RFQ.ID, other.ID, model.RoleBuyer)
	require.True(t, apperr.IsKind(err, apperr.NotFound))
	_, err = env.rfqs.Submit(ctx, rfq.RFQ.ID, other.ID)
	require.True(t, apperr.IsKind(err, apperr.NotFound))

	// Admins see every RFQ.
	detail, err := env.rfqs.Get(ctx, rfq.RFQ.ID, other.ID, model.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, detail.Items, 2)
}

func TestListRFQsScoping(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := registerActiveBuyer(t, env, "1")
	second := registerActiveBuyer(t, env, "2")

	submittedRFQ(t, env, first)
	submittedRFQ(t, env, second)

	filter := repository.RFQListFilter{Page: 1, Limit: 20}
	mine, total, err := env.rfqs.ListMine(ctx, first.ID, filter)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, mine, 1)
	require.EqualValues(t, 2, mine[0].ItemCount)

	all, total, err := env.rfqs.ListAll(ctx, filter)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, all, 2)
	require.NotEmpty(t, all[0].BuyerEmail)
}
