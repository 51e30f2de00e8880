package service

import (
	"context"
	"fmt"
	"testing"

	"backend/internal/database"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires every service against one in-memory database.
type testEnv struct {
	db       *gorm.DB
	auth     AuthService
	catalog  CatalogService
	rfqs     RFQService
	bids     BidService
	orders   OrderService
	payments PaymentService
	admin    AdminService

	userRepo    repository.UserRepository
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	txM := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	productRepo := repository.NewProductRepository(db)
	rfqRepo := repository.NewRFQRepository(db)
	bidRepo := repository.NewBidRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	markup := decimal.RequireFromString("0.07")

	return &testEnv{
		db:          db,
		auth:        NewAuthService(userRepo, profileRepo, txM),
		catalog:     NewCatalogService(productRepo),
		rfqs:        NewRFQService(rfqRepo, profileRepo, txM),
		bids:        NewBidService(bidRepo, rfqRepo, profileRepo, txM, nil),
		orders:      NewOrderService(orderRepo, bidRepo, rfqRepo, txM, nil, markup),
		payments:    NewPaymentService(paymentRepo, orderRepo, txM, nil),
		admin:       NewAdminService(userRepo, statsRepo, paymentRepo),
		userRepo:    userRepo,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
	}
}

func buyerRegistration(suffix string) RegisterBuyerRequest {
	return RegisterBuyerRequest{
		Email:         fmt.Sprintf("buyer%s@example.com", suffix),
		Password:      "s3cret-pass",
		CompanyName:   "Nile Trading Co",
		CompanyNameAr: "شركة النيل للتجارة",
		TaxID:         "B-TAX-" + suffix,
		Address:       "12 Corniche St",
		City:          "Riyadh",
		ContactPerson: "Huda",
		Phone:         "+966500000001",
	}
}

func vendorRegistration(suffix string) RegisterVendorRequest {
	return RegisterVendorRequest{
		Email:         fmt.Sprintf("vendor%s@example.com", suffix),
		Password:      "s3cret-pass",
		CompanyName:   "Delta Supplies",
		CompanyNameAr: "دلتا للتوريدات",
		TaxID:         "V-TAX-" + suffix,
		Address:       "4 Industrial Rd",
		City:          "Jeddah",
		ContactPerson: "Omar",
		Phone:         "+966500000002",
		Categories:    []string{"construction", "electrical"},
	}
}

// registerActiveBuyer registers and activates a buyer, returning the account.
func registerActiveBuyer(t *testing.T, env *testEnv, suffix string) *model.User {
	t.Helper()
	ctx := context.Background()
	res, err := env.auth.RegisterBuyer(ctx, buyerRegistration(suffix))
	require.NoError(t, err)
	user, err := env.auth.SetUserStatus(ctx, res.User.ID, model.UserStatusActive)
	require.NoError(t, err)
	return user
}

func registerActiveVendor(t *testing.T, env *testEnv, suffix string) *model.User {
	t.Helper()
	ctx := context.Background()
	res, err := env.auth.RegisterVendor(ctx, vendorRegistration(suffix))
	require.NoError(t, err)
	user, err := env.auth.SetUserStatus(ctx, res.User.ID, model.UserStatusActive)
	require.NoError(t, err)
	return user
}

// createAdmin inserts an admin account directly; admins are provisioned
// out of band, not via registration.
func createAdmin(t *testing.T, env *testEnv, suffix string) *model.User {
	t.Helper()
	admin := &model.User{
		Email:        fmt.Sprintf("admin%s@example.com", suffix),
		PasswordHash: "x",
		Role:         model.RoleAdmin,
		Status:       model.UserStatusActive,
	}
	require.NoError(t, env.userRepo.Create(context.Background(), admin))
	return admin
}

// submittedRFQ creates and submits a two-line RFQ: 100 units and 50 units.
func submittedRFQ(t *testing.T, env *testEnv, buyer *model.User) *RFQDetail {
	t.Helper()
	ctx := context.Background()
	detail, err := env.rfqs.Create(ctx, buyer.ID, CreateRFQRequest{
		Title:           "Site materials",
		TitleAr:         "مواد الموقع",
		DeliveryAddress: "Warehouse 3, Industrial City",
		Items: []CreateRFQItemRequest{
			{ItemName: "Cement bag 50kg", Quantity: decimal.NewFromInt(100), Unit: "bag"},
			{ItemName: "Steel rod 12mm", Quantity: decimal.NewFromInt(50), Unit: "piece"},
		},
	})
	require.NoError(t, err)

	_, err = env.rfqs.Submit(ctx, detail.RFQ.ID, buyer.ID)
	require.NoError(t, err)
	detail.RFQ.Status = model.RFQStatusSubmitted
	return detail
}

// submitStandardBid prices the two RFQ lines at 10.00 and 5.00, totalling 1250.
func submitStandardBid(t *testing.T, env *testEnv, vendor *model.User, rfq *RFQDetail) *BidDetail {
	t.Helper()
	bid, err := env.bids.Submit(context.Background(), vendor.ID, SubmitBidRequest{
		RFQID: rfq.RFQ.ID,
		Items: []SubmitBidItemRequest{
			{RFQItemID: rfq.Items[0].ID, UnitPrice: decimal.RequireFromString("10.00"), LeadTimeDays: 7},
			{RFQItemID: rfq.Items[1].ID, UnitPrice: decimal.RequireFromString("5.00"), LeadTimeDays: 14},
		},
	})
	require.NoError(t, err)
	return bid
}
