package service

import (
	"context"

	"backend/internal/apperr"
	"backend/internal/repository"

	"github.com/shopspring/decimal"
)

// DashboardStats is the admin overview aggregate.
type DashboardStats struct {
	UsersByRole    []repository.RoleCount   `json:"users_by_role"`
	RFQsByStatus   []repository.StatusCount `json:"rfqs_by_status"`
	BidsByStatus   []repository.StatusCount `json:"bids_by_status"`
	OrdersByStatus []repository.StatusCount `json:"orders_by_status"`
	RealizedMarkup decimal.Decimal          `json:"realized_markup"`
	Escrow         *repository.EscrowSummary `json:"escrow"`
}

// AdminService serves the admin dashboard.
type AdminService interface {
	Stats(ctx context.Context) (*DashboardStats, error)
}

type adminService struct {
	users    repository.UserRepository
	stats    repository.StatsRepository
	payments repository.PaymentRepository
}

func NewAdminService(users repository.UserRepository, stats repository.StatsRepository, payments repository.PaymentRepository) AdminService {
	return &adminService{users: users, stats: stats, payments: payments}
}

func (s *adminService) Stats(ctx context.Context) (*DashboardStats, error) {
	fail := func(err error) (*DashboardStats, error) {
		return nil, apperr.Internalf("Failed to compute dashboard stats", "فشل حساب إحصائيات لوحة التحكم", err)
	}

	usersByRole, err := s.users.CountByRole(ctx)
	if err != nil {
		return fail(err)
	}
	rfqs, err := s.stats.RFQCountsByStatus(ctx)
	if err != nil {
		return fail(err)
	}
	bids, err := s.stats.BidCountsByStatus(ctx)
	if err != nil {
		return fail(err)
	}
	orders, err := s.stats.OrderCountsByStatus(ctx)
	if err != nil {
		return fail(err)
	}
	markup, err := s.stats.RealizedRevenue(ctx)
	if err != nil {
		return fail(err)
	}
	escrow, err := s.payments.Escrow(ctx)
	if err != nil {
		return fail(err)
	}

	return &DashboardStats{
		UsersByRole:    usersByRole,
		RFQsByStatus:   rfqs,
		BidsByStatus:   bids,
		OrdersByStatus: orders,
		RealizedMarkup: markup,
		Escrow:         escrow,
	}, nil
}
