package repository

import (
	"context"

	"backend/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StatusCount is one row of a GROUP BY status aggregate.
type StatusCount struct {
	Status string `gorm:"column:status" json:"status"`
	Count  int64  `gorm:"column:count" json:"count"`
}

// StatsRepository serves the admin dashboard aggregates.
type StatsRepository interface {
	RFQCountsByStatus(ctx context.Context) ([]StatusCount, error)
	BidCountsByStatus(ctx context.Context) ([]StatusCount, error)
	OrderCountsByStatus(ctx context.Context) ([]StatusCount, error)
	RealizedRevenue(ctx context.Context) (decimal.Decimal, error)
}

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) countsByStatus(ctx context.Context, table string) ([]StatusCount, error) {
	var rows []StatusCount
	err := GetDB(ctx, r.db).Table(table).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status asc").
		Scan(&rows).Error
	return rows, err
}

func (r *statsRepository) RFQCountsByStatus(ctx context.Context) ([]StatusCount, error) {
	return r.countsByStatus(ctx, "rfqs")
}

func (r *statsRepository) BidCountsByStatus(ctx context.Context) ([]StatusCount, error) {
	return r.countsByStatus(ctx, "bids")
}

func (r *statsRepository) OrderCountsByStatus(ctx context.Context) ([]StatusCount, error) {
	return r.countsByStatus(ctx, "orders")
}

// RealizedRevenue sums the markup on completed orders.
func (r *statsRepository) RealizedRevenue(ctx context.Context) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	err := GetDB(ctx, r.db).Model(&model.Order{}).
		Select("COALESCE(SUM(markup_amount), 0) AS total").
		Where("status = ?", model.OrderStatusCompleted).
		Scan(&row).Error
	return row.Total, err
}
