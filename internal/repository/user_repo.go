package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserListFilter narrows admin user listings.
type UserListFilter struct {
	Role   string
	Status string
	Page   int
	Limit  int
}

// RoleCount is one row of the users-by-role aggregate.
type RoleCount struct {
	Role  string `gorm:"column:role" json:"role"`
	Count int64  `gorm:"column:count" json:"count"`
}

// UserRepository defines the data access contract for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, filter UserListFilter) ([]model.User, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	CountByRole(ctx context.Context) ([]RoleCount, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return GetDB(ctx, r.db).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, filter UserListFilter) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.User{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at desc").Offset(offset).Limit(filter.Limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return GetDB(ctx, r.db).Model(&model.User{}).Where("id = ?", id).Update("status", status).Error
}

func (r *userRepository) CountByRole(ctx context.Context) ([]RoleCount, error) {
	var rows []RoleCount
	err := GetDB(ctx, r.db).Model(&model.User{}).
		Select("role, COUNT(*) as count").
		Group("role").
		Scan(&rows).Error
	return rows, err
}
