package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileRepository defines data access for buyer and vendor company profiles.
type ProfileRepository interface {
	CreateBuyer(ctx context.Context, profile *model.BuyerProfile) error
	CreateVendor(ctx context.Context, profile *model.VendorProfile) error
	FindBuyerByUserID(ctx context.Context, userID uuid.UUID) (*model.BuyerProfile, error)
	FindVendorByUserID(ctx context.Context, userID uuid.UUID) (*model.VendorProfile, error)
	BuyerTaxIDExists(ctx context.Context, taxID string) (bool, error)
	VendorTaxIDExists(ctx context.Context, taxID string) (bool, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) CreateBuyer(ctx context.Context, profile *model.BuyerProfile) error {
	return GetDB(ctx, r.db).Create(profile).Error
}

func (r *profileRepository) CreateVendor(ctx context.Context, profile *model.VendorProfile) error {
	return GetDB(ctx, r.db).Create(profile).Error
}

func (r *profileRepository) FindBuyerByUserID(ctx context.Context, userID uuid.UUID) (*model.BuyerProfile, error) {
	var profile model.BuyerProfile
	if err := GetDB(ctx, r.db).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) FindVendorByUserID(ctx context.Context, userID uuid.UUID) (*model.VendorProfile, error) {
	var profile model.VendorProfile
	if err := GetDB(ctx, r.db).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) BuyerTaxIDExists(ctx context.Context, taxID string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.BuyerProfile{}).Where("tax_id = ?", taxID).Count(&count).Error
	return count > 0, err
}

func (r *profileRepository) VendorTaxIDExists(ctx context.Context, taxID string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.VendorProfile{}).Where("tax_id = ?", taxID).Count(&count).Error
	return count > 0, err
}
