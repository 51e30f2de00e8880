package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"backend/internal/apperr"
	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterBuyerRequest is the buyer sign-up payload.
type RegisterBuyerRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	CompanyName     string `json:"company_name" binding:"required"`
	CompanyNameAr   string `json:"company_name_ar"`
	TaxID           string `json:"tax_id" binding:"required"`
	Address         string `json:"address" binding:"required"`
	AddressAr       string `json:"address_ar"`
	City            string `json:"city" binding:"required"`
	CityAr          string `json:"city_ar"`
	ContactPerson   string `json:"contact_person" binding:"required"`
	ContactPersonAr string `json:"contact_person_ar"`
	Phone           string `json:"phone" binding:"required"`
}

// RegisterVendorRequest is the vendor sign-up payload.
type RegisterVendorRequest struct {
	Email           string   `json:"email" binding:"required,email"`
	Password        string   `json:"password" binding:"required,min=6"`
	CompanyName     string   `json:"company_name" binding:"required"`
	CompanyNameAr   string   `json:"company_name_ar"`
	TaxID           string   `json:"tax_id" binding:"required"`
	Address         string   `json:"address" binding:"required"`
	AddressAr       string   `json:"address_ar"`
	City            string   `json:"city" binding:"required"`
	CityAr          string   `json:"city_ar"`
	ContactPerson   string   `json:"contact_person" binding:"required"`
	ContactPersonAr string   `json:"contact_person_ar"`
	Phone           string   `json:"phone" binding:"required"`
	Categories      []string `json:"categories"`
}

// LoginRequest is the credential check payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserStatusRequest is the admin account approval payload.
type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending active suspended rejected"`
}

// AuthResponse carries the issued token plus the account and its profile.
type AuthResponse struct {
	Token   string      `json:"token"`
	User    *model.User `json:"user"`
	Profile interface{} `json:"profile,omitempty"`
}

// RegistrationResponse is the sign-up result. It carries no token: the
// account stays locked out until an admin approves it and the user logs in.
type RegistrationResponse struct {
	User    *model.User `json:"user"`
	Profile interface{} `json:"profile,omitempty"`
}

// MeResponse is the authenticated account view.
type MeResponse struct {
	User    *model.User `json:"user"`
	Profile interface{} `json:"profile,omitempty"`
}

const tokenTTL = 24 * time.Hour

// AuthService covers registration, login, and admin account management.
type AuthService interface {
	RegisterBuyer(ctx context.Context, req RegisterBuyerRequest) (*RegistrationResponse, error)
	RegisterVendor(ctx context.Context, req RegisterVendorRequest) (*RegistrationResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*MeResponse, error)
	ListUsers(ctx context.Context, filter repository.UserListFilter) ([]model.User, int64, error)
	SetUserStatus(ctx context.Context, userID uuid.UUID, status string) (*model.User, error)
}

type authService struct {
	users    repository.UserRepository
	profiles repository.ProfileRepository
	txM      repository.TransactionManager
}

func NewAuthService(users repository.UserRepository, profiles repository.ProfileRepository, txM repository.TransactionManager) AuthService {
	return &authService{users: users, profiles: profiles, txM: txM}
}

var errInvalidCredentials = apperr.New(apperr.Unauthorized,
	"Invalid email or password", "البريد الإلكتروني أو كلمة المرور غير صحيحة")

func (s *authService) RegisterBuyer(ctx context.Context, req RegisterBuyerRequest) (*RegistrationResponse, error) {
	if err := s.checkEmailFree(ctx, req.Email); err != nil {
		return nil, err
	}
	exists, err := s.profiles.BuyerTaxIDExists(ctx, req.TaxID)
	if err != nil {
		return nil, apperr.Internalf("Failed to check tax ID", "فشل التحقق من الرقم الضريبي", err)
	}
	if exists {
		return nil, apperr.New(apperr.Conflict,
			"A buyer with this tax ID is already registered", "يوجد مشترٍ مسجل بهذا الرقم الضريبي")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internalf("Failed to hash password", "فشل تشفير كلمة المرور", err)
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         model.RoleBuyer,
		Status:       model.UserStatusPending,
	}
	profile := &model.BuyerProfile{
		CompanyName:     req.CompanyName,
		CompanyNameAr:   req.CompanyNameAr,
		TaxID:           req.TaxID,
		Address:         req.Address,
		AddressAr:       req.AddressAr,
		City:            req.City,
		CityAr:          req.CityAr,
		ContactPerson:   req.ContactPerson,
		ContactPersonAr: req.ContactPersonAr,
		Phone:           req.Phone,
	}

	err = s.txM.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.users.Create(txCtx, user); err != nil {
			return classifyDuplicate(err, "Email is already registered", "البريد الإلكتروني مسجل مسبقاً")
		}
		profile.UserID = user.ID
		if err := s.profiles.CreateBuyer(txCtx, profile); err != nil {
			return classifyDuplicate(err, "A buyer with this tax ID is already registered", "يوجد مشترٍ مسجل بهذا الرقم الضريبي")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &RegistrationResponse{User: user, Profile: profile}, nil
}

func (s *authService) RegisterVendor(ctx context.Context, req RegisterVendorRequest) (*RegistrationResponse, error) {
	if err := s.checkEmailFree(ctx, req.Email); err != nil {
		return nil, err
	}
	exists, err := s.profiles.VendorTaxIDExists(ctx, req.TaxID)
	if err != nil {
		return nil, apperr.Internalf("Failed to check tax ID", "فشل التحقق من الرقم الضريبي", err)
	}
	if exists {
		return nil, apperr.New(apperr.Conflict,
			"A vendor with this tax ID is already registered", "يوجد مورد مسجل بهذا الرقم الضريبي")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internalf("Failed to hash password", "فشل تشفير كلمة المرور", err)
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         model.RoleVendor,
		Status:       model.UserStatusPending,
	}
	profile := &model.VendorProfile{
		CompanyName:     req.CompanyName,
		CompanyNameAr:   req.CompanyNameAr,
		TaxID:           req.TaxID,
		Address:         req.Address,
		AddressAr:       req.AddressAr,
		City:            req.City,
		CityAr:          req.CityAr,
		ContactPerson:   req.ContactPerson,
		ContactPersonAr: req.ContactPersonAr,
		Phone:           req.Phone,
		Categories:      encodeCategories(req.Categories),
	}

	err = s.txM.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.users.Create(txCtx, user); err != nil {
			return classifyDuplicate(err, "Email is already registered", "البريد الإلكتروني مسجل مسبقاً")
		}
		profile.UserID = user.ID
		if err := s.profiles.CreateVendor(txCtx, profile); err != nil {
			return classifyDuplicate(err, "A vendor with this tax ID is already registered", "يوجد مورد مسجل بهذا الرقم الضريبي")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &RegistrationResponse{User: user, Profile: profile}, nil
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same error as a wrong password so login does not reveal
			// which emails exist.
			return nil, errInvalidCredentials
		}
		return nil, apperr.Internalf("Failed to look up account", "فشل البحث عن الحساب", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, errInvalidCredentials
	}

	switch user.Status {
	case model.UserStatusActive:
	case model.UserStatusPending:
		return nil, apperr.New(apperr.Forbidden,
			"Account is pending admin approval", "الحساب في انتظار موافقة المسؤول")
	default:
		return nil, apperr.New(apperr.Forbidden,
			"Account is not active", "الحساب غير نشط")
	}

	profile, err := s.loadProfile(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.issue(user, profile)
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*MeResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "Account not found", "الحساب غير موجود")
		}
		return nil, apperr.Internalf("Failed to load account", "فشل تحميل الحساب", err)
	}
	profile, err := s.loadProfile(ctx, user)
	if err != nil {
		return nil, err
	}
	return &MeResponse{User: user, Profile: profile}, nil
}

func (s *authService) ListUsers(ctx context.Context, filter repository.UserListFilter) ([]model.User, int64, error) {
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Internalf("Failed to list users", "فشل جلب المستخدمين", err)
	}
	return users, total, nil
}

func (s *authService) SetUserStatus(ctx context.Context, userID uuid.UUID, status string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "User not found", "المستخدم غير موجود")
		}
		return nil, apperr.Internalf("Failed to load user", "فشل تحميل المستخدم", err)
	}
	if user.Role == model.RoleAdmin {
		return nil, apperr.New(apperr.Forbidden,
			"Admin account status cannot be changed", "لا يمكن تغيير حالة حساب المسؤول")
	}
	if err := s.users.UpdateStatus(ctx, user.ID, status); err != nil {
		return nil, apperr.Internalf("Failed to update user status", "فشل تحديث حالة المستخدم", err)
	}
	user.Status = status
	return user, nil
}

func (s *authService) checkEmailFree(ctx context.Context, email string) error {
	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return apperr.New(apperr.Conflict,
			"Email is already registered", "البريد الإلكتروني مسجل مسبقاً")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Internalf("Failed to check email", "فشل التحقق من البريد الإلكتروني", err)
	}
	return nil
}

func (s *authService) loadProfile(ctx context.Context, user *model.User) (interface{}, error) {
	switch user.Role {
	case model.RoleBuyer:
		p, err := s.profiles.FindBuyerByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Internalf("Failed to load profile", "فشل تحميل الملف الشخصي", err)
		}
		if p == nil {
			return nil, nil
		}
		return p, nil
	case model.RoleVendor:
		p, err := s.profiles.FindVendorByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Internalf("Failed to load profile", "فشل تحميل الملف الشخصي", err)
		}
		if p == nil {
			return nil, nil
		}
		return p, nil
	}
	return nil, nil
}

func (s *authService) issue(user *model.User, profile interface{}) (*AuthResponse, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(middleware.GetJWTSecret())
	if err != nil {
		return nil, apperr.Internalf("Failed to sign token", "فشل إنشاء رمز الدخول", err)
	}
	return &AuthResponse{Token: token, User: user, Profile: profile}, nil
}

func encodeCategories(categories []string) string {
	if len(categories) == 0 {
		return "[]"
	}
	// Marshalling a []string cannot fail.
	b, _ := json.Marshal(categories)
	return string(b)
}

func classifyDuplicate(err error, msg, msgAr string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Wrap(apperr.Conflict, msg, msgAr, err)
	}
	return apperr.Internalf("Failed to save record", "فشل حفظ السجل", err)
}
