package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/scan-order/models"
	"github.com/yeremiapane/scan-order/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// defaultCashback is the percent given to newly registered tenants.
var defaultCashback = decimal.NewFromInt(1)

type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserSummary struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
}

type TokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        UserSummary `json:"user"`
	ExpiresIn   int64       `json:"expires_in"`
}

type UserProfile struct {
	UserSummary
	TenantName string `json:"tenant_name"`
}

// AuthService registers owners and issues access tokens.
type AuthService struct {
	db  *gorm.DB
	jwt *utils.JWTManager
}

func NewAuthService(db *gorm.DB, jwt *utils.JWTManager) *AuthService {
	return &AuthService{db: db, jwt: jwt}
}

// Register creates a tenant and its owner account in one transaction.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, utils.NewInternal("failed to hash password", err)
	}

	var user models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return utils.NewInternal("failed to check email", err)
		}
		if count > 0 {
			return utils.NewValidation("Email already registered")
		}

		tenant := models.Tenant{
			Name:            in.FullName + "'s Restaurant",
			Status:          models.StatusActive,
			CashbackPercent: defaultCashback,
		}
		if err := tx.Create(&tenant).Error; err != nil {
			return utils.NewInternal("failed to create tenant", err)
		}

		user = models.User{
			TenantID:     tenant.ID,
			Email:        email,
			PasswordHash: string(hash),
			FullName:     in.FullName,
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return utils.NewValidation("Email already registered")
			}
			return utils.NewInternal("failed to create user", err)
		}
		return nil
	})
	if err != nil {
		return nil, asAppError("failed to register", err)
	}

	utils.InfoLogger.WithField("user", user.ID).Info("Owner registered")
	return s.issue(ctx, &user)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*TokenResponse, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(in.Email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewUnauthenticated("Incorrect email or password")
	}
	if err != nil {
		return nil, utils.NewInternal("failed to load user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return nil, utils.NewUnauthenticated("Incorrect email or password")
	}
	return s.issue(ctx, &user)
}

// Me returns the profile of the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID string) (*UserProfile, error) {
	db := s.db.WithContext(ctx)
	var user models.User
	if err := first(db, &user, userID, "User"); err != nil {
		return nil, err
	}
	role, err := ResolveRole(db, user.ID)
	if err != nil {
		return nil, err
	}

	tenantName := "Unknown"
	var tenant models.Tenant
	if err := db.Where("id = ?", user.TenantID).Limit(1).Find(&tenant).Error; err == nil && tenant.ID != "" {
		tenantName = tenant.Name
	}

	return &UserProfile{UserSummary: summary(&user, role), TenantName: tenantName}, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*TokenResponse, error) {
	role, err := ResolveRole(s.db.WithContext(ctx), user.ID)
	if err != nil {
		return nil, err
	}
	token, err := s.jwt.GenerateToken(user.ID)
	if err != nil {
		return nil, utils.NewInternal("failed to sign token", err)
	}
	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        summary(user, role),
		ExpiresIn:   int64(s.jwt.TTL().Seconds()),
	}, nil
}

func summary(user *models.User, role string) UserSummary {
	return UserSummary{
		UserID:   user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		TenantID: user.TenantID,
		Role:     role,
	}
}

// ResolveRole derives a user's role: a Chef staff row makes a chef, any other
// staff row a staff member, a customer row a customer, and nothing an owner.
func ResolveRole(tx *gorm.DB, userID string) (string, error) {
	var staff models.Staff
	if err := tx.Where("user_id = ?", userID).Limit(1).Find(&staff).Error; err != nil {
		return "", utils.NewInternal("failed to resolve role", err)
	}
	if staff.ID != "" {
		if staff.Position == models.PositionChef {
			return models.RoleChef, nil
		}
		return models.RoleStaff, nil
	}

	var count int64
	if err := tx.Model(&models.Customer{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return "", utils.NewInternal("failed to resolve role", err)
	}
	if count > 0 {
		return models.RoleCustomer, nil
	}
	return models.RoleOwner, nil
}
