package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"salon-server/config"
	"salon-server/models"
	"salon-server/utils"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRefreshToken = errors.New("refresh token is invalid or expired")
)

// TokenPair represents a pair of access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// AuthService issues and rotates admin credentials
type AuthService struct {
	db *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// EnsureAdmin creates the bootstrap admin account when it does not exist.
// An existing account is left untouched.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password, name string) (*models.User, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, false, errors.New("admin email and password are required")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("look up admin: %w", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, false, fmt.Errorf("hash admin password: %w", err)
	}
	user = models.User{FullName: name, Email: email, PasswordHash: hash, Role: models.RoleAdmin, IsActive: true}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, false, fmt.Errorf("create admin: %w", err)
	}

	log.Printf("✅ Admin account created: %s", email)
	return &user, true, nil
}

// Login checks the credentials and returns a fresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password, userAgent, ipAddress string) (*TokenPair, *models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !user.CanManage() || !utils.CheckPasswordHash(password, user.PasswordHash) {
		log.Printf("⚠️ Failed admin login for %s from %s", user.Email, ipAddress)
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.generateTokenPair(ctx, &user, userAgent, ipAddress)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		log.Printf("⚠️ Failed to record login time for user %d: %v", user.ID, err)
	}

	log.Printf("✅ Admin %s logged in", user.Email)
	return pair, &user, nil
}

func (s *AuthService) generateTokenPair(ctx context.Context, user *models.User, userAgent, ipAddress string) (*TokenPair, error) {
	accessToken, expiresIn, err := utils.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(ctx, user.ID, userAgent, ipAddress)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
		TokenType:    "Bearer",
	}, nil
}

func (s *AuthService) generateRefreshToken(ctx context.Context, userID uint, userAgent, ipAddress string) (string, error) {
	tokenString, err := utils.RandomToken(32)
	if err != nil {
		return "", err
	}

	days := config.AppConfig.JWT.RefreshDays
	if days <= 0 {
		days = 30
	}
	refreshToken := &models.RefreshToken{
		Token:     tokenString,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Duration(days) * 24 * time.Hour),
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}
	if err := s.db.WithContext(ctx).Create(refreshToken).Error; err != nil {
		return "", err
	}
	return tokenString, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, refreshTokenString, userAgent, ipAddress string) (*TokenPair, error) {
	var pair *TokenPair
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rt models.RefreshToken
		if err := tx.Where("token = ?", refreshTokenString).First(&rt).Error; err != nil {
			return ErrInvalidRefreshToken
		}
		if !rt.IsValid(time.Now()) {
			return ErrInvalidRefreshToken
		}

		var user models.User
		if err := tx.First(&user, rt.UserID).Error; err != nil || !user.CanManage() {
			return ErrInvalidRefreshToken
		}

		res := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND is_revoked = ?", rt.ID, false).
			Update("is_revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidRefreshToken
		}

		var err error
		pair, err = (&AuthService{db: tx}).generateTokenPair(ctx, &user, userAgent, ipAddress)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Revoke invalidates a refresh token (logout).
func (s *AuthService) Revoke(ctx context.Context, refreshTokenString string) error {
	res := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ?", refreshTokenString).
		Update("is_revoked", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvalidRefreshToken
	}
	return nil
}

// User loads an account that may still use the console.
func (s *AuthService) User(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	if !user.CanManage() {
		return nil, errors.New("user account is deactivated")
	}
	return &user, nil
}

// CleanupExpiredTokens deletes expired and revoked refresh tokens and
// returns how many were removed.
func (s *AuthService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at < ? OR is_revoked = ?", time.Now(), true).
		Delete(&models.RefreshToken{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
