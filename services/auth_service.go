package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yeremiapane/recipe-costing/models"
	"github.com/yeremiapane/recipe-costing/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

type AuthService struct {
	db        *gorm.DB
	issuer    *utils.TokenIssuer
	blacklist *utils.TokenBlacklist
}

func NewAuthService(db *gorm.DB, issuer *utils.TokenIssuer, blacklist *utils.TokenBlacklist) *AuthService {
	return &AuthService{db: db, issuer: issuer, blacklist: blacklist}
}

func (s *AuthService) Login(ctx context.Context, payload LoginPayload) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" {
		return nil, ValidationError("email", "email is required")
	}
	if payload.Password == "" {
		return nil, ValidationError("password", "password is required")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, UnauthorizedError("invalid credentials")
	}
	if err != nil {
		return nil, PersistenceError("find user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)); err != nil {
		return nil, UnauthorizedError("invalid credentials")
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&user).UpdateColumn("last_login_at", now).Error; err != nil {
		return nil, PersistenceError("record login", err)
	}
	user.LastLoginAt = &now

	token, expiresAt, err := s.issuer.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, PersistenceError("sign token", err)
	}

	utils.InfoLogger.Printf("Login successful for user: %s, role: %s", user.Email, user.Role)
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Authenticate returns the claims of a token that is well formed, unexpired
// and not logged out.
func (s *AuthService) Authenticate(token string) (*utils.CustomClaims, error) {
	if token == "" {
		return nil, UnauthorizedError("authorization header missing")
	}
	claims, err := s.issuer.ParseToken(token)
	if err != nil {
		return nil, UnauthorizedError(err.Error())
	}
	if s.blacklist.Contains(token) {
		return nil, UnauthorizedError("token has been revoked")
	}
	return claims, nil
}

func (s *AuthService) Logout(token string) error {
	claims, err := s.Authenticate(token)
	if err != nil {
		return err
	}
	s.blacklist.Add(token, claims.ExpiresAt.Time)
	utils.InfoLogger.Printf("User %d logged out", claims.UserID)
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, UnauthorizedError("user no longer exists")
	}
	if err != nil {
		return nil, PersistenceError("load user", err)
	}
	return &user, nil
}
