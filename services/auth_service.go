package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teatime/teashop-api/models"
	"github.com/teatime/teashop-api/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterInput holds the fields of a self-service sign-up
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// AuthService registers users and verifies their credentials
type AuthService struct {
	db     *gorm.DB
	tokens *TokenService
}

// NewAuthService creates an auth service
func NewAuthService(db *gorm.DB, tokens *TokenService) *AuthService {
	return &AuthService{db: db, tokens: tokens}
}

// HashPassword returns the bcrypt hash of password
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches hash
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Register creates a customer account
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	hashed, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:         in.Name,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:        in.Phone,
		PasswordHash: hashed,
		Role:         models.RoleCustomer,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	utils.Logger.WithField("user_id", user.ID).Info("New user registered")
	return &user, nil
}

// Login checks credentials and issues a session token
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, time.Time, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("failed to load user: %w", err)
	}

	if !CheckPassword(user.PasswordHash, password) {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	utils.Logger.WithField("user_id", user.ID).Info("User logged in")
	return &user, token, expiresAt, nil
}
