package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"practicetests/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 10

type AuthService struct {
	db        *gorm.DB
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(db *gorm.DB, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 7 * 24 * time.Hour
	}
	return &AuthService{
		db:        db,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Claims is the identity carried by a session token.
type Claims struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	if email == "" || req.Password == "" || name == "" {
		return nil, validationError("email, password and name are required")
	}

	db := s.db.WithContext(ctx)

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internalError("lookup user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, internalError("hash password", err)
	}

	user := models.User{
		Email:    email,
		Password: string(hash),
		Name:     name,
		Role:     models.RoleUser,
	}
	if err := db.Create(&user).Error; err != nil {
		// A concurrent registration won the unique index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, internalError("create user", err)
	}

	return s.authResponse(&user)
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, validationError("email and password are required")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, internalError("lookup user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrBadCredentials
	}

	return s.authResponse(&user)
}

func (s *AuthService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, internalError("get user", err)
	}
	return &user, nil
}

// EnsureAdmin creates the admin account or, when the email is taken, resets
// its password and name and promotes it to admin.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password, name string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, validationError("email and password are required")
	}
	if name == "" {
		name = "Admin User"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, internalError("hash password", err)
	}

	db := s.db.WithContext(ctx)

	var user models.User
	err = db.Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			Email:    email,
			Password: string(hash),
			Name:     name,
			Role:     models.RoleAdmin,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, internalError("create admin", err)
		}
	case err != nil:
		return nil, internalError("lookup admin", err)
	default:
		user.Password = string(hash)
		user.Name = name
		user.Role = models.RoleAdmin
		if err := db.Save(&user).Error; err != nil {
			return nil, internalError("promote admin", err)
		}
	}

	return &user, nil
}

// FindUserByEmail is used by operator tooling to resolve question owners.
func (s *AuthService) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, internalError("lookup user", err)
	}
	return &user, nil
}

func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", internalError("sign token", err)
	}
	return signed, nil
}

func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	return ParseToken(s.jwtSecret, tokenString)
}

// ParseToken verifies an HMAC-signed session token and returns its claims.
func ParseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

func (s *AuthService) authResponse(user *models.User) (*AuthResponse, error) {
	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Token: token, User: user}, nil
}
