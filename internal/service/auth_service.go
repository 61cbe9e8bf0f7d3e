package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/onboardhq/onboard/internal/dto"
	"github.com/onboardhq/onboard/internal/model"
	"github.com/onboardhq/onboard/internal/repository"
	"github.com/onboardhq/onboard/pkg/apperror"
	"github.com/onboardhq/onboard/pkg/response"
)

// Claims is the session token payload: identity plus role, with the JTI used
// as the revocation key.
type Claims struct {
	UserID   uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	// Authenticate parses and validates a bearer token, rejects revoked
	// JTIs, and re-fetches the user to confirm it is still active.
	Authenticate(ctx context.Context, tokenString string) (*response.CurrentUser, error)
	ChangePassword(ctx context.Context, userID uint, input dto.ChangePasswordInput) error
	// Logout adds the token's JTI to the revocation set when redis is
	// configured. Without redis the token stays valid until expiry, the
	// original stateless-logout limitation.
	Logout(ctx context.Context, tokenString string) error
}

type authService struct {
	repo     repository.UserRepository
	revoker  *TokenRevoker
	rdb      *redis.Client
	secret   string
	tokenTTL time.Duration
	throttle time.Duration
}

func NewAuthService(repo repository.UserRepository, rdb *redis.Client, secret string, tokenTTL, throttle time.Duration) AuthService {
	return &authService{
		repo:     repo,
		revoker:  NewTokenRevoker(rdb),
		rdb:      rdb,
		secret:   secret,
		tokenTTL: tokenTTL,
		throttle: throttle,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	user := &model.User{
		FullName: strings.TrimSpace(input.FullName),
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Username: strings.TrimSpace(input.Username),
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	// The unique indexes are the real duplicate guarantee; the insert and
	// the first-user role decision share one transaction.
	if err := s.repo.CreateWithInitialRole(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("email or username already registered")
		}
		return nil, err
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	identifier := strings.TrimSpace(input.Username)

	allowed, err := CheckAndSetRateLimit(ctx, s.rdb, "login:"+strings.ToLower(identifier), s.throttle)
	if err != nil {
		log.Printf("login throttle check failed: %v", err)
	} else if !allowed {
		return nil, apperror.ErrRateLimited
	}

	user, err := s.repo.FindActiveByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthorized("user not found or inactive")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.Unauthorized("incorrect password")
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID); err != nil {
		// Not worth failing the login over.
		log.Printf("failed to update last_login for user %d: %v", user.ID, err)
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Authenticate(ctx context.Context, tokenString string) (*response.CurrentUser, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return nil, apperror.Unauthorized("invalid or expired token")
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		log.Printf("revocation check failed: %v", err)
	} else if revoked {
		return nil, apperror.Unauthorized("token has been revoked")
	}

	user, err := s.repo.FindActiveByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthorized("user not found or inactive")
		}
		return nil, err
	}

	return &response.CurrentUser{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
	}, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID uint, input dto.ChangePasswordInput) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("user not found")
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		return apperror.Unauthorized("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.repo.UpdatePasswordHash(ctx, userID, string(hash))
}

func (s *authService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		// An unparsable token has nothing to revoke.
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}

	if err := s.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
		log.Printf("failed to revoke token %s: %v", claims.ID, err)
	}
	return nil
}

func (s *authService) buildAuthResponse(user *model.User) (*dto.AuthResponse, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &dto.AuthResponse{
		Success: true,
		Token:   token,
		User:    dto.NewUserProfile(user),
	}, nil
}

func (s *authService) parseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperror.ErrUnauthorized
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, apperror.ErrUnauthorized
	}
	return claims, nil
}
