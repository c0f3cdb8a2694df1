package auth

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/voluntapp/voluntapp/pkg/bcryptutil"
)

const tokenTTL = 24 * time.Hour

// Store is the subset of repository operations the service needs.
type Store interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service implements register/login/logout. Logout revokes the token id in
// redis until its natural expiry; a nil redis client disables revocation
// checks (tokens then simply expire).
type Service struct {
	store  Store
	redis  *redis.Client
	secret []byte
	idGen  func() string
	now    func() time.Time
}

func NewService(store Store, redisClient *redis.Client, secret []byte) *Service {
	return &Service{
		store:  store,
		redis:  redisClient,
		secret: secret,
		idGen:  func() string { return uuid.NewString() },
		now:    time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return nil, fmt.Errorf("auth: email, password and name are required")
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("auth: password must be at least 8 characters")
	}

	existing, err := s.store.GetByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		return nil, fmt.Errorf("auth: lookup: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("auth: email already registered")
	}

	hash, err := bcryptutil.GenerateHash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	u := &User{
		ID:           s.idGen(),
		Email:        strings.ToLower(req.Email),
		Name:         req.Name,
		Career:       req.Career,
		Role:         "student",
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("auth: create user: %w", err)
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	u, err := s.store.GetByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		return nil, fmt.Errorf("auth: lookup: %w", err)
	}
	if u == nil || !bcryptutil.CompareHash(req.Password, u.PasswordHash) {
		return nil, fmt.Errorf("auth: invalid credentials")
	}

	expiresAt := s.now().Add(tokenTTL)
	claims := Claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ID:        s.idGen(),
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("auth: sign token: %w", err)
	}

	return &TokenResponse{Token: token, ExpiresAt: expiresAt, User: u}, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.ParseToken(ctx, tokenString)
	if err != nil {
		return err
	}
	if s.redis == nil {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.redis.Set(ctx, revocationKey(claims.ID), "1", ttl).Err(); err != nil {
		log.Printf("Failed to revoke token %s: %v", claims.ID, err)
		return fmt.Errorf("auth: revoke token: %w", err)
	}
	return nil
}

// ParseToken validates signature, expiry and revocation.
func (s *Service) ParseToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token")
	}

	if s.redis != nil && claims.ID != "" {
		revoked, err := s.redis.Exists(ctx, revocationKey(claims.ID)).Result()
		if err != nil {
			log.Printf("Redis error checking token revocation: %v", err)
		} else if revoked > 0 {
			return nil, fmt.Errorf("auth: token revoked")
		}
	}

	return claims, nil
}

func revocationKey(tokenID string) string {
	return "auth:revoked:" + tokenID
}
