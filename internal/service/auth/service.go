// Package auth authenticates principals and manages their sessions. Passwords
// are verified against the one-way bcrypt hash stored on the system user;
// sessions are stateless JWTs with an in-process revocation list for logout.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"

	"github.com/clinisys/backoffice/internal/policy"
	"github.com/clinisys/backoffice/internal/repository"
	"github.com/clinisys/backoffice/pkg/errors"
	"github.com/clinisys/backoffice/pkg/metrics"
	"github.com/clinisys/backoffice/pkg/security"
)

// Claims carried by a session token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Config struct {
	Secret      string
	ExpiryHours int
}

type Service struct {
	users   repository.UserRepository
	hasher  security.PasswordHasher
	cfg     Config
	revoked *cache.Cache
	metrics *metrics.Metrics
}

func NewService(users repository.UserRepository, hasher security.PasswordHasher, cfg Config, m *metrics.Metrics) *Service {
	ttl := time.Duration(cfg.ExpiryHours) * time.Hour
	return &Service{
		users:   users,
		hasher:  hasher,
		cfg:     cfg,
		revoked: cache.New(ttl, 10*time.Minute),
		metrics: m,
	}
}

// Login verifies credentials and issues a session token for the principal.
func (s *Service) Login(ctx context.Context, email, password string) (string, policy.Principal, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		s.countLogin("rejected")
		// Do not reveal whether the account exists.
		return "", policy.Principal{}, errors.Unauthorized(fmt.Errorf("invalid credentials"))
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		s.countLogin("rejected")
		return "", policy.Principal{}, errors.Unauthorized(fmt.Errorf("invalid credentials"))
	}

	principal := policy.Principal{ID: user.ID, Role: policy.Role(user.Role)}

	token, err := s.issue(principal)
	if err != nil {
		s.countLogin("error")
		return "", policy.Principal{}, errors.Internal(err)
	}

	s.countLogin("ok")
	if s.metrics != nil {
		s.metrics.ActiveSessions.Inc()
	}
	return token, principal, nil
}

// Logout revokes the session token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.parse(tokenString)
	if err != nil {
		return err
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	s.revoked.Set(claims.ID, struct{}{}, ttl)

	if s.metrics != nil {
		s.metrics.ActiveSessions.Dec()
	}
	return nil
}

// Verify resolves the principal carried by a session token, rejecting revoked
// or expired tokens.
func (s *Service) Verify(ctx context.Context, tokenString string) (policy.Principal, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return policy.Principal{}, err
	}

	if _, isRevoked := s.revoked.Get(claims.ID); isRevoked {
		return policy.Principal{}, errors.Unauthorized(fmt.Errorf("session revoked"))
	}

	var id int64
	if _, err := fmt.Sscanf(claims.Subject, "%d", &id); err != nil {
		return policy.Principal{}, errors.Unauthorized(fmt.Errorf("malformed subject"))
	}

	return policy.Principal{ID: id, Role: policy.Role(claims.Role)}, nil
}

func (s *Service) issue(p policy.Principal) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprintf("%d", p.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.cfg.ExpiryHours) * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Secret))
}

func (s *Service) parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		return nil, errors.Unauthorized(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.Unauthorized(fmt.Errorf("invalid token"))
	}
	return claims, nil
}

func (s *Service) countLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.LoginAttempts.WithLabelValues(outcome).Inc()
	}
}
