// Package token issues and verifies the signed access and refresh tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims carries the user id in the standard subject claim.
type Claims struct {
	TokenType Type `json:"typ"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() string { return c.Subject }

type Issued struct {
	Token     string
	ExpiresAt time.Time
}

type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

type Service struct {
	cfg    Config
	now    func() time.Time
	parser *jwt.Parser
}

func NewService(cfg Config) *Service {
	return newService(cfg, time.Now)
}

func newService(cfg Config, now func() time.Time) *Service {
	return &Service{
		cfg: cfg,
		now: now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
			jwt.WithTimeFunc(now),
		),
	}
}

func (s *Service) AccessTTL() time.Duration  { return s.cfg.AccessTTL }
func (s *Service) RefreshTTL() time.Duration { return s.cfg.RefreshTTL }

func (s *Service) IssueAccess(userID string) (Issued, error) {
	return s.issue(userID, TypeAccess, s.cfg.AccessSecret, s.cfg.AccessTTL)
}

func (s *Service) IssueRefresh(userID string) (Issued, error) {
	return s.issue(userID, TypeRefresh, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
}

// VerifyAccess checks signature, expiry and token type before returning claims.
func (s *Service) VerifyAccess(tokenString string) (*Claims, error) {
	return s.verify(tokenString, TypeAccess, s.cfg.AccessSecret)
}

// VerifyRefresh checks signature, expiry and token type before returning claims.
func (s *Service) VerifyRefresh(tokenString string) (*Claims, error) {
	return s.verify(tokenString, TypeRefresh, s.cfg.RefreshSecret)
}

// Inspect decodes claims without checking the signature or expiry. The result
// is for logging only and must never drive an authentication decision.
func (s *Service) Inspect(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := s.parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	return claims, nil
}

func (s *Service) issue(userID string, typ Type, secret string, ttl time.Duration) (Issued, error) {
	if userID == "" {
		return Issued{}, errors.New("token subject must not be empty")
	}

	now := s.now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return Issued{}, fmt.Errorf("sign %s token: %w", typ, err)
	}

	// NumericDate has second precision; report what the token actually says.
	return Issued{Token: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (s *Service) verify(tokenString string, want Type, secret string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenInvalid
	}

	claims := &Claims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !token.Valid || claims.TokenType != want || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
