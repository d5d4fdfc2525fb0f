package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/FACorreiaa/medibook-api/config"
	"github.com/FACorreiaa/medibook-api/internal/types"
)

// TokenIssuer signs session credentials and verifies them for the request
// gate. There is no server-side session state: a token is valid while its
// signature checks out and it has not expired.
type TokenIssuer interface {
	Issue(identityID string, role types.Role) (string, time.Time, error)
	Verify(token string) (*types.Claims, error)
}

var _ TokenIssuer = (*JWTIssuer)(nil)

type JWTIssuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

type IssuerOption func(*JWTIssuer)

// WithClock replaces time.Now for issuing and verifying.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *JWTIssuer) {
		if now != nil {
			i.now = now
		}
	}
}

// NewJWTIssuer builds an HS256 issuer. The secret comes from cfg and is
// never read from the environment here.
func NewJWTIssuer(cfg config.JWTConfig, opts ...IssuerOption) (*JWTIssuer, error) {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, fmt.Errorf("%w: empty signing secret", types.ErrTokenSigning)
	}
	ttl := cfg.AccessTokenTTL
	if ttl <= 0 {
		ttl = config.FixedAccessTokenTTL
	}
	i := &JWTIssuer{
		secret:   []byte(cfg.SecretKey),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

func (i *JWTIssuer) Issue(identityID string, role types.Role) (string, time.Time, error) {
	if identityID == "" || !role.Valid() {
		return "", time.Time{}, fmt.Errorf("%w: missing identity or role", types.ErrTokenSigning)
	}

	issuedAt := i.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(i.ttl)

	claims := types.Claims{
		UserID: identityID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identityID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if i.audience != "" {
		claims.Audience = jwt.ClaimStrings{i.audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", types.ErrTokenSigning, err)
	}
	return signed, expiresAt, nil
}

func (i *JWTIssuer) Verify(tokenString string) (*types.Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}
	if i.audience != "" {
		opts = append(opts, jwt.WithAudience(i.audience))
	}

	claims := &types.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	if !token.Valid || claims.UserID == "" || !claims.Role.Valid() {
		return nil, errors.New("verify token: token carries no valid identity")
	}
	return claims, nil
}
