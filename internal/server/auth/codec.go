// Package auth contains the credential primitives of the session service:
// the access token codec, opaque refresh tokens, password hashing and the
// password policy.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophersocial/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// MinKeyLength is the shortest HS256 key NewCodec accepts, in bytes.
const MinKeyLength = 32

// refreshTokenSize is the number of random bytes behind a refresh token.
const refreshTokenSize = 32

// ErrInvalidSignature is returned for tokens that fail signature, algorithm
// or format checks. It matches common.ErrInvalidToken.
var ErrInvalidSignature = fmt.Errorf("%w: signature check failed", common.ErrInvalidToken)

var signingMethod = jwt.SigningMethodHS256

// Codec mints and parses HS256 access tokens with a single shared key.
type Codec struct {
	key       []byte
	accessTTL time.Duration
	now       func() time.Time
}

type CodecOption func(*Codec)

// WithClock replaces the time source used for exp and for validation.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) { c.now = now }
}

func NewCodec(key []byte, accessTTL time.Duration, opts ...CodecOption) (*Codec, error) {
	if len(key) < MinKeyLength {
		return nil, fmt.Errorf("signing key must be at least %d bytes, got %d", MinKeyLength, len(key))
	}
	if accessTTL <= 0 {
		return nil, fmt.Errorf("access token validity must be positive, got %s", accessTTL)
	}

	c := &Codec{
		key:       append([]byte(nil), key...),
		accessTTL: accessTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GenerateAccessToken signs claims, in order, followed by exp = now + TTL.
// The same claims within the same second yield the same token.
func (c *Codec) GenerateAccessToken(claims Claims) (string, error) {
	body := &tokenClaims{
		claims:    claims.withoutTimeClaims(),
		expiresAt: jwt.NewNumericDate(c.now().Add(c.accessTTL)),
	}

	signed, err := jwt.NewWithClaims(signingMethod, body).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// GenerateRefreshToken returns a new opaque refresh token.
func (c *Codec) GenerateRefreshToken() (string, error) {
	return GenerateRefreshToken()
}

// GenerateRefreshToken returns 32 random bytes as unpadded URL-safe base64.
func GenerateRefreshToken() (string, error) {
	token, err := common.MakeRandURLString(refreshTokenSize)
	if err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return token, nil
}

// GetPrincipalForExpiredToken verifies the signature of token while ignoring
// every time-based claim, and returns its claims without exp, iat and nbf.
func (c *Codec) GetPrincipalForExpiredToken(token string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	body := &tokenClaims{}
	if _, err := parser.ParseWithClaims(token, body, c.keyFunc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return body.claims, nil
}

// ParseAccessToken fully validates token, expiry included. Expired tokens
// yield common.ErrTokenExpired; any other failure ErrInvalidSignature.
func (c *Codec) ParseAccessToken(token string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	body := &tokenClaims{}
	if _, err := parser.ParseWithClaims(token, body, c.keyFunc); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return body.claims, nil
}

func (c *Codec) keyFunc(t *jwt.Token) (any, error) {
	if t.Method.Alg() != signingMethod.Alg() {
		return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
	}
	return c.key, nil
}
