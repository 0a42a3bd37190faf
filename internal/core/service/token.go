package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mechshop/service-api/internal/core/domain"
	"github.com/mechshop/service-api/internal/core/ports"
)

// DefaultTokenTTL is the lifetime of an issued token when none is configured.
const DefaultTokenTTL = time.Hour

// TokenErrorKind classifies why a token was rejected.
type TokenErrorKind string

const (
	TokenMalformed    TokenErrorKind = "malformed"
	TokenBadSignature TokenErrorKind = "bad_signature"
	TokenExpired      TokenErrorKind = "expired"
)

// TokenError is returned by Validate. Err holds the underlying jwt error, if any.
type TokenError struct {
	Kind TokenErrorKind
	Err  error
}

func (e *TokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token %s: %v", e.Kind, e.Err)
	}
	return "token " + string(e.Kind)
}

func (e *TokenError) Unwrap() error { return e.Err }

// TokenConfig configures a JWTCodec.
type TokenConfig struct {
	Secret    string
	Algorithm string
	TTL       time.Duration
}

type tokenClaims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTCodec issues and validates HMAC-signed JWTs carrying a subject and role.
type JWTCodec struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
}

func NewJWTCodec(cfg TokenConfig) (*JWTCodec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token codec: empty secret")
	}
	alg := cfg.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("token codec: unsupported algorithm %q", alg)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTCodec{secret: []byte(cfg.Secret), method: method, ttl: ttl}, nil
}

// Issue mints a token for subjectID that expires TTL after now.
func (c *JWTCodec) Issue(subjectID int64, role domain.Role, now time.Time) (string, error) {
	now = now.UTC().Truncate(time.Second)
	claims := tokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(subjectID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
}

// Validate checks the signature, algorithm and expiry of token at now and
// returns its subject and role verbatim. Failures are *TokenError.
func (c *JWTCodec) Validate(token string, now time.Time) (ports.Identity, error) {
	claims := &tokenClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		te := classifyTokenError(err)
		if te.Kind == TokenMalformed && signatureSegmentOnly(parser, token) {
			te.Kind = TokenBadSignature
		}
		return ports.Identity{}, te
	}
	return ports.Identity{Subject: claims.Subject, Role: claims.Role}, nil
}

// signatureSegmentOnly reports whether header and claims of token decode
// cleanly, leaving the signature segment as the only malformed part.
func signatureSegmentOnly(parser *jwt.Parser, token string) bool {
	_, _, err := parser.ParseUnverified(token, &tokenClaims{})
	return err == nil
}

func classifyTokenError(err error) *TokenError {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return &TokenError{Kind: TokenMalformed, Err: err}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return &TokenError{Kind: TokenBadSignature, Err: err}
	case errors.Is(err, jwt.ErrTokenExpired):
		return &TokenError{Kind: TokenExpired, Err: err}
	default:
		return &TokenError{Kind: TokenMalformed, Err: err}
	}
}
