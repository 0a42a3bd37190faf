package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mechshop/service-api/internal/core/domain"
	"github.com/mechshop/service-api/internal/core/ports"
)

// AccessGuard authorizes bearer headers for a single expected role.
type AccessGuard struct {
	codec ports.TokenCodec
	store ports.PrincipalStore
	role  domain.Role
}

func NewAccessGuard(codec ports.TokenCodec, store ports.PrincipalStore, role domain.Role) *AccessGuard {
	return &AccessGuard{codec: codec, store: store, role: role}
}

// Role returns the role this guard admits.
func (g *AccessGuard) Role() domain.Role { return g.role }

// Authorize resolves header to the id of an existing principal of the guard's
// role. Checks run in order: header shape, token, role, subject, principal.
func (g *AccessGuard) Authorize(ctx context.Context, header string, now time.Time) (int64, error) {
	token, err := bearerToken(header)
	if err != nil {
		return 0, err
	}

	identity, err := g.codec.Validate(token, now)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}

	if identity.Role != g.role {
		return 0, domain.ErrWrongRole
	}

	id, err := strconv.ParseInt(identity.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidPayload
	}

	if _, err := g.store.FindPrincipalByID(ctx, g.role, id); err != nil {
		if errors.Is(err, domain.ErrPrincipalNotFound) {
			return 0, domain.ErrPrincipalNotFound
		}
		return 0, fmt.Errorf("authorize: %w", err)
	}
	return id, nil
}

// bearerToken splits "Bearer <token>". Anything other than exactly two
// space-separated parts is rejected.
func bearerToken(header string) (string, error) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", domain.ErrMissingOrMalformedHeader
	}
	return parts[1], nil
}

// TokenErrorKindOf extracts the TokenError kind from err, if any.
func TokenErrorKindOf(err error) (TokenErrorKind, bool) {
	var te *TokenError
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return "", false
}
