package ports

import (
	"context"
	"time"

	"github.com/mechshop/service-api/internal/core/domain"
)

// PrincipalStore resolves customers and mechanics for authentication.
// Both lookups return domain.ErrPrincipalNotFound when nothing matches.
type PrincipalStore interface {
	FindPrincipalByID(ctx context.Context, role domain.Role, id int64) (*domain.Principal, error)
	FindPrincipalByEmail(ctx context.Context, role domain.Role, email string) (*domain.Principal, error)
}

// CredentialVerifier hashes secrets and checks candidates against stored hashes.
type CredentialVerifier interface {
	Hash(secret string) (string, error)
	Verify(hash, candidate string) bool
}

// Identity is the verbatim subject and role carried by a valid token.
type Identity struct {
	Subject string
	Role    domain.Role
}

// TokenCodec mints and checks signed, time-bounded tokens.
type TokenCodec interface {
	Issue(subjectID int64, role domain.Role, now time.Time) (string, error)
	Validate(token string, now time.Time) (Identity, error)
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	Principal *domain.Principal
}

// AuthService authenticates principals by email and password.
type AuthService interface {
	Login(ctx context.Context, role domain.Role, email, password string) (*LoginResult, error)
}
