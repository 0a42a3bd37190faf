package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mechshop/service-api/internal/core/domain"
	"github.com/mechshop/service-api/internal/core/ports"
)

// AuthService implements login for mechanics and customers.
type AuthService struct {
	store    ports.PrincipalStore
	verifier ports.CredentialVerifier
	codec    ports.TokenCodec
	log      zerolog.Logger
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(store ports.PrincipalStore, verifier ports.CredentialVerifier, codec ports.TokenCodec, log zerolog.Logger) *AuthService {
	return &AuthService{
		store:    store,
		verifier: verifier,
		codec:    codec,
		log:      log,
		now:      time.Now,
	}
}

// Login checks email and password for role and returns a signed token.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, role domain.Role, email, password string) (*ports.LoginResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrMissingCredentials
	}

	principal, err := s.store.FindPrincipalByEmail(ctx, role, email)
	if err != nil {
		if errors.Is(err, domain.ErrPrincipalNotFound) {
			// Burn a hash comparison so response time does not reveal the email.
			s.verifier.Verify(s.dummy(), password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.verifier.Verify(principal.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.codec.Issue(principal.ID, role, s.now())
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	s.log.Info().Int64("principal_id", principal.ID).Str("role", string(role)).Msg("login succeeded")
	return &ports.LoginResult{Token: token, Principal: principal}, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.verifier.Hash("dummy-password-for-timing")
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to build dummy hash")
		}
		s.dummyHash = h
	})
	return s.dummyHash
}
