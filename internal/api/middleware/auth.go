package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mechshop/service-api/internal/api/metrics"
	"github.com/mechshop/service-api/internal/core/domain"
	"github.com/mechshop/service-api/internal/core/service"
)

// PrincipalIDKey is the echo context key holding the authorized principal id.
const PrincipalIDKey = "principal_id"

// Authorizer resolves a bearer header to a principal id for one role.
type Authorizer interface {
	Authorize(ctx context.Context, header string, now time.Time) (int64, error)
	Role() domain.Role
}

// Guard rejects requests that do not carry a valid token for the authorizer's
// role and injects the principal id into the context otherwise.
func Guard(auth Authorizer, log zerolog.Logger) echo.MiddlewareFunc {
	return guardWithClock(auth, log, time.Now)
}

func guardWithClock(auth Authorizer, log zerolog.Logger, now func() time.Time) echo.MiddlewareFunc {
	role := string(auth.Role())
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)

			id, err := auth.Authorize(c.Request().Context(), header, now())
			if err != nil {
				reason := rejectionReason(err)
				metrics.GuardRejectionsTotal.WithLabelValues(role, reason).Inc()
				log.Debug().
					Str("role", role).
					Str("reason", reason).
					Str("path", c.Path()).
					Msg("request rejected by guard")
				return err
			}

			c.Set(PrincipalIDKey, id)
			return next(c)
		}
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingOrMalformedHeader):
		return "header"
	case errors.Is(err, domain.ErrInvalidToken):
		if kind, ok := service.TokenErrorKindOf(err); ok {
			return string(kind)
		}
		return "malformed"
	case errors.Is(err, domain.ErrWrongRole):
		return "wrong_role"
	case errors.Is(err, domain.ErrInvalidPayload):
		return "payload"
	case errors.Is(err, domain.ErrPrincipalNotFound):
		return "not_found"
	default:
		return "error"
	}
}
