package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mechshop/service-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			log.Debug().Err(he.Internal).Str("path", c.Path()).Msg("request rejected")
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	// Identity failures.
	case errors.Is(err, domain.ErrMissingOrMalformedHeader):
		return http.StatusUnauthorized, "missing or malformed authorization header"
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid token"
	case errors.Is(err, domain.ErrInvalidPayload):
		return http.StatusUnauthorized, "invalid token payload"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"

	// Permission failures.
	case errors.Is(err, domain.ErrWrongRole):
		return http.StatusForbidden, "role not permitted"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"

	case errors.Is(err, domain.ErrPrincipalNotFound):
		return http.StatusNotFound, "principal not found"
	case errors.Is(err, domain.ErrTicketNotFound),
		errors.Is(err, domain.ErrMechanicNotFound),
		errors.Is(err, domain.ErrCustomerNotFound),
		errors.Is(err, domain.ErrPartNotFound):
		return http.StatusNotFound, notFoundMessage(err)

	case errors.Is(err, domain.ErrMissingCredentials):
		return http.StatusBadRequest, "email and password are required"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict, "email already registered"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

func notFoundMessage(err error) string {
	for _, target := range []error{domain.ErrTicketNotFound, domain.ErrMechanicNotFound, domain.ErrCustomerNotFound, domain.ErrPartNotFound} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return "not found"
}
