package domain

import "errors"

// Credential errors.
var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

// Guard errors. Identity failures map to 401, permission failures to 403.
var (
	ErrMissingOrMalformedHeader = errors.New("missing or malformed authorization header")
	ErrInvalidToken             = errors.New("invalid token")
	ErrWrongRole                = errors.New("role not permitted")
	ErrInvalidPayload           = errors.New("invalid token payload")
	ErrPrincipalNotFound        = errors.New("principal not found")
	ErrForbidden                = errors.New("access forbidden")
)

// Not-found errors.
var (
	ErrTicketNotFound   = errors.New("service ticket not found")
	ErrMechanicNotFound = errors.New("mechanic not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrPartNotFound     = errors.New("part not found")
)

// ErrInvalidInput flags a request that passed binding but breaks a domain rule.
var ErrInvalidInput = errors.New("invalid input")
