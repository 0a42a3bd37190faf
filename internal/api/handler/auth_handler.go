package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mechshop/service-api/internal/api/metrics"
	"github.com/mechshop/service-api/internal/core/domain"
	"github.com/mechshop/service-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// MechanicLogin authenticates a mechanic and returns a JWT.
//
// @Summary      Mechanic login
// @Tags         mechanics
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /mechanics/login [post]
func (h *AuthHandler) MechanicLogin(c echo.Context) error {
	return h.login(c, domain.RoleMechanic)
}

// CustomerLogin authenticates a customer and returns a JWT.
//
// @Summary      Customer login
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /customers/login [post]
func (h *AuthHandler) CustomerLogin(c echo.Context) error {
	return h.login(c, domain.RoleCustomer)
}

func (h *AuthHandler) login(c echo.Context, role domain.Role) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues(string(role), "missing_fields").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	res, err := h.authService.Login(c.Request().Context(), role, req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(string(role), loginResult(err)).Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues(string(role), "success").Inc()
	return c.JSON(http.StatusOK, loginResponse{
		Status:    "success",
		Message:   "successfully logged in",
		ID:        res.Principal.ID,
		AuthToken: res.Token,
	})
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingCredentials):
		return "missing_fields"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	default:
		return "error"
	}
}
