package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"roloApp/internal/modules/users/application/usecase"
	"roloApp/internal/shared/httputil"
)

type Handler struct {
	authUC *usecase.AuthUseCase
}

func NewHandler(authUC *usecase.AuthUseCase) *Handler {
	return &Handler{authUC: authUC}
}

// Register mounts the auth and user routes on the group.
func (h *Handler) Register(g *echo.Group, authRequired echo.MiddlewareFunc) {
	g.POST("/auth/register", h.register)
	g.POST("/auth/login", h.login)
	g.POST("/auth/google", h.google)
	g.GET("/auth/verify", h.verify, authRequired)
	g.GET("/auth/profile", h.profile, authRequired)
	g.GET("/users", h.listUsers, authRequired)
}

func (h *Handler) register(c echo.Context) error {
	var input usecase.RegisterInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	result, err := h.authUC.Register(c.Request().Context(), input)
	if err != nil {
		return httputil.Respond(err)
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *Handler) login(c echo.Context) error {
	var input usecase.LoginInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	result, err := h.authUC.Login(c.Request().Context(), input)
	if err != nil {
		return httputil.Respond(err)
	}
	return c.JSON(http.StatusOK, result)
}

type googleRequest struct {
	Credential string `json:"credential"`
}

func (h *Handler) google(c echo.Context) error {
	var input googleRequest
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	result, err := h.authUC.GoogleSignIn(c.Request().Context(), input.Credential)
	if err != nil {
		return httputil.Respond(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) verify(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return httputil.Respond(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"valid": true, "user": user})
}

func (h *Handler) profile(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return httputil.Respond(err)
	}
	profile, err := h.authUC.Profile(c.Request().Context(), user.ID)
	if err != nil {
		return httputil.Respond(err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *Handler) listUsers(c echo.Context) error {
	users, err := h.authUC.ListUsers(c.Request().Context())
	if err != nil {
		return httputil.Respond(err)
	}
	return c.JSON(http.StatusOK, users)
}
