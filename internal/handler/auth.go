package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/mission-dashboard/internal/client"
	"github.com/iliyamo/mission-dashboard/internal/dashboard"
	"github.com/iliyamo/mission-dashboard/internal/middleware"
	"github.com/iliyamo/mission-dashboard/internal/view"
)

// AuthHandler serves the login and register views and logout.
type AuthHandler struct {
	API         *client.API
	Cookie      middleware.CookieConfig
	Controllers *dashboard.Registry
}

func NewAuthHandler(api *client.API, cookie middleware.CookieConfig, reg *dashboard.Registry) *AuthHandler {
	return &AuthHandler{API: api, Cookie: cookie, Controllers: reg}
}

// LoginForm renders the login view.
func (h *AuthHandler) LoginForm(c echo.Context) error {
	page := view.AuthPage{}
	if c.QueryParam("registered") != "" {
		page.Notice = "Compte créé, vous pouvez vous connecter."
	}
	return c.Render(http.StatusOK, "login", page)
}

// Login exchanges the credentials for a token and opens the dashboard.
func (h *AuthHandler) Login(c echo.Context) error {
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")

	sess := middleware.CurrentSession(c)
	previous := sess.Handle()
	if _, err := client.NewAuthClient(h.API, sess).Login(c.Request().Context(), email, password); err != nil {
		return c.Render(statusOf(err), "login", view.AuthPage{Error: client.Message(err), Email: email})
	}
	if previous != "" {
		h.Controllers.Drop(previous)
	}
	middleware.WriteSessionCookie(c, sess, h.Cookie)
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// RegisterForm renders the register view.
func (h *AuthHandler) RegisterForm(c echo.Context) error {
	return c.Render(http.StatusOK, "register", view.AuthPage{})
}

// Register creates the account and sends the user to the login view.
func (h *AuthHandler) Register(c echo.Context) error {
	in := client.RegisterInput{
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
		Nom:      c.FormValue("nom"),
		Prenom:   c.FormValue("prenom"),
	}
	if _, err := client.NewAuthClient(h.API, middleware.CurrentSession(c)).Register(c.Request().Context(), in); err != nil {
		return c.Render(statusOf(err), "register", view.AuthPage{
			Error: client.Message(err), Email: in.Email, Nom: in.Nom, Prenom: in.Prenom,
		})
	}
	return c.Redirect(http.StatusSeeOther, "/login?registered=1")
}

// Logout forgets the token and the dashboard state of the session.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	sess := middleware.CurrentSession(c)
	handle := sess.Handle()
	if ctrl, ok := h.Controllers.Lookup(handle); ok && handle != "" {
		// The controller resets itself so that responses still in flight
		// are discarded.
		if err := ctrl.Logout(ctx); err != nil {
			c.Logger().Warnf("logout: %v", err)
		}
		h.Controllers.Drop(handle)
	}
	// The controller's clients hold the session of the request that built
	// it; this request's session must drop its handle too.
	if err := client.NewAuthClient(h.API, sess).Logout(ctx); err != nil {
		c.Logger().Warnf("logout: %v", err)
	}
	middleware.WriteSessionCookie(c, sess, h.Cookie)
	return c.Redirect(http.StatusSeeOther, "/login")
}

// statusOf picks the HTTP status a failed action is rendered with.
func statusOf(err error) int {
	var (
		authErr *client.AuthenticationError
		regErr  *client.RegistrationError
		valErr  *client.ValidationError
		nfErr   *client.NotFoundError
		apiErr  *client.APIError
	)
	switch {
	case errors.Is(err, client.ErrUnauthenticated), errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.As(err, &valErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &regErr):
		if regErr.Status >= 400 && regErr.Status < 500 {
			return regErr.Status
		}
		return http.StatusBadGateway
	case errors.As(err, &nfErr):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrBusy), errors.Is(err, dashboard.ErrNotReady), errors.Is(err, dashboard.ErrNoForm):
		return http.StatusConflict
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
