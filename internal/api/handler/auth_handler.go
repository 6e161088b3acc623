package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/employee-management/internal/api/metrics"
	"github.com/99minutos/employee-management/internal/api/middleware"
	"github.com/99minutos/employee-management/internal/core/domain"
	"github.com/99minutos/employee-management/internal/core/ports"
	"github.com/99minutos/employee-management/pkg/sessiontoken"
)

const (
	homePath       = "/home"
	endPath        = "/end"
	loginErrorPath = "/auth/login?error=true"

	homeMessage = "Welcome to the Home page!"
	endMessage  = "Thank You!"
)

type AuthHandler struct {
	authService  ports.AuthService
	signer       *sessiontoken.Signer
	secureCookie bool
}

// NewAuthHandler builds the auth endpoints. secureCookie sets the Secure
// attribute on the session cookie and should be true outside development.
func NewAuthHandler(authService ports.AuthService, signer *sessiontoken.Signer, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, signer: signer, secureCookie: secureCookie}
}

type registerRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
	Role     string `json:"role" form:"role"`
}

type loginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type registerResponse struct {
	User *domain.User `json:"user"`
}

type loginPageResponse struct {
	Message string `json:"message"`
	Error   bool   `json:"error"`
}

// Register creates a new user bound to an existing role.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), req.Username, req.Password, req.Role)
	if err != nil {
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues(string(user.Role)).Inc()
	return c.JSON(http.StatusCreated, registerResponse{User: user})
}

// LoginPage is where failed logins are redirected to.
//
// @Summary      Login status
// @Tags         auth
// @Produce      json
// @Param        error  query     bool  false  "set after a failed login"
// @Success      200    {object}  loginPageResponse
// @Router       /auth/login [get]
func (h *AuthHandler) LoginPage(c echo.Context) error {
	if c.QueryParam("error") == "true" {
		return c.JSON(http.StatusOK, loginPageResponse{Message: "Invalid username or password.", Error: true})
	}
	return c.JSON(http.StatusOK, loginPageResponse{Message: "Please log in."})
}

// Login verifies credentials, opens a session and sets the session cookie.
// Any previous session of the same user stops working.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Accept       x-www-form-urlencoded
// @Param        body  body  loginRequest  true  "Login credentials"
// @Success      303   "redirect to /home, session cookie set"
// @Failure      303   "redirect to /auth/login?error=true"
// @Failure      500   {object}  ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil || c.Validate(&req) != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return c.Redirect(http.StatusSeeOther, loginErrorPath)
	}

	sess, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return c.Redirect(http.StatusSeeOther, loginErrorPath)
	}
	if err != nil {
		return err
	}

	value, err := h.signer.Sign(sess.Token, sess.Username, sess.CreatedAt)
	if err != nil {
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	c.SetCookie(h.cookie(value, 0))
	return c.Redirect(http.StatusSeeOther, homePath)
}

// Logout invalidates the caller's session and clears the cookie.
//
// @Summary      Logout
// @Tags         auth
// @Success      303  "redirect to /end"
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	if sess == nil {
		return domain.ErrUnauthorized
	}
	if err := h.authService.Logout(c.Request().Context(), sess.Token); err != nil {
		return err
	}

	c.SetCookie(h.cookie("", -1))
	return c.Redirect(http.StatusSeeOther, endPath)
}

// Me returns the caller's session identity.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.Session
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	if sess == nil {
		return domain.ErrUnauthorized
	}
	return c.JSON(http.StatusOK, sess)
}

// Home is the landing page after login.
//
// @Summary      Home
// @Tags         pages
// @Produce      plain
// @Success      200  {string}  string  "Welcome to the Home page!"
// @Failure      401  {object}  ErrorResponse
// @Router       /home [get]
func (h *AuthHandler) Home(c echo.Context) error {
	return c.String(http.StatusOK, homeMessage)
}

// End is the landing page after logout.
//
// @Summary      End
// @Tags         pages
// @Produce      plain
// @Success      200  {string}  string  "Thank You!"
// @Router       /end [get]
func (h *AuthHandler) End(c echo.Context) error {
	return c.String(http.StatusOK, endMessage)
}

// cookie builds the session cookie. maxAge < 0 deletes it; 0 makes it a
// browser-session cookie, the session store owns the real expiry.
func (h *AuthHandler) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
