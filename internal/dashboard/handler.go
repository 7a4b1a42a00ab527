// Package dashboard serves the local HTTP surface the dashboard pages use:
// login, logout, the current user, and one data page per role.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dropguard/dashboard/internal/auth"
	"github.com/dropguard/dashboard/internal/backend"
	"github.com/dropguard/dashboard/internal/middleware"
	"github.com/dropguard/dashboard/internal/navigation"
	"github.com/dropguard/dashboard/internal/token"
	apperrors "github.com/dropguard/dashboard/pkg/errors"
	"github.com/dropguard/dashboard/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Backend is the part of the REST backend the pages use
type Backend interface {
	Login(ctx context.Context, email, password string) (string, error)
	Fetch(ctx context.Context, bearer, path string) (json.RawMessage, error)
}

// DefaultEndpoints maps each role's page to the backend resource it shows
var DefaultEndpoints = map[token.Role]string{
	token.RolePrincipal:  "/api/hod/dashboard",
	token.RoleStudent:    "/api/student/dashboard",
	token.RoleTeacher:    "/api/teacher/dashboard",
	token.RoleGovernment: "/api/government/dashboard",
	token.RoleParent:     "/api/parent/dashboard",
	token.RoleOrgAdmin:   "/api/org-admin/dashboard",
}

// Handler handles dashboard HTTP requests
type Handler struct {
	provider  *auth.Provider
	router    *navigation.Router
	backend   Backend
	endpoints map[token.Role]string
	logger    *zap.Logger
}

// NewHandler creates a new dashboard handler
func NewHandler(provider *auth.Provider, router *navigation.Router, b Backend, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Handler{
		provider:  provider,
		router:    router,
		backend:   b,
		endpoints: DefaultEndpoints,
		logger:    logger,
	}
}

// Register mounts every dashboard route on r
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", h.Health)
	r.GET("/", h.Root)
	r.GET(navigation.LoginRoute, h.LoginPage)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/me", h.Me)
	}

	pages := r.Group("/", middleware.RequireSession(h.provider))
	for _, role := range token.KnownRoles {
		pages.GET(navigation.HomeRoute(role), h.Page(role))
	}
}

// Health returns health status
// GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"authenticated": h.provider.Snapshot().Authenticated(),
	})
}

// Login forwards credentials to the backend and starts a session with the returned token
// POST /auth/login
func (h *Handler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ValidationError(c, "Invalid login request", nil)
		return
	}

	if err := auth.ValidateLoginRequest(&req); err != nil {
		var verrs *auth.ValidationErrors
		if errors.As(err, &verrs) {
			response.ValidationError(c, "Invalid login request", verrs.Fields)
			return
		}
		response.ValidationError(c, err.Error(), nil)
		return
	}

	ctx := c.Request.Context()

	tok, err := h.backend.Login(ctx, auth.SanitizeEmail(req.Email), req.Password)
	if err != nil {
		h.logger.Info("Login failed", zap.Error(err))
		response.Error(c, loginError(err))
		return
	}

	claims, err := h.provider.Login(ctx, tok)
	if err != nil {
		var decodeErr *token.DecodeError
		if errors.As(err, &decodeErr) {
			h.logger.Error("Backend issued an undecodable token", zap.Error(err))
			response.Error(c, apperrors.ErrInvalidToken)
			return
		}
		h.logger.Error("Failed to start session", zap.Error(err))
		response.Error(c, apperrors.ErrSessionStore)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":     claims,
		"redirect": navigation.HomeRoute(claims.Role),
	})
}

// Logout ends the session
// POST /auth/logout
func (h *Handler) Logout(c *gin.Context) {
	if err := h.provider.Logout(c.Request.Context()); err != nil {
		h.logger.Error("Session cleared in memory only", zap.Error(err))
		response.Error(c, apperrors.ErrSessionStore)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"redirect": navigation.LoginRoute,
	})
}

// Me returns the current user and their home route
// GET /auth/me
func (h *Handler) Me(c *gin.Context) {
	session := h.provider.Snapshot()
	if !session.Authenticated() {
		response.Error(c, apperrors.ErrAuthRequired)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":     session.User,
		"redirect": navigation.HomeRoute(session.User.Role),
	})
}

// Root sends the user where the router says they belong.
// Users whose role has no dashboard get a landing response instead of a redirect loop.
// GET /
func (h *Handler) Root(c *gin.Context) {
	target := h.router.Target()
	if target != navigation.FallbackRoute {
		c.Redirect(http.StatusFound, target)
		return
	}

	session := h.provider.Snapshot()
	response.Success(c, http.StatusOK, gin.H{
		"user":    session.User,
		"message": "No dashboard is available for this role",
	})
}

// LoginPage describes the login form. Logged-in users are not redirected away.
// GET /login
func (h *Handler) LoginPage(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"action": "/auth/login",
		"fields": []string{"email", "password"},
		"user":   h.provider.User(),
	})
}

// Page serves role's dashboard data. It does not check that the session's
// role matches; the backend decides what the token may read.
// GET /<role>-dashboard
func (h *Handler) Page(role token.Role) gin.HandlerFunc {
	endpoint := h.endpoints[role]

	return func(c *gin.Context) {
		session, ok := middleware.SessionFrom(c)
		if !ok {
			response.Error(c, apperrors.ErrAuthRequired)
			return
		}

		ctx := c.Request.Context()

		data, err := h.backend.Fetch(ctx, session.Token, endpoint)
		if err != nil {
			if backend.IsUnauthorized(err) {
				loggedOut, err := h.provider.LogoutIfCurrent(ctx, session.Token)
				if err != nil {
					h.logger.Warn("Failed to clear rejected session", zap.Error(err))
				}
				if loggedOut {
					h.logger.Info("Backend rejected session, logged out",
						zap.String("user_id", session.User.UserID),
						zap.String("page", string(role)),
					)
				}
				if middleware.WantsHTML(c) {
					c.Redirect(http.StatusFound, navigation.LoginRoute)
					return
				}
				response.Error(c, apperrors.ErrSessionExpired)
				return
			}

			h.logger.Warn("Dashboard fetch failed",
				zap.String("page", string(role)),
				zap.String("endpoint", endpoint),
				zap.Error(err),
			)
			response.Error(c, fetchError(err))
			return
		}

		response.Success(c, http.StatusOK, gin.H{
			"page": navigation.HomeRoute(role),
			"user": session.User,
			"data": data,
		})
	}
}

// loginError maps a backend login failure onto the response envelope
func loginError(err error) *apperrors.AppError {
	var apiErr *backend.APIError
	switch {
	case backend.IsNetwork(err):
		return apperrors.ErrBackendUnavailable
	case errors.Is(err, backend.ErrMissingToken):
		return apperrors.ErrInvalidToken
	case errors.As(err, &apiErr):
		if apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnauthorized || apiErr.Status < 300 {
			if apiErr.Message != "" {
				return apperrors.ErrInvalidCredentials.WithMessage(apiErr.Message)
			}
			return apperrors.ErrInvalidCredentials
		}
		return apperrors.ErrBackendError
	}
	return apperrors.ErrBackendError
}

// fetchError maps a failed page fetch onto the response envelope
func fetchError(err error) *apperrors.AppError {
	var apiErr *backend.APIError
	switch {
	case backend.IsNetwork(err):
		return apperrors.ErrBackendUnavailable
	case !errors.As(err, &apiErr):
		return apperrors.ErrBackendError
	}

	appErr := apperrors.ErrBackendError
	switch apiErr.Status {
	case http.StatusForbidden:
		appErr = apperrors.ErrForbidden
	case http.StatusNotFound:
		appErr = apperrors.ErrNotFound
	}
	if apiErr.Message != "" {
		return appErr.WithMessage(apiErr.Message)
	}
	return appErr
}
