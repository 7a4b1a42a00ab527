package devbackend

import (
	"net/http"
	"strings"
	"time"

	"github.com/dropguard/dashboard/internal/auth"
	"github.com/dropguard/dashboard/internal/token"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// areaRoles maps /api/<area>/dashboard to the role allowed to read it
var areaRoles = map[string]token.Role{
	"hod":        token.RolePrincipal,
	"student":    token.RoleStudent,
	"teacher":    token.RoleTeacher,
	"government": token.RoleGovernment,
	"parent":     token.RoleParent,
	"org-admin":  token.RoleOrgAdmin,
}

// Server handles dev backend requests
type Server struct {
	directory *Directory
	issuer    *token.Issuer
	logger    *zap.Logger
	now       func() time.Time
}

// NewServer creates a new dev backend server
func NewServer(directory *Directory, issuer *token.Issuer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		directory: directory,
		issuer:    issuer,
		logger:    logger,
		now:       time.Now,
	}
}

// Register mounts the backend API on r
func (s *Server) Register(r gin.IRouter) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := r.Group("/api")
	{
		api.POST("/auth/login", s.Login)
		api.GET("/:area/dashboard", s.bearer(), s.Dashboard)
	}
}

// Login checks credentials and issues a token
// POST /api/auth/login
func (s *Server) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := auth.ValidateLoginRequest(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	account, err := s.directory.Authenticate(req.Email, req.Password)
	if err != nil {
		if err != ErrInvalidCredentials {
			s.logger.Error("Failed to verify credentials", zap.Error(err))
		}
		fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	signed, claims, err := s.issuer.Issue(account.Identity)
	if err != nil {
		s.logger.Error("Failed to issue token", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.logger.Info("Issued token",
		zap.String("user_id", claims.UserID),
		zap.String("role", claims.Role.String()),
		zap.Time("expires_at", claims.ExpiresAt),
	)

	succeed(c, "Login successful", gin.H{"token": signed})
}

// Dashboard returns placeholder data for an area the token's role may read
// GET /api/:area/dashboard
func (s *Server) Dashboard(c *gin.Context) {
	area := c.Param("area")
	role, ok := areaRoles[area]
	if !ok {
		fail(c, http.StatusNotFound, "Unknown dashboard")
		return
	}

	claims := c.MustGet("claims").(*token.Claims)
	if claims.Role != role {
		fail(c, http.StatusForbidden, "This dashboard is not available for your role")
		return
	}

	succeed(c, "", gin.H{
		"area":        area,
		"viewer":      claims.UserID,
		"schoolId":    claims.SchoolID,
		"schoolName":  claims.SchoolName,
		"generatedAt": s.now().UTC().Format(time.RFC3339),
	})
}

// bearer verifies the Authorization header and sets "claims"
func (s *Server) bearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			fail(c, http.StatusUnauthorized, "Missing Authorization header")
			c.Abort()
			return
		}

		// Extract token (format: "Bearer TOKEN")
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			fail(c, http.StatusUnauthorized, "Invalid Authorization header format")
			c.Abort()
			return
		}

		claims, err := s.issuer.Verify(tokenString)
		if err != nil {
			fail(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("claims", claims)
		c.Set("user_id", claims.UserID)

		c.Next()
	}
}

func succeed(c *gin.Context, message string, data interface{}) {
	body := gin.H{"success": true, "data": data}
	if message != "" {
		body["message"] = message
	}
	c.JSON(http.StatusOK, body)
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}
