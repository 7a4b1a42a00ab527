// Package navigation maps the session's role to the dashboard it lands on.
//
// The router only decides where to send the user right after login and
// logout. It does not guard later navigation: any page can be requested
// directly, and the backend rejects what the token does not allow.
package navigation

import (
	"sync"

	"github.com/dropguard/dashboard/internal/auth"
	"github.com/dropguard/dashboard/internal/token"
	"go.uber.org/zap"
)

// Fixed routes
const (
	LoginRoute    = "/login"
	FallbackRoute = "/"
)

// State is the router's position: unauthenticated, one of the known roles, or unknown
type State string

// Non-role states
const (
	StateUnauthenticated State = "UNAUTHENTICATED"
	StateUnknown         State = "UNKNOWN"
)

var homeRoutes = map[token.Role]string{
	token.RolePrincipal:  "/hod-dashboard",
	token.RoleStudent:    "/student-dashboard",
	token.RoleTeacher:    "/teacher-dashboard",
	token.RoleGovernment: "/government-dashboard",
	token.RoleParent:     "/parent-dashboard",
	token.RoleOrgAdmin:   "/org-admin-dashboard",
}

// HomeRoute returns the landing route for role, or FallbackRoute when unrecognized
func HomeRoute(role token.Role) string {
	if route, ok := homeRoutes[role]; ok {
		return route
	}
	return FallbackRoute
}

// RouteFor returns the landing route for a raw role claim
func RouteFor(role string) string {
	return HomeRoute(token.ParseRole(role))
}

// StateFor derives the router state from a session
func StateFor(s auth.Session) State {
	if !s.Authenticated() {
		return StateUnauthenticated
	}
	if s.User.Role.Known() {
		return State(s.User.Role)
	}
	return StateUnknown
}

// Route returns the route a state lands on
func (s State) Route() string {
	switch s {
	case StateUnauthenticated:
		return LoginRoute
	case StateUnknown:
		return FallbackRoute
	}
	return HomeRoute(token.Role(s))
}

// Navigator moves the user to route
type Navigator func(route string)

// Router follows the auth provider and redirects on login and logout
type Router struct {
	mu          sync.RWMutex
	state       State
	navigate    Navigator
	logger      *zap.Logger
	unsubscribe func()
}

// NewRouter creates a router subscribed to provider.
// A session restored at startup sets the state without navigating.
func NewRouter(provider *auth.Provider, navigate Navigator, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Router{
		state:    StateFor(provider.Snapshot()),
		navigate: navigate,
		logger:   logger,
	}
	r.unsubscribe = provider.Subscribe(r.onSession)

	return r
}

// State returns the current state
func (r *Router) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.state
}

// Target returns where the user belongs right now
func (r *Router) Target() string {
	return r.State().Route()
}

// Close stops following the provider
func (r *Router) Close() {
	r.unsubscribe()
}

func (r *Router) onSession(s auth.Session) {
	next := StateFor(s)

	r.mu.Lock()
	prev := r.state
	r.state = next
	r.mu.Unlock()

	// Logging out while already logged out goes nowhere
	if prev == StateUnauthenticated && next == StateUnauthenticated {
		return
	}

	route := next.Route()
	r.logger.Debug("Session transition",
		zap.String("from", string(prev)),
		zap.String("to", string(next)),
		zap.String("route", route),
	)
	if next == StateUnknown {
		r.logger.Warn("No dashboard for role", zap.String("role", s.User.Role.String()))
	}

	if r.navigate != nil {
		r.navigate(route)
	}
}
