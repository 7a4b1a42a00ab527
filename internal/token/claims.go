package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role identifies which dashboard tree a user belongs to
type Role string

// Known roles
const (
	RolePrincipal  Role = "PRINCIPAL"
	RoleStudent    Role = "STUDENT"
	RoleTeacher    Role = "TEACHER"
	RoleGovernment Role = "GOVERNMENT"
	RoleParent     Role = "PARENT"
	RoleOrgAdmin   Role = "ORG_ADMIN"
)

// KnownRoles lists every role with its own dashboard tree
var KnownRoles = []Role{
	RolePrincipal,
	RoleStudent,
	RoleTeacher,
	RoleGovernment,
	RoleParent,
	RoleOrgAdmin,
}

// ParseRole normalizes a raw role claim. Unrecognized values are kept verbatim
// so callers can route them to the fallback.
func ParseRole(raw string) Role {
	normalized := Role(strings.ToUpper(strings.TrimSpace(raw)))
	if normalized.Known() {
		return normalized
	}
	return Role(raw)
}

// Known reports whether r is one of KnownRoles
func (r Role) Known() bool {
	for _, known := range KnownRoles {
		if r == known {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer
func (r Role) String() string {
	return string(r)
}

// Claims is the decoded, typed token payload
type Claims struct {
	Role       Role      `json:"role"`
	UserID     string    `json:"userId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	SchoolID   string    `json:"schoolId,omitempty"`
	SchoolName string    `json:"schoolName,omitempty"`
	IssuedAt   time.Time `json:"issuedAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// Expired reports whether the claims are expired at now
func (c *Claims) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// payload is the wire shape of the token's middle segment
type payload struct {
	Role       *string `json:"role"`
	UserID     *string `json:"userId"`
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	SchoolID   string  `json:"schoolId,omitempty"`
	SchoolName string  `json:"schoolName,omitempty"`
	jwt.RegisteredClaims
}

// claims converts a validated payload into Claims
func (p *payload) claims() *Claims {
	return &Claims{
		Role:       ParseRole(*p.Role),
		UserID:     *p.UserID,
		Name:       *p.Name,
		Email:      *p.Email,
		SchoolID:   p.SchoolID,
		SchoolName: p.SchoolName,
		IssuedAt:   p.IssuedAt.Time,
		ExpiresAt:  p.ExpiresAt.Time,
	}
}
