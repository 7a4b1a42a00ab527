package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer signs tokens in the backend's claims shape.
// Only the development backend and tests issue tokens; the dashboard itself
// never signs anything.
type Issuer struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

// Identity describes the user a token is issued for
type Identity struct {
	Role       Role
	UserID     string
	Name       string
	Email      string
	SchoolID   string
	SchoolName string
}

// NewIssuer creates a new token issuer
func NewIssuer(secretKey string, ttl time.Duration) *Issuer {
	return &Issuer{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		now:       time.Now,
	}
}

// Issue signs a token for id and returns it with its decoded claims
func (i *Issuer) Issue(id Identity) (string, *Claims, error) {
	now := i.now()
	expiry := now.Add(i.ttl)

	return i.sign(id, now, expiry)
}

// IssueWithExpiry signs a token with explicit timestamps (tests, fixtures)
func (i *Issuer) IssueWithExpiry(id Identity, issuedAt, expiresAt time.Time) (string, *Claims, error) {
	return i.sign(id, issuedAt, expiresAt)
}

func (i *Issuer) sign(id Identity, issuedAt, expiresAt time.Time) (string, *Claims, error) {
	role := string(id.Role)
	p := payload{
		Role:       &role,
		UserID:     &id.UserID,
		Name:       &id.Name,
		Email:      &id.Email,
		SchoolID:   id.SchoolID,
		SchoolName: id.SchoolName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Subject:   id.UserID,
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, p).SignedString(i.secretKey)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	// NumericDate truncates to the second
	return signed, p.claims(), nil
}

// Verify checks the signature and expiry of tokenString and returns its claims
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	var p payload
	t, err := jwt.ParseWithClaims(tokenString, &p, func(t *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secretKey, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !t.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("invalid token claims: %w", err)
	}

	return p.claims(), nil
}
