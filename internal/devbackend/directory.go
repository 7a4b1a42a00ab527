// Package devbackend is a local stand-in for the REST backend. It signs
// tokens in the backend's claims shape and serves placeholder dashboard data.
package devbackend

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dropguard/dashboard/internal/token"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password
var ErrInvalidCredentials = errors.New("invalid email or password")

// Account is a directory entry
type Account struct {
	token.Identity
	PasswordHash string
}

// Directory holds the accounts the dev backend accepts
type Directory struct {
	mu       sync.RWMutex
	cost     int
	accounts map[string]Account

	// dummyHash keeps unknown-email logins as slow as wrong-password ones
	dummyHash []byte
}

// NewDirectory creates an empty directory hashing passwords at cost
func NewDirectory(cost int) (*Directory, error) {
	dummy, err := bcrypt.GenerateFromPassword([]byte("dropguard-dummy-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return &Directory{
		cost:      cost,
		accounts:  make(map[string]Account),
		dummyHash: dummy,
	}, nil
}

// Add registers id with password, replacing any account with the same email
func (d *Directory) Add(id token.Identity, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.accounts[normalizeEmail(id.Email)] = Account{Identity: id, PasswordHash: string(hash)}
	return nil
}

// Authenticate returns the account for email if password matches
func (d *Directory) Authenticate(email, password string) (*Account, error) {
	d.mu.RLock()
	account, ok := d.accounts[normalizeEmail(email)]
	d.mu.RUnlock()

	if !ok {
		bcrypt.CompareHashAndPassword(d.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	return &account, nil
}

// Len returns the number of accounts
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.accounts)
}

// DemoAccounts returns one account per known role, all in the same school
func DemoAccounts() []token.Identity {
	const schoolID, schoolName = "sch-001", "Greenfield Public School"

	return []token.Identity{
		{Role: token.RolePrincipal, UserID: "1", Name: "Priya Principal", Email: "principal@dropguard.dev", SchoolID: schoolID, SchoolName: schoolName},
		{Role: token.RoleStudent, UserID: "42", Name: "Ada Student", Email: "student@dropguard.dev", SchoolID: schoolID, SchoolName: schoolName},
		{Role: token.RoleTeacher, UserID: "7", Name: "Tomas Teacher", Email: "teacher@dropguard.dev", SchoolID: schoolID, SchoolName: schoolName},
		{Role: token.RoleGovernment, UserID: "100", Name: "Gita Official", Email: "government@dropguard.dev"},
		{Role: token.RoleParent, UserID: "55", Name: "Paul Parent", Email: "parent@dropguard.dev", SchoolID: schoolID, SchoolName: schoolName},
		{Role: token.RoleOrgAdmin, UserID: "200", Name: "Olu Admin", Email: "orgadmin@dropguard.dev"},
	}
}

// NewDemoDirectory creates a directory holding DemoAccounts, all sharing password
func NewDemoDirectory(password string, cost int) (*Directory, error) {
	d, err := NewDirectory(cost)
	if err != nil {
		return nil, err
	}

	for _, id := range DemoAccounts() {
		if err := d.Add(id, password); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
