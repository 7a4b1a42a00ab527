package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dropguard/dashboard/internal/store"
	"github.com/dropguard/dashboard/internal/token"
	"go.uber.org/zap"
)

// ErrAuthRequired is returned when an operation needs a session and there is none
var ErrAuthRequired = errors.New("authentication required")

// Decoder turns a bearer token into claims
type Decoder interface {
	Decode(tokenString string) (*token.Claims, error)
}

// Session is an immutable view of who is logged in.
// Token and User are always both set or both empty.
type Session struct {
	Token string
	User  *token.Claims
}

// Authenticated reports whether the session carries a user
func (s Session) Authenticated() bool {
	return s.User != nil
}

type subscriber struct {
	id int
	fn func(Session)
}

// Provider is the single source of identity for the dashboard.
//
// Construct exactly one per application (NewProvider restores any persisted
// session) and pass it to everything that needs the current user. Only the
// provider writes the session store.
type Provider struct {
	store  store.Store
	codec  Decoder
	logger *zap.Logger

	current atomic.Pointer[Session]

	// writeMu serializes Login/Logout so subscribers see changes in order
	writeMu sync.Mutex

	subMu  sync.Mutex
	subs   []subscriber
	nextID int
}

// NewProvider creates the provider and restores the persisted session.
// It never fails: an unreadable or undecodable token leaves the user logged out.
func NewProvider(ctx context.Context, s store.Store, codec Decoder, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Provider{
		store:  s,
		codec:  codec,
		logger: logger,
	}
	p.current.Store(&Session{})
	p.initialize(ctx)

	return p
}

func (p *Provider) initialize(ctx context.Context) {
	raw, ok, err := p.store.Read(ctx)
	if err != nil {
		p.logger.Warn("Failed to read persisted session, starting logged out", zap.Error(err))
		setAuthenticated(false)
		return
	}
	if !ok {
		setAuthenticated(false)
		return
	}

	claims, err := p.codec.Decode(raw)
	recordDecode(err)
	if err != nil {
		p.logger.Warn("Discarding persisted session token", zap.Error(err))
		if err := p.store.Clear(ctx); err != nil {
			p.logger.Warn("Failed to clear persisted session token", zap.Error(err))
		}
		setAuthenticated(false)
		return
	}

	p.current.Store(&Session{Token: raw, User: claims})
	setAuthenticated(true)
	p.logger.Info("Restored session",
		zap.String("user_id", claims.UserID),
		zap.String("role", claims.Role.String()),
	)
}

// Snapshot returns the current token and user together
func (p *Provider) Snapshot() Session {
	s := p.current.Load()
	return Session{Token: s.Token, User: cloneClaims(s.User)}
}

// Token returns the current bearer token, or "" when logged out.
// Use Snapshot when the token and user must agree.
func (p *Provider) Token() string {
	return p.current.Load().Token
}

// User returns a copy of the current claims, or nil when logged out
func (p *Provider) User() *token.Claims {
	return cloneClaims(p.current.Load().User)
}

// RequireToken returns the current token or ErrAuthRequired
func (p *Provider) RequireToken() (string, error) {
	if t := p.Token(); t != "" {
		return t, nil
	}
	return "", ErrAuthRequired
}

// Login decodes and persists tokenString, then notifies subscribers.
// On any error the previous session is left untouched.
func (p *Provider) Login(ctx context.Context, tokenString string) (*token.Claims, error) {
	claims, err := p.codec.Decode(tokenString)
	recordDecode(err)
	if err != nil {
		recordLogin(loginStatusRejected)
		return nil, fmt.Errorf("login rejected: %w", err)
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if err := p.store.Write(ctx, tokenString); err != nil {
		recordLogin(loginStatusStoreError)
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	next := &Session{Token: tokenString, User: claims}
	p.current.Store(next)
	setAuthenticated(true)
	recordLogin(loginStatusSuccess)

	p.logger.Info("Logged in",
		zap.String("user_id", claims.UserID),
		zap.String("role", claims.Role.String()),
	)

	p.notify(*next)
	return cloneClaims(claims), nil
}

// Logout clears the persisted token and the in-memory session, then notifies
// subscribers. The in-memory session is cleared even if the store fails.
func (p *Provider) Logout(ctx context.Context) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	return p.logoutLocked(ctx)
}

// LogoutIfCurrent logs out only while tokenString is still the current token.
// It reports whether a logout happened; a session replaced by a newer Login
// is left alone.
func (p *Provider) LogoutIfCurrent(ctx context.Context, tokenString string) (bool, error) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if p.current.Load().Token != tokenString {
		return false, nil
	}
	return true, p.logoutLocked(ctx)
}

func (p *Provider) logoutLocked(ctx context.Context) error {
	storeErr := p.store.Clear(ctx)
	if storeErr != nil {
		p.logger.Warn("Failed to clear persisted session token", zap.Error(storeErr))
	}

	wasAuthenticated := p.current.Load().Authenticated()
	next := &Session{}
	p.current.Store(next)
	setAuthenticated(false)
	recordLogout()

	if wasAuthenticated {
		p.logger.Info("Logged out")
	}

	p.notify(*next)

	if storeErr != nil {
		return fmt.Errorf("failed to clear session: %w", storeErr)
	}
	return nil
}

// Subscribe registers fn to run after every Login and Logout, in registration
// order. fn must not call Login or Logout. The returned func unsubscribes.
func (p *Provider) Subscribe(fn func(Session)) func() {
	p.subMu.Lock()
	defer p.subMu.Unlock()

	p.nextID++
	id := p.nextID
	p.subs = append(p.subs, subscriber{id: id, fn: fn})

	return func() {
		p.subMu.Lock()
		defer p.subMu.Unlock()

		for i, s := range p.subs {
			if s.id == id {
				p.subs = append(p.subs[:i:i], p.subs[i+1:]...)
				return
			}
		}
	}
}

// notify runs with writeMu held
func (p *Provider) notify(s Session) {
	p.subMu.Lock()
	subs := make([]subscriber, len(p.subs))
	copy(subs, p.subs)
	p.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(Session{Token: s.Token, User: cloneClaims(s.User)})
	}
}

func cloneClaims(c *token.Claims) *token.Claims {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}
