package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DecodeErrorCode classifies decode failures
type DecodeErrorCode string

// Decode error codes
const (
	CodeMalformed      DecodeErrorCode = "malformed"
	CodeInvalidPayload DecodeErrorCode = "invalid_payload"
	CodeExpired        DecodeErrorCode = "expired"
)

// DecodeError is returned when a token cannot be trusted for display or routing
type DecodeError struct {
	Code DecodeErrorCode
	Err  error
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("token decode failed (%s)", e.Code)
	}
	return fmt.Sprintf("token decode failed (%s): %v", e.Code, e.Err)
}

// Unwrap returns the underlying error
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsExpired reports whether err is a DecodeError for an expired token
func IsExpired(err error) bool {
	var decodeErr *DecodeError
	return errors.As(err, &decodeErr) && decodeErr.Code == CodeExpired
}

// Codec decodes bearer tokens into Claims.
//
// Neither the header nor the signature is verified: the backend is the issuer and re-authorizes
// every API call, so decoded claims are only fit for display and routing.
type Codec struct {
	parser *jwt.Parser
	now    func() time.Time
}

// NewCodec creates a new token codec
func NewCodec() *Codec {
	return &Codec{
		parser: jwt.NewParser(),
		now:    time.Now,
	}
}

// WithClock returns a copy of the codec that reads the current time from now
func (c *Codec) WithClock(now func() time.Time) *Codec {
	return &Codec{parser: c.parser, now: now}
}

// Decode parses the payload segment of tokenString. The header and
// signature segments are not inspected.
// Expiry is checked before any other claim is trusted.
func (c *Codec) Decode(tokenString string) (*Claims, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return nil, &DecodeError{Code: CodeMalformed, Err: fmt.Errorf("token has %d segments, want 3", len(parts))}
	}

	segment, err := c.parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, &DecodeError{Code: CodeMalformed, Err: fmt.Errorf("failed to decode payload: %w", err)}
	}

	var p payload
	if err := json.Unmarshal(segment, &p); err != nil {
		return nil, &DecodeError{Code: CodeMalformed, Err: fmt.Errorf("failed to parse payload: %w", err)}
	}

	if p.ExpiresAt == nil {
		return nil, &DecodeError{Code: CodeInvalidPayload, Err: errors.New("missing exp")}
	}
	if !c.now().Before(p.ExpiresAt.Time) {
		return nil, &DecodeError{
			Code: CodeExpired,
			Err:  fmt.Errorf("expired at %s", p.ExpiresAt.Time.UTC().Format(time.RFC3339)),
		}
	}

	if err := p.validate(); err != nil {
		return nil, &DecodeError{Code: CodeInvalidPayload, Err: err}
	}

	return p.claims(), nil
}

// validate checks the required claim fields
func (p *payload) validate() error {
	switch {
	case p.Role == nil || *p.Role == "":
		return errors.New("missing role")
	case p.UserID == nil || *p.UserID == "":
		return errors.New("missing userId")
	case p.Name == nil:
		return errors.New("missing name")
	case p.Email == nil:
		return errors.New("missing email")
	case p.IssuedAt == nil:
		return errors.New("missing iat")
	}
	return nil
}
