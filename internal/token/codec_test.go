package token

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret-key-minimum-32-chars"

const studentPayload = `{"role":"STUDENT","userId":"42","name":"Ada","email":"a@x.com","iat":1000,"exp":9999999999}`

// rawToken assembles an unsigned token around a literal JSON payload
func rawToken(payloadJSON string) string {
	return rawTokenWithHeader(`{"alg":"HS256","typ":"JWT"}`, payloadJSON)
}

// rawTokenWithHeader is rawToken with a literal header segment
func rawTokenWithHeader(headerJSON, payloadJSON string) string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(headerJSON)) + "." + enc.EncodeToString([]byte(payloadJSON)) + ".sig"
}

func TestCodec_RoundTrip(t *testing.T) {
	issuer := NewIssuer(testSecret, 6*time.Hour)
	codec := NewCodec()

	identities := []Identity{
		{Role: RolePrincipal, UserID: "1", Name: "Grace Hopper", Email: "hod@school.org", SchoolID: "s-1", SchoolName: "Central High"},
		{Role: RoleStudent, UserID: "42", Name: "Ada", Email: "a@x.com"},
		{Role: RoleTeacher, UserID: "7", Name: "Alan", Email: "t@school.org", SchoolID: "s-2"},
		{Role: RoleGovernment, UserID: "gov-9", Name: "Ministry", Email: "gov@state.gov"},
		{Role: RoleParent, UserID: "p-3", Name: "", Email: "parent@home.net"},
		{Role: RoleOrgAdmin, UserID: "org-1", Name: "Org", Email: "admin@org.org"},
	}

	for _, id := range identities {
		t.Run(string(id.Role), func(t *testing.T) {
			signed, want, err := issuer.Issue(id)
			if err != nil {
				t.Fatalf("Issue() failed: %v", err)
			}

			got, err := codec.Decode(signed)
			if err != nil {
				t.Fatalf("Decode() failed: %v", err)
			}

			if got.Role != want.Role || got.UserID != want.UserID || got.Name != want.Name ||
				got.Email != want.Email || got.SchoolID != want.SchoolID || got.SchoolName != want.SchoolName {
				t.Errorf("Decode() = %+v, want %+v", got, want)
			}
			if !got.IssuedAt.Equal(want.IssuedAt) {
				t.Errorf("IssuedAt = %v, want %v", got.IssuedAt, want.IssuedAt)
			}
			if !got.ExpiresAt.Equal(want.ExpiresAt) {
				t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, want.ExpiresAt)
			}
		})
	}
}

func TestCodec_DecodeLiteralPayload(t *testing.T) {
	tok := rawToken(studentPayload)

	claims, err := NewCodec().Decode(tok)
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}

	if claims.Role != RoleStudent {
		t.Errorf("Role = %q, want %q", claims.Role, RoleStudent)
	}
	if claims.UserID != "42" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "42")
	}
	if claims.SchoolID != "" {
		t.Errorf("SchoolID = %q, want empty", claims.SchoolID)
	}
	if claims.IssuedAt.Unix() != 1000 {
		t.Errorf("IssuedAt = %d, want 1000", claims.IssuedAt.Unix())
	}
	if claims.ExpiresAt.Unix() != 9999999999 {
		t.Errorf("ExpiresAt = %d, want 9999999999", claims.ExpiresAt.Unix())
	}
}

func TestCodec_DecodeIgnoresHeader(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"no alg", rawTokenWithHeader(`{"typ":"JWT"}`, studentPayload)},
		{"unsupported alg", rawTokenWithHeader(`{"alg":"ES256K","typ":"JWT"}`, studentPayload)},
		{"alg none", rawTokenWithHeader(`{"alg":"none"}`, studentPayload)},
		{"header not json", rawTokenWithHeader(`garbage`, studentPayload)},
		{"empty signature", strings.TrimSuffix(rawToken(studentPayload), "sig")},
	}

	codec := NewCodec()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := codec.Decode(tt.token)
			if err != nil {
				t.Fatalf("Decode() failed: %v", err)
			}
			if claims.Role != RoleStudent || claims.UserID != "42" {
				t.Errorf("Decode() = %+v, want STUDENT user 42", claims)
			}
		})
	}
}

func TestCodec_DecodeUnknownRole(t *testing.T) {
	tok := rawToken(`{"role":"JANITOR","userId":"5","name":"Bob","email":"b@x.com","iat":1000,"exp":9999999999}`)

	claims, err := NewCodec().Decode(tok)
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}

	if claims.Role.Known() {
		t.Errorf("Role %q should not be known", claims.Role)
	}
	if claims.Role != "JANITOR" {
		t.Errorf("Role = %q, want %q", claims.Role, "JANITOR")
	}
}

func TestCodec_DecodeInvalid(t *testing.T) {
	tests := []struct {
		name  string
		token string
		code  DecodeErrorCode
	}{
		{"empty token", "", CodeMalformed},
		{"two segments", "header.payload", CodeMalformed},
		{"four segments", "a.b.c.d", CodeMalformed},
		{"invalid encoding", "eyJhbGciOiJIUzI1NiJ9.!!!.sig", CodeMalformed},
		{"payload not json", rawToken(`not json`), CodeMalformed},
		{"payload not an object", rawToken(`[1,2]`), CodeMalformed},
		{"no alg and missing exp", rawTokenWithHeader(`{"typ":"JWT"}`, `{"role":"STUDENT","userId":"42","name":"Ada","email":"a@x.com","iat":1000}`), CodeInvalidPayload},
		{"missing exp", rawToken(`{"role":"STUDENT","userId":"42","name":"Ada","email":"a@x.com","iat":1000}`), CodeInvalidPayload},
		{"missing role", rawToken(`{"userId":"42","name":"Ada","email":"a@x.com","iat":1000,"exp":9999999999}`), CodeInvalidPayload},
		{"empty role", rawToken(`{"role":"","userId":"42","name":"Ada","email":"a@x.com","iat":1000,"exp":9999999999}`), CodeInvalidPayload},
		{"missing userId", rawToken(`{"role":"STUDENT","name":"Ada","email":"a@x.com","iat":1000,"exp":9999999999}`), CodeInvalidPayload},
		{"missing name", rawToken(`{"role":"STUDENT","userId":"42","email":"a@x.com","iat":1000,"exp":9999999999}`), CodeInvalidPayload},
		{"missing email", rawToken(`{"role":"STUDENT","userId":"42","name":"Ada","iat":1000,"exp":9999999999}`), CodeInvalidPayload},
		{"missing iat", rawToken(`{"role":"STUDENT","userId":"42","name":"Ada","email":"a@x.com","exp":9999999999}`), CodeInvalidPayload},
		{"expired", rawToken(`{"role":"STUDENT","userId":"42","name":"Ada","email":"a@x.com","iat":1000,"exp":2000}`), CodeExpired},
		{"expired and missing fields", rawToken(`{"exp":2000}`), CodeExpired},
	}

	codec := NewCodec()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := codec.Decode(tt.token)
			if err == nil {
				t.Fatalf("Decode() = %+v, want error", claims)
			}

			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("Decode() error = %T, want *DecodeError", err)
			}
			if decodeErr.Code != tt.code {
				t.Errorf("DecodeError.Code = %q, want %q (%v)", decodeErr.Code, tt.code, err)
			}
		})
	}
}

func TestCodec_ExpiryBoundary(t *testing.T) {
	issuer := NewIssuer(testSecret, time.Hour)
	issuedAt := time.Unix(1_700_000_000, 0)
	expiresAt := issuedAt.Add(time.Hour)

	signed, _, err := issuer.IssueWithExpiry(Identity{Role: RoleTeacher, UserID: "7", Name: "Alan", Email: "t@x.com"}, issuedAt, expiresAt)
	if err != nil {
		t.Fatalf("IssueWithExpiry() failed: %v", err)
	}

	tests := []struct {
		name    string
		now     time.Time
		expired bool
	}{
		{"before expiry", expiresAt.Add(-time.Second), false},
		{"at expiry", expiresAt, true},
		{"after expiry", expiresAt.Add(time.Second), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec := NewCodec().WithClock(func() time.Time { return tt.now })
			_, err := codec.Decode(signed)
			if got := IsExpired(err); got != tt.expired {
				t.Errorf("IsExpired(Decode()) = %v, want %v (err: %v)", got, tt.expired, err)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		raw   string
		want  Role
		known bool
	}{
		{"PRINCIPAL", RolePrincipal, true},
		{"student", RoleStudent, true},
		{" Teacher ", RoleTeacher, true},
		{"GOVERNMENT", RoleGovernment, true},
		{"PARENT", RoleParent, true},
		{"org_admin", RoleOrgAdmin, true},
		{"JANITOR", Role("JANITOR"), false},
		{"", Role(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := ParseRole(tt.raw)
			if got != tt.want {
				t.Errorf("ParseRole(%q) = %q, want %q", tt.raw, got, tt.want)
			}
			if got.Known() != tt.known {
				t.Errorf("ParseRole(%q).Known() = %v, want %v", tt.raw, got.Known(), tt.known)
			}
		})
	}
}
