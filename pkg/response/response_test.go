package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/dropguard/dashboard/pkg/errors"
	"github.com/gin-gonic/gin"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func record(t *testing.T, fn func(c *gin.Context)) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fn(c)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return w, env
}

func TestSuccess(t *testing.T) {
	w, env := record(t, func(c *gin.Context) {
		Success(c, http.StatusOK, gin.H{"redirect": "/student-dashboard"})
	})

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !env.Success {
		t.Error("success = false, want true")
	}
	if string(env.Data) != `{"redirect":"/student-dashboard"}` {
		t.Errorf("data = %s", env.Data)
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"app error", apperrors.ErrAuthRequired, http.StatusUnauthorized, apperrors.ErrCodeAuthRequired},
		{"wrapped app error", fmt.Errorf("login: %w", apperrors.ErrBackendUnavailable), http.StatusBadGateway, apperrors.ErrCodeBackendUnavailable},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, apperrors.ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := record(t, func(c *gin.Context) { Error(c, tt.err) })

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if env.Success {
				t.Error("success = true, want false")
			}
			if env.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", env.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	w, env := record(t, func(c *gin.Context) {
		ValidationError(c, "Invalid login request", []string{"email"})
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if env.Error.Code != apperrors.ErrCodeValidationFailed {
		t.Errorf("code = %q, want %q", env.Error.Code, apperrors.ErrCodeValidationFailed)
	}
	if string(env.Error.Details) != `["email"]` {
		t.Errorf("details = %s", env.Error.Details)
	}
}
