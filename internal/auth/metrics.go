package auth

import (
	"errors"

	"github.com/dropguard/dashboard/internal/token"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	loginStatusSuccess    = "success"
	loginStatusRejected   = "rejected"
	loginStatusStoreError = "store_error"
)

var (
	sessionLoginTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_login_total",
			Help: "Total number of session logins",
		},
		[]string{"status"}, // status: success/rejected/store_error
	)

	sessionLogoutTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_logout_total",
			Help: "Total number of session logouts",
		},
	)

	tokenDecodeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_token_decode_total",
			Help: "Total number of token decodes",
		},
		[]string{"status"}, // status: ok/malformed/invalid_payload/expired
	)

	sessionAuthenticated = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "session_authenticated",
			Help: "1 when a user is logged in, 0 otherwise",
		},
	)
)

func recordLogin(status string) {
	sessionLoginTotal.WithLabelValues(status).Inc()
}

func recordLogout() {
	sessionLogoutTotal.Inc()
}

func recordDecode(err error) {
	status := "ok"
	var decodeErr *token.DecodeError
	if errors.As(err, &decodeErr) {
		status = string(decodeErr.Code)
	} else if err != nil {
		status = "error"
	}
	tokenDecodeTotal.WithLabelValues(status).Inc()
}

func setAuthenticated(v bool) {
	if v {
		sessionAuthenticated.Set(1)
		return
	}
	sessionAuthenticated.Set(0)
}
