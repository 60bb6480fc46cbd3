// Package metrics holds the Prometheus collectors of the identity service.
// They register with the default registry on import and are served at
// /metrics through promhttp.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// RequestsTotal counts HTTP requests by route pattern, method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kelas_http_requests_total",
			Help: "HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// RequestDuration records handler latency in seconds.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kelas_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// RegistrationsTotal counts accounts created by role.
	RegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kelas_registrations_total",
			Help: "Accounts created",
		},
		[]string{"role"},
	)

	// LoginsTotal counts login attempts by result.
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kelas_logins_total",
			Help: "Login attempts",
		},
		[]string{"result"},
	)

	// TokenPairsIssuedTotal counts access/refresh pairs signed.
	TokenPairsIssuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kelas_token_pairs_issued_total",
			Help: "Token pairs issued",
		},
	)

	// TokensRevokedTotal counts refresh tokens revoked, by reason.
	TokensRevokedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kelas_tokens_revoked_total",
			Help: "Refresh tokens revoked",
		},
		[]string{"reason"},
	)

	// HousekeepingDeletedTotal counts rows removed by housekeeping, by table.
	HousekeepingDeletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kelas_housekeeping_deleted_total",
			Help: "Expired rows deleted",
		},
		[]string{"table"},
	)
)

// Label values used by the services.
const (
	LoginSuccess            = "success"
	LoginInvalidCredentials = "invalid_credentials"
	LoginDisabled           = "disabled"

	RevokeLogout         = "logout"
	RevokeRotation       = "rotation"
	RevokePasswordChange = "password_change"
	RevokeDeactivation   = "deactivation"
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		RegistrationsTotal,
		LoginsTotal,
		TokenPairsIssuedTotal,
		TokensRevokedTotal,
		HousekeepingDeletedTotal,
	)
}
