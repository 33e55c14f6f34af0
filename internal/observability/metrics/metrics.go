package metrics

import "github.com/prometheus/client_golang/prometheus"

// DefaultService labels series until MustRegister names the running service.
const DefaultService = "pollution-tracker"

// raw vectors; the exported ones below are curried with the service label.
var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)

	authRegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Total number of registration attempts.",
		},
		[]string{"service", "result"},
	)

	authLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of login attempts.",
		},
		[]string{"service", "result"},
	)

	tokensIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_tokens_issued_total",
			Help: "Total number of tokens issued.",
		},
		[]string{"service", "result"},
	)

	authenticationAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_bearer_attempts_total",
			Help: "Total number of bearer token checks.",
		},
		[]string{"service", "result"},
	)

	readingsIngestedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readings_ingested_total",
			Help: "Ingestion outcomes by result (accepted, rejected, store_error, anchor_error).",
		},
		[]string{"service", "result"},
	)

	ledgerSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_submissions_total",
			Help: "Ledger memo submissions by last stage reached and result.",
		},
		[]string{"service", "stage", "result"},
	)

	ledgerSubmitDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_submit_duration_seconds",
			Help:    "Duration of ledger memo submissions.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	reconcileActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anchor_reconcile_actions_total",
			Help: "Reconciler actions by kind (resubmit, confirm) and result.",
		},
		[]string{"service", "action", "result"},
	)
)

var (
	HTTPRequestsTotal           *prometheus.CounterVec
	HTTPRequestDurationSeconds  *prometheus.HistogramVec
	AuthRegistrationsTotal      *prometheus.CounterVec
	AuthLoginsTotal             *prometheus.CounterVec
	TokensIssuedTotal           *prometheus.CounterVec
	AuthenticationAttemptsTotal *prometheus.CounterVec
	ReadingsIngestedTotal       *prometheus.CounterVec
	LedgerSubmissionsTotal      *prometheus.CounterVec
	LedgerSubmitDurationSeconds *prometheus.HistogramVec
	ReconcileActionsTotal       *prometheus.CounterVec
)

func init() { curry(DefaultService) }

func curry(serviceName string) {
	labels := prometheus.Labels{"service": serviceName}
	HTTPRequestsTotal = httpRequestsTotal.MustCurryWith(labels)
	HTTPRequestDurationSeconds = httpRequestDurationSeconds.MustCurryWith(labels).(*prometheus.HistogramVec)
	AuthRegistrationsTotal = authRegistrationsTotal.MustCurryWith(labels)
	AuthLoginsTotal = authLoginsTotal.MustCurryWith(labels)
	TokensIssuedTotal = tokensIssuedTotal.MustCurryWith(labels)
	AuthenticationAttemptsTotal = authenticationAttemptsTotal.MustCurryWith(labels)
	ReadingsIngestedTotal = readingsIngestedTotal.MustCurryWith(labels)
	LedgerSubmissionsTotal = ledgerSubmissionsTotal.MustCurryWith(labels)
	LedgerSubmitDurationSeconds = ledgerSubmitDurationSeconds.MustCurryWith(labels).(*prometheus.HistogramVec)
	ReconcileActionsTotal = reconcileActionsTotal.MustCurryWith(labels)
}

func MustRegister(serviceName string) {
	curry(serviceName)

	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDurationSeconds,
		authRegistrationsTotal,
		authLoginsTotal,
		tokensIssuedTotal,
		authenticationAttemptsTotal,
		readingsIngestedTotal,
		ledgerSubmissionsTotal,
		ledgerSubmitDurationSeconds,
		reconcileActionsTotal,
	)
}
