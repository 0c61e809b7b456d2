package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics for the HTTP surface and the invoice workflow
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	InvoicesCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "invoices_created_total",
			Help: "Total number of invoices created",
		},
	)

	InvoiceRegenerationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "invoice_regenerations_total",
			Help: "Total number of invoice documents regenerated after the stored copy went missing",
		},
	)

	InvoiceSignedURLsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoice_signed_urls_total",
			Help: "Total number of signed invoice URLs issued",
		},
		[]string{"purpose"},
	)

	InvoiceEmailFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "invoice_email_failures_total",
			Help: "Total number of invoice emails that failed to send",
		},
	)

	PublicFormSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "public_form_submissions_total",
			Help: "Total number of public form submissions",
		},
		[]string{"form", "result"},
	)
)

var registerOnce sync.Once

// Register registers all Prometheus metrics with the default registry
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(HTTPRequestsTotal)
		prometheus.MustRegister(HTTPRequestDuration)
		prometheus.MustRegister(InvoicesCreatedTotal)
		prometheus.MustRegister(InvoiceRegenerationsTotal)
		prometheus.MustRegister(InvoiceSignedURLsTotal)
		prometheus.MustRegister(InvoiceEmailFailuresTotal)
		prometheus.MustRegister(PublicFormSubmissionsTotal)
	})
}
