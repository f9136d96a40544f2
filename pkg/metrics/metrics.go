package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Transport metrics
	MailSendSuccess = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "smtp_adapter_mail_send_success_total",
		Help: "Total number of messages accepted by the SMTP server",
	}, []string{"host"})
	MailSendFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "smtp_adapter_mail_send_failure_total",
		Help: "Total number of messages the SMTP transport failed to deliver",
	}, []string{"host"})
	MailVerifyFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "smtp_adapter_mail_verify_failure_total",
		Help: "Total number of failed SMTP connection verifications at startup",
	}, []string{"host"})
	MailInFlight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "smtp_adapter_mail_in_flight",
		Help: "Number of dispatched messages the transport has not finished yet",
	}, []string{"host"})

	// Adapter metrics. kind is one of mail, verificationEmail, passwordResetEmail.
	MailRequested = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "smtp_adapter_mail_requested_total",
		Help: "Total number of send operations requested by the host",
	}, []string{"kind"})
	MailRenderFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "smtp_adapter_mail_render_failure_total",
		Help: "Total number of template renders that failed",
	}, []string{"template"})
)

func init() {
	prometheus.MustRegister(MailSendSuccess)
	prometheus.MustRegister(MailSendFailure)
	prometheus.MustRegister(MailVerifyFailure)
	prometheus.MustRegister(MailInFlight)
	prometheus.MustRegister(MailRequested)
	prometheus.MustRegister(MailRenderFailure)
}

// MetricsHandler returns an http.Handler exposing Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
