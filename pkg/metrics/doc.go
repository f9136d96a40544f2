// Package metrics defines Prometheus metrics for the SMTP mail adapter,
// covering send requests, template rendering, connection verification and
// transport delivery.
package metrics
