// Package api implements the HTTP server (Gin-based) in front of the mail
// adapter: the three send operations under /api/mail plus health, build info
// and Prometheus metrics endpoints.
package api
