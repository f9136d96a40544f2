// Package system holds request-scoped logging helpers shared by the HTTP handlers.
package system
