// Package apiresponses provides standardized HTTP API response helpers
// (bad request, unprocessable entity, accepted, etc.) for the mail endpoints.
package apiresponses
