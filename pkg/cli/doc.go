// Package cli implements the mailadapter command line: configuration checks,
// template previews, one-off sends and the HTTP server.
package cli
