// Package mail provides the SMTP mail adapter: configuration and template
// checks at construction, localized subjects, text and HTML rendering from a
// template directory, and fire-and-forget delivery through a gomail transport.
package mail
