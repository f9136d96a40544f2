// Package config handles loading and validating the mail adapter configuration:
// sender address, template directory, user attribute names, translatable
// subjects and the SMTP transport options.
package config
