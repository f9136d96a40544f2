// Package i18n provides translatable strings for mail subjects: a value that is
// either a single language-independent string or a set of per-language strings
// with a mandatory default.
package i18n
