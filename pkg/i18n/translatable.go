// SPDX-FileCopyrightText: 2024 Deutsche Telekom AG
// SPDX-License-Identifier: Apache-2.0

package i18n

import (
	"fmt"
	"sort"
)

// DefaultLanguage is the key every localized TranslatableString must carry.
// It is also the language used when a user has none set.
const DefaultLanguage = "default"

type kind int

const (
	kindUnset kind = iota
	kindPlain
	kindLocalized
	kindInvalid
)

// TranslatableString is either a plain string or a map of language code to string.
// The zero value is unset and fails Validate.
type TranslatableString struct {
	kind   kind
	plain  string
	values map[string]any
	// raw keeps the original value of an invalid input for error reporting
	raw any
}

// Plain returns a language-independent TranslatableString.
func Plain(s string) TranslatableString {
	return TranslatableString{kind: kindPlain, plain: s}
}

// Localized returns a TranslatableString backed by the given language map.
// The map should contain a DefaultLanguage entry; Validate reports when it doesn't.
func Localized(values map[string]string) TranslatableString {
	m := make(map[string]any, len(values))
	for k, v := range values {
		m[k] = v
	}
	return TranslatableString{kind: kindLocalized, values: m}
}

// Resolve returns the string for lang. Plain strings are returned unchanged for
// every language; localized strings fall back to the default entry when lang
// has no string value.
func (t TranslatableString) Resolve(lang string) string {
	switch t.kind {
	case kindPlain:
		return t.plain
	case kindLocalized:
		if s, ok := t.values[lang].(string); ok && s != "" {
			return s
		}
		s, _ := t.values[DefaultLanguage].(string)
		return s
	default:
		return ""
	}
}

// IsLocalized reports whether the value is a language map.
func (t TranslatableString) IsLocalized() bool {
	return t.kind == kindLocalized
}

// Languages returns the language codes of a localized value in sorted order,
// including DefaultLanguage. Plain values have none.
func (t TranslatableString) Languages() []string {
	if t.kind != kindLocalized {
		return nil
	}
	langs := make([]string, 0, len(t.values))
	for k := range t.values {
		langs = append(langs, k)
	}
	sort.Strings(langs)
	return langs
}

// Validate checks that the value is a non-empty string or a map with a non-empty
// string default. key is the option name used in the error message.
func (t TranslatableString) Validate(key string) error {
	switch t.kind {
	case kindPlain:
		if t.plain == "" {
			return fmt.Errorf("options.%s is required and must be a string", key)
		}
		return nil
	case kindLocalized:
		if s, ok := t.values[DefaultLanguage].(string); !ok || s == "" {
			return fmt.Errorf("if options.%s is an object, it must have a default property, which must be a string", key)
		}
		return nil
	case kindInvalid:
		return fmt.Errorf("options.%s is required and must be a string (got %T)", key, t.raw)
	default:
		return fmt.Errorf("options.%s is required and must be a string", key)
	}
}

// UnmarshalYAML accepts either a scalar string or a mapping. Anything else is
// kept as invalid so Validate can report it with the option name.
func (t *TranslatableString) UnmarshalYAML(unmarshal func(interface{}) error) error {
	// Decoding into string keys keeps YAML 1.1 booleans such as no/yes/on as
	// the language codes they were written as.
	var values map[string]interface{}
	if err := unmarshal(&values); err == nil && values != nil {
		*t = fromRaw(values)
		return nil
	}

	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	*t = fromRaw(raw)
	return nil
}

func fromRaw(raw interface{}) TranslatableString {
	switch v := raw.(type) {
	case nil:
		return TranslatableString{}
	case string:
		return Plain(v)
	case map[interface{}]interface{}:
		values := make(map[string]any, len(v))
		for k, val := range v {
			values[fmt.Sprint(k)] = val
		}
		return TranslatableString{kind: kindLocalized, values: values}
	case map[string]interface{}:
		values := make(map[string]any, len(v))
		for k, val := range v {
			values[k] = val
		}
		return TranslatableString{kind: kindLocalized, values: values}
	default:
		return TranslatableString{kind: kindInvalid, raw: raw}
	}
}
