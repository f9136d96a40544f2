package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"github.com/telekom/smtp-mail-adapter/pkg/i18n"
)

const (
	DefaultConfigPath        = "./config.yaml"
	DefaultTemplateDir       = "./views/emails"
	DefaultLanguageAttribute = "language"
	DefaultEmailAttribute    = "email"
	DefaultHost              = "localhost"
	DefaultPort              = 587
	DefaultSecurePort        = 465
)

// Auth holds SMTP credentials. An empty user disables authentication.
type Auth struct {
	User string `yaml:"user"`
	Pass string `yaml:"pass"`
}

// TLS tunes certificate verification for the SMTP connection.
type TLS struct {
	// RejectUnauthorized defaults to true; set it to false to skip certificate
	// verification (self-signed relays).
	RejectUnauthorized *bool  `yaml:"rejectUnauthorized"`
	ServerName         string `yaml:"servername"`
}

// Transport holds the SMTP options. They live at the top level of the config
// file next to the adapter options and are handed to the dialer as-is.
type Transport struct {
	Host   string `yaml:"host" validate:"omitempty,hostname_rfc1123|ip"`
	Port   int    `yaml:"port" validate:"gte=0,lte=65535"`
	Secure bool   `yaml:"secure"`
	// Name is the hostname announced in EHLO
	Name string `yaml:"name"`
	Auth Auth   `yaml:"auth"`
	TLS  TLS    `yaml:"tls"`
}

// InsecureSkipVerify reports whether TLS certificate checks are disabled.
func (t Transport) InsecureSkipVerify() bool {
	return t.TLS.RejectUnauthorized != nil && !*t.TLS.RejectUnauthorized
}

type Server struct {
	ListenAddress string `yaml:"listenAddress"`
	TLSCertFile   string `yaml:"tlsCertFile"`
	TLSKeyFile    string `yaml:"tlsKeyFile"`
}

type Config struct {
	From string `yaml:"from" validate:"required"`

	TemplateDir string `yaml:"templateDir"`

	LanguageAttribute string `yaml:"languageAttribute" validate:"required"`
	EmailAttribute    string `yaml:"emailAttribute" validate:"required"`

	SubjectPasswordResetEmail i18n.TranslatableString `yaml:"subjectPasswordResetEmail"`
	SubjectVerificationEmail  i18n.TranslatableString `yaml:"subjectVerificationEmail"`

	Transport `yaml:",inline"`

	Server Server `yaml:"server"`

	// invalidFrom holds a from value that YAML decoded as something other
	// than a string (yaml.v2 would otherwise stringify it).
	invalidFrom interface{}
}

func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain Config
	if err := unmarshal((*plain)(c)); err != nil {
		return err
	}

	var raw struct {
		From interface{} `yaml:"from"`
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	if _, ok := raw.From.(string); raw.From != nil && !ok {
		c.invalidFrom = raw.From
	}
	return nil
}

// Defaults fills unset options and resolves TemplateDir to an absolute path.
func (c *Config) Defaults() {
	if c.TemplateDir == "" {
		c.TemplateDir = DefaultTemplateDir
	}
	if abs, err := filepath.Abs(c.TemplateDir); err == nil {
		c.TemplateDir = abs
	}
	if c.LanguageAttribute == "" {
		c.LanguageAttribute = DefaultLanguageAttribute
	}
	if c.EmailAttribute == "" {
		c.EmailAttribute = DefaultEmailAttribute
	}
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		if c.Secure {
			c.Port = DefaultSecurePort
		} else {
			c.Port = DefaultPort
		}
	}
}

// Load loads the adapter configuration from a file path.
// If configPath is empty, defaults to "./config.yaml".
// Defaults are not applied; the adapter does that on construction.
func Load(configPath ...string) (Config, error) {
	path := DefaultConfigPath
	if len(configPath) > 0 && configPath[0] != "" {
		path = configPath[0]
	}

	var config Config

	content, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("trying to open adapter config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(content, &config); err != nil {
		return config, fmt.Errorf("error unmarshaling YAML %s: %w", path, err)
	}
	return config, nil
}
