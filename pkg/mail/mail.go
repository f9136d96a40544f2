package mail

import (
	"crypto/tls"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/telekom/smtp-mail-adapter/pkg/config"
	"github.com/telekom/smtp-mail-adapter/pkg/metrics"
)

// Transport delivers composed messages. Implementations must be safe for
// concurrent use; the adapter calls Send from one goroutine per message.
type Transport interface {
	// Verify opens and closes a connection to check that the server is reachable
	// and accepts the configured credentials.
	Verify() error
	Send(msg *Message) error
	GetHost() string
	GetPort() int
}

type smtpTransport struct {
	dialer *gomail.Dialer
	log    *zap.SugaredLogger
}

// NewSMTPTransport creates a Transport that opens one SMTP session per message.
func NewSMTPTransport(cfg config.Transport, log *zap.SugaredLogger) Transport {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log.Infow("Initializing SMTP transport",
		"host", cfg.Host,
		"port", cfg.Port,
		"user", cfg.Auth.User,
		"secure", cfg.Secure)

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Auth.User, cfg.Auth.Pass)
	if cfg.Secure {
		d.SSL = true
	}
	if cfg.Name != "" {
		d.LocalName = cfg.Name
	}
	if cfg.InsecureSkipVerify() || cfg.TLS.ServerName != "" {
		serverName := cfg.TLS.ServerName
		if serverName == "" {
			serverName = cfg.Host
		}
		if cfg.InsecureSkipVerify() {
			log.Warnw("TLS certificate verification is disabled for the SMTP connection", "host", cfg.Host)
		}
		d.TLSConfig = &tls.Config{
			ServerName:         serverName,
			InsecureSkipVerify: cfg.InsecureSkipVerify(), // #nosec G402 -- opt-in via tls.rejectUnauthorized=false
		}
	}

	return &smtpTransport{dialer: d, log: log}
}

func (s *smtpTransport) Verify() error {
	conn, err := s.dialer.Dial()
	if err != nil {
		return err
	}
	return conn.Close()
}

func (s *smtpTransport) Send(msg *Message) error {
	s.log.Debugw("Sending mail",
		"id", msg.ID,
		"host", s.GetHost(),
		"subject", msg.Subject)

	if err := s.dialer.DialAndSend(msg.toGomail()); err != nil {
		metrics.MailSendFailure.WithLabelValues(s.GetHost()).Inc()
		return err
	}

	s.log.Infow("Mail sent successfully", "id", msg.ID, "host", s.GetHost())
	metrics.MailSendSuccess.WithLabelValues(s.GetHost()).Inc()
	return nil
}

func (s *smtpTransport) GetHost() string {
	return s.dialer.Host
}

func (s *smtpTransport) GetPort() int {
	return s.dialer.Port
}
