// SPDX-FileCopyrightText: 2024 Deutsche Telekom AG
// SPDX-License-Identifier: Apache-2.0

package mail

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/telekom/smtp-mail-adapter/pkg/config"
	"github.com/telekom/smtp-mail-adapter/pkg/i18n"
	"github.com/telekom/smtp-mail-adapter/pkg/metrics"
)

var (
	ErrNilUser          = errors.New("user is nil")
	ErrMissingRecipient = errors.New("user has no email address")
)

// Values of the kind label on metrics.MailRequested.
const (
	kindMail          = "mail"
	kindVerification  = VerificationEmailTemplate
	kindPasswordReset = PasswordResetEmailTemplate
)

type SendMailOptions struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// SpecificMailOptions are the inputs of the templated send operations.
type SpecificMailOptions struct {
	Link    string
	AppName string
	User    User
}

// Mailer is the surface the host framework talks to.
type Mailer interface {
	SendMail(opts SendMailOptions) *Delivery
	SendVerificationEmail(opts SpecificMailOptions) (*Delivery, error)
	SendPasswordResetEmail(opts SpecificMailOptions) (*Delivery, error)
}

var _ Mailer = (*Adapter)(nil)

// Adapter sends transactional mail through a Transport. It is built once by New
// and never modified afterwards; all methods are safe for concurrent use.
type Adapter struct {
	cfg       config.Config
	renderer  *Renderer
	transport Transport
	log       *zap.SugaredLogger

	inflight *inflight
}

type Option func(*Adapter)

// WithTransport replaces the SMTP transport built from the config.
func WithTransport(t Transport) Option {
	return func(a *Adapter) {
		a.transport = t
	}
}

// WithLogger sets the logger for the adapter and its transport.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(a *Adapter) {
		if log != nil {
			a.log = log
		}
	}
}

// New validates cfg and the template directory and returns a ready adapter.
// The SMTP connection is verified in the background; a failure there is
// logged and does not make New fail.
func New(cfg config.Config, opts ...Option) (*Adapter, error) {
	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, name := range RequiredTemplates {
		if err := ValidateTemplate(cfg.TemplateDir, name); err != nil {
			return nil, err
		}
	}

	a := &Adapter{
		cfg:      cfg,
		log:      zap.NewNop().Sugar(),
		inflight: newInflight(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.Named("smtp-adapter")
	if a.transport == nil {
		a.transport = NewSMTPTransport(cfg.Transport, a.log)
	}
	a.renderer = NewRenderer(cfg.TemplateDir)

	a.log.Infow("SMTP mail adapter initialized",
		"host", a.transport.GetHost(),
		"port", a.transport.GetPort(),
		"templateDir", cfg.TemplateDir,
		"emailAttribute", cfg.EmailAttribute,
		"languageAttribute", cfg.LanguageAttribute)

	a.inflight.add()
	go a.verify()

	return a, nil
}

func (a *Adapter) verify() {
	defer a.inflight.done()
	if err := a.transport.Verify(); err != nil {
		metrics.MailVerifyFailure.WithLabelValues(a.transport.GetHost()).Inc()
		a.log.Errorw("Error when trying to establish the SMTP connection",
			"host", a.transport.GetHost(),
			"port", a.transport.GetPort(),
			"error", err)
		return
	}
	a.log.Debugw("SMTP connection verified", "host", a.transport.GetHost())
}

// SendMail sends a plain-text message from the configured sender. It returns
// before the transport has finished.
func (a *Adapter) SendMail(opts SendMailOptions) *Delivery {
	metrics.MailRequested.WithLabelValues(kindMail).Inc()
	return a.dispatch(newMessage(a.cfg.From, opts.To, opts.Subject, opts.Text, ""))
}

// SendVerificationEmail renders the verificationEmail templates for the user
// and dispatches the result.
func (a *Adapter) SendVerificationEmail(opts SpecificMailOptions) (*Delivery, error) {
	metrics.MailRequested.WithLabelValues(kindVerification).Inc()
	return a.sendTemplated(VerificationEmailTemplate, opts)
}

// SendPasswordResetEmail renders the passwordResetEmail templates for the user
// and dispatches the result.
func (a *Adapter) SendPasswordResetEmail(opts SpecificMailOptions) (*Delivery, error) {
	metrics.MailRequested.WithLabelValues(kindPasswordReset).Inc()
	return a.sendTemplated(PasswordResetEmailTemplate, opts)
}

func (a *Adapter) sendTemplated(template string, opts SpecificMailOptions) (*Delivery, error) {
	msg, err := a.Compose(template, opts)
	if err != nil {
		return nil, err
	}
	return a.dispatch(msg), nil
}

// Compose builds the message a templated send would dispatch, without sending
// it. template is VerificationEmailTemplate or PasswordResetEmailTemplate.
func (a *Adapter) Compose(template string, opts SpecificMailOptions) (*Message, error) {
	var subject i18n.TranslatableString
	switch template {
	case VerificationEmailTemplate:
		subject = a.cfg.SubjectVerificationEmail
	case PasswordResetEmailTemplate:
		subject = a.cfg.SubjectPasswordResetEmail
	default:
		return nil, fmt.Errorf("%w: unknown mail template %q", ErrTemplateNotFound, template)
	}
	if isNilUser(opts.User) {
		return nil, ErrNilUser
	}

	to := stringAttribute(opts.User, a.cfg.EmailAttribute)
	if to == "" {
		return nil, fmt.Errorf("%w: attribute %q is empty", ErrMissingRecipient, a.cfg.EmailAttribute)
	}
	language := stringAttribute(opts.User, a.cfg.LanguageAttribute)
	if language == "" {
		language = i18n.DefaultLanguage
	}

	data := TemplateData{
		Link:     opts.Link,
		AppName:  opts.AppName,
		User:     opts.User,
		Language: language,
	}
	text, html, err := a.renderer.RenderPair(template, data)
	if err != nil {
		a.log.Errorw("Failed to render mail template", "template", template, "language", language, "error", err)
		return nil, err
	}

	return newMessage(a.cfg.From, to, subject.Resolve(language), text, html), nil
}

// dispatch hands msg to the transport on its own goroutine. Transport errors are
// logged and recorded on the Delivery; they never reach the caller of the send
// operation.
func (a *Adapter) dispatch(msg *Message) *Delivery {
	d := newDelivery(msg.ID)
	host := a.transport.GetHost()

	metrics.MailInFlight.WithLabelValues(host).Inc()
	a.inflight.add()
	go func() {
		defer a.inflight.done()
		defer metrics.MailInFlight.WithLabelValues(host).Dec()

		err := a.send(msg)
		if err != nil {
			a.log.Errorw("Failed to send mail",
				"id", msg.ID,
				"host", host,
				"subject", msg.Subject,
				"error", err)
		}
		d.finish(err)
	}()

	a.log.Debugw("Mail dispatched", "id", msg.ID, "subject", msg.Subject)
	return d
}

func (a *Adapter) send(msg *Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in mail transport: %v", r)
		}
	}()
	return a.transport.Send(msg)
}

// Drain waits until the startup verification and every dispatched message
// have finished, or ctx is done. It is safe to keep sending while Drain runs;
// messages dispatched before nothing is in flight are waited for as well.
func (a *Adapter) Drain(ctx context.Context) error {
	select {
	case <-a.inflight.idle():
		return nil
	case <-ctx.Done():
		a.log.Warnw("Timed out waiting for in-flight mail, some messages may not have been sent")
		return ctx.Err()
	}
}

// Verify checks the SMTP connection synchronously.
func (a *Adapter) Verify() error {
	return a.transport.Verify()
}

// Renderer returns the adapter's template renderer.
func (a *Adapter) Renderer() *Renderer {
	return a.renderer
}
