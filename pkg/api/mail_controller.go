// SPDX-FileCopyrightText: 2024 Deutsche Telekom AG
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/telekom/smtp-mail-adapter/pkg/apiresponses"
	"github.com/telekom/smtp-mail-adapter/pkg/mail"
	"github.com/telekom/smtp-mail-adapter/pkg/system"
)

type sendMailRequest struct {
	To      string `json:"to" binding:"required"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

type specificMailRequest struct {
	Link    string         `json:"link" binding:"required"`
	AppName string         `json:"appName"`
	User    map[string]any `json:"user" binding:"required"`
}

func (r specificMailRequest) options() mail.SpecificMailOptions {
	return mail.SpecificMailOptions{
		Link:    r.Link,
		AppName: r.AppName,
		User:    mail.Attributes(r.User),
	}
}

// MailController exposes the adapter operations under /api/mail. Every
// endpoint answers 202 once the message is dispatched; delivery happens later.
type MailController struct {
	mailer mail.Mailer
	log    *zap.SugaredLogger
}

func NewMailController(log *zap.SugaredLogger, mailer mail.Mailer) *MailController {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &MailController{mailer: mailer, log: log}
}

func (mc *MailController) BasePath() string {
	return "mail"
}

func (mc *MailController) Handlers() []gin.HandlerFunc {
	return nil
}

func (mc *MailController) Register(rg *gin.RouterGroup) error {
	rg.POST("", mc.handleSendMail)
	rg.POST("verification", mc.handleSendVerificationEmail)
	rg.POST("password-reset", mc.handleSendPasswordResetEmail)
	return nil
}

func (mc *MailController) handleSendMail(c *gin.Context) {
	var req sendMailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiresponses.RespondBadRequestWithDetails(c, "invalid mail request", err.Error())
		return
	}
	d := mc.mailer.SendMail(mail.SendMailOptions{To: req.To, Subject: req.Subject, Text: req.Text})
	system.GetReqLogger(c, mc.log).Infow("Mail accepted", "id", d.ID)
	apiresponses.RespondAccepted(c, d.ID)
}

func (mc *MailController) handleSendVerificationEmail(c *gin.Context) {
	mc.handleSpecific(c, "send verification email", mc.mailer.SendVerificationEmail)
}

func (mc *MailController) handleSendPasswordResetEmail(c *gin.Context) {
	mc.handleSpecific(c, "send password reset email", mc.mailer.SendPasswordResetEmail)
}

func (mc *MailController) handleSpecific(c *gin.Context, operation string, send func(mail.SpecificMailOptions) (*mail.Delivery, error)) {
	var req specificMailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiresponses.RespondBadRequestWithDetails(c, "invalid mail request", err.Error())
		return
	}

	log := system.GetReqLogger(c, mc.log)
	d, err := send(req.options())
	switch {
	case err == nil:
		log.Infow("Mail accepted", "id", d.ID, "operation", operation)
		apiresponses.RespondAccepted(c, d.ID)
	case errors.Is(err, mail.ErrMissingRecipient), errors.Is(err, mail.ErrNilUser):
		log.Warnw("Rejected mail request", "operation", operation, "error", err)
		apiresponses.RespondUnprocessableEntity(c, err.Error())
	default:
		apiresponses.RespondInternalError(c, operation, err, log)
	}
}
