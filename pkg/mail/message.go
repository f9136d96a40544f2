package mail

import (
	"fmt"
	netmail "net/mail"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"github.com/telekom/smtp-mail-adapter/pkg/version"
)

// Message is a single outgoing mail. HTML is optional; when set the message is
// sent as multipart/alternative with Text as the plain-text part.
type Message struct {
	ID      string
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

func newMessage(from, to, subject, text, html string) *Message {
	return &Message{
		ID:      uuid.NewString(),
		From:    from,
		To:      to,
		Subject: subject,
		Text:    text,
		HTML:    html,
	}
}

// messageIDDomain returns the domain part of the sender address, falling back to
// "localhost" when the address cannot be parsed.
func messageIDDomain(from string) string {
	addr, err := netmail.ParseAddress(from)
	if err != nil {
		return "localhost"
	}
	if i := strings.LastIndex(addr.Address, "@"); i >= 0 && i < len(addr.Address)-1 {
		return addr.Address[i+1:]
	}
	return "localhost"
}

func (m *Message) toGomail() *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetHeader("X-Mailer", version.Mailer())
	if m.ID != "" {
		msg.SetHeader("Message-ID", fmt.Sprintf("<%s@%s>", m.ID, messageIDDomain(m.From)))
	}
	msg.SetBody("text/plain", m.Text)
	if m.HTML != "" {
		msg.AddAlternative("text/html", m.HTML)
	}
	return msg
}
