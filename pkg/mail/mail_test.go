package mail

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/telekom/smtp-mail-adapter/pkg/config"
	"github.com/telekom/smtp-mail-adapter/pkg/metrics"
	"github.com/telekom/smtp-mail-adapter/pkg/version"
)

func TestNewSMTPTransport(t *testing.T) {
	reject := false
	tests := []struct {
		name      string
		cfg       config.Transport
		expectSSL bool
	}{
		{
			name: "Basic mail configuration",
			cfg: config.Transport{
				Host: "smtp.example.com",
				Port: 587,
				Auth: config.Auth{User: "test@example.com", Pass: "password123"},
			},
		},
		{
			name: "Secure connection",
			cfg: config.Transport{
				Host:   "smtp.example.com",
				Port:   2465,
				Secure: true,
			},
			expectSSL: true,
		},
		{
			name: "Implicit TLS port",
			cfg: config.Transport{
				Host: "smtp.gmail.com",
				Port: 465,
			},
			expectSSL: true,
		},
		{
			name: "Certificate checks disabled",
			cfg: config.Transport{
				Host: "smtp.internal",
				Port: 25,
				TLS:  config.TLS{RejectUnauthorized: &reject},
				Name: "adapter.internal",
			},
		},
		{
			name: "Unauthenticated relay",
			cfg: config.Transport{
				Host: "smtp-relay.internal",
				Port: 25,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := NewSMTPTransport(tt.cfg, zaptest.NewLogger(t).Sugar())
			require.NotNil(t, transport)
			assert.Implements(t, (*Transport)(nil), transport)
			assert.Equal(t, tt.cfg.Host, transport.GetHost())
			assert.Equal(t, tt.cfg.Port, transport.GetPort())

			d := transport.(*smtpTransport).dialer
			assert.Equal(t, tt.expectSSL, d.SSL)
			assert.Equal(t, tt.cfg.Auth.User, d.Username)
			assert.Equal(t, tt.cfg.Name, d.LocalName)
			if tt.cfg.InsecureSkipVerify() {
				require.NotNil(t, d.TLSConfig)
				assert.True(t, d.TLSConfig.InsecureSkipVerify)
				assert.Equal(t, tt.cfg.Host, d.TLSConfig.ServerName)
			} else {
				assert.Nil(t, d.TLSConfig)
			}
		})
	}
}

func TestSMTPTransport_NoServer(t *testing.T) {
	// reserve a port and close it so nothing listens there
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	transport := NewSMTPTransport(config.Transport{Host: "127.0.0.1", Port: port}, nil)
	before := testutil.ToFloat64(metrics.MailSendFailure.WithLabelValues("127.0.0.1"))

	assert.Error(t, transport.Verify())
	assert.Error(t, transport.Send(newMessage("a@x.com", "b@y.com", "Hi", "Hello", "")))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.MailSendFailure.WithLabelValues("127.0.0.1")))
}

// testSMTPServer is a minimal SMTP server that accepts connections until
// stopped and records the DATA of every message. It only implements the
// commands gomail needs.
type testSMTPServer struct {
	ln       net.Listener
	wg       sync.WaitGroup
	mu       sync.Mutex
	messages []string
	rcpts    []string
}

func startTestSMTPServer(t *testing.T) *testSMTPServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	s := &testSMTPServer{ln: ln}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			s.wg.Add(1)
			go s.serve(conn)
		}
	}()
	t.Cleanup(s.stop)
	return s
}

func (s *testSMTPServer) serve(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()
	r := bufio.NewReader(conn)
	fmt.Fprintf(conn, "220 localhost Test SMTP Service Ready\r\n")
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "EHLO"), strings.HasPrefix(line, "HELO"):
			fmt.Fprintf(conn, "250-localhost Hello\r\n250 OK\r\n")
		case strings.HasPrefix(line, "RCPT TO:"):
			s.mu.Lock()
			s.rcpts = append(s.rcpts, strings.TrimPrefix(line, "RCPT TO:"))
			s.mu.Unlock()
			fmt.Fprintf(conn, "250 OK\r\n")
		case strings.HasPrefix(line, "DATA"):
			fmt.Fprintf(conn, "354 End data with <CR><LF>.<CR><LF>\r\n")
			var data strings.Builder
			for {
				dline, derr := r.ReadString('\n')
				if derr != nil {
					return
				}
				if strings.TrimSpace(dline) == "." {
					break
				}
				data.WriteString(dline)
			}
			s.mu.Lock()
			s.messages = append(s.messages, data.String())
			s.mu.Unlock()
			fmt.Fprintf(conn, "250 OK: queued as 12345\r\n")
		case strings.HasPrefix(line, "QUIT"):
			fmt.Fprintf(conn, "221 Bye\r\n")
			return
		default:
			fmt.Fprintf(conn, "250 OK\r\n")
		}
	}
}

func (s *testSMTPServer) stop() {
	_ = s.ln.Close()
	s.wg.Wait()
}

func (s *testSMTPServer) port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

func (s *testSMTPServer) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

func TestSMTPTransport_HappyPath(t *testing.T) {
	server := startTestSMTPServer(t)
	transport := NewSMTPTransport(config.Transport{Host: "127.0.0.1", Port: server.port()}, zaptest.NewLogger(t).Sugar())

	require.NoError(t, transport.Verify())

	msg := newMessage("sender@example.com", "recipient@example.com", "Hello", "plain body", "<p>html body</p>")
	require.NoError(t, transport.Send(msg))

	messages := server.Messages()
	require.Len(t, messages, 1)
	data := messages[0]
	assert.Contains(t, data, "Subject: Hello")
	assert.Contains(t, data, "From: sender@example.com")
	assert.Contains(t, data, "To: recipient@example.com")
	assert.Contains(t, data, "multipart/alternative")
	assert.Contains(t, data, "plain body")
	assert.Contains(t, data, "<p>html body</p>")
	assert.Contains(t, data, fmt.Sprintf("Message-ID: <%s@example.com>", msg.ID))
}

func TestAdapter_EndToEndOverSMTP(t *testing.T) {
	server := startTestSMTPServer(t)

	cfg := testConfig(t)
	cfg.Transport = config.Transport{Host: "127.0.0.1", Port: server.port()}
	a, err := New(cfg, WithLogger(zaptest.NewLogger(t).Sugar()))
	require.NoError(t, err)

	d, err := a.SendVerificationEmail(SpecificMailOptions{
		Link:    "https://example.com/verify",
		AppName: "Acme",
		User:    Attributes{"email": "jane@example.com", "language": "fr", "username": "jane"},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Wait(ctx))
	require.NoError(t, a.Drain(ctx))

	messages := server.Messages()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "To: jane@example.com")
	assert.Contains(t, messages[0], "Bonjour jane")
}

func TestMessage_ToGomail(t *testing.T) {
	t.Run("text only", func(t *testing.T) {
		msg := newMessage("Acme <noreply@acme.test>", "b@y.com", "Hi", "Hello", "")
		var buf bytes.Buffer
		_, err := msg.toGomail().WriteTo(&buf)
		require.NoError(t, err)

		out := buf.String()
		assert.Contains(t, out, "Subject: Hi")
		assert.Contains(t, out, "text/plain")
		assert.NotContains(t, out, "text/html")
		assert.Contains(t, out, "@acme.test>")
		assert.Contains(t, out, "X-Mailer: "+version.Mailer())
	})

	t.Run("text and html", func(t *testing.T) {
		msg := newMessage("a@x.com", "b@y.com", "Hi", "Hello", "<b>Hello</b>")
		var buf bytes.Buffer
		_, err := msg.toGomail().WriteTo(&buf)
		require.NoError(t, err)

		out := buf.String()
		assert.Contains(t, out, "multipart/alternative")
		assert.Contains(t, out, "text/plain")
		assert.Contains(t, out, "text/html")
	})
}

func TestMessageIDDomain(t *testing.T) {
	assert.Equal(t, "x.com", messageIDDomain("a@x.com"))
	assert.Equal(t, "acme.test", messageIDDomain("Acme <noreply@acme.test>"))
	assert.Equal(t, "localhost", messageIDDomain("not an address"))
}
