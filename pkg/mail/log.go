package mail

import (
	"fmt"
	"io"
	"sync"
)

// LogTransport writes messages to w instead of sending them. Used for dry runs.
type LogTransport struct {
	mu sync.Mutex
	w  io.Writer
}

func NewLogTransport(w io.Writer) *LogTransport {
	return &LogTransport{w: w}
}

func (t *LogTransport) Verify() error { return nil }

func (t *LogTransport) GetHost() string { return "log" }

func (t *LogTransport) GetPort() int { return 0 }

func (t *LogTransport) Send(msg *Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintf(t.w, `================================================================================
MAIL (dry run - not sent)
================================================================================
ID:      %s
From:    %s
To:      %s
Subject: %s
--------------------------------------------------------------------------------
%s
`, msg.ID, msg.From, msg.To, msg.Subject, msg.Text)
	if err != nil {
		return err
	}
	if msg.HTML != "" {
		_, err = fmt.Fprintf(t.w, "-------------------------------- text/html -------------------------------------\n%s\n", msg.HTML)
	}
	return err
}
