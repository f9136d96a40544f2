package mail

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogTransport_Send(t *testing.T) {
	var buf bytes.Buffer
	tr := NewLogTransport(&buf)

	require.NoError(t, tr.Verify())
	assert.Equal(t, "log", tr.GetHost())

	msg := newMessage("a@x.com", "b@y.com", "Hi", "Hello", "<p>Hello</p>")
	require.NoError(t, tr.Send(msg))

	out := buf.String()
	assert.Contains(t, out, "To:      b@y.com")
	assert.Contains(t, out, "Subject: Hi")
	assert.Contains(t, out, "Hello")
	assert.Contains(t, out, "<p>Hello</p>")
	assert.Contains(t, out, msg.ID)
}

func TestLogTransport_TextOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewLogTransport(&buf).Send(newMessage("a@x.com", "b@y.com", "Hi", "Hello", "")))
	assert.NotContains(t, buf.String(), "text/html")
}
