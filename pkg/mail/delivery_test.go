package mail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestInflight_IdleTracksPendingWork(t *testing.T) {
	f := newInflight()
	assert.True(t, isClosed(f.idle()), "nothing in flight yet")

	f.add()
	idle := f.idle()
	assert.False(t, isClosed(idle))

	// work added while someone waits extends the same wait
	f.add()
	f.done()
	assert.False(t, isClosed(idle))

	f.done()
	assert.True(t, isClosed(idle))
	assert.True(t, isClosed(f.idle()))

	f.add()
	assert.False(t, isClosed(f.idle()), "a new cycle starts from zero")
	f.done()
}

func TestDelivery_WaitAndErr(t *testing.T) {
	d := newDelivery("id-1")
	assert.NoError(t, d.Err())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Wait(ctx), context.DeadlineExceeded)

	sendErr := errors.New("550 mailbox unavailable")
	d.finish(sendErr)
	d.finish(nil)
	require.ErrorIs(t, d.Wait(context.Background()), sendErr)
	assert.ErrorIs(t, d.Err(), sendErr)
}
