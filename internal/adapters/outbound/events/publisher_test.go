package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/silenceobjects/sentinel/internal/adapters/outbound/events"
	"github.com/silenceobjects/sentinel/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type message struct {
	subject string
	data    []byte
}

type fakeConn struct {
	published  []message
	publishErr error
	flushErr   error
	closed     bool
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	c.published = append(c.published, message{subject, data})
	return nil
}

func (c *fakeConn) FlushTimeout(time.Duration) error { return c.flushErr }
func (c *fakeConn) Close()                           { c.closed = true }

func TestNATSPublisher_Publish(t *testing.T) {
	conn := &fakeConn{}
	p := events.NewNATSPublisher(conn, "", nil)
	passed := false

	err := p.Publish(context.Background(), domain.Event{
		Type:    domain.EventGuardCompleted,
		AgentID: domain.AgentID,
		RunID:   "run-1",
		Guard:   domain.GuardSecurity,
		Passed:  &passed,
	})
	require.NoError(t, err)
	require.Len(t, conn.published, 1)
	assert.Equal(t, "sentinel.agent.guard.completed", conn.published[0].subject)

	var got map[string]any
	require.NoError(t, json.Unmarshal(conn.published[0].data, &got))
	assert.Equal(t, "security", got["guard"])
	assert.Equal(t, false, got["passed"])
	assert.Equal(t, "run-1", got["run_id"])
	assert.NotContains(t, got, "score")
}

func TestNATSPublisher_CustomPrefix(t *testing.T) {
	p := events.NewNATSPublisher(&fakeConn{}, "ci.silence", nil)
	assert.Equal(t, "ci.silence.agent.started", p.Subject(domain.EventStarted))
}

func TestNATSPublisher_PublishError(t *testing.T) {
	p := events.NewNATSPublisher(&fakeConn{publishErr: errors.New("boom")}, "", nil)

	err := p.Publish(context.Background(), domain.Event{Type: domain.EventStopped})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sentinel.agent.stopped")
}

func TestNATSPublisher_CancelledContext(t *testing.T) {
	conn := &fakeConn{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := events.NewNATSPublisher(conn, "", nil).Publish(ctx, domain.Event{Type: domain.EventStarted})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, conn.published)
}

func TestNATSPublisher_Close(t *testing.T) {
	conn := &fakeConn{flushErr: errors.New("slow consumer")}
	err := events.NewNATSPublisher(conn, "", nil).Close()

	assert.Error(t, err)
	assert.True(t, conn.closed)
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := events.Connect("nats://127.0.0.1:1", "", nil)
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	var p domain.EventPublisher = events.Noop{}
	assert.NoError(t, p.Publish(context.Background(), domain.Event{}))
	assert.NoError(t, p.Close())
}
