package delivery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tpsbot/reporter/internal/spool"
)

// fakeChannel is a scriptable Delivery for registry tests.
type fakeChannel struct {
	name       string
	configured bool
	err        error
	sent       []Report
}

func (f *fakeChannel) Name() string     { return f.name }
func (f *fakeChannel) Configured() bool { return f.configured }
func (f *fakeChannel) Send(_ context.Context, rep Report) error {
	f.sent = append(f.sent, rep)
	return f.err
}

func newTestRegistry(t *testing.T) (*Registry, *spool.Spool) {
	t.Helper()
	sp, err := spool.New(t.TempDir(), 10, zaptest.NewLogger(t))
	require.NoError(t, err)
	return NewRegistry(sp, zaptest.NewLogger(t)), sp
}

func TestRegister_SkipsUnconfigured(t *testing.T) {
	r, _ := newTestRegistry(t)

	r.Register(&fakeChannel{name: "slack", configured: true})
	r.Register(&fakeChannel{name: "email", configured: false})

	require.Equal(t, []string{"slack"}, r.Channels())
}

func TestSendAll_NoChannels(t *testing.T) {
	r, _ := newTestRegistry(t)

	err := r.SendAll(context.Background(), Report{Body: "x"})
	require.Error(t, err)
}

func TestSendAll_AllChannelsAttempted(t *testing.T) {
	r, _ := newTestRegistry(t)
	a := &fakeChannel{name: "slack", configured: true, err: errors.New("webhook down")}
	b := &fakeChannel{name: "console", configured: true}
	r.Register(a)
	r.Register(b)

	rep := Report{Subject: "TPS Report: Weekend", Body: "body"}
	err := r.SendAll(context.Background(), rep)

	// The slack failure surfaces but console still got its attempt.
	require.Error(t, err)
	require.Contains(t, err.Error(), "slack")
	require.Len(t, b.sent, 1)
	require.Equal(t, rep, b.sent[0])
}

func TestSendAll_SpoolsFailedChannel(t *testing.T) {
	r, sp := newTestRegistry(t)
	r.Register(&fakeChannel{name: "slack", configured: true, err: errors.New("webhook down")})

	rep := Report{Subject: "TPS Report: Weekend", Body: "body"}
	require.Error(t, r.SendAll(context.Background(), rep))

	entries, err := sp.Drain()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "slack", entries[0].Channel)
	require.Equal(t, rep.Subject, entries[0].Subject)
	require.Equal(t, rep.Body, entries[0].Body)
}

func TestFlushSpool_RetriesOnOriginalChannel(t *testing.T) {
	r, sp := newTestRegistry(t)
	slack := &fakeChannel{name: "slack", configured: true}
	r.Register(slack)

	require.NoError(t, sp.Store(spool.Entry{Channel: "slack", Subject: "s", Body: "spooled"}))

	r.FlushSpool(context.Background())

	require.Len(t, slack.sent, 1)
	require.Equal(t, "spooled", slack.sent[0].Body)

	entries, err := sp.Drain()
	require.NoError(t, err)
	require.Empty(t, entries, "successful flush leaves nothing spooled")
}

func TestFlushSpool_ReSpoolsOnFailure(t *testing.T) {
	r, sp := newTestRegistry(t)
	r.Register(&fakeChannel{name: "slack", configured: true, err: errors.New("still down")})

	require.NoError(t, sp.Store(spool.Entry{Channel: "slack", Body: "spooled"}))

	r.FlushSpool(context.Background())

	entries, err := sp.Drain()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "spooled", entries[0].Body)
}

func TestFlushSpool_DropsUnregisteredChannel(t *testing.T) {
	r, sp := newTestRegistry(t)
	r.Register(&fakeChannel{name: "console", configured: true})

	require.NoError(t, sp.Store(spool.Entry{Channel: "email", Body: "orphan"}))

	r.FlushSpool(context.Background())

	entries, err := sp.Drain()
	require.NoError(t, err)
	require.Empty(t, entries, "entries for unknown channels are dropped, not re-spooled")
}
