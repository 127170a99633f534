package notice

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tphakala/qrregister/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPublishAndActive(t *testing.T) {
	t.Parallel()

	board := NewBoard(time.Minute)
	t.Cleanup(board.Close)

	first := board.Warning("This QR code is already registered!", 0)
	second := board.Success("QR code registered", time.Minute)

	active := board.Active()
	require.Len(t, active, 2)
	assert.Equal(t, first.ID, active[0].ID)
	assert.Equal(t, KindWarning, active[0].Kind)
	assert.Equal(t, second.ID, active[1].ID)
	assert.Equal(t, KindSuccess, active[1].Kind)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestPublishUsesDefaultTTL(t *testing.T) {
	t.Parallel()

	board := NewBoard(3 * time.Second)
	t.Cleanup(board.Close)

	n := board.Info("hello", 0)
	assert.Equal(t, 3*time.Second, n.ExpiresAt.Sub(n.CreatedAt))

	n = board.Info("hello", 2*time.Second)
	assert.Equal(t, 2*time.Second, n.ExpiresAt.Sub(n.CreatedAt))
}

func TestNewBoardFallsBackToDefaultTTL(t *testing.T) {
	t.Parallel()

	board := NewBoard(0)
	t.Cleanup(board.Close)

	n := board.Info("hello", 0)
	assert.Equal(t, DefaultTTL, n.ExpiresAt.Sub(n.CreatedAt))
}

func TestNoticesExpire(t *testing.T) {
	t.Parallel()

	board := NewBoard(time.Minute)
	t.Cleanup(board.Close)

	board.Warning("short lived", 20*time.Millisecond)
	board.Info("long lived", time.Minute)

	require.Eventually(t, func() bool {
		return len(board.Active()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "long lived", board.Active()[0].Message)
}

func TestDismiss(t *testing.T) {
	t.Parallel()

	board := NewBoard(time.Minute)
	t.Cleanup(board.Close)

	n := board.Error("Failed to register QR code. Please try again.", 0)
	assert.True(t, board.Dismiss(n.ID))
	assert.False(t, board.Dismiss(n.ID))
	assert.Empty(t, board.Active())
}

func TestActiveReturnsCopies(t *testing.T) {
	t.Parallel()

	board := NewBoard(time.Minute)
	t.Cleanup(board.Close)

	board.Info("original", 0)
	board.Active()[0].Message = "mutated"
	assert.Equal(t, "original", board.Active()[0].Message)
}

func TestSubscribeReceivesNotices(t *testing.T) {
	t.Parallel()

	board := NewBoard(time.Minute)
	t.Cleanup(board.Close)

	ch, _ := board.Subscribe()
	published := board.Success("done", 0)

	select {
	case got := <-ch:
		assert.Equal(t, published.ID, got.ID)
		assert.Equal(t, "done", got.Message)
	case <-time.After(time.Second):
		t.Fatal("notice not delivered")
	}
}

func TestUnsubscribeCancelsContext(t *testing.T) {
	t.Parallel()

	board := NewBoard(time.Minute)
	t.Cleanup(board.Close)

	ch, ctx := board.Subscribe()
	board.Unsubscribe(ch)

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("subscription context not cancelled")
	}

	board.Info("after unsubscribe", 0)
	select {
	case n := <-ch:
		t.Fatalf("unexpected notice %v", n)
	default:
	}
}

func TestPublishDoesNotBlockOnFullSubscriber(t *testing.T) {
	t.Parallel()

	board := NewBoard(time.Minute)
	t.Cleanup(board.Close)

	ch, _ := board.Subscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range DefaultChannelBufferSize * 2 {
			board.Info("spam", 0)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	assert.Len(t, ch, DefaultChannelBufferSize)
}

func TestCloseCancelsSubscribers(t *testing.T) {
	t.Parallel()

	board := NewBoard(time.Minute)
	_, ctx := board.Subscribe()
	board.Info("pending", 0)

	board.Close()

	assert.Error(t, ctx.Err())
	assert.Empty(t, board.Active())
}

// syncBuffer guards a bytes.Buffer shared between Follow and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestFollowWritesNotices(t *testing.T) {
	t.Parallel()

	board := NewBoard(time.Minute)
	t.Cleanup(board.Close)

	var out syncBuffer
	ctx, cancel := context.WithCancel(t.Context())
	stopped := make(chan struct{})

	ch, _ := board.Subscribe()
	go func() {
		defer close(stopped)
		board.Follow(ctx, &out)
	}()

	// wait until Follow has subscribed
	require.Eventually(t, func() bool {
		board.subscribersMu.Lock()
		defer board.subscribersMu.Unlock()
		return len(board.subscribers) == 2
	}, time.Second, 5*time.Millisecond)
	board.Unsubscribe(ch)

	board.Warning("This QR code is already registered!", 0)
	board.Publish(KindSuccess, "Export", "file written", 0)
	cancel()
	<-stopped

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		"[warning] This QR code is already registered!",
		"[success] Export: file written",
	}, lines)
}

func TestStartFollowSubscribesBeforeReturning(t *testing.T) {
	t.Parallel()

	board := NewBoard(time.Minute)
	t.Cleanup(board.Close)

	var out syncBuffer
	ctx, cancel := context.WithCancel(t.Context())
	done := board.StartFollow(ctx, &out)

	board.Success("Registered Successfully!", 0)
	cancel()
	testutil.WaitForChannel(t, done, testutil.ShortTestTimeout, "follower did not stop")

	assert.Equal(t, "[success] Registered Successfully!\n", out.String())
}

func TestNoticeIsExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	n := newNotice(KindInfo, "", "x", now, 2*time.Second)

	assert.False(t, n.IsExpired(now))
	assert.False(t, n.IsExpired(now.Add(time.Second)))
	assert.True(t, n.IsExpired(now.Add(2*time.Second)))
	assert.Nil(t, (*Notice)(nil).Clone())
}
