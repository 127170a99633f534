package capture

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/qrregister/internal/errors"
	"github.com/tphakala/qrregister/internal/notice"
	"github.com/tphakala/qrregister/internal/testutil"
)

// scriptedSource fails its first start and then serves one batch of codes
// per start. Each batch channel stays open until release is closed.
type scriptedSource struct {
	mu      sync.Mutex
	starts  int
	codes   []string
	release chan struct{}
}

func (s *scriptedSource) Name() string   { return "scripted-camera" }
func (s *scriptedSource) Origin() Origin { return OriginCamera }

func (s *scriptedSource) Events(ctx context.Context) (<-chan string, error) {
	s.mu.Lock()
	s.starts++
	first := s.starts == 1
	s.mu.Unlock()

	if first {
		return nil, cameraUnavailable(errors.NewStd("no device"), "scripted-camera", "start_decoder")
	}

	out := make(chan string)
	go func() {
		defer close(out)
		for _, code := range s.codes {
			select {
			case out <- code:
			case <-ctx.Done():
				return
			}
		}
		select {
		case <-s.release:
		case <-ctx.Done():
		}
	}()
	return out, nil
}

func (s *scriptedSource) startCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts
}

func TestRetrySourceRestartsAfterFailure(t *testing.T) {
	t.Parallel()

	board := notice.NewBoard(time.Minute)
	t.Cleanup(board.Close)
	surface := NewSurface(Config{Clock: newFakeClock(), Notices: board})

	inner := &scriptedSource{codes: []string{"C3"}, release: make(chan struct{})}
	retry := surface.Retryable(inner)
	assert.Equal(t, "scripted-camera", retry.Name())
	assert.Equal(t, OriginCamera, retry.Origin())

	ch, err := retry.Events(t.Context())
	require.NoError(t, err)

	require.Eventually(t, retry.Retry, time.Second, 5*time.Millisecond, "failed source must become idle")
	assert.Equal(t, "C3", testutil.WaitForChannel(t, ch, testutil.DefaultTestTimeout, "no code after retry"))
	assert.Equal(t, 2, inner.startCount())
	assert.False(t, retry.Retry(), "a running source is not restarted")

	active := board.Active()
	require.Len(t, active, 1)
	assert.Equal(t, notice.KindWarning, active[0].Kind)

	retry.Stop()
	close(inner.release)
	for range ch {
	}
	assert.Equal(t, 2, inner.startCount())
}

func TestRetrySourceStopsOnCancel(t *testing.T) {
	t.Parallel()

	surface := NewSurface(Config{Clock: newFakeClock()})
	retry := surface.Retryable(unavailableSource{})

	ctx, cancel := context.WithCancel(t.Context())
	ch, err := retry.Events(ctx)
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(testutil.DefaultTestTimeout):
		t.Fatal("channel not closed after cancel")
	}
}

func TestOnEndRunsAfterLastCode(t *testing.T) {
	t.Parallel()

	var ended atomic.Bool
	surface, got := newTestSurface(newFakeClock())
	src := OnEnd(NewReaderSource(strings.NewReader("A1\nB2\n")), func() { ended.Store(true) })

	require.NoError(t, surface.Run(t.Context(), src))
	assert.Equal(t, []string{"A1", "B2"}, got.got())
	assert.True(t, ended.Load())
}

func TestRunEndsWhenStdinStopsRetrySource(t *testing.T) {
	t.Parallel()

	surface, got := newTestSurface(newFakeClock())
	camera := surface.Retryable(unavailableSource{})
	stdin := OnEnd(NewReaderSource(strings.NewReader("M1\n")), camera.Stop)

	done := make(chan error, 1)
	go func() { done <- surface.Run(t.Context(), camera, stdin) }()

	require.NoError(t, testutil.WaitForChannel(t, done, testutil.DefaultTestTimeout, "Run did not end with stdin"))
	assert.Equal(t, []string{"M1"}, got.got())
}
