package capture

import (
	"context"
	"io"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tphakala/qrregister/internal/conf"
	"github.com/tphakala/qrregister/internal/errors"
	"github.com/tphakala/qrregister/internal/notice"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// collector records handler calls.
type collector struct {
	mu    sync.Mutex
	codes []string
}

func (c *collector) handle(_ context.Context, code string, _ Origin) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.codes = append(c.codes, code)
}

func (c *collector) got() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.codes...)
}

func newTestSurface(clock Clock) (*Surface, *collector) {
	c := &collector{}
	return NewSurface(Config{Handler: c.handle, Cooldown: 2 * time.Second, Clock: clock}), c
}

func TestOfferDebouncesCameraCodes(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	surface, got := newTestSurface(clock)
	ctx := t.Context()

	assert.Equal(t, StateReady, surface.State())
	assert.True(t, surface.Offer(ctx, "  A1 ", OriginCamera))
	assert.Equal(t, StateCooling, surface.State())

	assert.False(t, surface.Offer(ctx, "B2", OriginCamera), "decode during cool-down must be dropped")

	clock.Advance(1999 * time.Millisecond)
	assert.False(t, surface.Offer(ctx, "B2", OriginCamera))

	clock.Advance(time.Millisecond)
	assert.Equal(t, StateReady, surface.State())
	assert.True(t, surface.Offer(ctx, "B2", OriginCamera))

	assert.Equal(t, []string{"A1", "B2"}, got.got())
}

func TestOfferIgnoresBlankCodes(t *testing.T) {
	t.Parallel()

	surface, got := newTestSurface(newFakeClock())

	for _, origin := range []Origin{OriginCamera, OriginManual} {
		assert.False(t, surface.Offer(t.Context(), "", origin))
		assert.False(t, surface.Offer(t.Context(), " \t ", origin))
	}
	assert.Equal(t, StateReady, surface.State(), "ignored codes must not start a cool-down")
	assert.Empty(t, got.got())
}

func TestManualEntriesAreNotDebounced(t *testing.T) {
	t.Parallel()

	surface, got := newTestSurface(newFakeClock())
	ctx := t.Context()

	require.True(t, surface.Offer(ctx, "A1", OriginCamera))
	assert.True(t, surface.Offer(ctx, "M1", OriginManual))
	assert.True(t, surface.Offer(ctx, "M1", OriginManual))

	assert.Equal(t, []string{"A1", "M1", "M1"}, got.got())
}

func TestResetEndsCooldown(t *testing.T) {
	t.Parallel()

	surface, got := newTestSurface(newFakeClock())
	ctx := t.Context()

	require.True(t, surface.Offer(ctx, "A1", OriginCamera))
	surface.Reset()
	assert.Equal(t, StateReady, surface.State())
	assert.True(t, surface.Offer(ctx, "A2", OriginCamera))
	assert.Equal(t, []string{"A1", "A2"}, got.got())
}

func TestStateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "cooling", StateCooling.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestRunForwardsReaderLines(t *testing.T) {
	t.Parallel()

	surface, got := newTestSurface(newFakeClock())
	src := NewReaderSource(strings.NewReader("A1\r\n\nB2\n  \nA1\n"))

	require.NoError(t, surface.Run(t.Context(), src))
	assert.Equal(t, []string{"A1", "B2", "A1"}, got.got())
}

// unavailableSource always fails like a missing camera.
type unavailableSource struct{}

func (unavailableSource) Name() string   { return "broken-camera" }
func (unavailableSource) Origin() Origin { return OriginCamera }
func (unavailableSource) Events(context.Context) (<-chan string, error) {
	return nil, cameraUnavailable(errors.NewStd("no device"), "broken-camera", "start_decoder")
}

func TestRunFallsBackWhenCameraUnavailable(t *testing.T) {
	t.Parallel()

	board := notice.NewBoard(time.Minute)
	t.Cleanup(board.Close)

	c := &collector{}
	surface := NewSurface(Config{Handler: c.handle, Clock: newFakeClock(), Notices: board})

	err := surface.Run(t.Context(), unavailableSource{}, NewReaderSource(strings.NewReader("M1\n")))
	require.NoError(t, err)
	assert.Equal(t, []string{"M1"}, c.got())

	active := board.Active()
	require.Len(t, active, 1)
	assert.Equal(t, notice.KindWarning, active[0].Kind)
}

// failingSource returns an unexpected error.
type failingSource struct{}

func (failingSource) Name() string   { return "failing" }
func (failingSource) Origin() Origin { return OriginManual }
func (failingSource) Events(context.Context) (<-chan string, error) {
	return nil, errors.NewStd("boom")
}

func TestRunReturnsUnexpectedSourceErrors(t *testing.T) {
	t.Parallel()

	surface, _ := newTestSurface(newFakeClock())
	err := surface.Run(t.Context(), failingSource{})
	require.Error(t, err)
	assert.Equal(t, "boom", err.Error())
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	pr, pw := io.Pipe()
	surface, got := newTestSurface(newFakeClock())

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- surface.Run(ctx, NewReaderSource(pr)) }()

	_, err := io.WriteString(pw, "A1\n")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(got.got()) == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	// unblock the reader goroutine
	require.NoError(t, pw.Close())
}

func TestReaderSourceWithoutReader(t *testing.T) {
	t.Parallel()

	_, err := (&ReaderSource{}).Events(t.Context())
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestCommandSourceMissingBinary(t *testing.T) {
	t.Parallel()

	src := &CommandSource{Command: "qrregister-no-such-decoder"}
	_, err := src.Events(t.Context())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCameraUnavailable)
	assert.True(t, errors.IsCategory(err, errors.CategoryPermission))
}

func TestCommandSourceReadsDecoderOutput(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	src := &CommandSource{Command: "sh", Args: []string{"-c", "printf 'A1\\nB2\\n'"}}
	ch, err := src.Events(t.Context())
	require.NoError(t, err)

	var codes []string
	for code := range ch {
		codes = append(codes, code)
	}
	assert.Equal(t, []string{"A1", "B2"}, codes)
}

func TestNewCommandSourceDefaults(t *testing.T) {
	t.Parallel()

	src := NewCommandSource(&conf.CaptureSettings{})
	assert.Equal(t, conf.DefaultDecoderCommand, src.Command)
	assert.Equal(t, OriginCamera, src.Origin())

	src = NewCommandSource(&conf.CaptureSettings{Command: "zbarcam", Args: []string{"--raw"}})
	assert.Equal(t, []string{"--raw"}, src.Args)
}
