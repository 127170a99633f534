package capture

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tphakala/qrregister/internal/errors"
	"github.com/tphakala/qrregister/internal/logger"
	"github.com/tphakala/qrregister/internal/notice"
	"github.com/tphakala/qrregister/internal/observability/metrics"
)

// DefaultCooldown is how long camera decodes are ignored after an accepted scan.
const DefaultCooldown = 2 * time.Second

// cameraFallbackMessage is shown when the camera source cannot be used.
const cameraFallbackMessage = "Camera is not available. Enter the QR code value manually."

// State is the debounce state of a Surface.
type State int

const (
	// StateReady accepts the next code
	StateReady State = iota
	// StateCooling drops camera decodes until the cool-down elapses
	StateCooling
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateCooling:
		return "cooling"
	default:
		return "unknown"
	}
}

// Clock abstracts time for the cool-down.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Handler receives accepted codes, already trimmed. Calls are serialized.
type Handler func(ctx context.Context, code string, origin Origin)

// Config holds the dependencies of a Surface.
type Config struct {
	Handler  Handler
	Cooldown time.Duration
	// Clock defaults to the system clock
	Clock   Clock
	Notices *notice.Board
	Metrics *metrics.RegistrationMetrics
}

// Surface debounces codes from all sources and forwards accepted ones to a
// single handler: Ready → Cooling → Ready.
type Surface struct {
	handler  Handler
	cooldown time.Duration
	clock    Clock
	notices  *notice.Board
	metrics  *metrics.RegistrationMetrics

	mu           sync.Mutex
	coolingUntil time.Time

	// handlerMu serializes handler calls between Offer callers
	handlerMu sync.Mutex
}

// NewSurface creates a surface in the Ready state.
func NewSurface(cfg Config) *Surface {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	if cfg.Clock == nil {
		cfg.Clock = systemClock{}
	}
	return &Surface{
		handler:  cfg.Handler,
		cooldown: cfg.Cooldown,
		clock:    cfg.Clock,
		notices:  cfg.Notices,
		metrics:  cfg.Metrics,
	}
}

// State returns the current debounce state.
func (s *Surface) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Surface) stateLocked() State {
	if s.clock.Now().Before(s.coolingUntil) {
		return StateCooling
	}
	return StateReady
}

// Offer submits a raw payload. Blank payloads are ignored. Camera payloads
// arriving while cooling are dropped; manual entries are never debounced.
// It reports whether the code was forwarded to the handler.
func (s *Surface) Offer(ctx context.Context, raw string, origin Origin) bool {
	code := strings.TrimSpace(raw)
	if code == "" {
		s.metrics.RecordCaptureEvent(string(origin), metrics.CaptureIgnored)
		return false
	}

	if origin != OriginManual {
		s.mu.Lock()
		if s.stateLocked() == StateCooling {
			s.mu.Unlock()
			s.metrics.RecordCaptureEvent(string(origin), metrics.CaptureDebounced)
			GetLogger().Trace("scan dropped during cool-down",
				logger.String("origin", string(origin)))
			return false
		}
		s.coolingUntil = s.clock.Now().Add(s.cooldown)
		s.mu.Unlock()
	}

	s.metrics.RecordCaptureEvent(string(origin), metrics.CaptureAccepted)
	GetLogger().Debug("code accepted",
		logger.String("origin", string(origin)),
		logger.Int("length", len(code)))

	if s.handler != nil {
		s.handlerMu.Lock()
		defer s.handlerMu.Unlock()
		s.handler(ctx, code, origin)
	}
	return true
}

// Reset ends any cool-down so the next code is accepted immediately.
func (s *Surface) Reset() {
	s.mu.Lock()
	s.coolingUntil = time.Time{}
	s.mu.Unlock()
}

type event struct {
	code   string
	origin Origin
}

// Run reads all sources concurrently and feeds their codes through Offer
// from a single goroutine. A camera source that is unavailable is reported
// as a notice and skipped, leaving the remaining sources running. Run
// returns when every source has ended or ctx is cancelled.
func (s *Surface) Run(ctx context.Context, sources ...Source) error {
	g, gctx := errgroup.WithContext(ctx)
	events := make(chan event)

	var producers sync.WaitGroup
	for _, src := range sources {
		producers.Add(1)
		g.Go(func() error {
			defer producers.Done()
			return s.pump(gctx, src, events)
		})
	}

	g.Go(func() error {
		producers.Wait()
		close(events)
		return nil
	})

	g.Go(func() error {
		for ev := range events {
			s.Offer(gctx, ev.code, ev.origin)
		}
		return nil
	})

	return g.Wait()
}

// pump forwards codes from one source into events.
func (s *Surface) pump(ctx context.Context, src Source, events chan<- event) error {
	ch, err := src.Events(ctx)
	if err != nil {
		if errors.Is(err, ErrCameraUnavailable) {
			s.reportUnavailable(src, err)
			return nil
		}
		return err
	}

	for {
		select {
		case code, ok := <-ch:
			if !ok {
				return nil
			}
			select {
			case events <- event{code: code, origin: src.Origin()}:
			case <-ctx.Done():
				return nil
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// reportUnavailable logs a camera start failure and tells the user to
// type codes instead.
func (s *Surface) reportUnavailable(src Source, err error) {
	GetLogger().Warn("camera unavailable, falling back to manual entry",
		logger.String("source", src.Name()),
		logger.Error(err))
	if s.notices != nil {
		s.notices.Warning(cameraFallbackMessage, 0)
	}
}
