// Package registration turns a captured code and an optional name into a
// stored record, warning about codes that are already registered.
package registration

import (
	"context"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/tphakala/qrregister/internal/conf"
	"github.com/tphakala/qrregister/internal/datastore"
	"github.com/tphakala/qrregister/internal/errors"
	"github.com/tphakala/qrregister/internal/logger"
	"github.com/tphakala/qrregister/internal/notice"
	"github.com/tphakala/qrregister/internal/observability/metrics"
	"github.com/tphakala/qrregister/internal/timeformat"
)

// User-facing messages.
const (
	MsgDuplicate  = "This QR code is already registered!"
	MsgRegistered = "Registered Successfully!"
	MsgFailed     = "Failed to register QR code. Please try again."
)

// Default notice durations.
const (
	DefaultWarningDuration = 3 * time.Second
	DefaultSuccessDuration = 2 * time.Second
	DefaultErrorDuration   = 5 * time.Second
)

// ErrBusy is returned when Submit is called while another submission is in flight.
var ErrBusy = errors.NewStd("a registration is already in progress")

// Config holds the dependencies of a Flow.
type Config struct {
	Store   datastore.Interface
	Notices *notice.Board
	Metrics *metrics.RegistrationMetrics
	// Now is the clock used for capture timestamps. Defaults to time.Now.
	Now func() time.Time

	WarningDuration time.Duration
	SuccessDuration time.Duration
	ErrorDuration   time.Duration

	// OnComplete runs after a record has been stored, e.g. to refresh a list.
	OnComplete func(ctx context.Context, rec datastore.Record)
}

// ConfigFromSettings fills the notice durations from the registration settings.
func ConfigFromSettings(settings *conf.Settings) Config {
	return Config{
		WarningDuration: settings.Registration.WarningDuration,
		SuccessDuration: settings.Registration.SuccessDuration,
		ErrorDuration:   settings.Registration.ErrorDuration,
	}
}

// Flow runs submissions one at a time through
// Idle → CheckingDuplicate → {DuplicateWarning | Writing} → {Success | Failed} → Idle.
type Flow struct {
	cfg Config

	inFlight atomic.Bool

	mu        sync.RWMutex
	state     State
	observers []func(from, to State)
}

// NewFlow creates an idle flow.
func NewFlow(cfg Config) *Flow {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.WarningDuration <= 0 {
		cfg.WarningDuration = DefaultWarningDuration
	}
	if cfg.SuccessDuration <= 0 {
		cfg.SuccessDuration = DefaultSuccessDuration
	}
	if cfg.ErrorDuration <= 0 {
		cfg.ErrorDuration = DefaultErrorDuration
	}
	return &Flow{cfg: cfg, state: StateIdle}
}

// OnTransition registers fn to be called on every state change.
func (f *Flow) OnTransition(fn func(from, to State)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observers = append(f.observers, fn)
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

func (f *Flow) transition(to State) {
	f.mu.Lock()
	from := f.state
	f.state = to
	observers := slices.Clone(f.observers)
	f.mu.Unlock()

	for _, fn := range observers {
		fn(from, to)
	}
}

// Submit registers code under name. A blank code is ignored without
// touching the store. A code that already exists is not written. Store
// failures are reported through a notice and returned.
func (f *Flow) Submit(ctx context.Context, code, name string) (Outcome, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return OutcomeIgnored, nil
	}

	if !f.inFlight.CompareAndSwap(false, true) {
		return OutcomeIgnored, errors.New(ErrBusy).
			Component("registration").
			Category(errors.CategoryState).
			Build()
	}
	defer f.inFlight.Store(false)

	start := time.Now()
	ctx = logger.WithTraceID(ctx, uuid.New().String())
	log := GetLogger().WithContext(ctx)

	outcome, err := f.submit(ctx, log, code, name)

	f.cfg.Metrics.RecordRegistration(outcome.String(), time.Since(start).Seconds())
	f.transition(StateIdle)
	return outcome, err
}

func (f *Flow) submit(ctx context.Context, log logger.Logger, code, name string) (Outcome, error) {
	f.transition(StateCheckingDuplicate)

	exists, err := f.cfg.Store.Exists(ctx, code)
	if err != nil {
		return f.fail(log, code, err)
	}
	if exists {
		f.transition(StateDuplicateWarning)
		f.publish(notice.KindWarning, MsgDuplicate, f.cfg.WarningDuration)
		log.Info("duplicate code ignored", logger.String("code", code))
		return OutcomeDuplicate, nil
	}

	f.transition(StateWriting)
	rec := datastore.Record{
		Code:             code,
		Label:            LabelOrDefault(name),
		CapturedAt:       timeformat.FormatISO(f.cfg.Now()),
		UTCOffsetMinutes: conf.UTCOffsetMinutes,
	}
	if err := f.cfg.Store.Upsert(ctx, rec); err != nil {
		return f.fail(log, code, err)
	}

	f.transition(StateSuccess)
	f.publish(notice.KindSuccess, MsgRegistered, f.cfg.SuccessDuration)
	log.Info("code registered",
		logger.String("code", rec.Code),
		logger.String("label", rec.Label),
		logger.String("captured_at", rec.CapturedAt))

	if f.cfg.OnComplete != nil {
		f.cfg.OnComplete(ctx, rec)
	}
	return OutcomeRegistered, nil
}

func (f *Flow) fail(log logger.Logger, code string, err error) (Outcome, error) {
	f.transition(StateFailed)
	f.publish(notice.KindError, MsgFailed, f.cfg.ErrorDuration)
	log.Error("registration failed",
		logger.String("code", code),
		logger.Error(err))
	return OutcomeFailed, err
}

func (f *Flow) publish(kind notice.Kind, message string, ttl time.Duration) {
	if f.cfg.Notices != nil {
		f.cfg.Notices.Publish(kind, "", message, ttl)
	}
}

// LabelOrDefault trims name and falls back to "Unnamed" when it is blank.
func LabelOrDefault(name string) string {
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		return trimmed
	}
	return conf.DefaultLabel
}
