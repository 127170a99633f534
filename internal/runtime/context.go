// Package runtime assembles the long-lived services of one qrregister
// invocation from the loaded settings.
package runtime

import (
	"context"
	"io"
	"os"

	"github.com/tphakala/qrregister/internal/buildinfo"
	"github.com/tphakala/qrregister/internal/capture"
	"github.com/tphakala/qrregister/internal/conf"
	"github.com/tphakala/qrregister/internal/datastore"
	"github.com/tphakala/qrregister/internal/errors"
	"github.com/tphakala/qrregister/internal/export"
	"github.com/tphakala/qrregister/internal/logger"
	"github.com/tphakala/qrregister/internal/notice"
	"github.com/tphakala/qrregister/internal/observability"
	"github.com/tphakala/qrregister/internal/observability/metrics"
	"github.com/tphakala/qrregister/internal/recordlist"
	"github.com/tphakala/qrregister/internal/registration"
)

// Context contains everything a command needs. Settings is filled in by
// the root command before Setup runs.
type Context struct {
	Build    *buildinfo.Context
	Settings *conf.Settings

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Logger  *logger.CentralLogger
	Metrics *observability.Metrics
	Store   datastore.Interface
	Notices *notice.Board

	stopNotices context.CancelFunc
	noticesDone <-chan struct{}
}

// New creates an empty context bound to the process standard streams.
func New(build *buildinfo.Context) *Context {
	return &Context{
		Build:    build,
		Settings: &conf.Settings{},
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
}

// Setup initializes logging, metrics, the notice board and the record
// store. Notices are printed to Stderr until Close.
func (c *Context) Setup(ctx context.Context) error {
	if err := c.setupLogger(); err != nil {
		return err
	}

	if c.Settings.Metrics.Enabled {
		m, err := observability.NewMetrics()
		if err != nil {
			return errors.New(err).
				Component("runtime").
				Category(errors.CategorySystem).
				Context("operation", "init_metrics").
				Build()
		}
		c.Metrics = m
	}

	c.Notices = notice.NewBoard(c.Settings.Registration.WarningDuration)
	followCtx, cancel := context.WithCancel(context.Background())
	c.stopNotices = cancel
	c.noticesDone = c.Notices.StartFollow(followCtx, c.Stderr)

	c.Store = datastore.New(c.Settings, c.storeRecorder())
	if err := c.Store.Initialize(ctx); err != nil {
		return err
	}

	GetLogger().Debug("runtime ready",
		logger.String("version", c.Build.GetVersion()),
		logger.Bool("memory_store", c.Settings.Store.Memory))
	return nil
}

func (c *Context) setupLogger() error {
	cfg := c.Settings.Logging
	if c.Settings.Debug {
		cfg.DefaultLevel = "debug"
		if cfg.Console != nil {
			console := *cfg.Console
			console.Level = "debug"
			cfg.Console = &console
		}
	}

	cl, err := logger.NewCentralLogger(&cfg)
	if err != nil {
		return errors.New(err).
			Component("runtime").
			Category(errors.CategoryConfiguration).
			Context("operation", "init_logger").
			Build()
	}
	c.Logger = cl
	logger.SetGlobal(cl)
	return nil
}

func (c *Context) storeRecorder() metrics.Recorder {
	if c.Metrics == nil {
		return metrics.NoopRecorder{}
	}
	return c.Metrics.Datastore
}

func (c *Context) registrationMetrics() *metrics.RegistrationMetrics {
	if c.Metrics == nil {
		return nil
	}
	return c.Metrics.Registration
}

// Exporter creates a CSV exporter from the export settings. The download
// fallback writes to Stdout.
func (c *Context) Exporter() *export.Exporter {
	return export.NewFromSettings(c.Settings, c.registrationMetrics(), c.Stdout)
}

// RegistrationFlow creates a flow writing to the store. onComplete may be nil.
func (c *Context) RegistrationFlow(onComplete func(context.Context, datastore.Record)) *registration.Flow {
	cfg := registration.ConfigFromSettings(c.Settings)
	cfg.Store = c.Store
	cfg.Notices = c.Notices
	cfg.Metrics = c.registrationMetrics()
	cfg.OnComplete = onComplete
	return registration.NewFlow(cfg)
}

// CaptureSurface creates a debouncing surface that passes accepted codes
// to handler.
func (c *Context) CaptureSurface(handler capture.Handler) *capture.Surface {
	return capture.NewSurface(capture.Config{
		Handler:  handler,
		Cooldown: c.Settings.Capture.Cooldown,
		Notices:  c.Notices,
		Metrics:  c.registrationMetrics(),
	})
}

// RecordList creates a list view over the store.
func (c *Context) RecordList() *recordlist.View {
	return recordlist.NewView(c.Store, c.Exporter(), c.Notices)
}

// Close releases the store, prints pending notices, writes the metrics
// text file and closes the log file. It is safe to call after a failed Setup.
func (c *Context) Close() error {
	var errs []error

	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if c.stopNotices != nil {
		c.stopNotices()
		<-c.noticesDone
		c.stopNotices = nil
	}
	if c.Notices != nil {
		c.Notices.Close()
	}

	if err := c.Metrics.WriteTextfile(c.Settings.Metrics.TextFile); err != nil {
		errs = append(errs, err)
	}

	if c.Logger != nil {
		if err := c.Logger.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
