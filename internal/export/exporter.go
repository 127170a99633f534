package export

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/tphakala/qrregister/internal/conf"
	"github.com/tphakala/qrregister/internal/datastore"
	"github.com/tphakala/qrregister/internal/errors"
	"github.com/tphakala/qrregister/internal/logger"
	"github.com/tphakala/qrregister/internal/observability/metrics"
)

// ErrShareUnavailable is returned when a share target is configured but cannot be used.
var ErrShareUnavailable = errors.NewStd("sharing is not available")

// Config holds the dependencies of an Exporter.
type Config struct {
	// Fs is the filesystem export files are written to. Defaults to the OS filesystem.
	Fs afero.Fs
	// Dir is the directory export files are written to.
	Dir string
	// Sharer receives the written file. When nil the CSV is streamed to Download instead.
	Sharer Sharer
	// Download receives the CSV text when no Sharer is configured. May be nil.
	Download io.Writer
	// Now is the clock used for file names. Defaults to time.Now.
	Now     func() time.Time
	Metrics *metrics.RegistrationMetrics
}

// Result describes a completed export.
type Result struct {
	Path       string
	Rows       int
	Shared     bool
	Downloaded bool
}

// Exporter writes records to a dated CSV file and delivers it.
type Exporter struct {
	fs       afero.Fs
	dir      string
	sharer   Sharer
	download io.Writer
	now      func() time.Time
	metrics  *metrics.RegistrationMetrics
	log      logger.Logger
}

// NewExporter creates an exporter from cfg.
func NewExporter(cfg Config) *Exporter {
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Exporter{
		fs:       cfg.Fs,
		dir:      cfg.Dir,
		sharer:   cfg.Sharer,
		download: cfg.Download,
		now:      cfg.Now,
		metrics:  cfg.Metrics,
		log:      GetLogger(),
	}
}

// NewFromSettings creates an exporter on the OS filesystem configured from
// the export section of settings. download is used only when no share
// directory is configured and export.stdout is set.
func NewFromSettings(settings *conf.Settings, m *metrics.RegistrationMetrics, download io.Writer) *Exporter {
	fs := afero.NewOsFs()
	cfg := Config{
		Fs:      fs,
		Dir:     settings.ExportDir(),
		Metrics: m,
	}
	if settings.Export.ShareDir != "" {
		cfg.Sharer = NewDirectorySharer(fs, conf.GetBasePath(settings.Export.ShareDir))
	} else if settings.Export.Stdout {
		cfg.Download = download
	}
	return NewExporter(cfg)
}

// Export writes and delivers records, reporting success. Failures are
// logged and counted, never returned.
func (e *Exporter) Export(ctx context.Context, records []datastore.Record) bool {
	_, err := e.ExportFile(ctx, records)
	return err == nil
}

// ExportSorted exports records ordered newest first.
func (e *Exporter) ExportSorted(ctx context.Context, records []datastore.Record) bool {
	return e.Export(ctx, datastore.SortNewestFirst(records))
}

// ExportFile writes records to the export directory and hands the file to
// the sharer, or streams it to the download writer when there is none.
func (e *Exporter) ExportFile(ctx context.Context, records []datastore.Record) (result Result, err error) {
	start := time.Now()
	result.Rows = len(records)

	content := BuildCSV(records)
	path := filepath.Join(e.dir, FileName(e.now()))

	if err = atomicWriteFile(e.fs, path, func(w io.Writer) error {
		_, werr := io.WriteString(w, content)
		return werr
	}); err != nil {
		return result, e.fail(errors.ExportError(err, path), path, metrics.StatusError)
	}
	result.Path = path

	switch {
	case e.sharer != nil:
		if !e.sharer.Available() {
			e.log.Warn("sharing is not available",
				logger.String("sharer", e.sharer.Name()),
				logger.String("path", path))
			return result, e.fail(errors.ExportError(ErrShareUnavailable, path), path, metrics.StatusUnavailable)
		}
		if err = e.sharer.Share(ctx, e.fs, path); err != nil {
			return result, e.fail(errors.ExportError(err, path), path, metrics.StatusError)
		}
		result.Shared = true
	case e.download != nil:
		if _, err = io.WriteString(e.download, content+"\n"); err != nil {
			return result, e.fail(errors.ExportError(err, path), path, metrics.StatusError)
		}
		result.Downloaded = true
	}

	e.metrics.RecordExport(metrics.StatusSuccess, result.Rows)
	e.log.Info("records exported",
		logger.String("path", path),
		logger.Int("rows", result.Rows),
		logger.Bool("shared", result.Shared),
		logger.Bool("downloaded", result.Downloaded),
		logger.Duration("elapsed", time.Since(start)))
	return result, nil
}

func (e *Exporter) fail(err error, path, status string) error {
	e.metrics.RecordExport(status, 0)
	e.log.Error("CSV export failed",
		logger.String("path", path),
		logger.String("status", status),
		logger.Error(err))
	return err
}
