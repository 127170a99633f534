// Package capture obtains QR code payloads from a camera decoder or from
// manual text entry and debounces them before they reach registration.
package capture

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"strings"

	"github.com/tphakala/qrregister/internal/conf"
	"github.com/tphakala/qrregister/internal/errors"
	"github.com/tphakala/qrregister/internal/logger"
)

// Origin tells where a code came from.
type Origin string

const (
	// OriginCamera marks codes decoded from the camera
	OriginCamera Origin = "camera"
	// OriginManual marks typed or pasted codes, including keyboard-wedge scanners
	OriginManual Origin = "manual"
)

// ErrCameraUnavailable is returned when the camera decoder cannot be started.
var ErrCameraUnavailable = errors.NewStd("camera is not available")

// Source produces raw code payloads, one per event. The channel is closed
// when the source ends or ctx is cancelled.
type Source interface {
	Name() string
	Origin() Origin
	Events(ctx context.Context) (<-chan string, error)
}

// CommandSource runs an external decoder program that prints one payload
// per line of stdout, such as zbarcam --raw.
type CommandSource struct {
	Command string
	Args    []string
}

// NewCommandSource creates a camera source from the capture settings.
func NewCommandSource(settings *conf.CaptureSettings) *CommandSource {
	command := settings.Command
	if command == "" {
		command = conf.DefaultDecoderCommand
	}
	return &CommandSource{Command: command, Args: settings.Args}
}

func (s *CommandSource) Name() string   { return s.Command }
func (s *CommandSource) Origin() Origin { return OriginCamera }

// Events starts the decoder. A missing program or a failed start is
// reported as ErrCameraUnavailable with the permission-denied category.
func (s *CommandSource) Events(ctx context.Context) (<-chan string, error) {
	path, err := exec.LookPath(s.Command)
	if err != nil {
		return nil, cameraUnavailable(err, s.Command, "lookup_decoder")
	}

	cmd := exec.CommandContext(ctx, path, s.Args...) //nolint:gosec // G204: decoder command comes from local configuration
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, cameraUnavailable(err, s.Command, "create_stdout_pipe")
	}
	if err := cmd.Start(); err != nil {
		return nil, cameraUnavailable(err, s.Command, "start_decoder")
	}

	GetLogger().Info("camera decoder started",
		logger.String("command", s.Command),
		logger.Int("pid", cmd.Process.Pid))

	out := make(chan string)
	go func() {
		defer close(out)
		scanLines(ctx, stdout, out)

		// always reap the process
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			GetLogger().Warn("camera decoder exited",
				logger.String("command", s.Command),
				logger.Error(err))
		}
	}()
	return out, nil
}

func cameraUnavailable(err error, command, operation string) error {
	return errors.New(errors.Join(ErrCameraUnavailable, err)).
		Component("capture").
		Category(errors.CategoryPermission).
		Context("operation", operation).
		Context("command", command).
		Build()
}

// ReaderSource reads one payload per line from a reader: a terminal, a
// pipe, or a keyboard-wedge scanner. Reads cannot be interrupted, so a
// blocked read outlives ctx until the reader returns.
type ReaderSource struct {
	Reader io.Reader
	origin Origin
}

// NewReaderSource creates a manual-entry source reading r.
func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{Reader: r, origin: OriginManual}
}

func (s *ReaderSource) Name() string { return "reader" }

func (s *ReaderSource) Origin() Origin {
	if s.origin == "" {
		return OriginManual
	}
	return s.origin
}

func (s *ReaderSource) Events(ctx context.Context) (<-chan string, error) {
	if s.Reader == nil {
		return nil, errors.ValidationError("capture", "reader source has no reader")
	}
	out := make(chan string)
	go func() {
		defer close(out)
		scanLines(ctx, s.Reader, out)
	}()
	return out, nil
}

// scanLines forwards each line of r to out until EOF or ctx is done.
func scanLines(ctx context.Context, r io.Reader, out chan<- string) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		select {
		case out <- line:
		case <-ctx.Done():
			return
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		GetLogger().Warn("capture input read failed", logger.Error(err))
	}
}
