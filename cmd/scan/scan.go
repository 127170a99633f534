// Package scan provides the interactive capture command.
package scan

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/qrregister/internal/capture"
	"github.com/tphakala/qrregister/internal/datastore"
	"github.com/tphakala/qrregister/internal/runtime"
	"github.com/tphakala/qrregister/internal/timeformat"
)

// Line commands accepted on stdin.
const (
	cmdName   = ":name"
	cmdCamera = ":camera"
)

// Command creates the scan command.
func Command(rt *runtime.Context) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Register codes from the camera decoder or typed on stdin",
		Long: `Scan reads one code per line from stdin and, with --camera, from the
configured decoder program. Identical camera reads within the cooldown window
are ignored.

A typed line of the form "<code><TAB><name>" registers the code under that
name. Other codes use the current name, which starts as --name and can be
changed for the following codes with a ":name <name>" line. Changing the name
also ends the camera cooldown. A ":camera" line starts the decoder again after
it failed or exited.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), rt, name)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Name stored with registered codes unless a line gives one")
	cmd.Flags().Bool("camera", false, "Read codes from the camera decoder")
	cmd.Flags().Duration("cooldown", 0, "Ignore camera reads for this long after an accepted scan")
	_ = viper.BindPFlag("capture.camera", cmd.Flags().Lookup("camera"))
	_ = viper.BindPFlag("capture.cooldown", cmd.Flags().Lookup("cooldown"))

	return cmd
}

// session holds the state shared by the lines of one scan run. Handler
// calls are serialized by the surface, so it needs no locking.
type session struct {
	rt      *runtime.Context
	name    string
	surface *capture.Surface
	camera  *capture.RetrySource
}

func run(ctx context.Context, rt *runtime.Context, name string) error {
	flow := rt.RegistrationFlow(func(_ context.Context, rec datastore.Record) {
		fmt.Fprintf(rt.Stdout, "%s\t%s\t%s\n", rec.Code, rec.Label, timeformat.FormatDisplayTime(rec.CapturedAt))
	})

	s := &session{rt: rt, name: name}
	s.surface = rt.CaptureSurface(func(ctx context.Context, line string, origin capture.Origin) {
		code, label, ok := s.handleLine(line, origin)
		if !ok {
			return
		}
		// failures are already reported as notices
		_, _ = flow.Submit(ctx, code, label)
	})

	var stdin capture.Source = capture.NewReaderSource(rt.Stdin)
	sources := []capture.Source{}
	if rt.Settings.Capture.Camera {
		s.camera = s.surface.Retryable(capture.NewCommandSource(&rt.Settings.Capture))
		// the session ends with stdin once the camera has stopped
		stdin = capture.OnEnd(stdin, s.camera.Stop)
		sources = append(sources, s.camera)
	}
	sources = append(sources, stdin)

	err := s.surface.Run(ctx, sources...)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// handleLine applies line commands and splits typed lines into code and
// name. It reports false when there is nothing to register.
func (s *session) handleLine(line string, origin capture.Origin) (code, label string, ok bool) {
	if origin != capture.OriginManual {
		return line, s.name, true
	}

	switch {
	case line == cmdCamera:
		s.retryCamera()
		return "", "", false
	case line == cmdName || strings.HasPrefix(line, cmdName+" "):
		s.name = strings.TrimSpace(strings.TrimPrefix(line, cmdName))
		s.surface.Reset()
		return "", "", false
	}

	if c, n, found := strings.Cut(line, "\t"); found {
		if strings.TrimSpace(n) == "" {
			n = s.name
		}
		return strings.TrimSpace(c), n, true
	}
	return line, s.name, true
}

func (s *session) retryCamera() {
	notices := s.rt.Notices
	switch {
	case s.camera == nil:
		notices.Info("Camera is not enabled for this session.", 0)
	case !s.camera.Retry():
		notices.Info("Camera is already running.", 0)
	default:
		notices.Info("Trying camera again.", 0)
	}
}
