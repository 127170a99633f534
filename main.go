package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tphakala/qrregister/cmd"
	"github.com/tphakala/qrregister/internal/buildinfo"
	"github.com/tphakala/qrregister/internal/runtime"
)

// buildDate and version are set at build time with -ldflags.
var (
	buildDate string
	version   string
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt := runtime.New(buildinfo.NewContext(version, buildDate))
	rootCmd := cmd.RootCommand(rt)

	code := 0
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		code = 1
	}
	if err := rt.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "Error during shutdown:", err)
		code = 1
	}
	return code
}
