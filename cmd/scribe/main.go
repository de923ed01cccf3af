package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pfassina/scribe/internal/note"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "scribe:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps errors to process exit codes: 2 for bad input, 3 when the
// server cannot be reached, 1 otherwise.
func exitCode(err error) int {
	switch {
	case note.IsValidation(err):
		return 2
	case note.IsTransport(err):
		return 3
	default:
		return 1
	}
}
