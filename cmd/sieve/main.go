// Command sieve composes record filters from criteria and named predicates
// and runs them against a SQLite store.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/sieve/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.NewRootCommand().ExecuteContext(ctx)
	if err == nil {
		return
	}
	code := cli.Report(os.Stderr, err)
	stop()
	os.Exit(code)
}
