// Command socwatch-pp batch processes SocWatch capture files.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/siwooparkintel/socwatch-post-proc/internal/cli"
)

func main() {
	// Interrupt stops the batch before the next collection starts; the
	// collection in flight is killed through its run context.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
