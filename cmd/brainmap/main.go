// Command brainmap queries the Allen Brain Atlas RMA API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ppiankov/brainmap/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		cli.PrintError(err)
		os.Exit(1)
	}
}
