// main is the entry point for the bugsheet CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/bugsheet/cmd"
	"github.com/huangsam/bugsheet/internal/contract"
	"github.com/huangsam/bugsheet/internal/iocache"
)

func main() {
	// Ctrl-C stops the pipeline at the next file boundary instead of killing it mid-write
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cmd.SetCacheManager(iocache.Manager)
	err := cmd.ExecuteContext(ctx)

	stop()
	iocache.CloseCaching()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}

	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
