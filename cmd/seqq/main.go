// Command seqq runs a lazy line query over files or stdin.
//
//	seqq --match '^ERROR' --group-by first-field --sort desc --sort-by length app.log
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "seqq: %v\n", err)
		stop()
		os.Exit(1)
	}
}
