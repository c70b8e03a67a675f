package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/famomatic/danmakudl/internal/cli"
	"github.com/famomatic/danmakudl/internal/logger"
)

const cancelledMessage = "Operation cancelled by user."

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan int, 1)
	go func() {
		done <- run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	}()

	select {
	case code := <-done:
		os.Exit(code)
	case <-ctx.Done():
		// Interactive prompts block on stdin, so exit without waiting.
		fmt.Fprintln(os.Stdout, "\n"+cancelledMessage)
		os.Exit(0)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := cli.Parse(args, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		cli.PrintUsage(stderr)
		return 2
	}
	if opts.Help {
		cli.PrintUsage(stdout)
		return 0
	}

	log := logger.NewLogger(opts.LogLevel, stderr)
	log.Debugf("starting %s run_id=%s", opts.Command, log.RunID())
	runner := &cli.Runner{
		Out:    stdout,
		ErrOut: stderr,
		Logger: log,
	}

	switch opts.Command {
	case cli.CommandInteractive:
		err = runner.Interactive(ctx, stdin, opts)
	default:
		_, err = runner.Download(ctx, opts)
	}
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(stdout, "\n"+cancelledMessage)
		return 0
	}
	return 1
}
