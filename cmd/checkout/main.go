package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/farmstore/pkg/config"
	pkgerrors "github.com/angelmondragon/farmstore/pkg/errors"
	"github.com/angelmondragon/farmstore/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" {
		printUsage(stdout)
		return 0
	}
	cmd, ok := findCommand(args[0])
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		printUsage(stderr)
		return 2
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}

	// Logs go to stderr so command output stays readable.
	logg := logger.New(logger.Options{
		ServiceName: "checkout-cli",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Output:      stderr,
	})

	a, err := newApp(ctx, cfg, logg, stdout)
	if err != nil {
		logg.Error(ctx, "failed to start", err)
		fmt.Fprintf(stderr, "error: %s\n", pkgerrors.UserMessage(err))
		return 1
	}
	defer func() {
		if err := a.Close(); err != nil {
			logg.Error(ctx, "error closing resources", err)
		}
	}()

	return exitCode(cmd.run(ctx, a, args[1:]), stderr)
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	var reported errReported
	if !errors.As(err, &reported) {
		fmt.Fprintf(stderr, "error: %s\n", pkgerrors.UserMessage(err))
	}
	if pkgerrors.CodeOf(err) == pkgerrors.CodeValidation {
		return 2
	}
	return 1
}
