package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tphakala/openingbook/cmd"
	"github.com/tphakala/openingbook/internal/buildinfo"
	"github.com/tphakala/openingbook/internal/conf"
	"github.com/tphakala/openingbook/internal/logger"
)

// set with -ldflags "-X main.version=... -X main.buildDate=..."
var (
	version   string
	buildDate string
)

func main() {
	os.Exit(run())
}

func run() int {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cmd.RootCommand(settings, buildinfo.NewContext(version, buildDate))
	err = rootCmd.ExecuteContext(ctx)

	if cerr := logger.Global().Close(); cerr != nil {
		fmt.Fprintf(os.Stderr, "Error closing logger: %v\n", cerr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
