package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tphakala/hogwarts-heroes/cmd"
	"github.com/tphakala/hogwarts-heroes/internal/buildinfo"
)

// buildDate and version are set at build time with -ldflags
var (
	buildDate string
	version   string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	build := &buildinfo.Context{
		Version:   version,
		BuildDate: buildDate,
	}

	if err := cmd.Execute(ctx, build, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
