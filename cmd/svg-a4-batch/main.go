// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the svg-a4-batch CLI, which runs the
// SVG layer-numbering and A4 pagination tool over a fixed set of inputs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/pdiddy/svg-a4-batch/internal/batch"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		if !batch.IsReported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}
