package main

import (
	"fmt"
	"io"

	"github.com/rendis/langcanvas/internal/workflow"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=v1.0.0" ./cmd/langcanvas/
var version = "dev"

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "langcanvas %s (workflow document %s)\n", version, workflow.Version)
}
