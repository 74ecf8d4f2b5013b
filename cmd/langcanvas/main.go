// Command langcanvas checks, repairs, renders and stores workflow documents
// built on the canvas.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rendis/langcanvas/internal/logging"
	"github.com/rendis/langcanvas/pkg/schema"
)

const usageText = `usage: langcanvas <command> [flags] [args]

commands:
  validate [-format text|json] <file>           check a workflow document
  fix [-o out] <file>                           apply safe repairs and write the result
  diagram [-format mermaid|ascii|png] [-o out] <file>
                                                render a workflow document
  query [-r] <file> <jq expression>             run a jq query over a workflow document
  save <file>                                   store a workflow document as the canvas state
  load [-o out]                                 print the stored canvas state
  clear                                         delete the stored canvas state
  install-tools [-bin-dir dir] [-force]         download mermaid-ascii for ASCII diagrams
  version                                       print the version
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// app carries what every subcommand needs.
type app struct {
	cfg    Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

// run executes one command and returns the process exit code:
// 0 on success, 1 on failure or validation errors, 2 on usage errors.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usageText)
		return 2
	}

	cfg := loadConfig()
	a := &app{
		cfg:    cfg,
		logger: logging.New(cfg.LogLevel, cfg.LogFormat, stderr),
		stdout: stdout,
		stderr: stderr,
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "validate":
		return a.runValidate(rest)
	case "fix":
		return a.runFix(rest)
	case "diagram":
		return a.runDiagram(ctx, rest)
	case "query":
		return a.runQuery(ctx, rest)
	case "save":
		return a.runSave(ctx, rest)
	case "load":
		return a.runLoad(ctx, rest)
	case "clear":
		return a.runClear(ctx, rest)
	case "install-tools":
		return a.runInstallTools(ctx, rest)
	case "version", "-version", "--version":
		printVersion(stdout)
		return 0
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usageText)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usageText)
		return 2
	}
}

// flags returns a flag set that reports parse errors on stderr.
func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// usage prints a one-line usage message and returns the usage exit code.
func (a *app) usage(line string) int {
	fmt.Fprintf(a.stderr, "usage: langcanvas %s\n", line)
	return 2
}

// fail prints err, plus any per-item errors it carries, and returns 1.
func (a *app) fail(err error) int {
	fmt.Fprintln(a.stderr, errorStyle.Render("Error:"), err)

	var cErr *schema.CanvasError
	if errors.As(err, &cErr) {
		if list, ok := cErr.Details["errors"].([]string); ok && len(list) > 1 {
			for _, msg := range list {
				fmt.Fprintf(a.stderr, "  - %s\n", msg)
			}
		}
		if list, ok := cErr.Details["violations"].([]string); ok {
			for _, msg := range list {
				fmt.Fprintf(a.stderr, "  - %s\n", msg)
			}
		}
	}
	return 1
}
