package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rendis/langcanvas/internal/canvas"
	"github.com/rendis/langcanvas/internal/diagram"
	"github.com/rendis/langcanvas/internal/expressions"
	"github.com/rendis/langcanvas/internal/store"
)

// importFile reads a workflow document into a fresh editor without persistence.
func (a *app) importFile(path string) (*canvas.Editor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workflow: %w", err)
	}
	ed, err := canvas.New(canvas.Options{CanvasID: filepath.Base(path), Logger: a.logger})
	if err != nil {
		return nil, err
	}
	if err := ed.Import(data); err != nil {
		return nil, err
	}
	return ed, nil
}

// writeOutput writes data to path, or to stdout when path is empty.
func (a *app) writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := a.stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (a *app) runValidate(args []string) int {
	fs := a.flags("validate")
	format := fs.String("format", "text", "report format: text or json")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		return a.usage("validate [-format text|json] <file>")
	}

	ed, err := a.importFile(fs.Arg(0))
	if err != nil {
		return a.fail(err)
	}
	res := ed.Validate()

	switch *format {
	case "json":
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return a.fail(err)
		}
		fmt.Fprintln(a.stdout, string(data))
	case "text":
		writeReport(a.stdout, fs.Arg(0), ed.Nodes(), res)
	default:
		return a.usage("validate [-format text|json] <file>")
	}

	if !res.Valid() {
		return 1
	}
	return 0
}

func (a *app) runFix(args []string) int {
	fs := a.flags("fix")
	out := fs.String("o", "", "output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		return a.usage("fix [-o out] <file>")
	}

	ed, err := a.importFile(fs.Arg(0))
	if err != nil {
		return a.fail(err)
	}

	applied := ed.AutoFix()
	if len(applied) == 0 {
		fmt.Fprintln(a.stderr, dimStyle.Render("nothing to fix"))
	}
	for _, msg := range applied {
		fmt.Fprintf(a.stderr, "%s %s\n", okStyle.Render("fixed:"), msg)
	}

	data, err := ed.ExportJSON()
	if err != nil {
		return a.fail(err)
	}
	if err := a.writeOutput(*out, append(data, '\n')); err != nil {
		return a.fail(err)
	}

	if res := ed.Validate(); !res.Valid() {
		fmt.Fprintf(a.stderr, "%s %s\n", errorStyle.Render("remaining:"), summary(res))
		return 1
	}
	return 0
}

func (a *app) runDiagram(ctx context.Context, args []string) int {
	fs := a.flags("diagram")
	format := fs.String("format", a.cfg.DiagramFormat, "diagram format: mermaid, ascii or png")
	out := fs.String("o", "", "output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		return a.usage("diagram [-format mermaid|ascii|png] [-o out] <file>")
	}

	path := fs.Arg(0)
	ed, err := a.importFile(path)
	if err != nil {
		return a.fail(err)
	}
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	model := diagram.Build(title, ed.Nodes(), ed.Edges(), ed.Validate())

	var data []byte
	switch *format {
	case "mermaid":
		data = []byte(diagram.RenderMermaid(model))
	case "ascii":
		data = []byte(diagram.RenderASCIIAuto(ctx, model, a.cfg.BinDir))
	case "png":
		data, err = diagram.RenderImage(ctx, model)
		if err != nil {
			return a.fail(err)
		}
	default:
		return a.usage("diagram [-format mermaid|ascii|png] [-o out] <file>")
	}

	if err := a.writeOutput(*out, data); err != nil {
		return a.fail(err)
	}
	return 0
}

func (a *app) runQuery(ctx context.Context, args []string) int {
	fs := a.flags("query")
	raw := fs.Bool("r", false, "print string results without quotes")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 2 {
		return a.usage("query [-r] <file> <jq expression>")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return a.fail(fmt.Errorf("read workflow: %w", err))
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return a.fail(fmt.Errorf("parse workflow: %w", err))
	}

	results, err := expressions.NewGoJQEngine().EvaluateAll(ctx, fs.Arg(1), doc)
	if err != nil {
		return a.fail(err)
	}
	for _, r := range results {
		if s, ok := r.(string); ok && *raw {
			fmt.Fprintln(a.stdout, s)
			continue
		}
		enc, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return a.fail(err)
		}
		fmt.Fprintln(a.stdout, string(enc))
	}
	return 0
}

func (a *app) runSave(ctx context.Context, args []string) int {
	fs := a.flags("save")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		return a.usage("save <file>")
	}

	ed, err := a.importFile(fs.Arg(0))
	if err != nil {
		return a.fail(err)
	}

	kv, err := openKV(ctx, a.cfg)
	if err != nil {
		return a.fail(err)
	}
	defer kv.Close()

	nodes, edges := ed.Nodes(), ed.Edges()
	if err := store.NewPersister(kv).Save(ctx, nodes, edges); err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.stdout, "saved %d nodes and %d edges (%s)\n", len(nodes), len(edges), a.cfg.Backend)
	return 0
}

func (a *app) runLoad(ctx context.Context, args []string) int {
	fs := a.flags("load")
	out := fs.String("o", "", "output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 0 {
		return a.usage("load [-o out]")
	}

	ed, closeKV, err := a.persistentEditor(ctx)
	if err != nil {
		return a.fail(err)
	}
	defer closeKV()

	found, err := ed.Load(ctx)
	if err != nil {
		return a.fail(err)
	}
	if !found {
		fmt.Fprintln(a.stderr, "no saved canvas")
		return 1
	}

	data, err := ed.ExportJSON()
	if err != nil {
		return a.fail(err)
	}
	if err := a.writeOutput(*out, append(data, '\n')); err != nil {
		return a.fail(err)
	}
	return 0
}

func (a *app) runClear(ctx context.Context, args []string) int {
	fs := a.flags("clear")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 0 {
		return a.usage("clear")
	}

	ed, closeKV, err := a.persistentEditor(ctx)
	if err != nil {
		return a.fail(err)
	}
	defer closeKV()

	if err := ed.Clear(ctx); err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.stdout, "canvas cleared")
	return 0
}

// persistentEditor opens the configured store and returns an editor bound to it.
func (a *app) persistentEditor(ctx context.Context) (*canvas.Editor, func(), error) {
	kv, err := openKV(ctx, a.cfg)
	if err != nil {
		return nil, nil, err
	}
	ed, err := canvas.New(canvas.Options{
		CanvasID:  store.StateKey,
		Persister: store.NewPersister(kv),
		Logger:    a.logger,
	})
	if err != nil {
		kv.Close()
		return nil, nil, err
	}
	return ed, func() { kv.Close() }, nil
}
