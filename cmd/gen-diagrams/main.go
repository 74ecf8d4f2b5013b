// gen-diagrams renders the example workflows into docs/assets for the README.
// Run: go run ./cmd/gen-diagrams
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rendis/langcanvas/internal/diagram"
	"github.com/rendis/langcanvas/internal/validation"
	"github.com/rendis/langcanvas/internal/workflow"
)

func main() {
	ctx := context.Background()

	paths, err := filepath.Glob(filepath.Join("examples", "*", "workflow.json"))
	if err != nil || len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "no example workflows found under examples/")
		os.Exit(1)
	}

	im, err := workflow.NewImporter()
	if err != nil {
		fmt.Fprintf(os.Stderr, "importer: %v\n", err)
		os.Exit(1)
	}

	outDir := filepath.Join("docs", "assets")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create %s: %v\n", outDir, err)
		os.Exit(1)
	}

	home, _ := os.UserHomeDir()
	binDir := filepath.Join(home, ".langcanvas", "bin")

	failed := false
	for _, path := range paths {
		name := filepath.Base(filepath.Dir(path))
		if err := render(ctx, im, path, name, outDir, binDir); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func render(ctx context.Context, im *workflow.Importer, path, name, outDir, binDir string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	res := im.Import(data)
	if !res.OK() {
		return res.Err()
	}

	result := validation.Validate(res.Nodes, res.Edges)
	model := diagram.Build(name, res.Nodes, res.Edges, result)

	ascii := diagram.RenderASCIIAuto(ctx, model, binDir)
	if err := os.WriteFile(filepath.Join(outDir, name+"-ascii.txt"), []byte(ascii), 0o644); err != nil {
		return err
	}
	fmt.Printf("=== %s (ascii) ===\n%s\n", name, ascii)

	mermaid := diagram.RenderMermaid(model)
	md := "```mermaid\n" + mermaid + "```\n"
	if err := os.WriteFile(filepath.Join(outDir, name+"-mermaid.md"), []byte(md), 0o644); err != nil {
		return err
	}
	fmt.Printf("=== %s (mermaid) ===\n%s\n", name, mermaid)

	png, err := diagram.RenderImage(ctx, model)
	if err != nil {
		return fmt.Errorf("png: %w", err)
	}
	pngPath := filepath.Join(outDir, name+".png")
	if err := os.WriteFile(pngPath, png, 0o644); err != nil {
		return err
	}
	fmt.Printf("=== %s (png) ===\n%s (%d bytes)\n", name, pngPath, len(png))

	if !result.Valid() {
		fmt.Printf("%s has %d validation errors\n", name, result.ErrorCount)
	}
	return nil
}
