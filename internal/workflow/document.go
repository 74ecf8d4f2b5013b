// Package workflow converts canvas graphs to and from the workflow JSON
// document. Edges in the document reference nodes by label, not id.
package workflow

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rendis/langcanvas/pkg/schema"
)

// Version is the document version written by Export.
const Version = "1.0.0"

// Document is the exchange format for a workflow.
type Document struct {
	Version    string         `json:"version"`
	Name       string         `json:"name,omitempty"`
	EntryPoint string         `json:"entryPoint,omitempty"`
	Nodes      []schema.Node  `json:"nodes"`
	Edges      []schema.Edge  `json:"edges"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Marshal encodes doc as indented JSON.
func Marshal(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal workflow: %w", err)
	}
	return data, nil
}

// majorVersion returns the leading component of a dotted version string.
func majorVersion(v string) (int, error) {
	major, _, _ := strings.Cut(v, ".")
	n, err := strconv.Atoi(major)
	if err != nil {
		return 0, fmt.Errorf("malformed version %q", v)
	}
	return n, nil
}
