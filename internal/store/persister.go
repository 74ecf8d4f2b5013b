package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rendis/langcanvas/pkg/schema"
)

// StateKey is the fixed key the canvas state lives under.
const StateKey = "langcanvas-workflow"

// StateVersion is written with every save. Loading a blob with another
// version wipes it.
const StateVersion = "1.0.0"

// State is the persisted canvas blob.
type State struct {
	Nodes     []schema.Node `json:"nodes"`
	Edges     []schema.Edge `json:"edges"`
	Version   string        `json:"version"`
	Timestamp time.Time     `json:"timestamp"`
}

// Persister saves and loads the canvas state through a KV.
type Persister struct {
	kv      KV
	key     string
	version string
	now     func() time.Time
}

// NewPersister creates a Persister writing StateVersion under StateKey.
func NewPersister(kv KV) *Persister {
	return &Persister{kv: kv, key: StateKey, version: StateVersion, now: time.Now}
}

// Save writes the graph.
func (p *Persister) Save(ctx context.Context, nodes []schema.Node, edges []schema.Edge) error {
	if nodes == nil {
		nodes = []schema.Node{}
	}
	if edges == nil {
		edges = []schema.Edge{}
	}
	data, err := json.Marshal(State{Nodes: nodes, Edges: edges, Version: p.version, Timestamp: p.now().UTC()})
	if err != nil {
		return schema.NewError(schema.ErrCodeStore, "encode canvas state").WithCause(err)
	}
	if err := p.kv.Set(ctx, p.key, data); err != nil {
		return schema.NewError(schema.ErrCodeStore, "save canvas state").WithCause(err)
	}
	return nil
}

// Load reads the saved graph. It returns (nil, nil) when nothing is saved.
// A blob written by another version is wiped and reported as VERSION_MISMATCH;
// there is no migration.
func (p *Persister) Load(ctx context.Context) (*State, error) {
	data, err := p.kv.Get(ctx, p.key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeStore, "load canvas state").WithCause(err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, schema.NewError(schema.ErrCodeStore, "decode canvas state").WithCause(err)
	}

	if st.Version != p.version {
		if err := p.kv.Clear(ctx, p.key); err != nil {
			return nil, schema.NewError(schema.ErrCodeStore, "wipe stale canvas state").WithCause(err)
		}
		return nil, schema.NewErrorf(schema.ErrCodeVersionMismatch,
			"saved canvas version %q does not match %q; saved state was cleared", st.Version, p.version).
			WithDetails(map[string]any{"found": st.Version, "expected": p.version})
	}
	return &st, nil
}

// Clear deletes the saved graph.
func (p *Persister) Clear(ctx context.Context) error {
	if err := p.kv.Clear(ctx, p.key); err != nil {
		return schema.NewError(schema.ErrCodeStore, "clear canvas state").WithCause(err)
	}
	return nil
}
