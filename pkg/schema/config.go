package schema

import "fmt"

// ConcurrencyMode controls how a node runs its work.
type ConcurrencyMode string

const (
	ConcurrencySequential ConcurrencyMode = "sequential"
	ConcurrencyParallel   ConcurrencyMode = "parallel"
)

// Backoff strategies for RetryPolicy.
const (
	BackoffNone        = "none"
	BackoffLinear      = "linear"
	BackoffExponential = "exponential"
)

// NodeConfig is the execution config block of a node.
type NodeConfig struct {
	Timeout     int             `json:"timeout,omitempty"` // seconds, 0 = none
	Retry       *RetryPolicy    `json:"retry,omitempty"`
	Concurrency ConcurrencyMode `json:"concurrency,omitempty"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
}

// RetryPolicy configures retry behavior for a node.
type RetryPolicy struct {
	MaxAttempts int    `json:"max_attempts"`
	Backoff     string `json:"backoff,omitempty"` // none | linear | exponential (default: none)
	DelayMs     int    `json:"delay_ms,omitempty"`
}

// DefaultConfig returns the config a freshly placed node of type t starts with.
func DefaultConfig(t NodeType) NodeConfig {
	switch t {
	case NodeTypeStart, NodeTypeEnd:
		return NodeConfig{Concurrency: ConcurrencySequential}
	case NodeTypeParallel:
		return NodeConfig{Concurrency: ConcurrencyParallel}
	case NodeTypeAgent:
		return NodeConfig{
			Timeout:     60,
			Concurrency: ConcurrencySequential,
			Retry:       &RetryPolicy{MaxAttempts: 3, Backoff: BackoffExponential, DelayMs: 1000},
		}
	case NodeTypeTool, NodeTypeFunction:
		return NodeConfig{
			Timeout:     30,
			Concurrency: ConcurrencySequential,
			Retry:       &RetryPolicy{MaxAttempts: 1, Backoff: BackoffNone},
		}
	default:
		return NodeConfig{Concurrency: ConcurrencySequential}
	}
}

// Validate checks the config against the rules of node type t.
func (c NodeConfig) Validate(t NodeType) error {
	if c.Timeout < 0 {
		return NewErrorf(ErrCodeValidation, "timeout must not be negative, got %d", c.Timeout)
	}
	switch c.Concurrency {
	case "", ConcurrencySequential:
	case ConcurrencyParallel:
		switch t {
		case NodeTypeParallel, NodeTypeAgent, NodeTypeFunction:
		default:
			return NewErrorf(ErrCodeValidation, "%s nodes cannot run in parallel mode", t)
		}
	default:
		return NewErrorf(ErrCodeValidation, "unknown concurrency mode %q", c.Concurrency)
	}
	if c.Retry == nil {
		return nil
	}
	if t == NodeTypeStart || t == NodeTypeEnd {
		return NewErrorf(ErrCodeValidation, "%s nodes do not support retry", t)
	}
	if c.Retry.MaxAttempts < 0 {
		return NewErrorf(ErrCodeValidation, "retry max_attempts must not be negative, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.DelayMs < 0 {
		return NewErrorf(ErrCodeValidation, "retry delay_ms must not be negative, got %d", c.Retry.DelayMs)
	}
	switch c.Retry.Backoff {
	case "", BackoffNone, BackoffLinear, BackoffExponential:
	default:
		return NewError(ErrCodeValidation, fmt.Sprintf("unknown retry backoff %q", c.Retry.Backoff))
	}
	return nil
}
