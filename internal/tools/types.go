// Package tools defines the named capabilities a mission can call and the
// registry they are looked up in. Providers are supplied from outside; the
// orchestrator only knows tool names.
package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/agenthands/deren/internal/core/model"
)

// Capability names.
const (
	SearchWeb   = "search_web"
	FetchURL    = "fetch_url"
	Summarize   = "summarize"
	ExtractData = "extract_data"
	StoreNode   = "store_node"
	AskFollowup = "ask_followup"
	Embed       = "embed"
	ReadFile    = "read_file"
)

// Names lists every capability in registration order.
var Names = []string{SearchWeb, FetchURL, Summarize, ExtractData, StoreNode, AskFollowup, Embed, ReadFile}

var (
	ErrToolNameEmpty         = errors.New("tool name cannot be empty")
	ErrToolAlreadyRegistered = errors.New("tool already registered")
)

// Failure reasons.
const (
	ReasonNotRegistered = "not_registered"
	ReasonBadInput      = "bad_input"
	ReasonProvider      = "provider_error"
	ReasonCircuitOpen   = "circuit_open"
	ReasonCancelled     = "cancelled"
)

// Input is the single argument every tool accepts. Text carries the query,
// URL, path or prose; Node is set for store_node.
type Input struct {
	Text string
	Node *model.Node
}

// Failure is a tagged tool failure. It is returned, never thrown.
type Failure struct {
	Tool   string
	Reason string
	Err    error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Tool, f.Reason, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Tool, f.Reason)
}

func (f *Failure) Unwrap() error { return f.Err }

// Result is either a success payload or a Failure.
type Result struct {
	Data    any
	Failure *Failure
}

func (r Result) OK() bool { return r.Failure == nil }

func Success(data any) Result { return Result{Data: data} }

func Fail(tool, reason string, err error) Result {
	return Result{Failure: &Failure{Tool: tool, Reason: reason, Err: err}}
}

// Tool is one named capability.
type Tool interface {
	Name() string
	Execute(ctx context.Context, in Input) Result
}

// ToolFunc adapts a function to Tool.
type ToolFunc struct {
	ToolName string
	Fn       func(ctx context.Context, in Input) Result
}

func (t ToolFunc) Name() string { return t.ToolName }

func (t ToolFunc) Execute(ctx context.Context, in Input) Result { return t.Fn(ctx, in) }

// Payload types returned by the built-in providers.
type (
	SearchHit struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Snippet string `json:"snippet"`
	}

	Page struct {
		URL         string `json:"url"`
		Content     string `json:"content"`
		Title       string `json:"title"`
		ContentType string `json:"content_type"`
	}

	SummaryData struct {
		Summary   string   `json:"summary"`
		KeyPoints []string `json:"key_points"`
	}

	Extracted struct {
		Entities []string `json:"entities"`
		Facts    []string `json:"facts"`
	}

	Stored struct {
		NodeID string `json:"node_id"`
		Stored bool   `json:"stored"`
	}

	Answer struct {
		Answer     string  `json:"answer"`
		Confidence float64 `json:"confidence"`
	}

	Embedding struct {
		Vector []float32 `json:"vector"`
	}

	FileData struct {
		Path    string `json:"path"`
		Content string `json:"content"`
		Type    string `json:"type"`
	}
)
