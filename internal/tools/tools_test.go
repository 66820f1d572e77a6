package tools

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/deren/internal/config"
	"github.com/agenthands/deren/internal/core/model"
)

func toolByName(t *testing.T, list []Tool, name string) Tool {
	t.Helper()
	for _, tool := range list {
		if tool.Name() == name {
			return tool
		}
	}
	t.Fatalf("tool %s not found", name)
	return nil
}

func TestSimulated_CoversEveryCapability(t *testing.T) {
	list := Simulated(0)
	require.Len(t, list, len(Names))
	for i, tool := range list {
		assert.Equal(t, Names[i], tool.Name())
	}

	ctx := context.Background()

	res := toolByName(t, list, SearchWeb).Execute(ctx, Input{Text: "quantum"})
	require.True(t, res.OK())
	hits := res.Data.([]SearchHit)
	require.Len(t, hits, 1)
	assert.Equal(t, "Search result for quantum", hits[0].Title)

	res = toolByName(t, list, AskFollowup).Execute(ctx, Input{Text: "why?"})
	require.True(t, res.OK())
	assert.Equal(t, Answer{Answer: "Analysis of: why?", Confidence: 0.8}, res.Data)

	res = toolByName(t, list, StoreNode).Execute(ctx, Input{})
	require.False(t, res.OK())
	assert.Equal(t, ReasonBadInput, res.Failure.Reason)

	res = toolByName(t, list, SearchWeb).Execute(ctx, Input{Text: "  "})
	require.False(t, res.OK())
	assert.Equal(t, ReasonBadInput, res.Failure.Reason)
}

func TestSimulated_EmbedDeterministic(t *testing.T) {
	embed := toolByName(t, Simulated(0), Embed)

	a := embed.Execute(context.Background(), Input{Text: "graph"})
	b := embed.Execute(context.Background(), Input{Text: "graph"})
	require.True(t, a.OK())
	vec := a.Data.(Embedding).Vector
	assert.Len(t, vec, EmbeddingDimensions)
	assert.Equal(t, vec, b.Data.(Embedding).Vector)
	for _, v := range vec {
		assert.True(t, v >= 0 && v < 1)
	}
}

func TestSimulated_RespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := toolByName(t, Simulated(0), Summarize).Execute(ctx, Input{Text: "text"})
	require.False(t, res.OK())
	assert.Equal(t, ReasonCancelled, res.Failure.Reason)
}

func TestLLMTools_ParseResponses(t *testing.T) {
	mock := &MockLLM{ResponseQueue: []string{
		"Sure! ```json\n{\"summary\": \"short\", \"key_points\": [\"a\"]}\n```",
		`{"entities": ["Go"], "facts": ["Go has goroutines"]}`,
		`{"answer": "because", "confidence": 0.6}`,
	}}
	list := LLMTools(mock, DefaultPrompts)
	ctx := context.Background()

	res := list[0].Execute(ctx, Input{Text: "long text"})
	require.True(t, res.OK())
	assert.Equal(t, SummaryData{Summary: "short", KeyPoints: []string{"a"}}, res.Data)
	assert.Contains(t, mock.Prompts[0], "long text")

	res = list[1].Execute(ctx, Input{Text: "Go has goroutines"})
	require.True(t, res.OK())
	assert.Equal(t, []string{"Go"}, res.Data.(Extracted).Entities)

	res = list[2].Execute(ctx, Input{Text: "why?"})
	require.True(t, res.OK())
	assert.InDelta(t, 0.6, res.Data.(Answer).Confidence, 1e-9)
}

func TestLLMTools_Failures(t *testing.T) {
	ctx := context.Background()

	res := LLMTools(&MockLLM{Response: "no json here"}, DefaultPrompts)[0].Execute(ctx, Input{Text: "x"})
	require.False(t, res.OK())
	assert.Equal(t, ReasonProvider, res.Failure.Reason)

	res = LLMTools(&MockLLM{Err: errors.New("quota")}, DefaultPrompts)[0].Execute(ctx, Input{Text: "x"})
	require.False(t, res.OK())
	assert.Equal(t, ReasonProvider, res.Failure.Reason)
	assert.Equal(t, Summarize, res.Failure.Tool)
}

func TestEmbedTool(t *testing.T) {
	res := EmbedTool(&MockEmbedder{Vector: []float32{0.1, 0.2}}).Execute(context.Background(), Input{Text: "x"})
	require.True(t, res.OK())
	assert.Equal(t, []float32{0.1, 0.2}, res.Data.(Embedding).Vector)

	res = EmbedTool(&MockEmbedder{Err: errors.New("down")}).Execute(context.Background(), Input{Text: "x"})
	assert.False(t, res.OK())
}

func TestFetchTool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><head><title> Mind Maps </title></head><body>hello world</body></html>"))
	}))
	defer srv.Close()

	tool := FetchTool(srv.Client(), 0, 0)
	ctx := context.Background()

	res := tool.Execute(ctx, Input{Text: srv.URL + "/page"})
	require.True(t, res.OK())
	page := res.Data.(Page)
	assert.Equal(t, "Mind Maps", page.Title)
	assert.Contains(t, page.Content, "hello world")
	assert.Equal(t, "text/html", page.ContentType)

	res = tool.Execute(ctx, Input{Text: srv.URL + "/missing"})
	require.False(t, res.OK())
	assert.Equal(t, ReasonProvider, res.Failure.Reason)

	res = tool.Execute(ctx, Input{Text: "ftp://example.com"})
	require.False(t, res.OK())
	assert.Equal(t, ReasonBadInput, res.Failure.Reason)

	limited := FetchTool(srv.Client(), 0, 10).Execute(ctx, Input{Text: srv.URL})
	require.True(t, limited.OK())
	assert.Len(t, limited.Data.(Page).Content, 10)
}

func TestFileTool(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.md"), []byte("# Notes"), 0o644))

	tool := FileTool(root, 0)
	ctx := context.Background()

	res := tool.Execute(ctx, Input{Text: "notes.md"})
	require.True(t, res.OK())
	assert.Equal(t, FileData{Path: "notes.md", Content: "# Notes", Type: "markdown"}, res.Data)

	// Traversal is clamped to the root, where the file does not exist.
	res = tool.Execute(ctx, Input{Text: "../../etc/passwd"})
	require.False(t, res.OK())

	res = tool.Execute(ctx, Input{Text: "."})
	require.False(t, res.OK())
	assert.Equal(t, ReasonBadInput, res.Failure.Reason)
}

func TestStoreTool(t *testing.T) {
	saver := &MockSaver{}
	tool := StoreTool(saver)

	node := model.NewNode("", "Orphan", model.NodeConcept, model.Position{}, "")
	res := tool.Execute(context.Background(), Input{Node: &node})
	require.True(t, res.OK())
	stored := res.Data.(Stored)
	assert.True(t, stored.Stored)
	assert.NotEmpty(t, stored.NodeID)
	require.Len(t, saver.Saved, 1)
	assert.Equal(t, stored.NodeID, saver.Saved[0].ID)

	saver.Err = errors.New("offline")
	res = tool.Execute(context.Background(), Input{Node: &node})
	require.False(t, res.OK())
	assert.Equal(t, ReasonProvider, res.Failure.Reason)
}

func TestRegisterDefaults(t *testing.T) {
	r := NewRegistry(testBreaker(), nil)
	mock := &MockLLM{Response: `{"answer": "llm", "confidence": 0.9}`}
	require.NoError(t, RegisterDefaults(r, config.ToolsConfig{}, 0, Providers{LLM: mock}))

	assert.Len(t, r.Names(), len(Names))

	res := r.Invoke(context.Background(), AskFollowup, Input{Text: "q"})
	require.True(t, res.OK())
	assert.Equal(t, "llm", res.Data.(Answer).Answer)

	res = r.Invoke(context.Background(), SearchWeb, Input{Text: "q"})
	require.True(t, res.OK())
}
