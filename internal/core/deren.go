// Package core ties the mind-map graph to the mission orchestrator. Deren is
// the entry point used by the HTTP server and the CLI.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agenthands/deren/internal/core/common"
	"github.com/agenthands/deren/internal/core/graph"
	"github.com/agenthands/deren/internal/core/mission"
	"github.com/agenthands/deren/internal/core/model"
	"github.com/agenthands/deren/internal/metrics"
)

// Labels of nodes created outside a mission.
const (
	CanvasPageLabel   = "New Canvas Page"
	ResearchNodeLabel = "New Research Node"
	ResearchNodeText  = "Click to edit this research node"
	// ManualStrength is the strength of a connection drawn by hand.
	ManualStrength = 1.0
)

var ErrNoRepository = errors.New("no graph repository configured")

// GraphRepository persists the whole graph. *store.GraphRepository implements it.
type GraphRepository interface {
	SaveGraph(ctx context.Context, nodes []model.Node, conns []model.Connection) error
	LoadGraph(ctx context.Context) ([]model.Node, []model.Connection, error)
}

// CommandKind tells how a command was handled.
type CommandKind string

const (
	CommandCanvas  CommandKind = "canvas"
	CommandMission CommandKind = "mission"
)

type CommandResult struct {
	Kind CommandKind `json:"kind"`
	// Canvas is set for canvas commands.
	Canvas *model.Node `json:"canvas,omitempty"`
	// Batch is the generated batch of a mission.
	Batch model.Batch `json:"batch"`
}

type Stats struct {
	Nodes       int `json:"nodes"`
	Connections int `json:"connections"`
	Generated   int `json:"generated"`
	Clusters    int `json:"clusters"`
	Tasks       int `json:"tasks"`
}

type Deren struct {
	Graph        *graph.Store
	Orchestrator *mission.Orchestrator
	Repo         GraphRepository
	Metrics      *metrics.Collector
	// Tools backs Search with the embed capability. May be nil.
	Tools mission.Invoker

	// NewID produces the uuid part of canvas and research node ids.
	NewID  func() string
	logger *zap.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewDeren wires the graph and orchestrator. repo and collector may be nil.
func NewDeren(g *graph.Store, o *mission.Orchestrator, repo GraphRepository, collector *metrics.Collector, logger *zap.Logger) *Deren {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deren{
		Graph:        g,
		Orchestrator: o,
		Repo:         repo,
		Metrics:      collector,
		Tools:        o.Executor.Tools,
		NewID:        uuid.NewString,
		logger:       logger,
		rng:          rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}
}

// IsCanvasCommand reports whether text asks for a new canvas page.
func IsCanvasCommand(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "create canvas") || strings.Contains(lower, "new page")
}

// HandleCommand routes a terminal command. Canvas commands append a canvas
// node at a random position and emit no progress. Everything else runs a
// mission whose batch replaces the previous generated batch.
func (d *Deren) HandleCommand(ctx context.Context, text string, onProgress mission.ProgressFunc) (CommandResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return CommandResult{}, &common.ValidationError{Kind: common.InvalidField, ID: "command", Err: errors.New("empty command")}
	}

	if IsCanvasCommand(text) {
		node, err := d.CreateCanvasPage(d.randomPosition())
		if err != nil {
			return CommandResult{}, err
		}
		return CommandResult{Kind: CommandCanvas, Canvas: &node}, nil
	}

	batch, err := d.RunMission(ctx, text, onProgress)
	if err != nil {
		return CommandResult{}, err
	}
	return CommandResult{Kind: CommandMission, Batch: batch}, nil
}

// RunMission executes mission and applies its batch to the graph.
func (d *Deren) RunMission(ctx context.Context, text string, onProgress mission.ProgressFunc) (model.Batch, error) {
	start := time.Now()
	batch, err := d.Orchestrator.Execute(ctx, text, onProgress)
	if err != nil {
		d.recordMission(err, time.Since(start))
		return model.Batch{}, err
	}

	d.Graph.ApplyGenerated(batch)
	d.recordMission(nil, time.Since(start))
	d.refreshGauges()
	return batch, nil
}

func (d *Deren) recordMission(err error, elapsed time.Duration) {
	if d.Metrics == nil {
		return
	}
	switch {
	case err == nil:
		d.Metrics.RecordMission(metrics.StatusCompleted, elapsed)
	case errors.Is(err, common.ErrMissionInProgress):
		d.Metrics.RecordMission(metrics.StatusRejected, elapsed)
	default:
		d.Metrics.RecordMission(metrics.StatusFailed, elapsed)
	}
}

func (d *Deren) refreshGauges() {
	if d.Metrics == nil {
		return
	}
	d.Metrics.SetGraphSize(d.Graph.Counts())
}

// randomPosition picks x in [200,600) and y in [200,500).
func (d *Deren) randomPosition() model.Position {
	d.rngMu.Lock()
	defer d.rngMu.Unlock()
	return model.Position{
		X: d.rng.Float64()*400 + 200,
		Y: d.rng.Float64()*300 + 200,
	}
}

// CreateCanvasPage adds an empty canvas page at pos.
func (d *Deren) CreateCanvasPage(pos model.Position) (model.Node, error) {
	node := model.NewNode("canvas-"+d.NewID(), CanvasPageLabel, model.NodeCanvas, pos, "")
	return node, d.AddNode(node)
}

// CreateResearchNode adds a placeholder concept at pos.
func (d *Deren) CreateResearchNode(pos model.Position) (model.Node, error) {
	node := model.NewNode("node-"+d.NewID(), ResearchNodeLabel, model.NodeConcept, pos, ResearchNodeText)
	return node, d.AddNode(node)
}

func (d *Deren) AddNode(node model.Node) error {
	if err := d.Graph.AddNode(node); err != nil {
		return err
	}
	d.refreshGauges()
	return nil
}

func (d *Deren) UpdateNode(node model.Node) error {
	return d.Graph.UpdateNode(node)
}

// RemoveNode deletes the node and every connection touching it.
func (d *Deren) RemoveNode(id string) error {
	if err := d.Graph.RemoveNode(id); err != nil {
		return err
	}
	d.refreshGauges()
	return nil
}

// Connect draws a relates_to connection between two existing nodes.
func (d *Deren) Connect(from, to string) (model.Connection, error) {
	conn := model.NewConnection(from, to, model.RelatesTo, ManualStrength)
	if err := d.Graph.AddConnection(conn); err != nil {
		return model.Connection{}, err
	}
	d.refreshGauges()
	return conn, nil
}

func (d *Deren) Clear() {
	d.Graph.Clear()
	d.refreshGauges()
}

func (d *Deren) Seed() error {
	if err := d.Graph.Seed(); err != nil {
		return err
	}
	d.refreshGauges()
	return nil
}

func (d *Deren) Stats() Stats {
	nodes, conns := d.Graph.Snapshot()
	generated := 0
	for _, n := range nodes {
		if n.IsGenerated() {
			generated++
		}
	}
	return Stats{
		Nodes:       len(nodes),
		Connections: len(conns),
		Generated:   generated,
		Clusters:    len(graph.Clusters(nodes, conns)),
		Tasks:       d.Orchestrator.Ledger.Len(),
	}
}

// SaveProject writes the graph as a project file.
func (d *Deren) SaveProject(w io.Writer, title string) error {
	return d.Graph.Save(w, title)
}

// LoadProject replaces the graph with a project file. A rejected file leaves
// the graph untouched.
func (d *Deren) LoadProject(r io.Reader) (model.ProjectMetadata, error) {
	meta, err := d.Graph.Load(r)
	if err != nil {
		return model.ProjectMetadata{}, err
	}
	d.refreshGauges()
	return meta, nil
}

// Persist writes the current graph to the repository.
func (d *Deren) Persist(ctx context.Context) error {
	if d.Repo == nil {
		return ErrNoRepository
	}
	nodes, conns := d.Graph.Snapshot()
	if err := d.Repo.SaveGraph(ctx, nodes, conns); err != nil {
		return fmt.Errorf("failed to persist graph: %w", err)
	}
	d.logger.Info("Persisted graph", zap.Int("nodes", len(nodes)), zap.Int("connections", len(conns)))
	return nil
}

// Restore replaces the in-memory graph with the repository contents.
func (d *Deren) Restore(ctx context.Context) error {
	if d.Repo == nil {
		return ErrNoRepository
	}
	nodes, conns, err := d.Repo.LoadGraph(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore graph: %w", err)
	}
	if err := d.Graph.Replace(nodes, conns); err != nil {
		return err
	}
	d.refreshGauges()
	d.logger.Info("Restored graph", zap.Int("nodes", len(nodes)), zap.Int("connections", len(conns)))
	return nil
}
