package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/agenthands/deren/internal/core/common"
	"github.com/agenthands/deren/internal/core/model"
)

const DefaultProjectTitle = "DEREN Project"

// projectFile mirrors model.Project with pointers so missing keys are detectable.
type projectFile struct {
	Nodes       *[]model.Node         `json:"nodes"`
	Connections *[]model.Connection   `json:"connections"`
	Metadata    model.ProjectMetadata `json:"metadata"`
}

// Project captures the current graph as a saveable project.
func (s *Store) Project(title string) model.Project {
	if title == "" {
		title = DefaultProjectTitle
	}
	nodes, conns := s.Snapshot()
	return model.Project{
		Nodes:       nodes,
		Connections: conns,
		Metadata: model.ProjectMetadata{
			Version: model.ProjectVersion,
			Created: time.Now().UTC(),
			Title:   title,
		},
	}
}

// Save writes the graph as an indented project file.
func (s *Store) Save(w io.Writer, title string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.Project(title)); err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}
	return nil
}

// Load replaces the graph with the project read from r. Nothing is mutated
// unless the whole file decodes and validates.
func (s *Store) Load(r io.Reader) (model.ProjectMetadata, error) {
	var pf projectFile
	if err := json.NewDecoder(r).Decode(&pf); err != nil {
		return model.ProjectMetadata{}, &common.LoadFormatError{Reason: "malformed JSON", Err: err}
	}
	if pf.Nodes == nil {
		return model.ProjectMetadata{}, &common.LoadFormatError{Reason: "missing nodes"}
	}
	if pf.Connections == nil {
		return model.ProjectMetadata{}, &common.LoadFormatError{Reason: "missing connections"}
	}
	if err := s.Replace(*pf.Nodes, *pf.Connections); err != nil {
		return model.ProjectMetadata{}, &common.LoadFormatError{Reason: "inconsistent graph", Err: err}
	}

	s.logger.Info("Loaded project",
		zap.String("title", pf.Metadata.Title),
		zap.Int("nodes", len(*pf.Nodes)),
		zap.Int("connections", len(*pf.Connections)),
	)
	return pf.Metadata, nil
}
