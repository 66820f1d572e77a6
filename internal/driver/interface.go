package driver

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Statement is one parameterised Cypher write.
type Statement struct {
	Query  string
	Params map[string]any
}

// GraphDriver runs Cypher against the Bolt database that backs saved maps.
//
// ExecuteWrite applies every statement inside a single transaction, so a map
// replacement either lands whole or not at all.
type GraphDriver interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error)
	ExecuteWrite(ctx context.Context, stmts []Statement) error
	BuildIndices(ctx context.Context) error
	Close(ctx context.Context) error
}
