package model

type ConnectionType string

const (
	RelatesTo   ConnectionType = "relates_to"
	Supports    ConnectionType = "supports"
	Contradicts ConnectionType = "contradicts"
	DependsOn   ConnectionType = "depends_on"
)

type Connection struct {
	ID       string         `json:"id" validate:"required"`
	From     string         `json:"from" validate:"required"`
	To       string         `json:"to" validate:"required"`
	Type     ConnectionType `json:"type" validate:"required,oneof=relates_to supports contradicts depends_on"`
	Strength float64        `json:"strength" validate:"gte=0,lte=1"`
}

// ConnectionID is the id scheme for interactively drawn connections.
// It admits a single connection per ordered pair.
func ConnectionID(from, to string) string {
	return "conn_" + from + "_" + to
}

func NewConnection(from, to string, connType ConnectionType, strength float64) Connection {
	return Connection{
		ID:       ConnectionID(from, to),
		From:     from,
		To:       to,
		Type:     connType,
		Strength: strength,
	}
}

// NewGeneratedConnection is NewConnection with the id carrying GeneratedPrefix.
func NewGeneratedConnection(from, to string, connType ConnectionType, strength float64) Connection {
	c := NewConnection(from, to, connType, strength)
	c.ID = GeneratedPrefix + c.ID
	return c
}

// Batch is the node/connection set produced by one mission run.
type Batch struct {
	Nodes       []Node       `json:"nodes"`
	Connections []Connection `json:"connections"`
}
