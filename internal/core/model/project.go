package model

import "time"

const ProjectVersion = "1.0"

type ProjectMetadata struct {
	Version string    `json:"version"`
	Created time.Time `json:"created"`
	Title   string    `json:"title"`
}

// Project is the on-disk format of a saved mind map.
type Project struct {
	Nodes       []Node          `json:"nodes"`
	Connections []Connection    `json:"connections"`
	Metadata    ProjectMetadata `json:"metadata"`
}
