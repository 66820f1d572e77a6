package model

// ResultShape names the shape of a step result, chosen from the step label.
type ResultShape string

const (
	ShapeSources        ResultShape = "sources"
	ShapeConcepts       ResultShape = "concepts"
	ShapeOpinions       ResultShape = "opinions"
	ShapeContradictions ResultShape = "contradictions"
	ShapeSynthesis      ResultShape = "synthesis"
	ShapeData           ResultShape = "data"
)

type Source struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Confidence float64 `json:"confidence"`
}

type Concept struct {
	Name       string  `json:"name"`
	Relevance  float64 `json:"relevance"`
	Definition string  `json:"definition"`
}

type Opinion struct {
	Expert     string  `json:"expert"`
	Opinion    string  `json:"opinion"`
	Confidence float64 `json:"confidence"`
}

type Contradiction struct {
	Topic      string `json:"topic"`
	Viewpoint1 string `json:"viewpoint1"`
	Viewpoint2 string `json:"viewpoint2"`
}

// StepResult is the outcome of one executed plan step. Only the fields
// matching Shape are populated.
type StepResult struct {
	Step           string          `json:"step"`
	Shape          ResultShape     `json:"shape"`
	Sources        []Source        `json:"sources,omitempty"`
	Concepts       []Concept       `json:"concepts,omitempty"`
	Opinions       []Opinion       `json:"opinions,omitempty"`
	Contradictions []Contradiction `json:"contradictions,omitempty"`
	Synthesis      string          `json:"synthesis,omitempty"`
	Data           string          `json:"data,omitempty"`
	Confidence     float64         `json:"confidence,omitempty"`
	// Degraded is set when a tool failed and the templated result was used instead.
	Degraded bool `json:"degraded,omitempty"`
}

type Synthesis struct {
	Summary         string   `json:"summary"`
	KeyFindings     []string `json:"key_findings"`
	Confidence      float64  `json:"confidence"`
	Recommendations []string `json:"recommendations"`
}
