// Package synthesis folds the ordered results of a mission's execution phase
// into a single summary. It is pure: the output depends only on the input order
// and shapes, never on time or randomness.
package synthesis

import (
	"fmt"

	"github.com/agenthands/deren/internal/core/common"
	"github.com/agenthands/deren/internal/core/model"
)

const (
	Summary    = "Comprehensive analysis completed with multiple perspectives identified"
	Confidence = 0.85
)

var recommendations = []string{
	"Further investigation recommended for contradictory viewpoints",
	"Stakeholder consultation advised before implementation",
	"Pilot program could validate key assumptions",
}

// Recommendations returns the fixed recommendation list.
func Recommendations() []string {
	return append([]string(nil), recommendations...)
}

// Synthesizer is the contract a smarter aggregation can satisfy in place of Synthesize.
type Synthesizer interface {
	Synthesize(results []model.StepResult) (model.Synthesis, error)
}

// Func adapts a plain function to Synthesizer.
type Func func(results []model.StepResult) (model.Synthesis, error)

func (f Func) Synthesize(results []model.StepResult) (model.Synthesis, error) {
	return f(results)
}

// Default is the templated synthesizer.
var Default Synthesizer = Func(Synthesize)

// Synthesize produces one key finding per result, in order.
func Synthesize(results []model.StepResult) (model.Synthesis, error) {
	if len(results) == 0 {
		return model.Synthesis{}, &common.SynthesisError{Reason: "no step results to synthesize"}
	}

	findings := make([]string, len(results))
	for i, r := range results {
		shape := r.Shape
		if shape == "" {
			shape = model.ShapeData
		}
		findings[i] = fmt.Sprintf("Finding %d: %s", i+1, shape)
	}

	return model.Synthesis{
		Summary:         Summary,
		KeyFindings:     findings,
		Confidence:      Confidence,
		Recommendations: Recommendations(),
	}, nil
}
