package mission

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/agenthands/deren/internal/core/model"
	"github.com/agenthands/deren/internal/tools"
)

// GenericConfidence is attached to results of steps with no known shape.
const GenericConfidence = 0.8

var stepShapes = map[string]model.ResultShape{
	StepPrimarySources: model.ShapeSources,
	StepKeyConcepts:    model.ShapeConcepts,
	StepExpertOpinions: model.ShapeOpinions,
	StepContradictions: model.ShapeContradictions,
	StepSynthesize:     model.ShapeSynthesis,
}

var shapeTools = map[model.ResultShape]string{
	model.ShapeSources:   tools.SearchWeb,
	model.ShapeConcepts:  tools.ExtractData,
	model.ShapeOpinions:  tools.AskFollowup,
	model.ShapeSynthesis: tools.Summarize,
}

// ShapeFor returns the result shape a step label produces.
func ShapeFor(step string) model.ResultShape {
	if shape, ok := stepShapes[step]; ok {
		return shape
	}
	return model.ShapeData
}

// Invoker runs a named tool. *tools.Registry implements it.
type Invoker interface {
	Invoke(ctx context.Context, name string, in tools.Input) tools.Result
}

// StepExecutor turns a plan step into a StepResult. Steps with a known shape
// consult the matching tool and fall back to a templated result when the tool
// is missing or fails.
type StepExecutor struct {
	Tools  Invoker
	Logger *zap.Logger
}

func NewStepExecutor(invoker Invoker, logger *zap.Logger) *StepExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StepExecutor{Tools: invoker, Logger: logger}
}

func (e *StepExecutor) Execute(ctx context.Context, mission, step string) model.StepResult {
	shape := ShapeFor(step)
	template := Template(step)

	name, ok := shapeTools[shape]
	if !ok || e.Tools == nil {
		return template
	}

	res := e.Tools.Invoke(ctx, name, tools.Input{Text: toolQuery(shape, mission, step)})
	if !res.OK() {
		if res.Failure.Reason != tools.ReasonNotRegistered {
			e.Logger.Warn("Tool failed, using templated step result",
				zap.String("step", step),
				zap.String("tool", name),
				zap.String("reason", res.Failure.Reason),
			)
			template.Degraded = true
		}
		return template
	}

	if out, ok := fromTool(step, shape, res.Data); ok {
		return out
	}
	template.Degraded = true
	return template
}

func toolQuery(shape model.ResultShape, mission, step string) string {
	switch shape {
	case model.ShapeSources:
		return mission
	case model.ShapeOpinions:
		return fmt.Sprintf("What do experts say about %s?", mission)
	default:
		return fmt.Sprintf("%s: %s", step, mission)
	}
}

// fromTool maps a tool payload onto the step's shape. It reports false when
// the payload is empty or of an unexpected type.
func fromTool(step string, shape model.ResultShape, data any) (model.StepResult, bool) {
	out := model.StepResult{Step: step, Shape: shape}

	switch v := data.(type) {
	case []tools.SearchHit:
		for i, hit := range v {
			out.Sources = append(out.Sources, model.Source{
				Title:      hit.Title,
				URL:        hit.URL,
				Confidence: rankConfidence(i),
			})
		}
		return out, len(out.Sources) > 0
	case tools.Extracted:
		for i, entity := range v.Entities {
			c := model.Concept{Name: entity, Relevance: rankConfidence(i)}
			if i < len(v.Facts) {
				c.Definition = v.Facts[i]
			}
			out.Concepts = append(out.Concepts, c)
		}
		return out, len(out.Concepts) > 0
	case tools.Answer:
		if v.Answer == "" {
			return out, false
		}
		out.Opinions = []model.Opinion{{Expert: "Research Assistant", Opinion: v.Answer, Confidence: v.Confidence}}
		return out, true
	case tools.SummaryData:
		out.Synthesis = v.Summary
		return out, v.Summary != ""
	}
	return out, false
}

// rankConfidence decays from 0.9 by 0.1 per rank, floored at 0.5.
func rankConfidence(rank int) float64 {
	c := 0.9 - 0.1*float64(rank)
	if c < 0.5 {
		return 0.5
	}
	return c
}

// Template returns the offline result for step.
func Template(step string) model.StepResult {
	out := model.StepResult{Step: step, Shape: ShapeFor(step)}

	switch out.Shape {
	case model.ShapeSources:
		out.Sources = []model.Source{
			{Title: "Academic Research Paper", URL: "https://example.com/paper1", Confidence: 0.9},
			{Title: "Industry Report", URL: "https://example.com/report1", Confidence: 0.8},
			{Title: "Expert Interview", URL: "https://example.com/interview1", Confidence: 0.7},
		}
	case model.ShapeConcepts:
		out.Concepts = []model.Concept{
			{Name: "Core Concept A", Relevance: 0.9, Definition: "A fundamental principle in this domain"},
			{Name: "Key Factor B", Relevance: 0.8, Definition: "An important influencing factor"},
			{Name: "Related Theory C", Relevance: 0.7, Definition: "A supporting theoretical framework"},
		}
	case model.ShapeOpinions:
		out.Opinions = []model.Opinion{
			{Expert: "Dr. Jane Smith", Opinion: "This approach shows promise but requires careful consideration", Confidence: 0.9},
			{Expert: "Prof. John Doe", Opinion: "The evidence suggests a more nuanced view is needed", Confidence: 0.8},
		}
	case model.ShapeContradictions:
		out.Contradictions = []model.Contradiction{
			{Topic: "Implementation Approach", Viewpoint1: "Rapid deployment is essential", Viewpoint2: "Gradual implementation reduces risk"},
			{Topic: "Cost-Benefit Analysis", Viewpoint1: "Short-term costs are justified", Viewpoint2: "Long-term sustainability is more important"},
		}
	case model.ShapeSynthesis:
		out.Synthesis = "The research reveals a complex landscape with multiple valid perspectives. " +
			"Key considerations include implementation timeline, cost factors, and stakeholder engagement."
	default:
		out.Data = "Results for " + step
		out.Confidence = GenericConfidence
	}
	return out
}
