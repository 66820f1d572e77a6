package mission

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/agenthands/deren/internal/core/common"
	"github.com/agenthands/deren/internal/llm"
)

// Default research plan labels.
const (
	StepPrimarySources = "Search for primary sources"
	StepKeyConcepts    = "Identify key concepts"
	StepExpertOpinions = "Find expert opinions"
	StepContradictions = "Analyze contradictions"
	StepSynthesize     = "Synthesize findings"
)

func DefaultSteps() []string {
	return []string{StepPrimarySources, StepKeyConcepts, StepExpertOpinions, StepContradictions, StepSynthesize}
}

// DefaultPlanPrompt takes the mission as its only %s argument.
const DefaultPlanPrompt = `You are a research planner. Break the mission below into 3 to 7 short,
concrete research steps, in the order they should be carried out.
Respond with JSON only: {"steps": ["step one", "step two"]}

Mission: %s`

// Plan is the ordered list of step labels for one mission.
type Plan struct {
	Steps []string `json:"steps"`
}

type Planner interface {
	Plan(ctx context.Context, mission string) (Plan, error)
}

// StaticPlanner returns Steps, or the default plan when Steps is nil.
type StaticPlanner struct {
	Steps []string
}

func (p StaticPlanner) Plan(ctx context.Context, mission string) (Plan, error) {
	if p.Steps == nil {
		return Plan{Steps: DefaultSteps()}, nil
	}
	return Plan{Steps: append([]string{}, p.Steps...)}, nil
}

// LLMPlanner asks the model for a plan. A response that cannot be parsed
// falls back to Fallback; a transport error fails planning.
type LLMPlanner struct {
	LLM      llm.LLMClient
	Prompt   string
	Fallback Planner
	Logger   *zap.Logger
}

func NewLLMPlanner(client llm.LLMClient, prompt string, logger *zap.Logger) *LLMPlanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if prompt == "" {
		prompt = DefaultPlanPrompt
	}
	return &LLMPlanner{LLM: client, Prompt: prompt, Fallback: StaticPlanner{}, Logger: logger}
}

func (p *LLMPlanner) Plan(ctx context.Context, mission string) (Plan, error) {
	response, err := p.LLM.Generate(ctx, fmt.Sprintf(p.Prompt, mission))
	if err != nil {
		return Plan{}, &common.MissionPlanningError{Reason: "plan generation failed", Err: err}
	}

	plan, err := common.ParseJSON[Plan](response)
	if err == nil {
		plan.Steps = cleanSteps(plan.Steps)
	}
	if err != nil || len(plan.Steps) == 0 {
		p.Logger.Warn("Unusable plan from LLM, using default plan",
			zap.String("mission", mission),
			zap.Error(err),
		)
		return p.Fallback.Plan(ctx, mission)
	}
	return plan, nil
}

func cleanSteps(steps []string) []string {
	out := steps[:0]
	for _, s := range steps {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
