package scoring

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"

	"github.com/vnexsus/datesift/domain"
)

// newCELEnv declares the candidate fields visible to custom rules.
func newCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("category", cel.StringType),
		cel.Variable("importance", cel.StringType),
		cel.Variable("context", cel.StringType),
		cel.Variable("confidence", cel.StringType),
		cel.Variable("year", cel.IntType),
		cel.Variable("daysFromReference", cel.IntType),
		cel.Variable("frequency", cel.IntType),
		cel.Variable("rangeRole", cel.StringType),
		cel.Variable("insurancePeriod", cel.BoolType),
	)
}

type compiledRule struct {
	config  domain.CustomRuleConfig
	program cel.Program
}

func compileRule(env *cel.Env, cfg domain.CustomRuleConfig) (*compiledRule, error) {
	ast, issues := env.Compile(cfg.Expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile expression: %w", issues.Err())
	}

	outputType := ast.OutputType()
	if outputType != cel.BoolType && outputType != cel.IntType {
		return nil, fmt.Errorf("expression must return bool or int, got %s", outputType)
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program: %w", err)
	}

	return &compiledRule{config: cfg, program: program}, nil
}

// eval runs the rule against one candidate. Bool results gate the
// configured weight; int results are the delta itself.
func (r *compiledRule) eval(cand domain.DateCandidate, sc *Context) (int, error) {
	days := domain.DaysBetween(cand.Date, sc.Reference)
	if days < 0 {
		days = -days
	}

	out, _, err := r.program.Eval(map[string]any{
		"category":          string(cand.Category),
		"importance":        string(cand.Importance),
		"context":           cand.Context,
		"confidence":        cand.Confidence,
		"year":              cand.Date.Year,
		"daysFromReference": days,
		"frequency":         sc.Frequency[cand.Date.ISO()],
		"rangeRole":         string(cand.RangeRole),
		"insurancePeriod":   cand.InsurancePeriod,
	})
	if err != nil {
		return 0, fmt.Errorf("evaluation error: %w", err)
	}
	return r.toDelta(out), nil
}

func (r *compiledRule) toDelta(val ref.Val) int {
	switch v := val.(type) {
	case types.Bool:
		if v {
			return r.config.Weight
		}
		return 0
	case types.Int:
		return int(v)
	default:
		return 0
	}
}
