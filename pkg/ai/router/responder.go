package router

import (
	"context"
	"strings"
	"time"

	"sales-copilot-be/internal/constant"
	"sales-copilot-be/pkg/ai/pipeline"
)

// RuleResponder answers with the fixed text of the classified intent.
type RuleResponder struct{}

func NewRuleResponder() *RuleResponder {
	return &RuleResponder{}
}

func (r *RuleResponder) Respond(ctx context.Context, input string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return ResponseFor(Classify(input)), nil
}

// WorkAnnotation describes the middle stage of a run based on the input keywords.
func WorkAnnotation(input string) string {
	lower := strings.ToLower(input)
	switch {
	case containsAny(lower, []string{"note", "touchpoint"}):
		return constant.ProgressCreatingTouchpoint
	case containsAny(lower, []string{"meeting", "prep"}):
		return constant.ProgressFetchingCustomer
	default:
		return constant.ProgressProcessingRequest
	}
}

// DefaultSteps is the four-beat schedule: three annotations each one interval
// apart, with the final response one interval after the last.
// With interval 500ms that is 0.5s, 1.0s, 1.5s and 2.0s after invocation.
func DefaultSteps(interval time.Duration) []pipeline.Step {
	return []pipeline.Step{
		{Delay: interval, Annotate: func(string) string { return constant.ProgressParsingInput }},
		{Delay: interval, Annotate: WorkAnnotation},
		{Delay: interval, Annotate: func(string) string { return constant.ProgressConfirming }},
	}
}
