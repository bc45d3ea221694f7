package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/pkg/llm"
	"rag-chatbot-be/pkg/rag/prompt"
)

// ErrPlanParse is returned when the planner output is not a valid plan.
var ErrPlanParse = errors.New("plan parse error")

const (
	plannerModule = "Planner"

	// Turns of history shown to the planner, newest last.
	plannerHistoryWindow = 6
	plannerTurnMaxChars  = 300
)

var tracer = otel.Tracer("rag-chatbot-be/pkg/rag")

// Planner asks the model which tools to run for a query and normalizes the answer.
type Planner struct {
	llm     llm.LLMProvider
	prompts prompt.Set
	logger  logger.ILogger
}

func NewPlanner(provider llm.LLMProvider, prompts prompt.Set, log logger.ILogger) *Planner {
	return &Planner{
		llm:     provider,
		prompts: prompts,
		logger:  log,
	}
}

// Plan returns the ordered steps for query. With no tools enabled it returns an
// empty plan without calling the model.
func (p *Planner) Plan(ctx context.Context, query string, enabled ToolSet, history []llm.Message, opts ...llm.Option) (Plan, error) {
	if enabled.Empty() {
		return nil, nil
	}

	ctx, span := tracer.Start(ctx, "rag.plan")
	defer span.End()

	external := DetectExternalRequest(query)
	text := p.prompts.Planner(query, enabled.Names(), external, renderHistory(history))

	opts = append([]llm.Option{llm.WithTemperature(0)}, opts...)
	output, err := p.llm.Generate(ctx, text, opts...)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("planner completion: %w", err)
	}

	entries, err := ParsePlan(output)
	if err != nil {
		span.RecordError(err)
		p.logger.Warn(plannerModule, "Rejected planner output", map[string]interface{}{
			"error":  err.Error(),
			"output": truncate(output, 500),
		})
		return nil, err
	}

	plan := Normalize(query, entries, enabled)
	for _, e := range entries {
		if !enabled.Has(e.Tool) {
			p.logger.Debug(plannerModule, "Dropped step for disabled tool", map[string]interface{}{
				"topic": e.Query,
				"tool":  string(e.Tool),
			})
		}
	}

	span.SetAttributes(
		attribute.Int("plan.steps", len(plan)),
		attribute.Bool("plan.external_request", external),
	)
	p.logger.Info(plannerModule, "Plan ready", map[string]interface{}{
		"raw_steps": len(entries),
		"steps":     len(plan),
		"tools":     enabled.Names(),
	})

	return plan, nil
}

type planRecord struct {
	Topic *string `json:"topic"`
	Tool  *string `json:"tool"`
}

// ParsePlan decodes a planner answer: a JSON array of {"topic", "tool"}
// objects, optionally inside a Markdown code fence. Anything else is an
// ErrPlanParse.
func ParsePlan(output string) ([]Step, error) {
	body := stripCodeFence(strings.TrimSpace(output))
	if !strings.HasPrefix(body, "[") {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrPlanParse)
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.DisallowUnknownFields()

	var records []planRecord
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlanParse, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after plan", ErrPlanParse)
	}

	steps := make([]Step, 0, len(records))
	for i, r := range records {
		if r.Topic == nil || strings.TrimSpace(*r.Topic) == "" {
			return nil, fmt.Errorf("%w: entry %d has no topic", ErrPlanParse, i)
		}
		if r.Tool == nil {
			return nil, fmt.Errorf("%w: entry %d has no tool", ErrPlanParse, i)
		}
		tool, err := ParseTool(*r.Tool)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrPlanParse, i, err)
		}
		steps = append(steps, Step{Query: strings.TrimSpace(*r.Topic), Tool: tool})
	}
	return steps, nil
}

// Normalize turns the model's entries into the executed plan:
//   - entries for disabled tools are dropped;
//   - with retrieve enabled every topic gets one retrieve step, followed by the
//     web steps the model chose for it if the user asked for outside information;
//   - without retrieve every topic runs every enabled web tool;
//   - no topics falls back to the whole query;
//   - repeated (tool, query) pairs are removed, first one wins.
func Normalize(query string, entries []Step, enabled ToolSet) Plan {
	if enabled.Empty() {
		return nil
	}

	var topics []string
	chosen := make(map[string][]Tool)
	for _, e := range entries {
		if _, seen := chosen[e.Query]; !seen {
			topics = append(topics, e.Query)
			chosen[e.Query] = nil
		}
		if enabled.Has(e.Tool) && e.Tool.IsWeb() {
			chosen[e.Query] = append(chosen[e.Query], e.Tool)
		}
	}

	queryExternal := DetectExternalRequest(query)

	if len(topics) == 0 {
		topics = []string{query}
		if queryExternal {
			chosen[query] = enabled.WebTools()
		}
	}

	var plan Plan
	for _, topic := range topics {
		if !enabled.Has(ToolRetrieve) {
			for _, t := range enabled.WebTools() {
				plan = append(plan, Step{Query: topic, Tool: t})
			}
			continue
		}

		plan = append(plan, Step{Query: topic, Tool: ToolRetrieve})
		if queryExternal || DetectExternalRequest(topic) {
			for _, t := range chosen[topic] {
				plan = append(plan, Step{Query: topic, Tool: t})
			}
		}
	}

	return dedupe(plan)
}

func dedupe(plan Plan) Plan {
	seen := make(map[Step]struct{}, len(plan))
	out := plan[:0]
	for _, s := range plan {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// language tag, e.g. ```json
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.HasPrefix(strings.TrimSpace(s[:nl]), "[") {
		s = s[nl+1:]
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

func renderHistory(history []llm.Message) string {
	if len(history) == 0 {
		return ""
	}
	start := 0
	if len(history) > plannerHistoryWindow {
		start = len(history) - plannerHistoryWindow
	}

	var buf bytes.Buffer
	for i, m := range history[start:] {
		if i > 0 {
			buf.WriteByte('\n')
		}
		speaker := "user"
		if m.Role == llm.RoleAssistant {
			speaker = "assistant"
		}
		buf.WriteString(speaker)
		buf.WriteString(": ")
		buf.WriteString(truncate(m.Content, plannerTurnMaxChars))
	}
	return buf.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
