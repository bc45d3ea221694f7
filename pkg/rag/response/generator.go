// Package response issues the final completion for a chat turn.
package response

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"rag-chatbot-be/internal/constant"
	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/pkg/llm"
	"rag-chatbot-be/pkg/rag"
	"rag-chatbot-be/pkg/rag/executor"
	"rag-chatbot-be/pkg/rag/prompt"
)

const (
	module            = "Generator"
	finalAnswerMarker = "Final Answer:"
)

var tracer = otel.Tracer("rag-chatbot-be/pkg/rag/response")

type Input struct {
	Query   string
	Images  []string
	Context executor.Output
	History []entity.Turn
	Mode    prompt.Mode
	// Model overrides the provider default for this call when set.
	Model string
}

type Result struct {
	Answer string
	// History is the input history with the human and ai turns appended.
	History []entity.Turn
	// Err is the synthesis error, if any; Answer then holds the apology.
	Err error
}

type Generator struct {
	llm     llm.LLMProvider
	prompts prompt.Set
	logger  logger.ILogger
}

func NewGenerator(provider llm.LLMProvider, prompts prompt.Set, log logger.ILogger) *Generator {
	return &Generator{
		llm:     provider,
		prompts: prompts,
		logger:  log,
	}
}

// ModeFor picks the synthesis mode from the executed plan.
func ModeFor(plan rag.Plan) prompt.Mode {
	switch {
	case plan.UsesRetrieval():
		return prompt.ModeGrounded
	case plan.UsesWeb():
		return prompt.ModeWebOnly
	default:
		return prompt.ModeDirect
	}
}

func (g *Generator) Generate(ctx context.Context, in Input) Result {
	ctx, span := tracer.Start(ctx, "rag.generate")
	defer span.End()
	span.SetAttributes(attribute.String("prompt.mode", in.Mode.String()))

	answer, err := g.answer(ctx, in)
	if err != nil {
		span.RecordError(err)
		g.logger.Error(module, "Synthesis failed", map[string]interface{}{
			"mode":  in.Mode.String(),
			"error": err,
		})
		answer = apology(err)
	}

	history := make([]entity.Turn, 0, len(in.History)+2)
	history = append(history, in.History...)
	history = append(history,
		entity.Turn{Role: constant.TurnRoleHuman, Content: in.Query, Images: in.Images},
		entity.Turn{Role: constant.TurnRoleAI, Content: answer},
	)

	return Result{Answer: answer, History: history, Err: err}
}

func (g *Generator) answer(ctx context.Context, in Input) (string, error) {
	out := in.Context
	if in.Mode == prompt.ModeGrounded && out.RetrievalUsed && out.RetrievedCount == 0 && out.WebContext == "" {
		g.logger.Info(module, "No document excerpts found, answering without the model", nil)
		return constant.DocumentsLackInformationMessage, nil
	}

	messages := make([]llm.Message, 0, len(in.History)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: g.prompts.System(in.Mode)})
	messages = append(messages, ToMessages(in.History)...)
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: g.prompts.UserMessage(in.Query, out.DocContext, out.WebContext),
		Images:  in.Images,
	})

	raw, err := g.llm.Chat(ctx, messages, llm.WithModel(in.Model))
	if err != nil {
		return "", err
	}

	g.logger.Debug(module, "Completion received", map[string]interface{}{
		"mode":        in.Mode.String(),
		"doc_chars":   len(out.DocContext),
		"web_chars":   len(out.WebContext),
		"answer_size": len(raw),
	})
	return ExtractFinalAnswer(raw), nil
}

// ExtractFinalAnswer returns the text after the last "Final Answer:" marker, or
// the whole text when there is none.
func ExtractFinalAnswer(raw string) string {
	if i := strings.LastIndex(raw, finalAnswerMarker); i >= 0 {
		return strings.TrimSpace(raw[i+len(finalAnswerMarker):])
	}
	return strings.TrimSpace(raw)
}

// ToMessages converts stored turns into provider messages.
func ToMessages(turns []entity.Turn) []llm.Message {
	out := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		role := llm.RoleUser
		if t.Role == constant.TurnRoleAI {
			role = llm.RoleAssistant
		}
		out = append(out, llm.Message{Role: role, Content: t.Content, Images: t.Images})
	}
	return out
}

func apology(err error) string {
	msg := []rune(err.Error())
	if len(msg) > constant.SynthesisErrorExcerptLength {
		msg = msg[:constant.SynthesisErrorExcerptLength]
	}
	return constant.SynthesisErrorPrefix + string(msg) + "..."
}
