package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rag-chatbot-be/internal/constant"
	"rag-chatbot-be/internal/dto"
	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/mapper"
	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/internal/repository/contract"
	"rag-chatbot-be/pkg/events"
	"rag-chatbot-be/pkg/llm"
	"rag-chatbot-be/pkg/rag"
	"rag-chatbot-be/pkg/rag/executor"
	"rag-chatbot-be/pkg/rag/response"
)

const chatbotModule = "ChatbotService"

var ErrSessionNotFound = errors.New("chat session not found")

type IChatbotService interface {
	CreateChat(ctx context.Context) (*dto.CreateChatResponse, error)
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
	ClearChat(ctx context.Context, sessionKey string) error
	DeleteChat(ctx context.Context, sessionKey string) error
	History(ctx context.Context, sessionKey string) ([]entity.Turn, error)
	ListChats(ctx context.Context) ([]string, error)
}

// DocumentCatalog reports whether any document is indexed.
type DocumentCatalog interface {
	HasDocuments() bool
}

type ChatbotDeps struct {
	Conversations contract.ConversationRepository
	Locker        contract.SessionLocker
	Documents     DocumentCatalog
	Planner       *rag.Planner
	Executor      *executor.Executor
	Generator     *response.Generator
	Publisher     events.Publisher
	Logger        logger.ILogger
	// PlannerModel overrides the provider model for planning calls.
	PlannerModel string
	// Now defaults to time.Now.
	Now func() time.Time
}

type chatbotService struct {
	conversations contract.ConversationRepository
	locker        contract.SessionLocker
	documents     DocumentCatalog
	planner       *rag.Planner
	executor      *executor.Executor
	generator     *response.Generator
	publisher     events.Publisher
	logger        logger.ILogger
	plannerModel  string
	now           func() time.Time
	mapper        *mapper.ChatMapper
}

func NewChatbotService(deps ChatbotDeps) IChatbotService {
	if deps.Publisher == nil {
		deps.Publisher = events.NopPublisher{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &chatbotService{
		conversations: deps.Conversations,
		locker:        deps.Locker,
		documents:     deps.Documents,
		planner:       deps.Planner,
		executor:      deps.Executor,
		generator:     deps.Generator,
		publisher:     deps.Publisher,
		logger:        deps.Logger,
		plannerModel:  deps.PlannerModel,
		now:           deps.Now,
		mapper:        mapper.NewChatMapper(),
	}
}

func (cs *chatbotService) CreateChat(ctx context.Context) (*dto.CreateChatResponse, error) {
	key, err := cs.conversations.CreateNext(ctx, cs.now())
	if err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}

	cs.publisher.PublishChatLifecycle(ctx, events.TypeChatCreated, key)
	return &dto.CreateChatResponse{
		Status:     "success",
		SessionKey: key,
		Message:    "Chat session created successfully",
	}, nil
}

func (cs *chatbotService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	hasDocuments := cs.documents != nil && cs.documents.HasDocuments()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return cs.mapper.ToChatResponse(constant.EmptyQueryMessage, executor.Output{}, hasDocuments), nil
	}

	unlock, err := cs.locker.Lock(ctx, req.SessionKey)
	if err != nil {
		return nil, fmt.Errorf("lock session %s: %w", req.SessionKey, err)
	}
	defer unlock()

	history, err := cs.conversations.Load(ctx, req.SessionKey)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", req.SessionKey, err)
	}

	enabled := cs.enabledTools(req, hasDocuments)

	plan, err := cs.planner.Plan(ctx, query, enabled, response.ToMessages(history), llm.WithModel(cs.plannerModel))
	if err != nil {
		cs.logger.Error(chatbotModule, "Planning failed", map[string]interface{}{
			"session_key": req.SessionKey,
			"error":       err,
		})
		history = append(history,
			entity.Turn{Role: constant.TurnRoleHuman, Content: query, Images: req.Images},
			entity.Turn{Role: constant.TurnRoleAI, Content: constant.PlanningFailedMessage},
		)
		if err := cs.conversations.Save(ctx, req.SessionKey, history); err != nil {
			return nil, fmt.Errorf("save session %s: %w", req.SessionKey, err)
		}
		return cs.mapper.ToChatResponse(constant.PlanningFailedMessage, executor.Output{}, hasDocuments), nil
	}

	out := cs.executor.Execute(ctx, plan)

	res := cs.generator.Generate(ctx, response.Input{
		Query:   query,
		Images:  req.Images,
		Context: out,
		History: history,
		Mode:    response.ModeFor(plan),
		Model:   req.Model,
	})

	if err := cs.conversations.Save(ctx, req.SessionKey, res.History); err != nil {
		return nil, fmt.Errorf("save session %s: %w", req.SessionKey, err)
	}

	cs.publisher.PublishChatCompleted(ctx, req.SessionKey, enabled.Names(), len(plan), out.Failures)
	cs.logger.Info(chatbotModule, "Chat turn completed", map[string]interface{}{
		"session_key": req.SessionKey,
		"tools":       enabled.Names(),
		"steps":       len(plan),
		"failures":    out.Failures,
		"excerpts":    out.RetrievedCount,
	})

	return cs.mapper.ToChatResponse(res.Answer, out, hasDocuments), nil
}

// enabledTools derives the tool set from the request flags. Retrieval needs at
// least one indexed document; unknown search types are ignored.
func (cs *chatbotService) enabledTools(req *dto.ChatRequest, hasDocuments bool) rag.ToolSet {
	var tools []rag.Tool
	if req.RAGEnabled() && hasDocuments {
		tools = append(tools, rag.ToolRetrieve)
	}

	if req.EnableWebSearch {
		var web []rag.Tool
		for _, name := range req.SearchTypes {
			t, err := rag.ParseTool(name)
			if err != nil || !t.IsWeb() {
				cs.logger.Warn(chatbotModule, "Ignoring unknown search type", map[string]interface{}{
					"search_type": name,
				})
				continue
			}
			web = append(web, t)
		}
		if len(req.SearchTypes) == 0 {
			web = append(web, rag.ToolWeb)
		}
		tools = append(tools, web...)
	}

	return rag.NewToolSet(tools...)
}

func (cs *chatbotService) ClearChat(ctx context.Context, sessionKey string) error {
	unlock, err := cs.locker.Lock(ctx, sessionKey)
	if err != nil {
		return err
	}
	defer unlock()

	if err := cs.conversations.Clear(ctx, sessionKey); err != nil {
		return fmt.Errorf("clear session %s: %w", sessionKey, err)
	}
	cs.publisher.PublishChatLifecycle(ctx, events.TypeChatCleared, sessionKey)
	return nil
}

func (cs *chatbotService) DeleteChat(ctx context.Context, sessionKey string) error {
	unlock, err := cs.locker.Lock(ctx, sessionKey)
	if err != nil {
		return err
	}
	defer unlock()

	if err := cs.conversations.Delete(ctx, sessionKey); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionKey, err)
	}
	cs.publisher.PublishChatLifecycle(ctx, events.TypeChatDeleted, sessionKey)
	return nil
}

func (cs *chatbotService) History(ctx context.Context, sessionKey string) ([]entity.Turn, error) {
	ok, err := cs.conversations.Exists(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSessionNotFound
	}
	return cs.conversations.Load(ctx, sessionKey)
}

func (cs *chatbotService) ListChats(ctx context.Context) ([]string, error) {
	keys, err := cs.conversations.List(ctx)
	if err != nil {
		return nil, err
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}
