package service

import (
	"context"
	"errors"
	"hash/fnv"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-chatbot-be/internal/constant"
	"rag-chatbot-be/internal/dto"
	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/internal/repository/contract"
	"rag-chatbot-be/internal/repository/implementation"
	"rag-chatbot-be/internal/repository/memory"
	"rag-chatbot-be/pkg/docstore"
	"rag-chatbot-be/pkg/embedding"
	"rag-chatbot-be/pkg/llm"
	"rag-chatbot-be/pkg/rag"
	"rag-chatbot-be/pkg/rag/executor"
	"rag-chatbot-be/pkg/rag/prompt"
	"rag-chatbot-be/pkg/rag/response"
	"rag-chatbot-be/pkg/vectorstore"
)

// bagOfWords embeds text as hashed word counts.
type bagOfWords struct{}

func (bagOfWords) vector(text string) []float32 {
	v := make([]float32, 1024)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,?!")
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		v[h.Sum32()%1024]++
	}
	return v
}

func (b bagOfWords) Generate(ctx context.Context, text, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: b.vector(text)}}, nil
}

func (b bagOfWords) GenerateBatch(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = b.vector(t)
	}
	return out, nil
}

// scriptedLLM answers planning prompts (Generate) with plan and completions
// (Chat) with "Final Answer:" followed by the first document context line.
type scriptedLLM struct {
	plan      string
	planErr   error
	chatCalls int
	lastChat  []llm.Message
}

func (s *scriptedLLM) Generate(ctx context.Context, text string, options ...llm.Option) (string, error) {
	return s.plan, s.planErr
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	s.chatCalls++
	s.lastChat = history
	user := history[len(history)-1].Content
	const open = "<document_context>\n"
	if i := strings.Index(user, open); i >= 0 {
		rest := user[i+len(open):]
		return "Thought: found it.\nFinal Answer: " + strings.SplitN(rest, "\n", 2)[0], nil
	}
	return "Final Answer: I can answer that from general knowledge.", nil
}

type fixture struct {
	svc           IChatbotService
	conversations contract.ConversationRepository
	store         *docstore.Store
	llm           *scriptedLLM
}

func newFixture(t *testing.T, plan string) *fixture {
	t.Helper()
	dir := t.TempDir()
	log := logger.NewNopLogger()

	conversations, err := implementation.NewConversationFileRepository(filepath.Join(dir, "chat_sessions"))
	require.NoError(t, err)
	meta, err := implementation.NewDocumentMetadataFileRepository(filepath.Join(dir, "metadata.json"))
	require.NoError(t, err)

	store, err := docstore.New(vectorstore.NewMemoryIndex(), bagOfWords{}, meta, docstore.Options{
		DocsDir:      filepath.Join(dir, "docs"),
		ChunkSize:    8000,
		ChunkOverlap: 800,
		MinScore:     0.2,
	}, log)
	require.NoError(t, err)

	fake := &scriptedLLM{plan: plan}
	prompts := prompt.Default()

	svc := NewChatbotService(ChatbotDeps{
		Conversations: conversations,
		Locker:        memory.NewSessionLockRepository(time.Minute),
		Documents:     store,
		Planner:       rag.NewPlanner(fake, prompts, log),
		Executor:      executor.NewExecutor(store, nil, 4, log),
		Generator:     response.NewGenerator(fake, prompts, log),
		Logger:        log,
		Now:           func() time.Time { return time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC) },
	})

	return &fixture{svc: svc, conversations: conversations, store: store, llm: fake}
}

func (f *fixture) upload(t *testing.T, name, content string) {
	t.Helper()
	_, err := f.store.Add(context.Background(), []docstore.File{{Name: name, Content: []byte(content)}})
	require.NoError(t, err)
}

func TestChatbotService_AnswersFromUploadedDocument(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, `[{"topic": "When did the project start?", "tool": "retrieve"}]`)
	f.upload(t, "project.txt", "The project started in 2019.")

	created, err := f.svc.CreateChat(ctx)
	require.NoError(t, err)

	resp, err := f.svc.Chat(ctx, &dto.ChatRequest{
		SessionKey: created.SessionKey,
		Query:      "When did the project start?",
	})
	require.NoError(t, err)

	assert.Contains(t, resp.Response, "2019")
	assert.Equal(t, []entity.DocumentCitation{{Document: "project.txt", Pages: []int{1}}}, resp.DocumentInfo)
	assert.Empty(t, resp.WebInfo)
	assert.True(t, resp.HasDocuments)

	history, err := f.svc.History(ctx, created.SessionKey)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, constant.TurnRoleHuman, history[0].Role)
	assert.Equal(t, "When did the project start?", history[0].Content)
	assert.Equal(t, resp.Response, history[1].Content)
}

func TestChatbotService_DocumentsLackInformation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, `[{"topic": "What is the capital of Mars?", "tool": "retrieve"}]`)
	f.upload(t, "project.txt", "The project started in 2019.")

	resp, err := f.svc.Chat(ctx, &dto.ChatRequest{SessionKey: "14-10-2026-1", Query: "What is the capital of Mars?"})
	require.NoError(t, err)

	assert.Equal(t, constant.DocumentsLackInformationMessage, resp.Response)
	assert.Zero(t, f.llm.chatCalls)
	assert.Empty(t, resp.DocumentInfo)
}

func TestChatbotService_PlanningFailureIsRecorded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "I think you should search the web.")
	f.upload(t, "project.txt", "The project started in 2019.")

	resp, err := f.svc.Chat(ctx, &dto.ChatRequest{SessionKey: "14-10-2026-1", Query: "When did the project start?"})
	require.NoError(t, err)
	assert.Equal(t, constant.PlanningFailedMessage, resp.Response)
	assert.Zero(t, f.llm.chatCalls)

	history, err := f.svc.History(ctx, "14-10-2026-1")
	require.NoError(t, err)
	assert.Equal(t, []entity.Turn{
		{Role: constant.TurnRoleHuman, Content: "When did the project start?"},
		{Role: constant.TurnRoleAI, Content: constant.PlanningFailedMessage},
	}, history)
}

func TestChatbotService_DirectModeWithoutTools(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "not a plan")

	disabled := false
	resp, err := f.svc.Chat(ctx, &dto.ChatRequest{SessionKey: "s1", Query: "Tell me a joke", EnableRAG: &disabled})
	require.NoError(t, err)

	assert.Equal(t, "I can answer that from general knowledge.", resp.Response)
	assert.False(t, resp.HasDocuments)
	require.NotEmpty(t, f.llm.lastChat)
	assert.Equal(t, prompt.Default().System(prompt.ModeDirect), f.llm.lastChat[0].Content)
}

func TestChatbotService_EmptyQuery(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "[]")

	resp, err := f.svc.Chat(ctx, &dto.ChatRequest{SessionKey: "s1", Query: "   "})
	require.NoError(t, err)
	assert.Equal(t, constant.EmptyQueryMessage, resp.Response)

	ok, err := f.conversations.Exists(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChatbotService_CreateChatKeys(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "[]")

	first, err := f.svc.CreateChat(ctx)
	require.NoError(t, err)
	second, err := f.svc.CreateChat(ctx)
	require.NoError(t, err)

	assert.Equal(t, "14-10-2026-1", first.SessionKey)
	assert.Equal(t, "14-10-2026-2", second.SessionKey)
	assert.Equal(t, "success", first.Status)
}

func TestChatbotService_ClearAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "[]")

	turns := []entity.Turn{
		{Role: constant.TurnRoleHuman, Content: "a"},
		{Role: constant.TurnRoleAI, Content: "b"},
		{Role: constant.TurnRoleHuman, Content: "c"},
		{Role: constant.TurnRoleAI, Content: "d"},
	}
	require.NoError(t, f.conversations.Save(ctx, "s1", turns))

	require.NoError(t, f.svc.ClearChat(ctx, "s1"))
	history, err := f.svc.History(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)

	require.NoError(t, f.svc.DeleteChat(ctx, "s1"))
	_, err = f.svc.History(ctx, "s1")
	assert.True(t, errors.Is(err, ErrSessionNotFound))

	// unknown sessions are silently accepted
	assert.NoError(t, f.svc.ClearChat(ctx, "nope"))
	assert.NoError(t, f.svc.DeleteChat(ctx, "nope"))

	keys, err := f.svc.ListChats(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{}, keys)
}

func TestChatbotService_EnabledTools(t *testing.T) {
	cs := &chatbotService{logger: logger.NewNopLogger()}
	off := false

	tests := []struct {
		name    string
		req     dto.ChatRequest
		hasDocs bool
		want    rag.ToolSet
	}{
		{"rag with documents", dto.ChatRequest{}, true, rag.NewToolSet(rag.ToolRetrieve)},
		{"rag without documents", dto.ChatRequest{}, false, rag.NewToolSet()},
		{"rag disabled", dto.ChatRequest{EnableRAG: &off}, true, rag.NewToolSet()},
		{"web default type", dto.ChatRequest{EnableWebSearch: true}, false, rag.NewToolSet(rag.ToolWeb)},
		{
			"unknown types skipped",
			dto.ChatRequest{EnableWebSearch: true, SearchTypes: []string{"academic", "bogus", "retrieve", "social"}},
			true,
			rag.NewToolSet(rag.ToolRetrieve, rag.ToolAcademic, rag.ToolSocial),
		},
		{"types ignored without web", dto.ChatRequest{SearchTypes: []string{"web"}}, false, rag.NewToolSet()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			assert.Equal(t, tt.want, cs.enabledTools(&req, tt.hasDocs))
		})
	}
}
