package mapper

import (
	"rag-chatbot-be/internal/dto"
	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/pkg/serverutils"
	"rag-chatbot-be/pkg/rag/executor"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// ToChatResponse builds the chat reply. Citation lists are never null on the wire.
func (m *ChatMapper) ToChatResponse(answer string, out executor.Output, hasDocuments bool) *dto.ChatResponse {
	resp := &dto.ChatResponse{
		Response:     answer,
		DocumentInfo: out.DocCitations,
		WebInfo:      out.WebCitations,
		HasDocuments: hasDocuments,
	}
	if resp.DocumentInfo == nil {
		resp.DocumentInfo = []entity.DocumentCitation{}
	}
	if resp.WebInfo == nil {
		resp.WebInfo = []entity.WebCitation{}
	}
	return resp
}

func (m *ChatMapper) ToHistoryResponse(turns []entity.Turn) *dto.ChatHistoryResponse {
	if turns == nil {
		turns = []entity.Turn{}
	}
	return &dto.ChatHistoryResponse{Status: serverutils.StatusSuccess, History: turns}
}

func (m *ChatMapper) ToListChatsResponse(keys []string) *dto.ListChatsResponse {
	if keys == nil {
		keys = []string{}
	}
	return &dto.ListChatsResponse{Status: serverutils.StatusSuccess, ChatSessions: keys}
}
