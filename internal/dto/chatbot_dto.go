package dto

import "rag-chatbot-be/internal/entity"

type ChatRequest struct {
	SessionKey      string   `json:"session_key" validate:"required,max=64"`
	Query           string   `json:"query"`
	EnableRAG       *bool    `json:"enable_rag"` // defaults to true
	EnableWebSearch bool     `json:"enable_web_search"`
	SearchTypes     []string `json:"search_types"`
	Model           string   `json:"model,omitempty" validate:"max=128"`
	Images          []string `json:"images,omitempty" validate:"max=8,dive,startswith=data:"`
}

func (r *ChatRequest) RAGEnabled() bool {
	return r.EnableRAG == nil || *r.EnableRAG
}

type ChatResponse struct {
	Response     string                    `json:"response"`
	DocumentInfo []entity.DocumentCitation `json:"document_info"`
	WebInfo      []entity.WebCitation      `json:"web_info"`
	HasDocuments bool                      `json:"has_documents"`
}

type CreateChatResponse struct {
	Status     string `json:"status"`
	SessionKey string `json:"session_key"`
	Message    string `json:"message"`
}

type ChatHistoryResponse struct {
	Status  string        `json:"status"`
	History []entity.Turn `json:"history"`
}

type ListChatsResponse struct {
	Status       string   `json:"status"`
	ChatSessions []string `json:"chat_sessions"`
}

// StatusResponse is the body of endpoints that only report an outcome.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
