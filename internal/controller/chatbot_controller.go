package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"rag-chatbot-be/internal/dto"
	"rag-chatbot-be/internal/mapper"
	"rag-chatbot-be/internal/pkg/serverutils"
	"rag-chatbot-be/internal/repository/implementation"
	"rag-chatbot-be/internal/service"
)

type IChatbotController interface {
	RegisterRoutes(r fiber.Router)
	CreateChat(ctx *fiber.Ctx) error
	Chat(ctx *fiber.Ctx) error
	ClearChat(ctx *fiber.Ctx) error
	DeleteChat(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	ListChats(ctx *fiber.Ctx) error
}

type chatbotController struct {
	service service.IChatbotService
	mapper  *mapper.ChatMapper
}

func NewChatbotController(service service.IChatbotService) IChatbotController {
	return &chatbotController{service: service, mapper: mapper.NewChatMapper()}
}

func (c *chatbotController) RegisterRoutes(r fiber.Router) {
	r.Post("/create_chat", c.CreateChat)
	r.Post("/chat", c.Chat)
	r.Post("/clear_chat", c.ClearChat)
	r.Post("/delete_chat", c.DeleteChat)
	r.Get("/chat_history", c.History)
	r.Get("/list_chats", c.ListChats)
}

func (c *chatbotController) CreateChat(ctx *fiber.Ctx) error {
	res, err := c.service.CreateChat(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *chatbotController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Chat(ctx.UserContext(), &req)
	if err != nil {
		return mapError(err)
	}
	return ctx.JSON(res)
}

func (c *chatbotController) ClearChat(ctx *fiber.Ctx) error {
	key, err := sessionKey(ctx)
	if err != nil {
		return err
	}
	if err := c.service.ClearChat(ctx.UserContext(), key); err != nil {
		return mapError(err)
	}
	return ctx.JSON(dto.StatusResponse{Status: serverutils.StatusSuccess, Message: "Chat cleared successfully"})
}

func (c *chatbotController) DeleteChat(ctx *fiber.Ctx) error {
	key, err := sessionKey(ctx)
	if err != nil {
		return err
	}
	if err := c.service.DeleteChat(ctx.UserContext(), key); err != nil {
		return mapError(err)
	}
	return ctx.JSON(dto.StatusResponse{Status: serverutils.StatusSuccess, Message: "Chat deleted successfully"})
}

func (c *chatbotController) History(ctx *fiber.Ctx) error {
	key, err := sessionKey(ctx)
	if err != nil {
		return err
	}
	history, err := c.service.History(ctx.UserContext(), key)
	if err != nil {
		return mapError(err)
	}
	return ctx.JSON(c.mapper.ToHistoryResponse(history))
}

func (c *chatbotController) ListChats(ctx *fiber.Ctx) error {
	keys, err := c.service.ListChats(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(c.mapper.ToListChatsResponse(keys))
}

func sessionKey(ctx *fiber.Ctx) (string, error) {
	key := ctx.Query("session_key")
	if key == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "session_key is required")
	}
	return key, nil
}

// mapError turns domain errors into HTTP errors; anything else becomes a 500.
func mapError(err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Chat session not found")
	case errors.Is(err, implementation.ErrInvalidSessionKey):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return err
	}
}
