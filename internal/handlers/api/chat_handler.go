package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/w0nsdoof/diplomatch/internal/chat"
	"github.com/w0nsdoof/diplomatch/internal/middlewares"
	"github.com/w0nsdoof/diplomatch/internal/users"
	"github.com/w0nsdoof/diplomatch/model"
)

type ChatHandler struct {
	chatService ChatService
}

type startChatRequest struct {
	UserID uint `json:"userId"`
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

type chatResponse struct {
	ChatID       uint               `json:"chatId"`
	Participants []userInfoResponse `json:"participants"`
	CreatedAt    time.Time          `json:"createdAt"`
}

type messageResponse struct {
	MessageID uint      `json:"messageId"`
	ChatID    uint      `json:"chatId"`
	SenderID  uint      `json:"senderId"`
	Content   string    `json:"content"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

func newChatResponse(c *model.Chat) chatResponse {
	participants := make([]userInfoResponse, 0, len(c.Participants))
	for i := range c.Participants {
		participants = append(participants, newUserInfoResponse(&c.Participants[i]))
	}
	return chatResponse{
		ChatID:       c.ID,
		Participants: participants,
		CreatedAt:    c.CreatedAt,
	}
}

func newMessageResponse(m *model.Message) messageResponse {
	return messageResponse{
		MessageID: m.ID,
		ChatID:    m.ChatID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
}

func paramUint(ctx *fiber.Ctx, name string) (uint, error) {
	val, err := strconv.ParseUint(ctx.Params(name), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, MsgInvalidRequest)
	}
	return uint(val), nil
}

func renderChatError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, chat.ErrChatNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(
			NewErrorResponse(fiber.StatusNotFound, MsgChatNotFound))
	case errors.Is(err, chat.ErrMessageNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(
			NewErrorResponse(fiber.StatusNotFound, MsgMessageNotFound))
	case errors.Is(err, chat.ErrNotParticipant):
		return ctx.Status(fiber.StatusForbidden).JSON(
			NewErrorResponse(fiber.StatusForbidden, MsgNotChatParticipant))
	case errors.Is(err, chat.ErrSelfChat):
		return ctx.Status(fiber.StatusBadRequest).JSON(
			NewErrorResponse(fiber.StatusBadRequest, MsgSelfChatNotAllowed))
	case errors.Is(err, users.ErrUserNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(
			NewErrorResponse(fiber.StatusNotFound, MsgUserNotFound))
	default:
		return err
	}
}

func (h *ChatHandler) PostStartChat(ctx *fiber.Ctx) error {
	var req startChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(
			NewErrorResponse(fiber.StatusBadRequest, MsgInvalidRequest))
	}
	c, err := h.chatService.StartOrGetChat(ctx.Context(), middlewares.AuthUserID(ctx), req.UserID)
	if err != nil {
		return renderChatError(ctx, err)
	}
	return ctx.JSON(NewDataResponse(newChatResponse(c)))
}

func (h *ChatHandler) GetChats(ctx *fiber.Ctx) error {
	chats, err := h.chatService.ListChats(ctx.Context(), middlewares.AuthUserID(ctx))
	if err != nil {
		return err
	}
	resp := make([]chatResponse, 0, len(chats))
	for i := range chats {
		resp = append(resp, newChatResponse(&chats[i]))
	}
	return ctx.JSON(NewDataResponse(resp))
}

func (h *ChatHandler) GetChat(ctx *fiber.Ctx) error {
	chatID, err := paramUint(ctx, "id")
	if err != nil {
		return err
	}
	c, err := h.chatService.GetChat(ctx.Context(), chatID, middlewares.AuthUserID(ctx))
	if err != nil {
		return renderChatError(ctx, err)
	}
	return ctx.JSON(NewDataResponse(newChatResponse(c)))
}

func (h *ChatHandler) GetMessages(ctx *fiber.Ctx) error {
	chatID, err := paramUint(ctx, "id")
	if err != nil {
		return err
	}
	messages, err := h.chatService.ListMessages(ctx.Context(), chatID, middlewares.AuthUserID(ctx))
	if err != nil {
		return renderChatError(ctx, err)
	}
	resp := make([]messageResponse, 0, len(messages))
	for i := range messages {
		resp = append(resp, newMessageResponse(&messages[i]))
	}
	return ctx.JSON(NewDataResponse(resp))
}

func (h *ChatHandler) PostMessage(ctx *fiber.Ctx) error {
	chatID, err := paramUint(ctx, "id")
	if err != nil {
		return err
	}
	var req sendMessageRequest
	if err := ctx.BodyParser(&req); err != nil || req.Content == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(
			NewErrorResponse(fiber.StatusBadRequest, MsgInvalidRequest))
	}
	msg, err := h.chatService.SendMessage(ctx.Context(), chatID, middlewares.AuthUserID(ctx), req.Content)
	if err != nil {
		return renderChatError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(NewDataResponse(newMessageResponse(msg)))
}

func (h *ChatHandler) PostMarkMessageRead(ctx *fiber.Ctx) error {
	messageID, err := paramUint(ctx, "id")
	if err != nil {
		return err
	}
	if err := h.chatService.MarkMessageRead(ctx.Context(), messageID, middlewares.AuthUserID(ctx)); err != nil {
		return renderChatError(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func NewChatHandler(chatService ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}
