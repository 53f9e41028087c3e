package handlers

import (
	"errors"
	"strings"
	"time"

	"ngmc-chatbot-backend/internal/bot"
	"ngmc-chatbot-backend/internal/cache"
	"ngmc-chatbot-backend/internal/libraries"
	"ngmc-chatbot-backend/internal/logging"
	"ngmc-chatbot-backend/internal/repo"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	maxMessageLen    = 1000
	historyWindow    = 10
	chatListCacheTTL = 30 * time.Second
)

type ChatHandler struct {
	chatRepo  repo.ChatRepoInterface
	responder bot.Responder
	chats     cache.ChatListCache // optional, nil disables caching
	hub       *libraries.Hub      // optional, nil disables broadcasts
}

func NewChatHandler(chatRepo repo.ChatRepoInterface, responder bot.Responder, chats cache.ChatListCache, hub *libraries.Hub) *ChatHandler {
	return &ChatHandler{
		chatRepo:  chatRepo,
		responder: responder,
		chats:     chats,
		hub:       hub,
	}
}

// validateMessage returns the error string for a bad message, or "" when
// the message is acceptable.
func validateMessage(message string) string {
	if message == "" {
		return "Valid message is required"
	}
	if len(message) > maxMessageLen {
		return "Message too long (max 1000 chars)"
	}
	return ""
}

func parseMessage(c *fiber.Ctx) (string, string) {
	var dto struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&dto); err != nil {
		return "", "Invalid request body"
	}

	message := strings.TrimSpace(dto.Message)
	return message, validateMessage(message)
}

// PostChat starts a new chat from the first user message.
func (h *ChatHandler) PostChat(c *fiber.Ctx) error {
	message, validationErr := parseMessage(c)
	if validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": validationErr,
		})
	}

	reply, err := h.responder.Respond(c.UserContext(), bot.Request{
		Message: message,
		First:   true,
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to process message")
	}

	chatUUID, err := h.chatRepo.CreateChatWithExchange(reply.Title, message, reply.Text)
	if err != nil {
		lg := logging.FromCtx(c)
		lg.Error().Err(err).Msg("failed to create chat")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create chat")
	}

	h.invalidateChatList(c)
	h.broadcast(libraries.WebSocketMessageTypeChatCreated, chatUUID.String(), reply)

	return c.JSON(fiber.Map{
		"chatId": chatUUID,
		"reply":  reply.Text,
		"title":  reply.Title,
	})
}

// ContinueChat appends a user message and the bot's answer to an existing
// chat.
func (h *ChatHandler) ContinueChat(c *fiber.Ctx) error {
	chatUUID, err := uuid.Parse(c.Params("chatId"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Chat not found",
		})
	}

	message, validationErr := parseMessage(c)
	if validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": validationErr,
		})
	}

	if _, err := h.chatRepo.GetChatByID(chatUUID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Chat not found",
			})
		}
		lg := logging.FromCtx(c)
		lg.Error().Err(err).Msg("failed to load chat")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load chat")
	}

	history, err := h.chatRepo.GetRecentMessages(chatUUID, historyWindow)
	if err != nil {
		lg := logging.FromCtx(c)
		lg.Error().Err(err).Msg("failed to load history")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load chat")
	}

	reply, err := h.responder.Respond(c.UserContext(), bot.Request{
		Message: message,
		History: history,
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to process message")
	}

	if _, _, err := h.chatRepo.AppendExchange(chatUUID, message, reply.Text); err != nil {
		lg := logging.FromCtx(c)
		lg.Error().Err(err).Msg("failed to store messages")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to store messages")
	}

	h.invalidateChatList(c)
	h.broadcast(libraries.WebSocketMessageTypeMessageCreated, chatUUID.String(), reply)

	return c.JSON(fiber.Map{
		"chatId": chatUUID,
		"reply":  reply.Text,
	})
}

// GetChats returns every chat with its nested conversations, newest chat
// first.
func (h *ChatHandler) GetChats(c *fiber.Ctx) error {
	if h.chats != nil {
		if chats, err := h.chats.Get(c.UserContext()); err == nil {
			return c.JSON(chats)
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			lg := logging.FromCtx(c)
			lg.Warn().Err(err).Msg("chat list cache read failed")
		}
	}

	chats, err := h.chatRepo.GetAllChats()
	if err != nil {
		lg := logging.FromCtx(c)
		lg.Error().Err(err).Msg("failed to list chats")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to get chats")
	}

	if h.chats != nil {
		if err := h.chats.Set(c.UserContext(), chats, chatListCacheTTL); err != nil {
			lg := logging.FromCtx(c)
			lg.Warn().Err(err).Msg("chat list cache write failed")
		}
	}

	return c.JSON(chats)
}

// GetChat returns a single chat with its conversations.
func (h *ChatHandler) GetChat(c *fiber.Ctx) error {
	chatUUID, err := uuid.Parse(c.Params("chatId"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Chat not found",
		})
	}

	chat, err := h.chatRepo.GetChatByID(chatUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Chat not found",
			})
		}
		lg := logging.FromCtx(c)
		lg.Error().Err(err).Msg("failed to load chat")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load chat")
	}

	return c.JSON(chat)
}

// DeleteChat removes a chat and its conversations.
func (h *ChatHandler) DeleteChat(c *fiber.Ctx) error {
	chatUUID, err := uuid.Parse(c.Params("chatId"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Chat not found",
		})
	}

	if _, err := h.chatRepo.GetChatByID(chatUUID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Chat not found",
			})
		}
		lg := logging.FromCtx(c)
		lg.Error().Err(err).Msg("failed to load chat")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load chat")
	}

	if err := h.chatRepo.DeleteChat(chatUUID); err != nil {
		lg := logging.FromCtx(c)
		lg.Error().Err(err).Msg("failed to delete chat")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to delete chat")
	}

	h.invalidateChatList(c)

	return c.JSON(fiber.Map{
		"message":       "Chat deleted successfully",
		"deletedChatId": chatUUID,
	})
}

func (h *ChatHandler) invalidateChatList(c *fiber.Ctx) {
	if h.chats == nil {
		return
	}
	if err := h.chats.Invalidate(c.UserContext()); err != nil {
		lg := logging.FromCtx(c)
		lg.Warn().Err(err).Msg("chat list cache invalidation failed")
	}
}

func (h *ChatHandler) broadcast(eventType libraries.WebSocketMessageType, chatID string, reply bot.Reply) {
	if h.hub == nil {
		return
	}
	h.hub.BroadcastEvent(eventType, libraries.ChatEventPayload{
		ChatID: chatID,
		Title:  reply.Title,
		Reply:  reply.Text,
	})
}
