package repo

import (
	"time"

	"ngmc-chatbot-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatRepo struct {
	db *gorm.DB
}

type ChatRepoInterface interface {
	CreateChatWithExchange(title string, userMessage string, aiReply string) (uuid.UUID, error)
	AppendExchange(chatUUID uuid.UUID, userMessage string, aiReply string) (uuid.UUID, uuid.UUID, error)
	GetAllChats() ([]models.Chat, error)
	GetChatByID(chatUUID uuid.UUID) (*models.Chat, error)
	GetRecentMessages(chatUUID uuid.UUID, limit int) ([]models.Conversation, error)
	DeleteChat(chatUUID uuid.UUID) error
}

func NewChatRepository(db *gorm.DB) ChatRepoInterface {
	return &ChatRepo{db: db}
}

// CreateChatWithExchange creates a chat together with its first user/AI
// message pair in one transaction.
func (r *ChatRepo) CreateChatWithExchange(title string, userMessage string, aiReply string) (uuid.UUID, error) {
	chatUUID := uuid.New()

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.Chat{
			UUID:      chatUUID,
			Title:     title,
			CreatedAt: time.Now(),
		}).Error; err != nil {
			return err
		}
		return createExchange(tx, chatUUID, userMessage, aiReply)
	})

	return chatUUID, err
}

// AppendExchange adds a user/AI message pair to an existing chat atomically.
// Returns the new message ids in user, AI order.
func (r *ChatRepo) AppendExchange(chatUUID uuid.UUID, userMessage string, aiReply string) (uuid.UUID, uuid.UUID, error) {
	userMessageUUID := uuid.New()
	aiMessageUUID := uuid.New()

	err := r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := tx.Create(&models.Conversation{
			UUID:      userMessageUUID,
			ChatUUID:  chatUUID,
			Role:      models.RoleUser,
			Message:   userMessage,
			CreatedAt: now,
		}).Error; err != nil {
			return err
		}
		return tx.Create(&models.Conversation{
			UUID:      aiMessageUUID,
			ChatUUID:  chatUUID,
			Role:      models.RoleAI,
			Message:   aiReply,
			CreatedAt: now.Add(time.Millisecond),
		}).Error
	})

	return userMessageUUID, aiMessageUUID, err
}

func createExchange(tx *gorm.DB, chatUUID uuid.UUID, userMessage string, aiReply string) error {
	now := time.Now()
	if err := tx.Create(&models.Conversation{
		UUID:      uuid.New(),
		ChatUUID:  chatUUID,
		Role:      models.RoleUser,
		Message:   userMessage,
		CreatedAt: now,
	}).Error; err != nil {
		return err
	}
	// The AI row sorts after the user row even when the clock is coarse.
	return tx.Create(&models.Conversation{
		UUID:      uuid.New(),
		ChatUUID:  chatUUID,
		Role:      models.RoleAI,
		Message:   aiReply,
		CreatedAt: now.Add(time.Millisecond),
	}).Error
}

// GetAllChats returns every chat, newest first, with conversations in
// ascending creation order.
func (r *ChatRepo) GetAllChats() ([]models.Chat, error) {
	var chats []models.Chat
	err := r.db.
		Preload("Conversations", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Order("created_at DESC").
		Find(&chats).Error
	return chats, err
}

func (r *ChatRepo) GetChatByID(chatUUID uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	err := r.db.
		Preload("Conversations", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&chat, "uuid = ?", chatUUID).Error
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// GetRecentMessages returns the last limit messages of a chat in
// chronological order.
func (r *ChatRepo) GetRecentMessages(chatUUID uuid.UUID, limit int) ([]models.Conversation, error) {
	if limit <= 0 {
		limit = 10
	}

	var messages []models.Conversation
	err := r.db.
		Where("chat_uuid = ?", chatUUID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Flip newest-first into chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *ChatRepo) DeleteChat(chatUUID uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_uuid = ?", chatUUID).Delete(&models.Conversation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Chat{}, "uuid = ?", chatUUID).Error
	})
}
