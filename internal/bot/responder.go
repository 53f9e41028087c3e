package bot

import (
	"context"

	"ngmc-chatbot-backend/internal/models"
)

// Request carries everything a responder may look at: the incoming message,
// the recent history of the chat and whether this message opens a new chat.
type Request struct {
	Message string
	History []models.Conversation
	First   bool
}

// Reply is the responder's answer. Title is only set for a chat's first
// message.
type Reply struct {
	Text  string
	Title string
}

type Responder interface {
	Respond(ctx context.Context, req Request) (Reply, error)
}
