package libraries

import (
	"encoding/json"
	"sync"

	"ngmc-chatbot-backend/internal/logging"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// WebSocketMessage represents the standard structure for all websocket messages
type WebSocketMessageType string

const (
	WebSocketMessageTypePing           WebSocketMessageType = "ping"
	WebSocketMessageTypePong           WebSocketMessageType = "pong"
	WebSocketMessageTypeError          WebSocketMessageType = "error"
	WebSocketMessageTypeChatCreated    WebSocketMessageType = "chat_created"
	WebSocketMessageTypeMessageCreated WebSocketMessageType = "message_created"
)

type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
	once sync.Once
}

type Hub struct {
	Clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan []byte
}

type WebSocketMessage struct {
	Type WebSocketMessageType `json:"type"`
	Data interface{}          `json:"data,omitempty"`
}

// ChatEventPayload is broadcast whenever a chat is created or extended so
// connected browsers can refresh their chat list without polling.
type ChatEventPayload struct {
	ChatID string `json:"chat_id"`
	Title  string `json:"title,omitempty"`
	Reply  string `json:"reply"`
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan []byte),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.Clients[client.ID] = client
		case client := <-h.Unregister:
			if _, exists := h.Clients[client.ID]; exists {
				delete(h.Clients, client.ID)
				client.once.Do(func() {
					close(client.Send)
				})
			}
		case message := <-h.Broadcast:
			for _, client := range h.Clients {
				client.Send <- message
			}
		}
	}
}

// BroadcastEvent marshals and broadcasts a typed event to every client.
func (h *Hub) BroadcastEvent(eventType WebSocketMessageType, payload interface{}) {
	event := WebSocketMessage{Type: eventType, Data: payload}
	data, err := json.Marshal(event)
	if err != nil {
		lg := logging.L()
		lg.Error().Err(err).Msg("failed to marshal websocket event")
		return
	}
	h.Broadcast <- data
}

func (h *Hub) SendMessage(client *Client, message []byte) {
	client.Send <- message
}

// sendPongMessage sends a standardized pong message to a client
func sendPongMessage(hub *Hub, client *Client) {
	pongResp := WebSocketMessage{
		Type: WebSocketMessageTypePong,
	}
	pongBytes, err := json.Marshal(pongResp)
	if err != nil {
		lg := logging.L()
		lg.Error().Err(err).Msg("failed to marshal pong response")
		return
	}
	hub.SendMessage(client, pongBytes)
}

// UpgradeMiddleware rejects plain HTTP requests on websocket routes.
func UpgradeMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// WebSocketHandler registers the client with the hub and keeps the
// connection alive until the browser disconnects. Incoming traffic is
// limited to pings; everything else is ignored.
func WebSocketHandler(hub *Hub) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		client := &Client{
			ID:   uuid.NewString(),
			Conn: conn,
			Send: make(chan []byte, 256),
		}

		hub.Register <- client

		// Write loop
		go func() {
			defer func() {
				hub.Unregister <- client
				conn.Close()
			}()
			for msg := range client.Send {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					lg := logging.L()
					lg.Debug().Err(err).Str("client", client.ID).Msg("websocket write error")
					return
				}
			}
		}()

		// Read loop
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				hub.Unregister <- client
				return
			}

			var incoming WebSocketMessage
			if err := json.Unmarshal(msg, &incoming); err != nil {
				continue
			}
			if incoming.Type == WebSocketMessageTypePing {
				sendPongMessage(hub, client)
			}
		}
	})
}
