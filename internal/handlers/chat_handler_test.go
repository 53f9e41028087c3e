package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ngmc-chatbot-backend/internal/bot"
	"ngmc-chatbot-backend/internal/cache"
	"ngmc-chatbot-backend/internal/middleware"
	"ngmc-chatbot-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type fakeChatRepo struct {
	chats map[uuid.UUID]*models.Chat
	order []uuid.UUID
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{chats: map[uuid.UUID]*models.Chat{}}
}

func (f *fakeChatRepo) CreateChatWithExchange(title, userMessage, aiReply string) (uuid.UUID, error) {
	chatUUID := uuid.New()
	now := time.Now()
	f.chats[chatUUID] = &models.Chat{
		UUID:      chatUUID,
		Title:     title,
		CreatedAt: now,
		Conversations: []models.Conversation{
			{UUID: uuid.New(), ChatUUID: chatUUID, Role: models.RoleUser, Message: userMessage, CreatedAt: now},
			{UUID: uuid.New(), ChatUUID: chatUUID, Role: models.RoleAI, Message: aiReply, CreatedAt: now.Add(time.Millisecond)},
		},
	}
	f.order = append(f.order, chatUUID)
	return chatUUID, nil
}

func (f *fakeChatRepo) AppendExchange(chatUUID uuid.UUID, userMessage, aiReply string) (uuid.UUID, uuid.UUID, error) {
	chat, ok := f.chats[chatUUID]
	if !ok {
		return uuid.Nil, uuid.Nil, gorm.ErrRecordNotFound
	}
	now := time.Now()
	userUUID, aiUUID := uuid.New(), uuid.New()
	chat.Conversations = append(chat.Conversations,
		models.Conversation{UUID: userUUID, ChatUUID: chatUUID, Role: models.RoleUser, Message: userMessage, CreatedAt: now},
		models.Conversation{UUID: aiUUID, ChatUUID: chatUUID, Role: models.RoleAI, Message: aiReply, CreatedAt: now.Add(time.Millisecond)},
	)
	return userUUID, aiUUID, nil
}

func (f *fakeChatRepo) GetAllChats() ([]models.Chat, error) {
	chats := make([]models.Chat, 0, len(f.order))
	for i := len(f.order) - 1; i >= 0; i-- {
		chats = append(chats, *f.chats[f.order[i]])
	}
	return chats, nil
}

func (f *fakeChatRepo) GetChatByID(chatUUID uuid.UUID) (*models.Chat, error) {
	chat, ok := f.chats[chatUUID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return chat, nil
}

func (f *fakeChatRepo) GetRecentMessages(chatUUID uuid.UUID, limit int) ([]models.Conversation, error) {
	chat, ok := f.chats[chatUUID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	messages := chat.Conversations
	if len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

func (f *fakeChatRepo) DeleteChat(chatUUID uuid.UUID) error {
	delete(f.chats, chatUUID)
	for i, id := range f.order {
		if id == chatUUID {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

type fakeResponder struct {
	lastRequest bot.Request
}

func (f *fakeResponder) Respond(_ context.Context, req bot.Request) (bot.Reply, error) {
	f.lastRequest = req
	reply := bot.Reply{Text: "canned reply"}
	if req.First {
		reply.Title = "Derived Title"
	}
	return reply, nil
}

type fakeChatCache struct {
	chats       []models.Chat
	invalidated int
}

func (f *fakeChatCache) Get(context.Context) ([]models.Chat, error) {
	if f.chats == nil {
		return nil, cache.ErrCacheMiss
	}
	return f.chats, nil
}

func (f *fakeChatCache) Set(_ context.Context, chats []models.Chat, _ time.Duration) error {
	f.chats = chats
	return nil
}

func (f *fakeChatCache) Invalidate(context.Context) error {
	f.chats = nil
	f.invalidated++
	return nil
}

func (f *fakeChatCache) Close() error { return nil }

func newTestApp(repo *fakeChatRepo, responder bot.Responder, chats cache.ChatListCache) *fiber.App {
	app := fiber.New()
	handler := NewChatHandler(repo, responder, chats, nil)
	auth := middleware.RequireAPIKey(testSecret)

	app.Post("/postchat/", auth, handler.PostChat)
	app.Post("/postchat/:chatId/", auth, handler.ContinueChat)
	app.Get("/getchat/", auth, handler.GetChats)
	app.Get("/getchat/:chatId/", auth, handler.GetChat)
	app.Delete("/deletechat/:chatId/", auth, handler.DeleteChat)
	app.Get("/checkAuth", auth, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string, authed bool) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("x-api-key", testSecret)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test(%s %s): %v", method, target, err)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var decoded map[string]interface{}
	if len(raw) > 0 && strings.HasPrefix(strings.TrimSpace(string(raw)), "{") {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("unmarshal %q: %v", raw, err)
		}
	}
	return resp, decoded
}

func TestPostChatCreatesChat(t *testing.T) {
	repo := newFakeChatRepo()
	responder := &fakeResponder{}
	app := newTestApp(repo, responder, nil)

	resp, body := doJSON(t, app, http.MethodPost, "/postchat/", `{"message":"when is the exam?"}`, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	if body["reply"] != "canned reply" {
		t.Errorf("reply = %v", body["reply"])
	}
	if body["title"] != "Derived Title" {
		t.Errorf("title = %v", body["title"])
	}
	chatID, ok := body["chatId"].(string)
	if !ok || chatID == "" {
		t.Fatalf("chatId missing: %v", body)
	}

	chat, err := repo.GetChatByID(uuid.MustParse(chatID))
	if err != nil {
		t.Fatalf("chat not persisted: %v", err)
	}
	if len(chat.Conversations) != 2 {
		t.Fatalf("got %d conversations, want 2", len(chat.Conversations))
	}
	if chat.Conversations[0].Role != models.RoleUser || chat.Conversations[1].Role != models.RoleAI {
		t.Errorf("conversation roles = %s, %s", chat.Conversations[0].Role, chat.Conversations[1].Role)
	}
	if !responder.lastRequest.First {
		t.Error("responder should see the first-message flag")
	}
}

func TestPostChatValidation(t *testing.T) {
	app := newTestApp(newFakeChatRepo(), &fakeResponder{}, nil)

	cases := []struct {
		name string
		body string
		want string
	}{
		{"empty message", `{"message":""}`, "Valid message is required"},
		{"whitespace message", `{"message":"   "}`, "Valid message is required"},
		{"too long", fmt.Sprintf(`{"message":%q}`, strings.Repeat("a", 1001)), "Message too long (max 1000 chars)"},
		{"malformed json", `{"message":`, "Invalid request body"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := doJSON(t, app, http.MethodPost, "/postchat/", tc.body, true)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			if body["error"] != tc.want {
				t.Errorf("error = %v, want %q", body["error"], tc.want)
			}
		})
	}
}

func TestContinueChatAppends(t *testing.T) {
	repo := newFakeChatRepo()
	responder := &fakeResponder{}
	app := newTestApp(repo, responder, nil)

	chatID, err := repo.CreateChatWithExchange("Title", "hello", "hi there")
	if err != nil {
		t.Fatal(err)
	}

	resp, body := doJSON(t, app, http.MethodPost, "/postchat/"+chatID.String()+"/", `{"message":"and the fees?"}`, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if _, hasTitle := body["title"]; hasTitle {
		t.Error("continue response must not carry a title")
	}
	if body["chatId"] != chatID.String() {
		t.Errorf("chatId = %v, want %s", body["chatId"], chatID)
	}

	chat, _ := repo.GetChatByID(chatID)
	if len(chat.Conversations) != 4 {
		t.Errorf("got %d conversations, want 4", len(chat.Conversations))
	}
	if responder.lastRequest.First {
		t.Error("responder must not see the first-message flag on continue")
	}
	if len(responder.lastRequest.History) == 0 {
		t.Error("responder should receive the chat history")
	}
}

func TestContinueChatNotFound(t *testing.T) {
	app := newTestApp(newFakeChatRepo(), &fakeResponder{}, nil)

	for _, target := range []string{
		"/postchat/" + uuid.NewString() + "/",
		"/postchat/not-a-uuid/",
	} {
		resp, body := doJSON(t, app, http.MethodPost, target, `{"message":"hello"}`, true)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", target, resp.StatusCode)
		}
		if body["error"] != "Chat not found" {
			t.Errorf("%s: error = %v", target, body["error"])
		}
	}
}

func TestGetChatsNewestFirst(t *testing.T) {
	repo := newFakeChatRepo()
	app := newTestApp(repo, &fakeResponder{}, nil)

	first, _ := repo.CreateChatWithExchange("First", "a", "b")
	second, _ := repo.CreateChatWithExchange("Second", "c", "d")

	req := httptest.NewRequest(http.MethodGet, "/getchat/", nil)
	req.Header.Set("x-api-key", testSecret)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var chats []models.Chat
	if err := json.NewDecoder(resp.Body).Decode(&chats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(chats) != 2 {
		t.Fatalf("got %d chats, want 2", len(chats))
	}
	if chats[0].UUID != second || chats[1].UUID != first {
		t.Errorf("chats not newest first: %v then %v", chats[0].UUID, chats[1].UUID)
	}
	if len(chats[0].Conversations) != 2 {
		t.Errorf("nested conversations missing: %d", len(chats[0].Conversations))
	}
}

func TestGetChatsUsesCache(t *testing.T) {
	repo := newFakeChatRepo()
	chatCache := &fakeChatCache{}
	app := newTestApp(repo, &fakeResponder{}, chatCache)

	if _, err := repo.CreateChatWithExchange("Cached", "a", "b"); err != nil {
		t.Fatal(err)
	}

	// First read populates the cache.
	resp, _ := doJSON(t, app, http.MethodGet, "/getchat/", "", true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if chatCache.chats == nil {
		t.Fatal("cache was not populated")
	}

	// A write must invalidate it.
	if resp, _ := doJSON(t, app, http.MethodPost, "/postchat/", `{"message":"hi"}`, true); resp.StatusCode != http.StatusOK {
		t.Fatalf("postchat status = %d", resp.StatusCode)
	}
	if chatCache.invalidated == 0 {
		t.Error("cache was not invalidated by a write")
	}
}

func TestGetChatSingle(t *testing.T) {
	repo := newFakeChatRepo()
	app := newTestApp(repo, &fakeResponder{}, nil)

	chatID, _ := repo.CreateChatWithExchange("Single", "a", "b")

	resp, body := doJSON(t, app, http.MethodGet, "/getchat/"+chatID.String()+"/", "", true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["title"] != "Single" {
		t.Errorf("title = %v", body["title"])
	}

	resp, body = doJSON(t, app, http.MethodGet, "/getchat/"+uuid.NewString()+"/", "", true)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if body["error"] != "Chat not found" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestDeleteChat(t *testing.T) {
	repo := newFakeChatRepo()
	app := newTestApp(repo, &fakeResponder{}, nil)

	chatID, _ := repo.CreateChatWithExchange("Doomed", "a", "b")

	resp, body := doJSON(t, app, http.MethodDelete, "/deletechat/"+chatID.String()+"/", "", true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["message"] != "Chat deleted successfully" {
		t.Errorf("message = %v", body["message"])
	}
	if body["deletedChatId"] != chatID.String() {
		t.Errorf("deletedChatId = %v", body["deletedChatId"])
	}

	if _, err := repo.GetChatByID(chatID); err == nil {
		t.Error("chat still present after delete")
	}

	resp, _ = doJSON(t, app, http.MethodDelete, "/deletechat/"+chatID.String()+"/", "", true)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", resp.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	app := newTestApp(newFakeChatRepo(), &fakeResponder{}, nil)

	targets := []struct {
		method string
		target string
	}{
		{http.MethodPost, "/postchat/"},
		{http.MethodGet, "/getchat/"},
		{http.MethodGet, "/checkAuth"},
	}

	for _, tc := range targets {
		resp, body := doJSON(t, app, tc.method, tc.target, "", false)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s %s without key: status = %d, want 401", tc.method, tc.target, resp.StatusCode)
		}
		if body["error"] != "Unauthorized" {
			t.Errorf("%s %s: error = %v", tc.method, tc.target, body["error"])
		}
	}

	// Wrong key is also rejected.
	req := httptest.NewRequest(http.MethodGet, "/checkAuth", nil)
	req.Header.Set("x-api-key", "wrong")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong key: status = %d, want 401", resp.StatusCode)
	}

	// Right key passes.
	resp, body := doJSON(t, app, http.MethodGet, "/checkAuth", "", true)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("valid key: status = %d, want 200", resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Errorf("status body = %v", body["status"])
	}
}
