package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/workpulse/surveychat/internal/domain"
	"github.com/workpulse/surveychat/internal/repository"
)

func newChatService(t *testing.T) *ChatService {
	t.Helper()
	f := newPipeline(t)

	db, err := repository.NewDB(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewChatService(repository.NewSessionRepository(db), f.processor, nil)
}

func TestChatCreatesSessionAndPersistsTurns(t *testing.T) {
	svc := newChatService(t)

	resp, err := svc.Chat(context.Background(), &domain.ChatRequest{
		Message: "remote work attitudes by gender",
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.SessionID == "" {
		t.Fatal("expected a generated session id")
	}
	if resp.Answer == "" {
		t.Error("expected an answer (raw statistics block without a generator)")
	}

	messages, err := svc.History(resp.SessionID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("messages = %d, want user + assistant", len(messages))
	}
	if messages[0].Role != "user" || messages[1].Role != "assistant" {
		t.Errorf("roles = %q, %q", messages[0].Role, messages[1].Role)
	}
}

func TestChatEmptyMessage(t *testing.T) {
	svc := newChatService(t)

	_, err := svc.Chat(context.Background(), &domain.ChatRequest{Message: "  "})
	if err != domain.ErrEmptyQuery {
		t.Errorf("err = %v, want ErrEmptyQuery", err)
	}
}

func TestChatUnknownSession(t *testing.T) {
	svc := newChatService(t)

	_, err := svc.Chat(context.Background(), &domain.ChatRequest{
		SessionID: "no-such-session",
		Message:   "remote work attitudes",
	})
	if err != domain.ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
