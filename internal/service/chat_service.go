package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/workpulse/surveychat/internal/domain"
	"github.com/workpulse/surveychat/internal/repository"
)

// ChatService runs the retrieval pipeline for a chat turn and persists the
// exchange.
type ChatService struct {
	sessionRepo *repository.SessionRepository
	processor   *QueryProcessor
	generator   *Generator
}

// NewChatService creates a new chat service
func NewChatService(
	sessionRepo *repository.SessionRepository,
	processor *QueryProcessor,
	generator *Generator,
) *ChatService {
	return &ChatService{
		sessionRepo: sessionRepo,
		processor:   processor,
		generator:   generator,
	}
}

// Chat handles a chat message: runs the query pipeline against the session's
// thread, generates a prose answer when a generator is configured, and saves
// both turns.
func (s *ChatService) Chat(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, domain.ErrEmptyQuery
	}

	// Get or create session; the session ID doubles as the cache thread ID.
	sessionID := req.SessionID
	if sessionID == "" {
		session := &domain.Session{}
		if err := s.sessionRepo.Create(session); err != nil {
			return nil, err
		}
		sessionID = session.ID
	} else {
		session, err := s.sessionRepo.Get(sessionID)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, domain.ErrNotFound
		}
	}

	history, prevQuery, prevResponse, err := s.threadHistory(sessionID)
	if err != nil {
		return nil, err
	}

	// Save user message
	userMsg := &domain.Message{
		SessionID: sessionID,
		Role:      "user",
		Content:   req.Message,
	}
	if err := s.sessionRepo.CreateMessage(userMsg); err != nil {
		return nil, err
	}

	result, err := s.processor.Process(ctx, QueryRequest{
		ThreadID:         sessionID,
		Query:            req.Message,
		Context:          req.Context,
		History:          history,
		PreviousQuery:    prevQuery,
		PreviousResponse: prevResponse,
	})
	if err != nil {
		return nil, err
	}

	answer := result.PromptBlock
	if result.Status == StatusEarlyReturn {
		answer = "Please ask a question about the survey data."
	} else if s.generator != nil {
		generated, err := s.generator.Generate(ctx, req.Message, result.PromptBlock)
		if err != nil {
			// Fall back to the raw statistics block rather than failing
			// the whole turn.
			answer = fmt.Sprintf("%s\n\n(The answer could not be phrased automatically.)", result.PromptBlock)
		} else {
			answer = generated
		}
	}

	// Save assistant message
	assistantMsg := &domain.Message{
		SessionID: sessionID,
		Role:      "assistant",
		Content:   answer,
	}
	if err := s.sessionRepo.CreateMessage(assistantMsg); err != nil {
		return nil, err
	}

	if err := s.sessionRepo.Update(sessionID); err != nil {
		return nil, err
	}

	return &domain.ChatResponse{
		SessionID: sessionID,
		Answer:    answer,
		Caveats:   result.Caveats,
		Status:    result.Status,
	}, nil
}

// History returns the full message history for a session.
func (s *ChatService) History(sessionID string) ([]*domain.Message, error) {
	session, err := s.sessionRepo.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrNotFound
	}
	return s.sessionRepo.GetMessages(sessionID)
}

// threadHistory extracts prior user queries plus the most recent exchange
// for follow-up handling.
func (s *ChatService) threadHistory(sessionID string) (history []string, prevQuery, prevResponse string, err error) {
	messages, err := s.sessionRepo.GetMessages(sessionID)
	if err != nil {
		return nil, "", "", err
	}
	for _, msg := range messages {
		switch msg.Role {
		case "user":
			history = append(history, msg.Content)
			prevQuery = msg.Content
		case "assistant":
			prevResponse = msg.Content
		}
	}
	return history, prevQuery, prevResponse, nil
}
