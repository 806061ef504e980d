package identify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/workpulse/surveychat/internal/compat"
)

// MatchRequest carries a query and its conversational context to the
// semantic matcher.
type MatchRequest struct {
	Query            string
	Context          string
	IsFollowUp       bool
	PreviousQuery    string
	PreviousResponse string
}

// MatchResult is the matcher's structured answer. All fields are guaranteed
// present after normalization; see Normalize.
type MatchResult struct {
	FileIDs       []string `json:"file_ids"`
	MatchedTopics []string `json:"matched_topics"`
	Explanation   string   `json:"explanation"`
	Segments      []string `json:"segments,omitempty"`
}

// Matcher resolves an ambiguous query to file IDs and topics.
type Matcher interface {
	Match(ctx context.Context, req MatchRequest) (MatchResult, error)
}

// NoopMatcher stands in when no semantic matcher is configured. Queries the
// lexical scan cannot resolve come back empty instead of erroring.
type NoopMatcher struct{}

func (NoopMatcher) Match(_ context.Context, _ MatchRequest) (MatchResult, error) {
	return MatchResult{
		FileIDs:       []string{},
		MatchedTopics: []string{},
		Explanation:   "Semantic matching is not configured",
	}, nil
}

// OpenAIMatcher resolves queries with a chat-completion call against a
// condensed view of the canonical topic mapping.
type OpenAIMatcher struct {
	client *openai.Client
	model  string
	loader *compat.Loader
	logger *zap.Logger
}

// NewOpenAIMatcher creates a new OpenAI-backed matcher
func NewOpenAIMatcher(client *openai.Client, model string, loader *compat.Loader, logger *zap.Logger) *OpenAIMatcher {
	return &OpenAIMatcher{client: client, model: model, loader: loader, logger: logger}
}

const matcherSystemPrompt = `You map user questions about a workforce survey to canonical topics and data file IDs.
Respond with JSON only, in this exact shape:
{"file_ids": ["..."], "matched_topics": ["..."], "explanation": "..."}
Pick topics from the provided mapping. Use the file IDs listed under each topic. If nothing matches, return empty arrays and explain why.`

// Match asks the model to resolve the query against the topic mapping.
func (m *OpenAIMatcher) Match(ctx context.Context, req MatchRequest) (MatchResult, error) {
	condensed, err := m.condensedMapping()
	if err != nil {
		return MatchResult{}, err
	}

	var sb strings.Builder
	sb.WriteString("Topic mapping:\n")
	sb.WriteString(condensed)
	sb.WriteString("\n\nQuery: ")
	sb.WriteString(req.Query)
	if req.Context != "" {
		sb.WriteString("\nContext: ")
		sb.WriteString(req.Context)
	}
	if req.IsFollowUp {
		sb.WriteString("\nThis is a follow-up to the previous exchange.")
		if req.PreviousQuery != "" {
			sb.WriteString("\nPrevious query: ")
			sb.WriteString(req.PreviousQuery)
		}
		if req.PreviousResponse != "" {
			sb.WriteString("\nPrevious response: ")
			sb.WriteString(req.PreviousResponse)
		}
	}

	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: m.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: matcherSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: sb.String()},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
	})
	if err != nil {
		return MatchResult{}, fmt.Errorf("semantic matcher call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return MatchResult{}, fmt.Errorf("semantic matcher returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var result MatchResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		m.logger.Warn("semantic matcher returned non-JSON output",
			zap.String("content", content), zap.Error(err))
		return MatchResult{}, fmt.Errorf("parsing matcher response: %w", err)
	}
	return result, nil
}

// condensedMapping renders the topic mapping as a compact text block: one
// line per topic with its question and per-year file IDs.
func (m *OpenAIMatcher) condensedMapping() (string, error) {
	mapping, err := m.loader.Mapping()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, topic := range mapping.Topics() {
		sb.WriteString("- ")
		sb.WriteString(topic.ID)
		if topic.CanonicalQuestion != "" {
			sb.WriteString(": ")
			sb.WriteString(topic.CanonicalQuestion)
		}
		for year, refs := range topic.Mapping {
			for _, ref := range refs {
				sb.WriteString(" [")
				sb.WriteString(year)
				sb.WriteString(":")
				sb.WriteString(ref.File)
				sb.WriteString("]")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
