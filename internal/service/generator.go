package service

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const generatorSystemPrompt = `You are a workforce survey analyst. Answer the user's question using ONLY the statistics provided.
Quote percentages exactly as given. If the statistics do not cover the question, say so plainly.
Mention every caveat listed, in your own words, at the end of the answer.`

// Generator turns an assembled statistics block into a prose answer.
type Generator struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

// NewGenerator creates a new answer generator
func NewGenerator(client *openai.Client, model string, temperature float32, maxTokens int, logger *zap.Logger) *Generator {
	return &Generator{
		client:      client,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      logger,
	}
}

// Generate produces a prose answer from the query and its prompt block.
func (g *Generator) Generate(ctx context.Context, query, promptBlock string) (string, error) {
	var sb strings.Builder
	sb.WriteString("Question: ")
	sb.WriteString(query)
	sb.WriteString("\n\nStatistics:\n")
	sb.WriteString(promptBlock)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: generatorSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: sb.String()},
		},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("answer generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("answer generation returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
