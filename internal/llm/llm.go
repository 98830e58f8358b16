package llm

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/studyai/studyai/internal/llm/prompts"
	"github.com/studyai/studyai/internal/quiz"
)

// Token budgets per route. The quiz route needs the most room: 15 question
// objects with explanations.
const (
	subtopicsMaxTokens   = 300
	explanationMaxTokens = 1400
	quizMaxTokens        = 2000
)

var codeFences = regexp.MustCompile("(?m)^```\\w*\\s*|```$")

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api   *openai.Client
	model string
}

// New creates a new LLM client for the given endpoint.
func New(baseURL, apiKey, modelName string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
	}
}

// Ping verifies the endpoint is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("LLM endpoint unreachable: %w", err)
	}
	return nil
}

// Subtopics asks the model for candidate subtopics of a topic. The model is
// instructed to return a JSON string array but the reply is extracted
// defensively: object items and bullet lists are tolerated.
func (c *Client) Subtopics(ctx context.Context, topic string) ([]string, error) {
	raw, err := c.complete(ctx, prompts.SubtopicsSystem, prompts.Subtopics(topic), subtopicsMaxTokens)
	if err != nil {
		return nil, err
	}
	return quiz.ExtractStrings(raw), nil
}

// Explain sends a prebuilt explanation prompt and returns the explanation
// text with any surrounding code fences stripped.
func (c *Client) Explain(ctx context.Context, prompt string) (string, error) {
	raw, err := c.complete(ctx, prompts.ExplanationSystem, prompt, explanationMaxTokens)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(codeFences.ReplaceAllString(raw, "")), nil
}

// GenerateQuiz sends a prebuilt quiz prompt and returns the raw model output.
// Callers run it through the quiz parser; this method makes no shape promises.
func (c *Client) GenerateQuiz(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, prompts.QuizSystem, prompt, quizMaxTokens)
}

func (c *Client) complete(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	slog.Debug("LLM response", "chars", len(content))
	return content, nil
}
