package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"nutricoach/coach-app/internal/domain"

	openai "github.com/sashabaranov/go-openai"
)

// Config holds the settings for the external generation endpoint. The
// endpoint speaks the OpenAI chat API (OpenRouter in production).
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration // total-call timeout; a timed-out week is a skipped unit
}

const defaultCallTimeout = 6 * time.Minute

// openAIGenerator implements Generator on the OpenAI-compatible chat API.
type openAIGenerator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIGenerator creates a Generator backed by an OpenAI-compatible
// endpoint.
func NewOpenAIGenerator(cfg Config) Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &openAIGenerator{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: timeout,
	}
}

// GenerateWeek requests one (month, week) plan unit and validates its shape.
func (g *openAIGenerator) GenerateWeek(ctx context.Context, req WeekRequest) (*WeekPlan, error) {
	if req.DurationMonths > domain.MaxDurationMonths {
		req.DurationMonths = domain.MaxDurationMonths
	}
	if req.DurationMonths < 1 {
		return nil, upstream(fmt.Errorf("invalid duration: %d months", req.DurationMonths))
	}
	if req.Month < 1 || req.Month > req.DurationMonths {
		return nil, upstream(fmt.Errorf("month index %d out of range [1,%d]", req.Month, req.DurationMonths))
	}
	if req.Week < 1 || req.Week > weeksPerMonth {
		return nil, upstream(fmt.Errorf("week index %d out of range [1,%d]", req.Week, weeksPerMonth))
	}

	prompt := buildWeekPrompt(req, weekStartDate(time.Now(), req.Month, req.Week))
	raw, err := g.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return parseWeekResponse(raw)
}

// AnalyzeProgress requests the end-of-session assessment.
func (g *openAIGenerator) AnalyzeProgress(ctx context.Context, req AnalysisRequest) (*domain.AnalysisResult, error) {
	dayPlansJSON, err := json.Marshal(req.DayPlans)
	if err != nil {
		return nil, upstream(fmt.Errorf("encoding day plans: %w", err))
	}

	raw, err := g.complete(ctx, buildAnalysisPrompt(req, string(dayPlansJSON)))
	if err != nil {
		return nil, err
	}
	return parseAnalysisResponse(raw)
}

// complete sends one chat completion request and returns the raw message
// content. The call context carries the fixed per-call timeout.
func (g *openAIGenerator) complete(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a helpful assistant."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", upstream(err)
	}
	if len(resp.Choices) == 0 {
		return "", upstream(errors.New("completion returned no choices"))
	}
	return resp.Choices[0].Message.Content, nil
}
