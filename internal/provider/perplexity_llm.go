package provider

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/bizlens/competitor-insights/internal/errs"
	"github.com/bizlens/competitor-insights/internal/resilience"
	"github.com/bizlens/competitor-insights/pkg/perplexity"
)

// PerplexityLLMProvider generates analyses via the Perplexity API with
// structured JSON output requested through a response schema.
type PerplexityLLMProvider struct {
	client  perplexity.Client
	model   string
	retry   resilience.RetryConfig
	circuit *resilience.Circuit
}

// NewPerplexityLLMProvider creates a live Perplexity analyst. The
// circuit breaker guards repeated upstream failures across requests.
func NewPerplexityLLMProvider(client perplexity.Client, llmModel string, retry resilience.RetryConfig) *PerplexityLLMProvider {
	return &PerplexityLLMProvider{
		client:  client,
		model:   llmModel,
		retry:   retry,
		circuit: resilience.NewCircuit(resilience.DefaultCircuitConfig()),
	}
}

// Name implements LLMProvider.
func (p *PerplexityLLMProvider) Name() string { return "perplexity" }

// Analyze implements LLMProvider.
func (p *PerplexityLLMProvider) Analyze(ctx context.Context, input AnalysisInput) (*AnalysisResult, error) {
	temperature := 0.7
	maxTokens := 600

	req := perplexity.ChatCompletionRequest{
		Model: p.model,
		Messages: []perplexity.Message{
			{Role: "system", Content: systemPrompt(input.Style)},
			{Role: "user", Content: userPrompt(input)},
		},
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		ResponseFormat: &perplexity.ResponseFormat{
			Type:       "json_schema",
			JSONSchema: &perplexity.JSONSchema{Schema: analysisSchema()},
		},
	}

	retry := p.retry
	retry.OnRetry = resilience.RetryLogger(p.Name(), "chat_completion")

	resp, err := resilience.CircuitVal(ctx, p.circuit, func(ctx context.Context) (*perplexity.ChatCompletionResponse, error) {
		return resilience.DoVal(ctx, retry, func(ctx context.Context) (*perplexity.ChatCompletionResponse, error) {
			return p.client.ChatCompletion(ctx, req)
		})
	})
	if err != nil {
		return nil, classifyLLMError(p.Name(), err)
	}
	if len(resp.Choices) == 0 {
		return nil, &errs.LLMUnavailableError{Provider: p.Name(), Err: errors.New("empty choices in response")}
	}

	summary, suggestions := parseAnalysis(resp.Choices[0].Message.Content, input)

	respModel := resp.Model
	if respModel == "" {
		respModel = p.model
	}
	zap.L().Info("llm analysis complete",
		zap.String("provider", p.Name()),
		zap.String("model", respModel),
		zap.Int("tokens_used", resp.Usage.TotalTokens),
	)

	return &AnalysisResult{
		Summary:     summary,
		Suggestions: suggestions,
		TokensUsed:  resp.Usage.TotalTokens,
		Model:       respModel,
		Provider:    p.Name(),
	}, nil
}

// classifyLLMError maps transport-level failures onto the LLM error
// taxonomy: 429s become quota errors, everything transient (or a tripped
// circuit, or a timeout) becomes unavailability.
func classifyLLMError(provider string, err error) error {
	var te *resilience.TransientError
	if errors.As(err, &te) && te.StatusCode == 429 {
		return &errs.LLMQuotaExceededError{Provider: provider, Err: err}
	}
	return &errs.LLMUnavailableError{Provider: provider, Err: err}
}
