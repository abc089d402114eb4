package provider

import (
	"context"
	"errors"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/bizlens/competitor-insights/internal/errs"
	"github.com/bizlens/competitor-insights/internal/resilience"
)

// AnthropicLLMProvider generates analyses via the Anthropic messages
// API. Claude has no response_format parameter, so the JSON contract is
// enforced by the prompt and the parse fallback covers drift.
type AnthropicLLMProvider struct {
	client  sdk.Client
	model   string
	circuit *resilience.Circuit
}

// NewAnthropicLLMProvider creates a live Anthropic analyst. The SDK
// retries transient failures internally; the circuit breaker sits above
// it to stop hammering a down upstream across requests.
func NewAnthropicLLMProvider(apiKey, llmModel string) *AnthropicLLMProvider {
	return &AnthropicLLMProvider{
		client:  sdk.NewClient(option.WithAPIKey(apiKey)),
		model:   llmModel,
		circuit: resilience.NewCircuit(resilience.DefaultCircuitConfig()),
	}
}

// Name implements LLMProvider.
func (a *AnthropicLLMProvider) Name() string { return "anthropic" }

// Analyze implements LLMProvider.
func (a *AnthropicLLMProvider) Analyze(ctx context.Context, input AnalysisInput) (*AnalysisResult, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(a.model),
		MaxTokens: 1024,
		System: []sdk.TextBlockParam{
			{Text: systemPrompt(input.Style)},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(userPrompt(input))),
		},
		Temperature: sdk.Float(0.7),
	}

	msg, err := resilience.CircuitVal(ctx, a.circuit, func(ctx context.Context) (*sdk.Message, error) {
		return a.client.Messages.New(ctx, params)
	})
	if err != nil {
		return nil, a.classify(err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	summary, suggestions := parseAnalysis(text.String(), input)
	tokens := int(msg.Usage.InputTokens + msg.Usage.OutputTokens)

	zap.L().Info("llm analysis complete",
		zap.String("provider", a.Name()),
		zap.String("model", string(msg.Model)),
		zap.Int("tokens_used", tokens),
	)

	return &AnalysisResult{
		Summary:     summary,
		Suggestions: suggestions,
		TokensUsed:  tokens,
		Model:       string(msg.Model),
		Provider:    a.Name(),
	}, nil
}

func (a *AnthropicLLMProvider) classify(err error) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == 429 {
			return &errs.LLMQuotaExceededError{Provider: a.Name(), Err: err}
		}
		zap.L().Error("anthropic api error",
			zap.Int("status", apiErr.StatusCode),
			zap.Error(err),
		)
	}
	return &errs.LLMUnavailableError{Provider: a.Name(), Err: err}
}
