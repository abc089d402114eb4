package provider

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizlens/competitor-insights/internal/errs"
	"github.com/bizlens/competitor-insights/internal/model"
	"github.com/bizlens/competitor-insights/internal/resilience"
	"github.com/bizlens/competitor-insights/pkg/perplexity"
)

func TestMockLLMAnalyze(t *testing.T) {
	input := analysisInputFixture()

	result, err := NewMockLLMProvider().Analyze(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "mock", result.Provider)
	assert.Equal(t, "canned-v1", result.Model)
	assert.Zero(t, result.TokensUsed)
	assert.Contains(t, result.Summary.Overview, "Mario's Restaurant")
	assert.Contains(t, result.Summary.CompetitivePosition, "Ranked 2 of 2")
	assert.NotEmpty(t, result.Summary.Weaknesses)
	assert.NotEmpty(t, result.Suggestions)
}

func TestMockLLMAnalyzeIsDeterministic(t *testing.T) {
	input := analysisInputFixture()
	m := NewMockLLMProvider()

	first, err := m.Analyze(context.Background(), input)
	require.NoError(t, err)
	second, err := m.Analyze(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// fakePerplexityClient returns scripted responses and records requests.
type fakePerplexityClient struct {
	resp     *perplexity.ChatCompletionResponse
	err      error
	requests []perplexity.ChatCompletionRequest
}

func (f *fakePerplexityClient) ChatCompletion(_ context.Context, req perplexity.ChatCompletionRequest) (*perplexity.ChatCompletionResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func TestPerplexityAnalyzeStructured(t *testing.T) {
	fake := &fakePerplexityClient{resp: &perplexity.ChatCompletionResponse{
		Model: "sonar",
		Choices: []perplexity.Choice{{
			Message: perplexity.Message{
				Role:    "assistant",
				Content: `{"analysis":{"overview":"ok","strengths":["s"],"weaknesses":["w"],"competitive_position":"p"},"suggestions":["a","b","c"]}`,
			},
		}},
		Usage: perplexity.Usage{TotalTokens: 321},
	}}
	p := NewPerplexityLLMProvider(fake, "sonar", singleAttempt())

	result, err := p.Analyze(context.Background(), analysisInputFixture())
	require.NoError(t, err)

	assert.Equal(t, "perplexity", result.Provider)
	assert.Equal(t, "sonar", result.Model)
	assert.Equal(t, 321, result.TokensUsed)
	assert.Equal(t, "ok", result.Summary.Overview)
	assert.Equal(t, []string{"a", "b", "c"}, result.Suggestions)

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	require.NotNil(t, req.ResponseFormat)
	assert.Equal(t, "json_schema", req.ResponseFormat.Type)
}

func TestPerplexityAnalyzeRawTextDegrades(t *testing.T) {
	fake := &fakePerplexityClient{resp: &perplexity.ChatCompletionResponse{
		Choices: []perplexity.Choice{{
			Message: perplexity.Message{Role: "assistant", Content: "plain prose, no JSON"},
		}},
	}}
	p := NewPerplexityLLMProvider(fake, "sonar", singleAttempt())

	result, err := p.Analyze(context.Background(), analysisInputFixture())
	require.NoError(t, err)

	assert.Equal(t, "plain prose, no JSON", result.Summary.Raw)
	assert.NotEmpty(t, result.Suggestions)
	// Model falls back to the configured one when the response omits it.
	assert.Equal(t, "sonar", result.Model)
}

func TestPerplexityAnalyzeEmptyChoices(t *testing.T) {
	fake := &fakePerplexityClient{resp: &perplexity.ChatCompletionResponse{}}
	p := NewPerplexityLLMProvider(fake, "sonar", singleAttempt())

	_, err := p.Analyze(context.Background(), analysisInputFixture())
	require.Error(t, err)
	assert.True(t, errs.IsLLMUnavailable(err))
}

func TestPerplexityAnalyzeFailureClassification(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"rate limited", resilience.NewTransientError(eris.New("429"), 429), errs.IsLLMQuotaExceeded},
		{"server error", resilience.NewTransientError(eris.New("503"), 503), errs.IsLLMUnavailable},
		{"network error", eris.New("connection refused"), errs.IsLLMUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPerplexityLLMProvider(&fakePerplexityClient{err: tt.err}, "sonar", singleAttempt())

			_, err := p.Analyze(context.Background(), analysisInputFixture())
			require.Error(t, err)
			assert.True(t, tt.check(err))
		})
	}
}

func TestAnalysisInputStyles(t *testing.T) {
	assert.True(t, model.ValidStyle(model.StyleCasual))
	assert.True(t, model.ValidStyle(model.StyleDataDriven))
	assert.False(t, model.ValidStyle(model.ReportStyle("verbose")))
}
