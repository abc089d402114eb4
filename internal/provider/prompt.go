package provider

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bizlens/competitor-insights/internal/model"
)

const dataDrivenSystemPrompt = `You are an expert business analyst specializing in competitive analysis.
Provide your analysis in strict JSON with these required keys:
{
  "analysis": {
    "overview": "competitive landscape summary",
    "strengths": ["list", "of", "strengths"],
    "weaknesses": ["list", "of", "weaknesses"],
    "competitive_position": "summary text"
  },
  "suggestions": ["list", "of", "actionable", "suggestions"]
}
Requirements:
- Respond ONLY with valid JSON; all strings terminated and objects closed.
- Include exactly 3-5 suggestions.
- Keep the analysis data-driven and specific, citing the provided scores and counts.
- Do not include any text outside the JSON structure.`

const casualSystemPrompt = `You are a friendly small-business advisor helping an owner understand how their online presence stacks up.
Provide your analysis in strict JSON with these required keys:
{
  "analysis": {
    "overview": "competitive landscape summary",
    "strengths": ["list", "of", "strengths"],
    "weaknesses": ["list", "of", "weaknesses"],
    "competitive_position": "summary text"
  },
  "suggestions": ["list", "of", "actionable", "suggestions"]
}
Requirements:
- Respond ONLY with valid JSON; all strings terminated and objects closed.
- Include exactly 3-5 suggestions.
- Keep the tone encouraging and plain-spoken, no jargon.
- Do not include any text outside the JSON structure.`

// systemPrompt returns the system prompt for the requested style.
func systemPrompt(style model.ReportStyle) string {
	if style == model.StyleDataDriven {
		return dataDrivenSystemPrompt
	}
	return casualSystemPrompt
}

// userPrompt serializes the comparison context into the analysis request.
func userPrompt(input AnalysisInput) string {
	userJSON, _ := json.Marshal(struct {
		Profile model.BusinessProfile `json:"profile"`
		Score   model.ProfileScore    `json:"score"`
	}{input.UserProfile, input.UserScore})
	competitorJSON, _ := json.Marshal(input.Competitors)

	var b strings.Builder
	b.WriteString("Analyze this competitive data and return JSON with:\n")
	b.WriteString("1. Analysis of the competitive landscape\n")
	b.WriteString("2. Key strengths and weaknesses\n")
	b.WriteString("3. A competitive position assessment\n")
	b.WriteString("4. 3-5 specific suggestions\n\n")
	fmt.Fprintf(&b, "Your business (completeness score and rank included): %s\n", userJSON)
	fmt.Fprintf(&b, "Competitors: %s\n\n", competitorJSON)
	b.WriteString("Respond ONLY with valid JSON matching the specified format.")
	return b.String()
}

// analysisSchema is the JSON schema sent to providers that support
// structured output.
func analysisSchema() map[string]any {
	stringArray := map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"analysis": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"overview":             map[string]any{"type": "string"},
					"strengths":            stringArray,
					"weaknesses":           stringArray,
					"competitive_position": map[string]any{"type": "string"},
				},
				"required": []string{"overview", "strengths", "weaknesses", "competitive_position"},
			},
			"suggestions": stringArray,
		},
		"required": []string{"analysis", "suggestions"},
	}
}

type analysisEnvelope struct {
	Analysis struct {
		Overview            string   `json:"overview"`
		Strengths           []string `json:"strengths"`
		Weaknesses          []string `json:"weaknesses"`
		CompetitivePosition string   `json:"competitive_position"`
	} `json:"analysis"`
	Suggestions []string `json:"suggestions"`
}

// parseAnalysis interprets raw model output. Parseable JSON fills the
// structured summary; anything else is returned verbatim as the raw
// summary with heuristic suggestions. Unparsable output is not an error.
func parseAnalysis(raw string, input AnalysisInput) (model.AnalysisSummary, []string) {
	trimmed := strings.TrimSpace(raw)

	// Models occasionally wrap JSON in a markdown fence despite
	// instructions.
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var env analysisEnvelope
	if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
		zap.L().Warn("llm returned unparsable analysis, falling back to raw text",
			zap.Error(err),
			zap.Int("length", len(raw)),
		)
		return model.AnalysisSummary{Raw: raw}, fallbackSuggestions(input)
	}

	summary := model.AnalysisSummary{
		Overview:            env.Analysis.Overview,
		Strengths:           env.Analysis.Strengths,
		Weaknesses:          env.Analysis.Weaknesses,
		CompetitivePosition: env.Analysis.CompetitivePosition,
	}
	suggestions := env.Suggestions
	if len(suggestions) == 0 {
		suggestions = fallbackSuggestions(input)
	}
	return summary, suggestions
}

// fallbackSuggestions derives concrete improvement suggestions from the
// completeness signals alone, used when the model output carries none.
func fallbackSuggestions(input AnalysisInput) []string {
	var suggestions []string
	p := input.UserProfile

	if len(input.Competitors) > 0 {
		var total int
		for _, c := range input.Competitors {
			if c.Profile.RatingCount != nil {
				total += *c.Profile.RatingCount
			}
		}
		avg := total / len(input.Competitors)
		if p.RatingCount == nil || *p.RatingCount < avg {
			suggestions = append(suggestions,
				fmt.Sprintf("Increase your review count - competitors average %d reviews", avg))
		}
	}
	if !model.BoolField(p.HasHours) {
		suggestions = append(suggestions, "Add business hours information")
	}
	if !model.BoolField(p.HasDescription) {
		suggestions = append(suggestions, "Add a business description")
	}
	if !model.BoolField(p.HasMenuLink) {
		suggestions = append(suggestions, "Add a menu link or service information")
	}
	if !model.BoolField(p.HasPriceLevel) {
		suggestions = append(suggestions, "Add price level information")
	}
	if !model.CountPositive(p.ImageCount) {
		suggestions = append(suggestions, "Upload photos of your business")
	}
	return suggestions
}
