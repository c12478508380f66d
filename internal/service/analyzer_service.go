package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"archetypes/internal/config"
	"archetypes/internal/model"
)

// requiredAssessmentFields must all be present in the model's JSON output.
var requiredAssessmentFields = []string{
	"overall_rating",
	"quality_ratings",
	"analysis",
	"strengths",
	"areas_for_improvement",
	"recommendations",
	"key_insights",
}

// AnalyzerService turns a character's full answer transcript into a
// structured assessment. Model, parse, and validation failures all degrade
// to a fixed fallback assessment; Analyze errors only on structural misuse.
type AnalyzerService struct {
	config    *config.AIConfig
	generator TextGenerator
}

// NewAnalyzerService creates a new analyzer service
func NewAnalyzerService(cfg *config.AIConfig, generator TextGenerator) *AnalyzerService {
	return &AnalyzerService{config: cfg, generator: generator}
}

// Analyze produces the assessment for one character's answer set.
// The returned assessment always carries all fields; Fallback marks a
// deterministic substitute.
func (s *AnalyzerService) Analyze(ctx context.Context, characterName, passage string, questions []model.BaseQuestion, responses []model.AnswerRecord) (*model.Assessment, error) {
	if characterName == "" {
		return nil, fmt.Errorf("analyze: empty character name")
	}

	if !s.generator.Enabled() {
		return s.fallbackAssessment(""), nil
	}

	prompt := s.buildAnalysisPrompt(characterName, passage, questions, responses)
	raw, err := s.generator.GenerateJSON(ctx, s.config.Models.Analysis, prompt)
	if err != nil {
		log.Printf("analysis call failed for %s, using fallback: %v", characterName, err)
		return s.fallbackAssessment(""), nil
	}

	assessment, err := parseAssessment(raw)
	if err != nil {
		log.Printf("analysis response unusable for %s, using fallback: %v", characterName, err)
		return s.fallbackAssessment(raw), nil
	}
	return assessment, nil
}

// parseAssessment strips Markdown code fences, validates that every
// required field is present, and decodes the assessment.
func parseAssessment(raw string) (*model.Assessment, error) {
	content := stripFences(raw)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return nil, fmt.Errorf("parse assessment: %w", err)
	}
	for _, field := range requiredAssessmentFields {
		if _, ok := fields[field]; !ok {
			return nil, fmt.Errorf("assessment missing required field %q", field)
		}
	}

	var assessment model.Assessment
	if err := json.Unmarshal([]byte(content), &assessment); err != nil {
		return nil, fmt.Errorf("decode assessment: %w", err)
	}
	return &assessment, nil
}

// stripFences removes a leading ``` or ```json marker and a trailing ```
// from a model response, if present.
func stripFences(s string) string {
	content := strings.TrimSpace(s)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

func (s *AnalyzerService) buildAnalysisPrompt(characterName, passage string, questions []model.BaseQuestion, responses []model.AnswerRecord) string {
	return fmt.Sprintf(`You are an expert HR psychologist analyzing personality traits based on the %s archetype from Mahabharata.

Character Passage:
%s

Questions and User Responses:
%s

Analyze the user's responses deeply and provide:
1. Overall rating (1-10) for alignment with %s's positive traits
2. Specific ratings for each key quality (provide at least 5 quality ratings)
3. Detailed analysis (200-300 words) of their strengths, areas for improvement, and actionable recommendations
4. Key insights about their professional personality

Return ONLY a valid JSON object with this exact structure:
{
    "overall_rating": <float between 1-10>,
    "quality_ratings": {
        "quality_name_1": <float between 1-10>,
        "quality_name_2": <float between 1-10>,
        "quality_name_3": <float between 1-10>,
        "quality_name_4": <float between 1-10>,
        "quality_name_5": <float between 1-10>
    },
    "analysis": "<detailed analysis text>",
    "strengths": ["strength1", "strength2", "strength3"],
    "areas_for_improvement": ["area1", "area2", "area3"],
    "recommendations": ["recommendation1", "recommendation2", "recommendation3"],
    "key_insights": ["insight1", "insight2", "insight3"]
}

Ensure all fields are present and properly formatted.`,
		characterName, passage, buildTranscript(questions, responses), characterName)
}

// buildTranscript renders the Q&A pairs in presentation order, bounded by
// the shorter of the two lists.
func buildTranscript(questions []model.BaseQuestion, responses []model.AnswerRecord) string {
	n := len(responses)
	if len(questions) < n {
		n = len(questions)
	}

	var sb strings.Builder
	for i := 0; i < n; i++ {
		r := responses[i]
		fmt.Fprintf(&sb, "\nQ%d: %s\n", i+1, r.Question)
		if r.Kind == model.AnswerRating {
			sb.WriteString("User Ratings:\n")
			keys := make([]string, 0, len(r.Ratings))
			for k := range r.Ratings {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(&sb, "  %s: %g\n", k, r.Ratings[k])
			}
		} else {
			fmt.Fprintf(&sb, "User Answer: %s\n", r.Answer)
		}
	}
	return sb.String()
}

// fallbackAssessment is the fixed, fully-populated substitute returned when
// the model output cannot be used. The raw model text is surfaced as the
// analysis when short enough to be presentable.
func (s *AnalyzerService) fallbackAssessment(raw string) *model.Assessment {
	analysis := "Analysis generated successfully. Please review your responses in the dashboard."
	if raw != "" && len(raw) < 500 {
		analysis = raw
	}

	return &model.Assessment{
		OverallRating: 7.0,
		QualityRatings: map[string]float64{
			"Leadership":    7.0,
			"Communication": 7.0,
			"Ethics":        7.0,
			"Adaptability":  7.0,
			"Teamwork":      7.0,
		},
		Analysis:            analysis,
		Strengths:           []string{"Thoughtful responses", "Self-awareness", "Growth mindset"},
		AreasForImprovement: []string{"Continue developing skills", "Seek mentorship", "Practice consistency"},
		Recommendations:     []string{"Regular self-reflection", "Seek feedback", "Set clear goals"},
		KeyInsights:         []string{"Shows potential for growth", "Values professional development"},
		Fallback:            true,
	}
}
