package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"archetypes/internal/config"
	"archetypes/internal/model"
)

// ClassifierService maps a free-text answer to one of the fixed intent
// labels. Every failure path degrades to neutral; Classify never errors.
type ClassifierService struct {
	config    *config.AIConfig
	generator TextGenerator
}

// NewClassifierService creates a new classifier service
func NewClassifierService(cfg *config.AIConfig, generator TextGenerator) *ClassifierService {
	return &ClassifierService{config: cfg, generator: generator}
}

// Classify determines the intent of a user's answer to a question.
func (s *ClassifierService) Classify(ctx context.Context, question, answer string) model.IntentLabel {
	if strings.TrimSpace(answer) == "" {
		return model.IntentNeutral
	}

	if !s.generator.Enabled() {
		return s.mockClassify(answer)
	}

	prompt := s.buildIntentPrompt(question, answer)
	response, err := s.generator.GenerateText(ctx, s.config.Models.Intent, prompt)
	if err != nil {
		log.Printf("intent classification failed, defaulting to neutral: %v", err)
		return model.IntentNeutral
	}

	label, ok := model.ParseIntentLabel(response)
	if !ok {
		log.Printf("invalid intent %q, defaulting to neutral", strings.TrimSpace(response))
		return model.IntentNeutral
	}
	return label
}

func (s *ClassifierService) buildIntentPrompt(question, answer string) string {
	return fmt.Sprintf(`You are an expert at analyzing text responses and determining intent.
You only respond with one of these words: yes, no, neutral, has_mentor, no_mentor.

For yes/no questions, respond with:
- "yes" (affirmative, positive, agreed, they have/do something)
- "no" (negative, they don't have/haven't done something)
- "neutral" (unclear, mixed response, or doesn't directly answer yes/no)

For mentor-related questions (about having a mentor/coach), respond with:
- "has_mentor" (they name specific people, mention existing mentor/coach relationships)
- "no_mentor" (they say they don't have one, looking for one, or working alone)
- "neutral" (informal guidance, learns from various sources, uncertain)

Question: %s

User's Answer: %s

Determine the user's response category. Respond with ONLY ONE WORD: yes, no, neutral, has_mentor, or no_mentor.`,
		question, answer)
}

// mockClassify is a keyword heuristic used when the API is not configured.
func (s *ClassifierService) mockClassify(answer string) model.IntentLabel {
	lower := strings.ToLower(answer)
	switch {
	case strings.HasPrefix(lower, "yes") || strings.HasPrefix(lower, "definitely") || strings.HasPrefix(lower, "absolutely"):
		return model.IntentYes
	case strings.HasPrefix(lower, "no") || strings.HasPrefix(lower, "never"):
		return model.IntentNo
	}
	return model.IntentNeutral
}
