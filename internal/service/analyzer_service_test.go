package service

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"archetypes/internal/model"
)

const validAssessmentJSON = `{
	"overall_rating": 8.5,
	"quality_ratings": {
		"Focus": 9,
		"Discipline": 8,
		"Humility": 7.5,
		"Decisiveness": 8,
		"Craftsmanship": 9
	},
	"analysis": "A focused and disciplined professional profile.",
	"strengths": ["Consistent practice", "Clear goals"],
	"areas_for_improvement": ["Delegation"],
	"recommendations": ["Find a mentor"],
	"key_insights": ["Strong growth trajectory"]
}`

func sampleResponses() []model.AnswerRecord {
	return []model.AnswerRecord{
		{QuestionNo: "1", Question: "Do you practice?", Kind: model.AnswerText, Answer: "Yes, daily"},
		{QuestionNo: "2", Question: "Rate yourself:", Kind: model.AnswerRating, Ratings: map[string]float64{"Focus": 8, "Discipline": 7}},
	}
}

func sampleQuestions() []model.BaseQuestion {
	return []model.BaseQuestion{
		{QuestionNo: "1", Question: "Do you practice?"},
		{QuestionNo: "2", Question: "Rate yourself:", RateQuestion: true, Options: []string{"Focus", "Discipline"}},
	}
}

func TestAnalyzeParsesModelOutput(t *testing.T) {
	gen := &fakeGenerator{enabled: true, text: validAssessmentJSON}
	svc := NewAnalyzerService(testAIConfig(), gen)

	got, err := svc.Analyze(context.Background(), "Arjuna", "passage", sampleQuestions(), sampleResponses())
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if got.Fallback {
		t.Fatal("Analyze() returned fallback for valid output")
	}
	if got.OverallRating != 8.5 {
		t.Errorf("overall rating = %v, want 8.5", got.OverallRating)
	}
	if len(got.QualityRatings) != 5 {
		t.Errorf("quality ratings = %d entries, want 5", len(got.QualityRatings))
	}
	if got.QualityRatings["Humility"] != 7.5 {
		t.Errorf("Humility = %v, want 7.5", got.QualityRatings["Humility"])
	}
}

func TestAnalyzeFencedOutputRoundTrips(t *testing.T) {
	fenced := "```json\n" + validAssessmentJSON + "\n```"
	gen := &fakeGenerator{enabled: true, text: fenced}
	svc := NewAnalyzerService(testAIConfig(), gen)

	fromFenced, err := svc.Analyze(context.Background(), "Arjuna", "passage", sampleQuestions(), sampleResponses())
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	var direct model.Assessment
	if err := json.Unmarshal([]byte(validAssessmentJSON), &direct); err != nil {
		t.Fatalf("unmarshal reference payload: %v", err)
	}

	if !reflect.DeepEqual(*fromFenced, direct) {
		t.Errorf("fence-stripped result differs from direct parse:\n got %+v\nwant %+v", *fromFenced, direct)
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fences", `{"a":1}`, `{"a":1}`},
		{"bare fences", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"json fences", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripFences(tt.in); got != tt.want {
				t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAnalyzeInvalidJSONReturnsFallback(t *testing.T) {
	gen := &fakeGenerator{enabled: true, text: "Not valid JSON at all"}
	svc := NewAnalyzerService(testAIConfig(), gen)

	got, err := svc.Analyze(context.Background(), "Arjuna", "passage", sampleQuestions(), sampleResponses())
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if !got.Fallback {
		t.Fatal("Analyze() did not mark fallback")
	}
	if got.OverallRating != 7.0 {
		t.Errorf("fallback overall rating = %v, want 7.0", got.OverallRating)
	}
	if len(got.QualityRatings) != 5 {
		t.Errorf("fallback quality ratings = %d entries, want exactly 5", len(got.QualityRatings))
	}
	// The short raw text is surfaced as the analysis.
	if got.Analysis != "Not valid JSON at all" {
		t.Errorf("fallback analysis = %q, want raw model text", got.Analysis)
	}
}

func TestAnalyzeLongRawTextGetsPlaceholder(t *testing.T) {
	gen := &fakeGenerator{enabled: true, text: strings.Repeat("x", 600)}
	svc := NewAnalyzerService(testAIConfig(), gen)

	got, err := svc.Analyze(context.Background(), "Arjuna", "passage", sampleQuestions(), sampleResponses())
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if !got.Fallback {
		t.Fatal("Analyze() did not mark fallback")
	}
	if strings.Contains(got.Analysis, "xxx") {
		t.Errorf("long raw text leaked into analysis: %q", got.Analysis)
	}
}

func TestAnalyzeMissingFieldReturnsFallback(t *testing.T) {
	for _, field := range requiredAssessmentFields {
		t.Run(field, func(t *testing.T) {
			var payload map[string]json.RawMessage
			if err := json.Unmarshal([]byte(validAssessmentJSON), &payload); err != nil {
				t.Fatalf("unmarshal reference payload: %v", err)
			}
			delete(payload, field)
			partial, err := json.Marshal(payload)
			if err != nil {
				t.Fatalf("marshal partial payload: %v", err)
			}

			gen := &fakeGenerator{enabled: true, text: string(partial)}
			svc := NewAnalyzerService(testAIConfig(), gen)

			got, err := svc.Analyze(context.Background(), "Arjuna", "passage", sampleQuestions(), sampleResponses())
			if err != nil {
				t.Fatalf("Analyze() error: %v", err)
			}
			if !got.Fallback {
				t.Errorf("missing %q: want fallback", field)
			}
		})
	}
}

func TestAnalyzeModelErrorReturnsFallback(t *testing.T) {
	gen := &fakeGenerator{enabled: true, err: errors.New("transport down")}
	svc := NewAnalyzerService(testAIConfig(), gen)

	got, err := svc.Analyze(context.Background(), "Arjuna", "passage", sampleQuestions(), sampleResponses())
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if !got.Fallback {
		t.Fatal("Analyze() did not mark fallback on transport error")
	}
}

func TestAnalyzeEmptyResponsesStillComplete(t *testing.T) {
	gen := &fakeGenerator{enabled: true, text: validAssessmentJSON}
	svc := NewAnalyzerService(testAIConfig(), gen)

	got, err := svc.Analyze(context.Background(), "Arjuna", "passage", sampleQuestions(), nil)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if got.Analysis == "" || got.QualityRatings == nil || got.Strengths == nil {
		t.Errorf("Analyze() with empty responses returned incomplete result: %+v", got)
	}
}

func TestAnalyzeEmptyCharacterNameErrors(t *testing.T) {
	gen := &fakeGenerator{enabled: true, text: validAssessmentJSON}
	svc := NewAnalyzerService(testAIConfig(), gen)

	if _, err := svc.Analyze(context.Background(), "", "passage", nil, nil); err == nil {
		t.Error("Analyze() with empty character name: want error")
	}
}

func TestBuildTranscript(t *testing.T) {
	transcript := buildTranscript(sampleQuestions(), sampleResponses())

	if !strings.Contains(transcript, "Q1: Do you practice?") {
		t.Errorf("transcript missing first question: %q", transcript)
	}
	if !strings.Contains(transcript, "User Answer: Yes, daily") {
		t.Errorf("transcript missing text answer: %q", transcript)
	}
	if !strings.Contains(transcript, "User Ratings:") {
		t.Errorf("transcript missing ratings heading: %q", transcript)
	}
	if !strings.Contains(transcript, "Discipline: 7") || !strings.Contains(transcript, "Focus: 8") {
		t.Errorf("transcript missing rating entries: %q", transcript)
	}
}

func TestBuildTranscriptBoundedByShorterList(t *testing.T) {
	// Three responses but only two catalog questions: the extra response is
	// ignored.
	responses := append(sampleResponses(), model.AnswerRecord{
		QuestionNo: "3", Question: "Extra?", Kind: model.AnswerText, Answer: "extra",
	})
	transcript := buildTranscript(sampleQuestions(), responses)

	if strings.Contains(transcript, "Extra?") {
		t.Errorf("transcript includes out-of-bounds response: %q", transcript)
	}
}
