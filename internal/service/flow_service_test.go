package service

import (
	"context"
	"testing"

	"archetypes/internal/model"
)

func newTestFlow(gen *fakeGenerator) *FlowService {
	return NewFlowService(NewClassifierService(testAIConfig(), gen))
}

func arjunaQuestions() []model.BaseQuestion {
	return []model.BaseQuestion{
		{
			QuestionNo: "1",
			Question:   "Do you deliberately practice your craft?",
			FollowUps: map[model.IntentLabel]model.FollowUp{
				model.IntentNo: {Question: "Why not?", QuestionNo: "1_followup"},
			},
		},
		{
			QuestionNo:   "2",
			Question:     "Rate yourself on the following qualities:",
			RateQuestion: true,
			Options:      []string{"Focus", "Discipline"},
		},
	}
}

func TestNextTakesConfiguredFollowUp(t *testing.T) {
	questions := arjunaQuestions()
	flow := newTestFlow(&fakeGenerator{enabled: true, text: "no"})

	next, err := flow.Next(context.Background(), questions[0].Runtime(), "No, I haven't", questions, 0)
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if next == nil {
		t.Fatal("Next() = nil, want follow-up")
	}
	if next.Question != "Why not?" {
		t.Errorf("follow-up question = %q, want %q", next.Question, "Why not?")
	}
	if !next.IsFollowUp {
		t.Error("follow-up not marked as follow-up")
	}
	if next.ParentQuestionNo != "1" {
		t.Errorf("parent question no = %q, want %q", next.ParentQuestionNo, "1")
	}
	if next.QuestionNo != "1_followup" {
		t.Errorf("question no = %q, want %q", next.QuestionNo, "1_followup")
	}
}

func TestNextAfterFollowUpReturnsNextBaseQuestion(t *testing.T) {
	questions := arjunaQuestions()
	flow := newTestFlow(&fakeGenerator{enabled: true, text: "no"})

	followUp, err := flow.Next(context.Background(), questions[0].Runtime(), "No, I haven't", questions, 0)
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}

	// The follow-up has no branch map, so answering it advances to base Q2.
	next, err := flow.Next(context.Background(), followUp, "I never find the time", questions, 0)
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if next == nil {
		t.Fatal("Next() = nil, want base question 2")
	}
	if next.QuestionNo != "2" {
		t.Errorf("question no = %q, want %q", next.QuestionNo, "2")
	}
	if !next.RateQuestion {
		t.Error("expected the rating question")
	}
	if next.IsFollowUp {
		t.Error("base question marked as follow-up")
	}
}

func TestNextUnconfiguredLabelFallsThrough(t *testing.T) {
	questions := arjunaQuestions()
	// Classifier returns yes; question only branches on no.
	flow := newTestFlow(&fakeGenerator{enabled: true, text: "yes"})

	next, err := flow.Next(context.Background(), questions[0].Runtime(), "Yes, daily", questions, 0)
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if next == nil || next.QuestionNo != "2" {
		t.Fatalf("Next() = %+v, want base question 2", next)
	}
}

func TestNextNoFollowUpMapIgnoresAnswerContent(t *testing.T) {
	questions := arjunaQuestions()
	gen := &fakeGenerator{enabled: true, text: "no"}
	flow := newTestFlow(gen)

	for _, answer := range []string{"yes", "no", "whatever", ""} {
		next, err := flow.Next(context.Background(), questions[1].Runtime(), answer, questions, 1)
		if err != nil {
			t.Fatalf("Next(%q) error: %v", answer, err)
		}
		if next != nil {
			t.Errorf("Next(%q) = %+v, want nil at end of list", answer, next)
		}
	}
	if gen.calls != 0 {
		t.Errorf("classifier invoked %d times for question without follow-ups, want 0", gen.calls)
	}
}

func TestNextTerminatesAtEndOfList(t *testing.T) {
	questions := arjunaQuestions()
	flow := newTestFlow(&fakeGenerator{enabled: true, text: "neutral"})

	next, err := flow.Next(context.Background(), questions[len(questions)-1].Runtime(), "done", questions, len(questions)-1)
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if next != nil {
		t.Errorf("Next() = %+v, want nil", next)
	}
}

func TestNextIsDeterministic(t *testing.T) {
	questions := arjunaQuestions()
	flow := newTestFlow(&fakeGenerator{enabled: true, text: "no"})

	first, err := flow.Next(context.Background(), questions[0].Runtime(), "No", questions, 0)
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	second, err := flow.Next(context.Background(), questions[0].Runtime(), "No", questions, 0)
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if first.QuestionNo != second.QuestionNo || first.Question != second.Question {
		t.Errorf("repeated Next() differs: %+v vs %+v", first, second)
	}
}

func TestNextInvalidInputs(t *testing.T) {
	questions := arjunaQuestions()
	flow := newTestFlow(&fakeGenerator{enabled: true, text: "neutral"})

	if _, err := flow.Next(context.Background(), nil, "x", questions, 0); err == nil {
		t.Error("Next() with nil current question: want error")
	}
	if _, err := flow.Next(context.Background(), questions[0].Runtime(), "x", questions, -1); err == nil {
		t.Error("Next() with negative base index: want error")
	}
	if _, err := flow.Next(context.Background(), questions[0].Runtime(), "x", questions, len(questions)); err == nil {
		t.Error("Next() with out-of-range base index: want error")
	}
}

func TestNextMalformedCatalogEntryFailsLoudly(t *testing.T) {
	questions := []model.BaseQuestion{
		{QuestionNo: "1", Question: "First?"},
		{QuestionNo: "2"}, // missing text
	}
	flow := newTestFlow(&fakeGenerator{enabled: true, text: "neutral"})

	if _, err := flow.Next(context.Background(), questions[0].Runtime(), "x", questions, 0); err == nil {
		t.Error("Next() into malformed question: want error, got nil")
	}
}
