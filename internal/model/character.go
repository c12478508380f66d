package model

import "strings"

// IntentLabel is one of the closed set of categories the intent classifier
// may produce for a free-text answer.
type IntentLabel string

const (
	IntentYes       IntentLabel = "yes"
	IntentNo        IntentLabel = "no"
	IntentNeutral   IntentLabel = "neutral"
	IntentHasMentor IntentLabel = "has_mentor"
	IntentNoMentor  IntentLabel = "no_mentor"
)

// ParseIntentLabel normalizes raw model output (trim, lowercase) and checks
// membership in the label set. ok is false for anything outside the set.
func ParseIntentLabel(s string) (IntentLabel, bool) {
	switch IntentLabel(strings.ToLower(strings.TrimSpace(s))) {
	case IntentYes:
		return IntentYes, true
	case IntentNo:
		return IntentNo, true
	case IntentNeutral:
		return IntentNeutral, true
	case IntentHasMentor:
		return IntentHasMentor, true
	case IntentNoMentor:
		return IntentNoMentor, true
	}
	return IntentNeutral, false
}

// FollowUp is an authored branch question attached to a base question.
// Follow-ups never branch further, so they carry no follow-up map of their own.
type FollowUp struct {
	Question     string   `json:"question" bson:"question"`
	QuestionNo   string   `json:"question_no,omitempty" bson:"questionNo,omitempty"`
	RateQuestion bool     `json:"rate_question,omitempty" bson:"rateQuestion,omitempty"`
	Options      []string `json:"options,omitempty" bson:"options,omitempty"`
	Guidance     string   `json:"guidance,omitempty" bson:"guidance,omitempty"`
}

// BaseQuestion is an authored question in a character's fixed list.
type BaseQuestion struct {
	QuestionNo   string                   `json:"question_no" bson:"questionNo"`
	Question     string                   `json:"question" bson:"question"`
	RateQuestion bool                     `json:"rate_question,omitempty" bson:"rateQuestion,omitempty"`
	Options      []string                 `json:"options,omitempty" bson:"options,omitempty"`
	Guidance     string                   `json:"guidance,omitempty" bson:"guidance,omitempty"`
	FollowUps    map[IntentLabel]FollowUp `json:"follow_up_questions,omitempty" bson:"followUpQuestions,omitempty"`
}

// Runtime converts an authored base question into its runtime instance.
func (q BaseQuestion) Runtime() *Question {
	return &Question{
		QuestionNo:   q.QuestionNo,
		Question:     q.Question,
		RateQuestion: q.RateQuestion,
		Options:      q.Options,
		Guidance:     q.Guidance,
		FollowUps:    q.FollowUps,
	}
}

// Runtime converts a follow-up into its runtime instance, attached to its
// parent question. A missing question_no is synthesized from the parent's.
func (f FollowUp) Runtime(parent *Question) *Question {
	no := f.QuestionNo
	if no == "" {
		no = parent.QuestionNo + "_followup"
	}
	return &Question{
		QuestionNo:       no,
		Question:         f.Question,
		RateQuestion:     f.RateQuestion,
		Options:          f.Options,
		Guidance:         f.Guidance,
		IsFollowUp:       true,
		ParentQuestionNo: parent.QuestionNo,
	}
}

// Question is a runtime question instance (base or follow-up) as presented
// to the user.
type Question struct {
	QuestionNo       string                   `json:"question_no"`
	Question         string                   `json:"question"`
	RateQuestion     bool                     `json:"rate_question,omitempty"`
	Options          []string                 `json:"options,omitempty"`
	Guidance         string                   `json:"guidance,omitempty"`
	IsFollowUp       bool                     `json:"is_follow_up,omitempty"`
	ParentQuestionNo string                   `json:"parent_question_no,omitempty"`
	FollowUps        map[IntentLabel]FollowUp `json:"follow_up_questions,omitempty"`
}

// Character is one archetype with its narrative passage and question tree.
// Immutable after catalog load.
type Character struct {
	ID        int            `json:"id"`
	Name      string         `json:"character"`
	Passage   string         `json:"passage"`
	Image     string         `json:"image,omitempty"`
	Questions []BaseQuestion `json:"questions"`
}
