package model

import (
	"fmt"
	"sort"
	"strings"
)

// AnswerKind tags how an answer was captured.
type AnswerKind string

const (
	AnswerText   AnswerKind = "text"   // free-text response
	AnswerRating AnswerKind = "rating" // per-option numeric self-ratings
)

// AnswerRecord is one presented question together with the user's response,
// stored in presentation order. Immutable once appended.
type AnswerRecord struct {
	QuestionNo string             `json:"question_no" bson:"questionNo"`
	Question   string             `json:"question" bson:"question"`
	Kind       AnswerKind         `json:"type" bson:"type"`
	Answer     string             `json:"answer,omitempty" bson:"answer,omitempty"`
	Ratings    map[string]float64 `json:"ratings,omitempty" bson:"ratings,omitempty"`
}

// FlowText renders the answer as plain text for intent classification.
// Rating answers become a stable "option: value" listing.
func (r AnswerRecord) FlowText() string {
	if r.Kind != AnswerRating {
		return r.Answer
	}
	keys := make([]string, 0, len(r.Ratings))
	for k := range r.Ratings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %g", k, r.Ratings[k])
	}
	return sb.String()
}
