package service

import (
	"context"
	"fmt"

	"archetypes/internal/model"
)

// FlowService decides which question to present next. It is stateless
// between calls; all walk state lives in the caller's FlowState.
type FlowService struct {
	classifier *ClassifierService
}

// NewFlowService creates a new flow service
func NewFlowService(classifier *ClassifierService) *FlowService {
	return &FlowService{classifier: classifier}
}

// Next returns the question to present after the user answered current,
// or nil when the list is exhausted.
//
// When current declares follow-up branches, the answer's classified intent
// picks the branch; a label with no configured follow-up falls through to
// the next base question. baseIndex is the ordinal of the most recently
// dispatched base question and is never advanced by a follow-up.
func (s *FlowService) Next(ctx context.Context, current *model.Question, answer string, all []model.BaseQuestion, baseIndex int) (*model.Question, error) {
	if current == nil {
		return nil, fmt.Errorf("flow: no current question")
	}
	if baseIndex < 0 || baseIndex >= len(all) {
		return nil, fmt.Errorf("flow: base index %d out of range [0,%d)", baseIndex, len(all))
	}

	if len(current.FollowUps) > 0 {
		intent := s.classifier.Classify(ctx, current.Question, answer)
		if fu, ok := current.FollowUps[intent]; ok {
			return fu.Runtime(current), nil
		}
	}

	nextIndex := baseIndex + 1
	if nextIndex >= len(all) {
		return nil, nil
	}

	next := all[nextIndex]
	if next.Question == "" || next.QuestionNo == "" {
		return nil, fmt.Errorf("flow: question at index %d is malformed", nextIndex)
	}
	return next.Runtime(), nil
}
