package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"archetypes/internal/cache"
	"archetypes/internal/catalog"
	"archetypes/internal/model"
	"archetypes/internal/repository"
)

var (
	ErrCharacterNotFound = errors.New("character not found")
	ErrFlowNotStarted    = errors.New("assessment not started for this character")
	ErrFlowFinished      = errors.New("all questions already answered")
	ErrFlowIncomplete    = errors.New("questions remain unanswered")
	ErrQuestionMismatch  = errors.New("answer does not match the current question")
	ErrMissingAnswer     = errors.New("answer payload is empty")
)

// WebSocket event types emitted during an assessment
const (
	MsgQuestion        = "question"
	MsgAnalysisStarted = "analysis_started"
	MsgAnalysisReady   = "analysis_ready"
)

// AssessmentService orchestrates one character's question walk: start,
// answer-by-answer advancement, and final analysis with persistence.
type AssessmentService struct {
	catalog      *catalog.Catalog
	flow         *FlowService
	analyzer     *AnalyzerService
	sessionSvc   *SessionService
	responseRepo repository.ResponseRepo
	flowCache    cache.FlowCache
	broadcaster  Broadcaster
}

// NewAssessmentService creates a new assessment service
func NewAssessmentService(
	cat *catalog.Catalog,
	flow *FlowService,
	analyzer *AnalyzerService,
	sessionSvc *SessionService,
	responseRepo repository.ResponseRepo,
	flowCache cache.FlowCache,
) *AssessmentService {
	return &AssessmentService{
		catalog:      cat,
		flow:         flow,
		analyzer:     analyzer,
		sessionSvc:   sessionSvc,
		responseRepo: responseRepo,
		flowCache:    flowCache,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *AssessmentService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

func (s *AssessmentService) notify(sessionID, msgType string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToSession(sessionID, msgType, payload)
	}
}

// Start initializes the question walk for one character and returns the
// first question. Restarting an unfinished walk resets it.
func (s *AssessmentService) Start(ctx context.Context, sessionID string, characterID int, readPassage bool) (*model.Question, error) {
	char := s.catalog.Get(characterID)
	if char == nil {
		return nil, ErrCharacterNotFound
	}

	first := char.Questions[0].Runtime()
	state := &model.FlowState{
		SessionID:   sessionID,
		CharacterID: characterID,
		Current:     first,
		BaseIndex:   0,
		Responses:   []model.AnswerRecord{},
		ReadPassage: readPassage,
		UpdatedAt:   time.Now(),
	}
	if err := s.flowCache.Set(ctx, state); err != nil {
		return nil, fmt.Errorf("store flow state: %w", err)
	}

	s.notify(sessionID, MsgQuestion, first)
	return first, nil
}

// Current returns the walk state for a started character.
func (s *AssessmentService) Current(ctx context.Context, sessionID string, characterID int) (*model.FlowState, error) {
	state, err := s.flowCache.Get(ctx, sessionID, characterID)
	if err != nil {
		return nil, fmt.Errorf("load flow state: %w", err)
	}
	if state == nil {
		return nil, ErrFlowNotStarted
	}
	return state, nil
}

// SubmitAnswer records the answer to the current question and advances the
// walk. Done is true once the question list is exhausted.
func (s *AssessmentService) SubmitAnswer(ctx context.Context, sessionID string, characterID int, req *model.SubmitAnswerRequest) (*model.SubmitAnswerResponse, error) {
	char := s.catalog.Get(characterID)
	if char == nil {
		return nil, ErrCharacterNotFound
	}

	state, err := s.Current(ctx, sessionID, characterID)
	if err != nil {
		return nil, err
	}
	if state.Current == nil {
		return nil, ErrFlowFinished
	}
	if req.QuestionNo != "" && req.QuestionNo != state.Current.QuestionNo {
		return nil, ErrQuestionMismatch
	}

	record, err := buildRecord(state.Current, req)
	if err != nil {
		return nil, err
	}

	next, err := s.flow.Next(ctx, state.Current, record.FlowText(), char.Questions, state.BaseIndex)
	if err != nil {
		return nil, err
	}

	state.Responses = append(state.Responses, record)
	if next != nil && !next.IsFollowUp {
		state.BaseIndex++
	}
	state.Current = next
	state.UpdatedAt = time.Now()
	if err := s.flowCache.Set(ctx, state); err != nil {
		return nil, fmt.Errorf("store flow state: %w", err)
	}

	if next != nil {
		s.notify(sessionID, MsgQuestion, next)
	}

	return &model.SubmitAnswerResponse{
		Next: next,
		Done: next == nil,
		Progress: model.FlowProgress{
			BaseIndex: state.BaseIndex,
			TotalBase: len(char.Questions),
			Answered:  len(state.Responses),
		},
	}, nil
}

// Complete analyzes the finished walk, persists the character response, and
// bumps the session's completed counter. The walk must be exhausted first.
func (s *AssessmentService) Complete(ctx context.Context, sessionID string, characterID int) (*model.CharacterResponse, error) {
	char := s.catalog.Get(characterID)
	if char == nil {
		return nil, ErrCharacterNotFound
	}

	state, err := s.Current(ctx, sessionID, characterID)
	if err != nil {
		return nil, err
	}
	if state.Current != nil {
		return nil, ErrFlowIncomplete
	}

	s.notify(sessionID, MsgAnalysisStarted, map[string]interface{}{
		"characterId":   characterID,
		"characterName": char.Name,
	})

	assessment, err := s.analyzer.Analyze(ctx, char.Name, char.Passage, char.Questions, state.Responses)
	if err != nil {
		return nil, err
	}

	response := &model.CharacterResponse{
		SessionID:     sessionID,
		CharacterID:   characterID,
		CharacterName: char.Name,
		ReadPassage:   state.ReadPassage,
		Responses:     state.Responses,
		Analysis:      *assessment,
		CreatedAt:     time.Now(),
	}
	if err := s.responseRepo.Create(ctx, response); err != nil {
		return nil, fmt.Errorf("save character response: %w", err)
	}
	if err := s.sessionSvc.MarkCompleted(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("mark session completed: %w", err)
	}
	if err := s.flowCache.Delete(ctx, sessionID, characterID); err != nil {
		return nil, fmt.Errorf("clear flow state: %w", err)
	}

	s.notify(sessionID, MsgAnalysisReady, response)
	return response, nil
}

// SessionResponses returns all completed character responses for a session,
// oldest first.
func (s *AssessmentService) SessionResponses(ctx context.Context, sessionID string) ([]*model.CharacterResponse, error) {
	return s.responseRepo.GetBySessionID(ctx, sessionID)
}

// buildRecord shapes the submitted payload into an answer record matching
// the question kind.
func buildRecord(q *model.Question, req *model.SubmitAnswerRequest) (model.AnswerRecord, error) {
	record := model.AnswerRecord{
		QuestionNo: q.QuestionNo,
		Question:   q.Question,
	}
	if q.RateQuestion {
		if len(req.Ratings) == 0 {
			return record, ErrMissingAnswer
		}
		record.Kind = model.AnswerRating
		record.Ratings = req.Ratings
		return record, nil
	}
	if req.Answer == "" {
		return record, ErrMissingAnswer
	}
	record.Kind = model.AnswerText
	record.Answer = req.Answer
	return record, nil
}
