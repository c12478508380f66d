package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"archetypes/internal/model"
	"archetypes/internal/service"
	"archetypes/internal/transport/rest/middleware"
)

// AssessmentHandler handles the per-character question walk
type AssessmentHandler struct {
	sessionSvc    *service.SessionService
	assessmentSvc *service.AssessmentService
}

// NewAssessmentHandler creates a new assessment handler
func NewAssessmentHandler(sessionSvc *service.SessionService, assessmentSvc *service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{
		sessionSvc:    sessionSvc,
		assessmentSvc: assessmentSvc,
	}
}

// StartRequest is the request body for starting a character assessment
type StartRequest struct {
	ReadPassage bool `json:"readPassage"`
}

func (h *AssessmentHandler) vars(w http.ResponseWriter, r *http.Request) (sessionID string, characterID int, ok bool) {
	userID := middleware.GetUserID(r.Context())
	sessionID = mux.Vars(r)["sessionId"]

	characterID, err := strconv.Atoi(mux.Vars(r)["characterId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid character id")
		return "", 0, false
	}
	if _, err := h.sessionSvc.Get(r.Context(), sessionID, userID); err != nil {
		writeSessionError(w, err)
		return "", 0, false
	}
	return sessionID, characterID, true
}

// Start handles POST /v1/sessions/{sessionId}/characters/{characterId}/start
func (h *AssessmentHandler) Start(w http.ResponseWriter, r *http.Request) {
	sessionID, characterID, ok := h.vars(w, r)
	if !ok {
		return
	}

	var req StartRequest
	if r.Body != nil {
		// Body is optional; readPassage defaults to false
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	question, err := h.assessmentSvc.Start(r.Context(), sessionID, characterID, req.ReadPassage)
	if err != nil {
		writeAssessmentError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"question": question})
}

// Current handles GET /v1/sessions/{sessionId}/characters/{characterId}/question
func (h *AssessmentHandler) Current(w http.ResponseWriter, r *http.Request) {
	sessionID, characterID, ok := h.vars(w, r)
	if !ok {
		return
	}

	state, err := h.assessmentSvc.Current(r.Context(), sessionID, characterID)
	if err != nil {
		writeAssessmentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"question": state.Current,
		"done":     state.Current == nil,
		"progress": model.FlowProgress{
			BaseIndex: state.BaseIndex,
			Answered:  len(state.Responses),
		},
	})
}

// Answer handles POST /v1/sessions/{sessionId}/characters/{characterId}/answers
func (h *AssessmentHandler) Answer(w http.ResponseWriter, r *http.Request) {
	sessionID, characterID, ok := h.vars(w, r)
	if !ok {
		return
	}

	var req model.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.assessmentSvc.SubmitAnswer(r.Context(), sessionID, characterID, &req)
	if err != nil {
		writeAssessmentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Complete handles POST /v1/sessions/{sessionId}/characters/{characterId}/complete
func (h *AssessmentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	sessionID, characterID, ok := h.vars(w, r)
	if !ok {
		return
	}

	response, err := h.assessmentSvc.Complete(r.Context(), sessionID, characterID)
	if err != nil {
		writeAssessmentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func writeAssessmentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrCharacterNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrFlowNotStarted):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrFlowFinished),
		errors.Is(err, service.ErrFlowIncomplete),
		errors.Is(err, service.ErrQuestionMismatch),
		errors.Is(err, service.ErrMissingAnswer):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
