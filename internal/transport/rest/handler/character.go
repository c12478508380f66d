package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"archetypes/internal/catalog"
	"archetypes/internal/model"
)

// CharacterHandler serves the static character catalog
type CharacterHandler struct {
	catalog *catalog.Catalog
}

// NewCharacterHandler creates a new character handler
func NewCharacterHandler(cat *catalog.Catalog) *CharacterHandler {
	return &CharacterHandler{catalog: cat}
}

// characterSummary omits the question tree; the flow endpoints dispense
// questions one at a time.
type characterSummary struct {
	ID        int    `json:"id"`
	Name      string `json:"character"`
	Passage   string `json:"passage"`
	Image     string `json:"image,omitempty"`
	Questions int    `json:"questionCount"`
}

func summarize(c model.Character) characterSummary {
	return characterSummary{
		ID:        c.ID,
		Name:      c.Name,
		Passage:   c.Passage,
		Image:     c.Image,
		Questions: len(c.Questions),
	}
}

// List handles GET /v1/characters
func (h *CharacterHandler) List(w http.ResponseWriter, r *http.Request) {
	characters := h.catalog.Characters()
	summaries := make([]characterSummary, 0, len(characters))
	for _, c := range characters {
		summaries = append(summaries, summarize(c))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"characters": summaries})
}

// Get handles GET /v1/characters/{characterId}
func (h *CharacterHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["characterId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid character id")
		return
	}

	char := h.catalog.Get(id)
	if char == nil {
		writeError(w, http.StatusNotFound, "character not found")
		return
	}
	writeJSON(w, http.StatusOK, summarize(*char))
}
