package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"archetypes/internal/model"
)

// Catalog is the load-once set of characters. Immutable after Load.
type Catalog struct {
	characters []model.Character
	byID       map[int]*model.Character
}

// Load reads and validates the character catalog from a JSON file.
// Any schema violation is an error; callers treat that as fatal at startup.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var characters []model.Character
	if err := json.Unmarshal(data, &characters); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{
		characters: characters,
		byID:       make(map[int]*model.Character, len(characters)),
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	for i := range c.characters {
		c.byID[c.characters[i].ID] = &c.characters[i]
	}
	return c, nil
}

// Path returns the catalog file location from the environment, with the
// repository default as fallback.
func Path() string {
	if p := os.Getenv("CHARACTERS_PATH"); p != "" {
		return p
	}
	return "assets/characters.json"
}

// Characters returns all characters in authored order.
func (c *Catalog) Characters() []model.Character {
	return c.characters
}

// Get returns a character by id, or nil when unknown.
func (c *Catalog) Get(id int) *model.Character {
	return c.byID[id]
}

// Len returns the number of characters.
func (c *Catalog) Len() int {
	return len(c.characters)
}

func (c *Catalog) validate() error {
	if len(c.characters) == 0 {
		return fmt.Errorf("catalog is empty")
	}

	seenIDs := make(map[int]bool, len(c.characters))
	for _, ch := range c.characters {
		if ch.ID <= 0 {
			return fmt.Errorf("character %q: invalid id %d", ch.Name, ch.ID)
		}
		if seenIDs[ch.ID] {
			return fmt.Errorf("duplicate character id %d", ch.ID)
		}
		seenIDs[ch.ID] = true

		if ch.Name == "" {
			return fmt.Errorf("character %d: missing name", ch.ID)
		}
		if ch.Passage == "" {
			return fmt.Errorf("character %q: missing passage", ch.Name)
		}
		if len(ch.Questions) == 0 {
			return fmt.Errorf("character %q: no questions", ch.Name)
		}

		seenNos := make(map[string]bool, len(ch.Questions))
		for _, q := range ch.Questions {
			if err := validateQuestion(ch.Name, q); err != nil {
				return err
			}
			if seenNos[q.QuestionNo] {
				return fmt.Errorf("character %q: duplicate question_no %q", ch.Name, q.QuestionNo)
			}
			seenNos[q.QuestionNo] = true
		}
	}
	return nil
}

func validateQuestion(character string, q model.BaseQuestion) error {
	if q.QuestionNo == "" {
		return fmt.Errorf("character %q: question with empty question_no", character)
	}
	if q.Question == "" {
		return fmt.Errorf("character %q: question %s has no text", character, q.QuestionNo)
	}
	if q.RateQuestion && len(q.Options) == 0 {
		return fmt.Errorf("character %q: rating question %s has no options", character, q.QuestionNo)
	}
	for label, fu := range q.FollowUps {
		if parsed, ok := model.ParseIntentLabel(string(label)); !ok || parsed != label {
			return fmt.Errorf("character %q: question %s has follow-up under unknown label %q", character, q.QuestionNo, label)
		}
		if fu.Question == "" {
			return fmt.Errorf("character %q: question %s follow-up %q has no text", character, q.QuestionNo, label)
		}
		if fu.RateQuestion && len(fu.Options) == 0 {
			return fmt.Errorf("character %q: question %s follow-up %q is a rating question with no options", character, q.QuestionNo, label)
		}
	}
	return nil
}
