package model

import "time"

// User is an account that owns assessment sessions.
type User struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Username  string    `json:"username" bson:"username"`
	Password  string    `json:"-" bson:"password"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Session is one assessment run; Completed counts finished characters.
type Session struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	UserID    string    `json:"userId" bson:"userId"`
	Completed int       `json:"completed" bson:"completed"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// CharacterResponse is one completed character assessment within a session:
// the full answer transcript plus its analysis.
type CharacterResponse struct {
	ID            string         `json:"id" bson:"_id,omitempty"`
	SessionID     string         `json:"sessionId" bson:"sessionId"`
	CharacterID   int            `json:"characterId" bson:"characterId"`
	CharacterName string         `json:"characterName" bson:"characterName"`
	ReadPassage   bool           `json:"readPassage" bson:"readPassage"`
	Responses     []AnswerRecord `json:"responses" bson:"responses"`
	Analysis      Assessment     `json:"analysis" bson:"analysis"`
	CreatedAt     time.Time      `json:"createdAt" bson:"createdAt"`
}

// FlowState is the walk through one character's question list for one
// session. All flow state lives here; the flow service itself is stateless.
type FlowState struct {
	SessionID   string         `json:"sessionId"`
	CharacterID int            `json:"characterId"`
	// Current is the question awaiting an answer; nil once the list is
	// exhausted and the assessment can be completed.
	Current     *Question      `json:"current,omitempty"`
	BaseIndex   int            `json:"baseIndex"`
	Responses   []AnswerRecord `json:"responses"`
	ReadPassage bool           `json:"readPassage"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}
