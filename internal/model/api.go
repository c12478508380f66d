package model

// SubmitAnswerRequest is the request body for answering the current question
type SubmitAnswerRequest struct {
	QuestionNo string             `json:"question_no"`
	Answer     string             `json:"answer,omitempty"`
	Ratings    map[string]float64 `json:"ratings,omitempty"`
}

// FlowProgress reports how far through the base question list the user is.
// Follow-ups do not advance it.
type FlowProgress struct {
	BaseIndex int `json:"baseIndex"`
	TotalBase int `json:"totalBase"`
	Answered  int `json:"answered"`
}

// SubmitAnswerResponse returns the next question, or done when the list is
// exhausted and the assessment can be completed.
type SubmitAnswerResponse struct {
	Next     *Question    `json:"next,omitempty"`
	Done     bool         `json:"done"`
	Progress FlowProgress `json:"progress"`
}
