package model

// GenerateQuestionRequest asks the backend for a fresh question on a topic.
// An empty topic is replaced with the configured default.
type GenerateQuestionRequest struct {
	Topic string `json:"topic" binding:"max=200"`
}

// GenerateQuestionResponse carries the generated question text verbatim.
type GenerateQuestionResponse struct {
	Question string `json:"question"`
}
