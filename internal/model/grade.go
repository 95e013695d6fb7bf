package model

// NoFeedback is substituted when the grading backend returns no usable feedback.
const NoFeedback = "No feedback provided."

// GradeRequest is the payload for grading a solution against a question.
type GradeRequest struct {
	Question string `json:"question" binding:"required,notblank,max=10000"`
	Code     string `json:"code" binding:"required,notblank,max=100000"`
}

// GradeResponse is the normalized grading result. Grade is always within 0..100.
type GradeResponse struct {
	Grade    int    `json:"grade"`
	Feedback string `json:"feedback"`
}

// GradeSummary is the display-independent reading of a grade.
type GradeSummary struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// GradeResult is what the gateway hands back to the browser after grading.
type GradeResult struct {
	GradeResponse
	Summary   GradeSummary `json:"summary"`
	AttemptID string       `json:"attempt_id"`
}

// Summarize maps a grade to its level and motivational message.
func Summarize(grade int) GradeSummary {
	var s GradeSummary
	switch {
	case grade >= 95:
		s.Level = "Exceptional"
	case grade >= 90:
		s.Level = "Excellent"
	case grade >= 85:
		s.Level = "Very Good"
	case grade >= 80:
		s.Level = "Good"
	case grade >= 75:
		s.Level = "Above Average"
	case grade >= 70:
		s.Level = "Average"
	case grade >= 60:
		s.Level = "Below Average"
	default:
		s.Level = "Needs Improvement"
	}

	switch {
	case grade >= 90:
		s.Message = "Outstanding work! You've mastered this concept."
	case grade >= 80:
		s.Message = "Great job! You're on the right track."
	case grade >= 70:
		s.Message = "Good effort! A few improvements will make it excellent."
	case grade >= 60:
		s.Message = "Keep practicing! You're making progress."
	default:
		s.Message = "Don't give up! Every expert was once a beginner."
	}
	return s
}
