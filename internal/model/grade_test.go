package model

import "testing"

func TestSummarize(t *testing.T) {
	tests := []struct {
		grade   int
		level   string
		message string
	}{
		{100, "Exceptional", "Outstanding work! You've mastered this concept."},
		{95, "Exceptional", "Outstanding work! You've mastered this concept."},
		{92, "Excellent", "Outstanding work! You've mastered this concept."},
		{85, "Very Good", "Great job! You're on the right track."},
		{80, "Good", "Great job! You're on the right track."},
		{77, "Above Average", "Good effort! A few improvements will make it excellent."},
		{70, "Average", "Good effort! A few improvements will make it excellent."},
		{60, "Below Average", "Keep practicing! You're making progress."},
		{59, "Needs Improvement", "Don't give up! Every expert was once a beginner."},
		{0, "Needs Improvement", "Don't give up! Every expert was once a beginner."},
	}

	for _, tt := range tests {
		got := Summarize(tt.grade)
		if got.Level != tt.level {
			t.Errorf("Summarize(%d).Level: expected %q, got %q", tt.grade, tt.level, got.Level)
		}
		if got.Message != tt.message {
			t.Errorf("Summarize(%d).Message: expected %q, got %q", tt.grade, tt.message, got.Message)
		}
	}
}

func TestHealthy(t *testing.T) {
	var missing *HealthResponse
	if missing.Healthy() {
		t.Error("nil response must not be healthy")
	}
	if !(&HealthResponse{Status: "healthy"}).Healthy() {
		t.Error("expected healthy")
	}
	if (&HealthResponse{Status: "degraded"}).Healthy() {
		t.Error("degraded must not be healthy")
	}
}
