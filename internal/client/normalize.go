package client

import (
	"math"

	"github.com/gradedesk/gradedesk/internal/model"
	"github.com/tidwall/gjson"
)

// NormalizeGrade converts a grading response body into a fully defaulted GradeResponse.
//
// The backend answers either in nested form {"grade": {"grade": n, "feedback": s}}
// or in flat form {"grade": n, "feedback": s}. The nested form is selected when the
// top-level "grade" member is a JSON object; anything else is read as flat.
// A missing or non-numeric grade becomes 0, and grades are rounded and clamped to
// 0..100. A missing, empty or non-string feedback becomes model.NoFeedback.
func NormalizeGrade(body []byte) model.GradeResponse {
	envelope := gjson.ParseBytes(body)
	if nested := envelope.Get("grade"); nested.IsObject() {
		envelope = nested
	}

	return model.GradeResponse{
		Grade:    gradeValue(envelope.Get("grade")),
		Feedback: feedbackValue(envelope.Get("feedback")),
	}
}

func gradeValue(r gjson.Result) int {
	if r.Type != gjson.Number {
		return 0
	}
	g := math.Round(r.Num)
	switch {
	case g < 0:
		return 0
	case g > 100:
		return 100
	}
	return int(g)
}

func feedbackValue(r gjson.Result) string {
	if r.Type != gjson.String || r.Str == "" {
		return model.NoFeedback
	}
	return r.Str
}
