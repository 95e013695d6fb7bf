package service

import (
	"context"
	"strings"

	"github.com/gradedesk/gradedesk/internal/model"
	"github.com/rs/zerolog"
)

// QuestionGenerator requests generated questions. Implemented by client.Client.
type QuestionGenerator interface {
	RequestQuestion(ctx context.Context, topic string) (*model.GenerateQuestionResponse, error)
}

// QuestionService fetches generated questions from the grading backend.
type QuestionService struct {
	generator    QuestionGenerator
	defaultTopic string
	log          zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(generator QuestionGenerator, defaultTopic string, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		generator:    generator,
		defaultTopic: defaultTopic,
		log:          log.With().Str("component", "question_service").Logger(),
	}
}

// Generate returns a fresh question on topic, or on the default topic when blank.
func (s *QuestionService) Generate(ctx context.Context, topic string) (*model.GenerateQuestionResponse, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = s.defaultTopic
	}

	res, err := s.generator.RequestQuestion(ctx, topic)
	if err != nil {
		s.log.Error().Err(err).Str("topic", topic).Msg("Question generation failed")
		return nil, err
	}
	return res, nil
}
