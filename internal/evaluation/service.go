// Package evaluation grades a user's stored discussion speech with an LLM.
package evaluation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Vijaykv5/Intereractive-GD/internal/llm"
	"github.com/Vijaykv5/Intereractive-GD/internal/model"
	"github.com/Vijaykv5/Intereractive-GD/internal/services"
)

const systemPrompt = `You are an expert group discussion evaluator. You reply with ONLY a JSON object, no prose and no Markdown.`

const promptTemplate = `Evaluate the following contribution to a group discussion.

Topic: %s

Participant's speech:
%s

Return ONLY a JSON object with exactly this shape. Every score is a number between 0 and 1.
{
  "topic_coverage": {"score": 0.0, "analysis": "", "key_points_covered": [""], "missing_points": [""]},
  "depth_of_analysis": {"score": 0.0, "analysis": ""},
  "relevance": {"score": 0.0, "analysis": ""},
  "structure": {"score": 0.0, "analysis": ""},
  "overall_score": 0.0,
  "summary": "",
  "suggestions": [""]
}`

// Service requests, validates and stores evaluations.
type Service struct {
	records   *services.RecordsService
	client    llm.Client
	model     string
	validator *Validator
	log       zerolog.Logger
}

func NewService(records *services.RecordsService, client llm.Client, modelID string, log zerolog.Logger) (*Service, error) {
	v, err := NewValidator()
	if err != nil {
		return nil, err
	}
	return &Service{records: records, client: client, model: modelID, validator: v, log: log}, nil
}

// Prompt builds the user message for topic and transcript.
func Prompt(topic, transcript string) string {
	return fmt.Sprintf(promptTemplate, topic, transcript)
}

// Evaluate grades userID's speech and overwrites any earlier evaluation.
// A malformed LLM response is terminal for the call.
func (s *Service) Evaluate(ctx context.Context, userID string) (*model.StoredEvaluation, error) {
	rec, err := s.records.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(rec.SpeechEntries) == 0 {
		return nil, model.NewNotFoundError("speech_entries", "No speech entries found for user")
	}

	raw, err := s.client.Complete(ctx, llm.Request{
		Model: s.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: Prompt(rec.Topic, rec.Transcript())},
		},
		Temperature: llm.Float(0.2),
	})
	if err != nil {
		return nil, model.NewUpstreamError(s.client.Name(), "Failed to get evaluation from LLM", err)
	}

	ev, err := s.validator.Parse(raw)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("rejected evaluation response")
		return nil, err
	}

	stored, err := s.records.SaveEvaluation(ctx, userID, *ev)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", userID).Float64("overall_score", ev.OverallScore).Msg("evaluation stored")
	return stored, nil
}
