// Package participant turns a topic and the latest utterance into a short
// in-character reply from a hosted LLM.
package participant

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Vijaykv5/Intereractive-GD/internal/llm"
	"github.com/Vijaykv5/Intereractive-GD/internal/model"
	"github.com/Vijaykv5/Intereractive-GD/internal/turn"
)

const (
	DefaultModel1 = "google/gemini-2.0-flash-lite-preview-02-05:free"
	DefaultModel2 = "meta-llama/llama-3.2-3b-instruct:free"
)

// Persona fixes the prompt, model and sampling for one participant.
type Persona struct {
	ID          turn.Participant
	Model       string
	ModelUsed   string
	Temperature *float64
	MaxTokens   int
	Prompt      func(text, topic string, isInitial bool) string
}

// Participant1 opens the discussion and answers in at most 40 words.
func Participant1(modelID string) Persona {
	if modelID == "" {
		modelID = DefaultModel1
	}
	return Persona{
		ID:        turn.LLM1,
		Model:     modelID,
		ModelUsed: modelID,
		Prompt: func(text, topic string, isInitial bool) string {
			if isInitial {
				return fmt.Sprintf(`Start a group discussion about "%s". Give a brief introduction (max 40 words) that sets the context and invites others to share their views.`, topic)
			}
			return fmt.Sprintf(`You are in a group discussion about "%s". Respond briefly (max 40 words) to: %s`, topic, text)
		},
	}
}

// Participant2 answers in at most 60 words and may disagree.
func Participant2(modelID string) Persona {
	used := "llama-3.2-3b"
	if modelID == "" {
		modelID = DefaultModel2
	}
	if modelID != DefaultModel2 {
		used = modelID
	}
	return Persona{
		ID:          turn.LLM2,
		Model:       modelID,
		ModelUsed:   used,
		Temperature: llm.Float(0.7),
		MaxTokens:   100,
		Prompt: func(text, topic string, _ bool) string {
			return fmt.Sprintf(`You are a participant in a group discussion about "%s". Respond to the following message in a brief way (maximum 60 words). Sometimes agree with the speaker, you can also disagree, but also share your own insights and perspectives. Be natural and conversational, like a real participant in a group discussion.

Current topic: %s
User says: %s`, topic, topic, text)
		},
	}
}

// Responder generates replies for one persona.
type Responder struct {
	persona Persona
	client  llm.Client
	log     zerolog.Logger
}

func NewResponder(p Persona, client llm.Client, log zerolog.Logger) *Responder {
	return &Responder{persona: p, client: client, log: log.With().Str("participant", string(p.ID)).Logger()}
}

func (r *Responder) Persona() Persona { return r.persona }

// Generate implements turn.Generator.
func (r *Responder) Generate(ctx context.Context, in turn.Incoming) (turn.Generation, error) {
	req := llm.UserPrompt(r.persona.Model, r.persona.Prompt(in.Text, in.Topic, in.IsInitial))
	req.Temperature = r.persona.Temperature
	req.MaxTokens = r.persona.MaxTokens

	reply, err := r.client.Complete(ctx, req)
	if err != nil {
		r.log.Error().Err(err).Str("provider", r.client.Name()).Msg("completion failed")
		return turn.Generation{}, model.NewUpstreamError(r.client.Name(), "Failed to get response from LLM", err)
	}
	return turn.Generation{Text: TruncateWords(reply), ModelUsed: r.persona.ModelUsed}, nil
}
