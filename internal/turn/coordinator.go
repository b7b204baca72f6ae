package turn

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Vijaykv5/Intereractive-GD/internal/metrics"
	"github.com/Vijaykv5/Intereractive-GD/internal/model"
)

// Incoming is one message addressed to a participant.
type Incoming struct {
	DiscussionID  string `json:"discussion_id,omitempty"`
	Text          string `json:"text"`
	Topic         string `json:"topic"`
	IsUserMessage bool   `json:"is_user_message"`
	IsInitial     bool   `json:"is_initial_message"`
}

// Generation is a participant's produced reply.
type Generation struct {
	Text      string
	ModelUsed string
}

// Reply is what a coordinator returns to its caller.
type Reply struct {
	Response    string      `json:"response"`
	ModelUsed   string      `json:"model_used"`
	Participant Participant `json:"participant,omitempty"`
}

// Generator produces a participant's reply.
type Generator interface {
	Generate(ctx context.Context, in Incoming) (Generation, error)
}

// Forwarder hands a message to the other participant.
type Forwarder interface {
	Forward(ctx context.Context, to Participant, in Incoming) (Reply, error)
}

// Coordinator decides, for one participant, whether to speak, forward or refuse.
type Coordinator struct {
	self  Participant
	store Store
	gen   Generator
	fwd   Forwarder
	log   zerolog.Logger
}

func NewCoordinator(self Participant, store Store, gen Generator, fwd Forwarder, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		self:  self,
		store: store,
		gen:   gen,
		fwd:   fwd,
		log:   log.With().Str("participant", string(self)).Logger(),
	}
}

func (c *Coordinator) Participant() Participant { return c.self }

// Handle applies the turn rules to in:
//   - a user message arriving out of turn is forwarded to the peer and the
//     peer's reply is returned verbatim
//   - any other out-of-turn message is refused with a *model.TurnError
//   - otherwise a reply is generated and the turn passes to the peer
//
// Turn state changes only after a successful generation. If another request
// took the turn in the meantime the reply is discarded.
func (c *Coordinator) Handle(ctx context.Context, in Incoming) (Reply, error) {
	if in.Text == "" {
		return Reply{}, model.NewValidationError("text", "No text provided")
	}
	if in.DiscussionID == "" {
		in.DiscussionID = DefaultDiscussionID
	}
	log := c.log.With().Str("discussion_id", in.DiscussionID).Logger()

	cur, err := c.store.Current(ctx, in.DiscussionID)
	if err != nil {
		return Reply{}, err
	}

	if cur != c.self {
		if !in.IsUserMessage {
			metrics.Handoff(string(c.self), "rejected")
			log.Debug().Str("current", string(cur)).Msg("not my turn")
			return Reply{}, &model.TurnError{Participant: string(c.self), Message: fmt.Sprintf("Not %s's turn", c.self.Label())}
		}
		peer := c.self.Peer()
		fwd := in
		fwd.IsUserMessage = false
		reply, err := c.fwd.Forward(ctx, peer, fwd)
		if err != nil {
			metrics.Handoff(string(c.self), "forward_failed")
			log.Error().Err(err).Str("peer", string(peer)).Msg("forwarding failed")
			return Reply{}, model.NewUpstreamError(string(peer), fmt.Sprintf("Failed to get response from %s", peer.Label()), err)
		}
		metrics.Handoff(string(c.self), "forwarded")
		return reply, nil
	}

	gen, err := c.gen.Generate(ctx, in)
	if err != nil {
		metrics.Handoff(string(c.self), "generate_failed")
		return Reply{}, err
	}

	swapped, err := c.store.CompareAndSwap(ctx, in.DiscussionID, c.self, c.self.Peer())
	if err != nil {
		return Reply{}, err
	}
	if !swapped {
		metrics.Handoff(string(c.self), "lost")
		log.Warn().Msg("turn changed during generation; reply discarded")
		return Reply{}, &model.TurnError{Participant: string(c.self), Message: fmt.Sprintf("Not %s's turn", c.self.Label())}
	}
	metrics.Handoff(string(c.self), "generated")
	return Reply{Response: gen.Text, ModelUsed: gen.ModelUsed, Participant: c.self}, nil
}
