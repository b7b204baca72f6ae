package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Vijaykv5/Intereractive-GD/internal/api/respond"
	"github.com/Vijaykv5/Intereractive-GD/internal/api/validate"
	"github.com/Vijaykv5/Intereractive-GD/internal/turn"
)

// DiscussionHandler exposes both participants' reply endpoints.
type DiscussionHandler struct {
	registry *turn.Registry
	turns    turn.Store
}

func NewDiscussionHandler(registry *turn.Registry, turns turn.Store) *DiscussionHandler {
	return &DiscussionHandler{registry: registry, turns: turns}
}

func (h *DiscussionHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/{participant:llm[12]}/llm", h.Reply).Methods(http.MethodPost)
	r.HandleFunc("/api/discussions/{discussion_id}/turn", h.GetTurn).Methods(http.MethodGet)
}

type replyRequest struct {
	turn.Incoming
	UserID string `json:"user_id"`
	// IsUserMessage shadows the embedded field; an omitted flag means the user spoke.
	IsUserMessage *bool `json:"is_user_message"`
}

// Reply handles POST /api/{llm1|llm2}/llm
func (h *DiscussionHandler) Reply(w http.ResponseWriter, r *http.Request) {
	p, err := turn.Parse(mux.Vars(r)["participant"])
	if err != nil {
		respond.WriteErr(w, err)
		return
	}
	c, ok := h.registry.Coordinator(p)
	if !ok {
		respond.WriteNotFound(w, "participant not served here")
		return
	}

	var in replyRequest
	if err := validate.DecodeJSON(w, r, &in); err != nil {
		respond.WriteErr(w, err)
		return
	}
	in.DiscussionID = turn.DiscussionID(in.DiscussionID, in.UserID)
	in.Incoming.IsUserMessage = in.IsUserMessage == nil || *in.IsUserMessage

	reply, err := c.Handle(r.Context(), in.Incoming)
	if err != nil {
		respond.WriteErr(w, err)
		return
	}
	respond.WriteSuccess(w, map[string]interface{}{
		"response":   reply.Response,
		"model_used": reply.ModelUsed,
	})
}

// GetTurn handles GET /api/discussions/{discussion_id}/turn
func (h *DiscussionHandler) GetTurn(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["discussion_id"]
	if err := validate.Identifier("discussion_id", id); err != nil {
		respond.WriteErr(w, err)
		return
	}
	cur, err := h.turns.Current(r.Context(), id)
	if err != nil {
		respond.WriteErr(w, err)
		return
	}
	respond.WriteSuccess(w, map[string]interface{}{"discussion_id": id, "turn": cur})
}
