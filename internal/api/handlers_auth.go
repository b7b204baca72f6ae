package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/hlog"

	"github.com/Vijaykv5/Intereractive-GD/internal/api/respond"
	"github.com/Vijaykv5/Intereractive-GD/internal/api/validate"
	"github.com/Vijaykv5/Intereractive-GD/internal/identity"
	"github.com/Vijaykv5/Intereractive-GD/internal/services"
)

type AuthHandler struct {
	resolver *identity.Resolver
	records  *services.RecordsService
}

func NewAuthHandler(resolver *identity.Resolver, records *services.RecordsService) *AuthHandler {
	return &AuthHandler{resolver: resolver, records: records}
}

func (h *AuthHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/auth/google", h.GoogleLogin).Methods(http.MethodPost)
}

// GoogleLogin handles POST /api/auth/google
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Token string `json:"token"`
	}
	if err := validate.DecodeJSON(w, r, &in); err != nil {
		respond.WriteErr(w, err)
		return
	}
	id, err := h.resolver.Resolve(r.Context(), in.Token)
	if err != nil {
		respond.WriteErr(w, err)
		return
	}
	if err := h.records.SaveProfile(r.Context(), *id); err != nil {
		respond.WriteErr(w, err)
		return
	}
	hlog.FromRequest(r).Info().Str("user_id", id.UserID).Msg("user signed in")
	respond.WriteSuccess(w, map[string]interface{}{"user": id})
}
