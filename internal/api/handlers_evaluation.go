package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Vijaykv5/Intereractive-GD/internal/api/respond"
	"github.com/Vijaykv5/Intereractive-GD/internal/api/validate"
	"github.com/Vijaykv5/Intereractive-GD/internal/evaluation"
	"github.com/Vijaykv5/Intereractive-GD/internal/model"
)

type EvaluationHandler struct {
	svc *evaluation.Service
}

func NewEvaluationHandler(svc *evaluation.Service) *EvaluationHandler {
	return &EvaluationHandler{svc: svc}
}

func (h *EvaluationHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/user/{user_id}/gd-evaluation", h.Evaluate).Methods(http.MethodGet, http.MethodPost)
}

// Evaluate handles GET|POST /api/user/{user_id}/gd-evaluation. Both methods
// request a fresh evaluation.
func (h *EvaluationHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	if err := validate.Identifier("user_id", userID); err != nil {
		respond.WriteErr(w, err)
		return
	}
	stored, err := h.svc.Evaluate(r.Context(), userID)
	if err != nil {
		var fe *model.EvaluationFormatError
		if errors.As(err, &fe) {
			respond.WriteJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"success":    false,
				"error":      fe.Error(),
				"violations": fe.Violations,
			})
			return
		}
		respond.WriteErr(w, err)
		return
	}
	respond.WriteSuccess(w, map[string]interface{}{
		"evaluation": stored.Evaluation,
		"timestamp":  stored.Timestamp,
	})
}
