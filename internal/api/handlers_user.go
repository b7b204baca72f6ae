package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Vijaykv5/Intereractive-GD/internal/api/respond"
	"github.com/Vijaykv5/Intereractive-GD/internal/api/validate"
	"github.com/Vijaykv5/Intereractive-GD/internal/model"
	"github.com/Vijaykv5/Intereractive-GD/internal/services"
)

type UserHandler struct {
	records *services.RecordsService
}

func NewUserHandler(records *services.RecordsService) *UserHandler {
	return &UserHandler{records: records}
}

// Register adds the user data routes. Fixed paths are registered before the
// {user_id} patterns.
func (h *UserHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/user/speech", h.StoreSpeech).Methods(http.MethodPost)
	r.HandleFunc("/api/user/screenshot", h.StoreScreenshot).Methods(http.MethodPost)
	r.HandleFunc("/api/user/test", h.Test).Methods(http.MethodGet)
	r.HandleFunc("/api/user/test-speech", h.TestSpeech).Methods(http.MethodGet)
	r.HandleFunc("/api/user/{user_id}/data", h.GetData).Methods(http.MethodGet)
	r.HandleFunc("/api/user/{user_id}/screenshots", h.GetScreenshots).Methods(http.MethodGet)
}

type speechRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
	Topic  string `json:"topic"`
}

// StoreSpeech handles POST /api/user/speech
func (h *UserHandler) StoreSpeech(w http.ResponseWriter, r *http.Request) {
	var in speechRequest
	if err := validate.DecodeJSON(w, r, &in); err != nil {
		respond.WriteErr(w, err)
		return
	}
	if err := h.records.AddSpeech(r.Context(), in.UserID, in.Topic, in.Text); err != nil {
		respond.WriteErr(w, err)
		return
	}
	respond.WriteSuccess(w, map[string]interface{}{"message": "Speech stored successfully"})
}

type screenshotRequest struct {
	UserID    string `json:"user_id"`
	ImageData string `json:"image_data"`
	Topic     string `json:"topic"`
}

// StoreScreenshot handles POST /api/user/screenshot
func (h *UserHandler) StoreScreenshot(w http.ResponseWriter, r *http.Request) {
	var in screenshotRequest
	if err := validate.DecodeJSON(w, r, &in); err != nil {
		respond.WriteErr(w, err)
		return
	}
	if err := h.records.AddScreenshot(r.Context(), in.UserID, in.Topic, in.ImageData); err != nil {
		respond.WriteErr(w, err)
		return
	}
	respond.WriteSuccess(w, nil)
}

func (h *UserHandler) Test(w http.ResponseWriter, _ *http.Request) {
	respond.WriteSuccess(w, map[string]interface{}{"message": "User data API is working correctly"})
}

// TestSpeech appends a fixed entry to the test user.
func (h *UserHandler) TestSpeech(w http.ResponseWriter, r *http.Request) {
	created, rec, err := h.records.SelfTest(r.Context())
	if err != nil {
		respond.WriteErr(w, err)
		return
	}
	op := "updated"
	if created {
		op = "created"
	}
	respond.WriteSuccess(w, map[string]interface{}{
		"message":   "Test user " + op + " successfully",
		"user_data": rec,
	})
}

func (h *UserHandler) record(w http.ResponseWriter, r *http.Request) (*model.UserRecord, bool) {
	userID := mux.Vars(r)["user_id"]
	if err := validate.NonEmpty("user_id", userID, "User ID required"); err != nil {
		respond.WriteErr(w, err)
		return nil, false
	}
	rec, err := h.records.Get(r.Context(), userID)
	if err != nil {
		respond.WriteErr(w, err)
		return nil, false
	}
	return rec, true
}

// GetData handles GET /api/user/{user_id}/data. Screenshot payloads are
// replaced by their length.
func (h *UserHandler) GetData(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.record(w, r)
	if !ok {
		return
	}
	respond.WriteSuccess(w, map[string]interface{}{"data": services.Redact(rec)})
}

// GetScreenshots handles GET /api/user/{user_id}/screenshots
func (h *UserHandler) GetScreenshots(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.record(w, r)
	if !ok {
		return
	}
	shots := rec.Screenshots
	if shots == nil {
		shots = []model.Screenshot{}
	}
	respond.WriteSuccess(w, map[string]interface{}{"screenshots": shots})
}
