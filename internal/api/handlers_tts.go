package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/hlog"

	"github.com/Vijaykv5/Intereractive-GD/internal/api/respond"
	"github.com/Vijaykv5/Intereractive-GD/internal/api/validate"
	"github.com/Vijaykv5/Intereractive-GD/internal/tts"
)

// TTSVoices binds a speech backend to the voice it should use.
type TTSVoices struct {
	Service tts.Service
	Voice   tts.Voice
}

type TTSHandler struct {
	llm1 TTSVoices
	llm2 TTSVoices
	alt  TTSVoices
}

func NewTTSHandler(llm1, llm2, alt TTSVoices) *TTSHandler {
	return &TTSHandler{llm1: llm1, llm2: llm2, alt: alt}
}

func (h *TTSHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/llm1/tts", h.speak(h.llm1, "")).Methods(http.MethodPost)
	r.HandleFunc("/api/llm2/tts", h.speak(h.llm2, "Text-to-speech conversion failed: ")).Methods(http.MethodPost)
	r.HandleFunc("/api/tts/alt", h.speak(h.alt, "Alternative TTS failed: ")).Methods(http.MethodPost)
}

// speak buffers the whole clip so a mid-stream backend failure still gets a
// JSON error instead of a truncated audio body.
func (h *TTSHandler) speak(v TTSVoices, failPrefix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Text string `json:"text"`
		}
		if err := validate.DecodeJSON(w, r, &in); err != nil {
			respond.WriteErr(w, err)
			return
		}
		if err := validate.NonEmpty("text", in.Text, "No text provided"); err != nil {
			respond.WriteErr(w, err)
			return
		}

		audio, err := v.Service.Synthesize(r.Context(), in.Text, v.Voice)
		if err != nil {
			h.fail(w, r, v, failPrefix, err)
			return
		}
		defer audio.Close()

		var buf bytes.Buffer
		if _, err := io.Copy(&buf, audio); err != nil {
			h.fail(w, r, v, failPrefix, err)
			return
		}
		w.Header().Set("Content-Type", v.Service.MIMEType())
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

func (h *TTSHandler) fail(w http.ResponseWriter, r *http.Request, v TTSVoices, prefix string, err error) {
	if errors.Is(err, tts.ErrEmptyText) {
		respond.WriteBadRequest(w, "No text provided")
		return
	}
	hlog.FromRequest(r).Error().Err(err).Str("backend", v.Service.Name()).Msg("speech synthesis failed")
	respond.WriteInternalError(w, prefix+err.Error())
}
