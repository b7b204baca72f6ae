package factory

import (
	"fmt"
	"time"

	"github.com/Vijaykv5/Intereractive-GD/internal/config"
	"github.com/Vijaykv5/Intereractive-GD/internal/tts"
)

// NewTTS builds the named speech backend.
func NewTTS(cfg *config.Config, provider string) (tts.Service, error) {
	var svc tts.Service
	switch provider {
	case "gtts":
		svc = tts.NewGoogleTranslate("", cfg.TTSTimeout)
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("GD_OPENAI_API_KEY is required for the openai speech backend")
		}
		svc = tts.NewOpenAI(cfg.OpenAIURL, cfg.OpenAIAPIKey, cfg.TTSTimeout)
	case "piper":
		svc = tts.NewPiper(cfg.PiperURL, cfg.TTSTimeout)
	default:
		return nil, fmt.Errorf("unknown TTS provider: %s", provider)
	}
	return tts.WithRetry(tts.Instrumented(svc), cfg.TTSAttempts, 250*time.Millisecond), nil
}
