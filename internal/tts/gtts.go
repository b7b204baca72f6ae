package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// maxChunkChars is the longest text Google Translate speaks per request.
const maxChunkChars = 100

// GoogleTranslate synthesizes MP3 through the Google Translate speech endpoint.
type GoogleTranslate struct {
	client  *resty.Client
	baseURL string
}

// NewGoogleTranslate targets baseURL when set, otherwise
// https://translate.google.<tld> chosen per voice.
func NewGoogleTranslate(baseURL string, timeout time.Duration) *GoogleTranslate {
	c := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	return &GoogleTranslate{client: c, baseURL: baseURL}
}

func (g *GoogleTranslate) Name() string     { return "gtts" }
func (g *GoogleTranslate) MIMEType() string { return "audio/mp3" }

func (g *GoogleTranslate) host(voice Voice) string {
	if g.baseURL != "" {
		return g.baseURL
	}
	tld := voice.TLD
	if tld == "" {
		tld = "com"
	}
	return "https://translate.google." + tld
}

func (g *GoogleTranslate) Synthesize(ctx context.Context, text string, voice Voice) (io.ReadCloser, error) {
	text, err := prepare(text, voice)
	if err != nil {
		return nil, err
	}
	lang := voice.Language
	if lang == "" {
		lang = "en"
	}

	chunks := Chunk(text, maxChunkChars)
	var audio bytes.Buffer
	for i, part := range chunks {
		resp, err := g.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"ie":      "UTF-8",
				"client":  "tw-ob",
				"tl":      lang,
				"q":       part,
				"total":   strconv.Itoa(len(chunks)),
				"idx":     strconv.Itoa(i),
				"textlen": strconv.Itoa(len(part)),
			}).
			Get(g.host(voice) + "/translate_tts")
		if err != nil {
			return nil, NewSynthesisError(g.Name(), "", "request failed", err, true)
		}
		if resp.IsError() {
			return nil, NewSynthesisError(g.Name(), strconv.Itoa(resp.StatusCode()),
				fmt.Sprintf("chunk %d/%d rejected", i+1, len(chunks)), nil, retryableStatus(resp.StatusCode()))
		}
		audio.Write(resp.Body())
	}
	return io.NopCloser(&audio), nil
}

// Chunk splits text into pieces of at most limit runes, preferring to break
// after sentence punctuation, then at spaces. Words longer than limit are cut.
func Chunk(text string, limit int) []string {
	var out []string
	rest := strings.TrimSpace(text)
	for rest != "" {
		runes := []rune(rest)
		if len(runes) <= limit {
			out = append(out, rest)
			break
		}
		cut := breakPoint(runes[:limit+1])
		if cut <= 0 {
			cut = limit
		}
		piece := strings.TrimSpace(string(runes[:cut]))
		if piece != "" {
			out = append(out, piece)
		}
		rest = strings.TrimSpace(string(runes[cut:]))
	}
	return out
}

// breakPoint returns the index just after the best split inside window.
func breakPoint(window []rune) int {
	for i := len(window) - 1; i > 0; i-- {
		switch window[i-1] {
		case '.', '!', '?', ';', ':', ',':
			if window[i] == ' ' {
				return i
			}
		}
	}
	for i := len(window) - 1; i > 0; i-- {
		if window[i] == ' ' {
			return i
		}
	}
	return 0
}
