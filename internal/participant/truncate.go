package participant

import "strings"

const (
	wordLimit = 55
	keepWords = 50
)

// TruncateWords cuts replies longer than 55 words to their first 50 words
// followed by "...". Shorter replies are returned unchanged.
func TruncateWords(text string) string {
	words := strings.Fields(text)
	if len(words) <= wordLimit {
		return text
	}
	return strings.Join(words[:keepWords], " ") + "..."
}
