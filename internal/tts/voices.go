package tts

// Voices for each speaking role, keyed by backend.
var roleVoices = map[string]map[string]Voice{
	"llm1": {
		"gtts":   {},
		"openai": {Name: "alloy"},
		"piper":  {Name: "en_GB-alan-medium"},
	},
	"llm2": {
		"gtts":   {Expressive: true},
		"openai": {Name: "onyx", Expressive: true},
		"piper":  {Name: "en_US-ryan-high", Speed: 1.0, Expressive: true},
	},
	"alt": {
		"gtts":   {Expressive: true},
		"openai": {Name: "nova", Expressive: true},
		"piper":  {Name: "en_US-amy-medium", Speed: 1.0, Expressive: true},
	},
}

// VoiceFor returns the voice a role uses on backend, with the Google
// Translate accent applied.
func VoiceFor(role, backend, language, tld string) Voice {
	v := roleVoices[role][backend]
	v.Language = language
	v.TLD = tld
	return v
}
