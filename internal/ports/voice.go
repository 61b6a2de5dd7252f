package ports

import "context"

// Voice is one text-to-speech voice offered by a synthesizer.
type Voice struct {
	URI     string `json:"voice_uri"`
	Name    string `json:"name"`
	Lang    string `json:"lang"`
	Default bool   `json:"default"`
}

// Utterance is a single request to speak text.
type Utterance struct {
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	VoiceURI string  `json:"voice_uri,omitempty"`
	Rate     float64 `json:"rate"`
}

// SpeechSynthesizer speaks utterances. Drivers without speech output report Supported() == false.
type SpeechSynthesizer interface {
	Supported() bool
	Voices(ctx context.Context) ([]Voice, error)
	// SetVoices replaces the offered voices with the list the speaking engine reports.
	SetVoices(ctx context.Context, voices []Voice) error
	Speak(ctx context.Context, u Utterance) error
	// Active returns the utterance currently being spoken, if any.
	Active() (Utterance, bool)
	Cancel(ctx context.Context) error
	Close() error
}

// SpeechRecognizer controls a listening session. Transcripts are delivered by the caller.
type SpeechRecognizer interface {
	Supported() bool
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Close() error
}
