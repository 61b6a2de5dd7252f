package application

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/viralforge/facility-assistant/internal/domain"
	"github.com/viralforge/facility-assistant/internal/ports"
)

const (
	MinSpeechRate     = 0.5
	MaxSpeechRate     = 2.0
	DefaultSpeechRate = 1.0
)

// VoiceFactory builds the synthesizer/recognizer pair owned by one client session.
type VoiceFactory func() (ports.SpeechSynthesizer, ports.SpeechRecognizer)

// VoiceBridge couples a client session to its speech drivers and voice settings.
// It is not safe for concurrent use.
type VoiceBridge struct {
	synth     ports.SpeechSynthesizer
	recog     ports.SpeechRecognizer
	settings  VoiceSettings
	listening bool
}

func NewVoiceBridge(synth ports.SpeechSynthesizer, recog ports.SpeechRecognizer, rate float64) *VoiceBridge {
	if rate < MinSpeechRate || rate > MaxSpeechRate {
		rate = DefaultSpeechRate
	}
	return &VoiceBridge{synth: synth, recog: recog, settings: VoiceSettings{Rate: rate}}
}

func (b *VoiceBridge) Listening() bool { return b.listening }

func (b *VoiceBridge) Settings() VoiceSettings { return b.settings }

// ToggleListening starts or stops recognition. Starting is refused while a turn is in flight,
// in which case the state is left unchanged.
func (b *VoiceBridge) ToggleListening(ctx context.Context, turnInFlight bool) (bool, error) {
	if !b.recog.Supported() {
		return false, domain.ErrVoiceUnsupported
	}
	if b.listening {
		return false, b.StopListening(ctx)
	}
	if turnInFlight {
		return false, nil
	}
	if err := b.recog.Start(ctx); err != nil {
		return false, fmt.Errorf("start recognition: %w", err)
	}
	b.listening = true
	return true, nil
}

// StopListening ends recognition if it is running.
func (b *VoiceBridge) StopListening(ctx context.Context) error {
	if !b.listening {
		return nil
	}
	b.listening = false
	if err := b.recog.Stop(ctx); err != nil {
		return fmt.Errorf("stop recognition: %w", err)
	}
	return nil
}

// Speak cancels whatever is being spoken and speaks text with the current settings.
func (b *VoiceBridge) Speak(ctx context.Context, text string) error {
	if !b.synth.Supported() {
		return domain.ErrVoiceUnsupported
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if b.settings.VoiceURI == "" {
		b.settings.VoiceURI = b.defaultVoiceURI(ctx)
	}
	if err := b.synth.Cancel(ctx); err != nil {
		return fmt.Errorf("cancel utterance: %w", err)
	}
	return b.synth.Speak(ctx, ports.Utterance{
		ID:       uuid.NewString(),
		Text:     text,
		VoiceURI: b.settings.VoiceURI,
		Rate:     b.settings.Rate,
	})
}

func (b *VoiceBridge) Active() (ports.Utterance, bool) {
	if !b.synth.Supported() {
		return ports.Utterance{}, false
	}
	return b.synth.Active()
}

// CancelSpeech stops the active utterance, if any.
func (b *VoiceBridge) CancelSpeech(ctx context.Context) error {
	if !b.synth.Supported() {
		return domain.ErrVoiceUnsupported
	}
	return b.synth.Cancel(ctx)
}

func (b *VoiceBridge) Voices(ctx context.Context) ([]ports.Voice, error) {
	if !b.synth.Supported() {
		return nil, domain.ErrVoiceUnsupported
	}
	return b.synth.Voices(ctx)
}

// ReplaceVoices installs the voice list reported by the client's speech engine. Entries without a
// URI are rejected and duplicate URIs keep their first entry. A selected voice that is no longer
// offered is cleared so the next utterance picks the default-or-first voice again.
func (b *VoiceBridge) ReplaceVoices(ctx context.Context, voices []ports.Voice) ([]ports.Voice, error) {
	if !b.synth.Supported() {
		return nil, domain.ErrVoiceUnsupported
	}
	cleaned := make([]ports.Voice, 0, len(voices))
	for i, v := range voices {
		v.URI = strings.TrimSpace(v.URI)
		if v.URI == "" {
			return nil, fmt.Errorf("%w: voice %d has no voice_uri", domain.ErrInvalidInput, i)
		}
		if slices.ContainsFunc(cleaned, func(c ports.Voice) bool { return c.URI == v.URI }) {
			continue
		}
		if strings.TrimSpace(v.Name) == "" {
			v.Name = v.URI
		}
		cleaned = append(cleaned, v)
	}
	if err := b.synth.SetVoices(ctx, cleaned); err != nil {
		return nil, fmt.Errorf("set voices: %w", err)
	}
	if !slices.ContainsFunc(cleaned, func(v ports.Voice) bool { return v.URI == b.settings.VoiceURI }) {
		b.settings.VoiceURI = ""
	}
	return cleaned, nil
}

// UpdateSettings changes the voice and rate used by subsequent utterances.
// An empty voiceURI keeps the current voice; a nil rate keeps the current rate.
func (b *VoiceBridge) UpdateSettings(ctx context.Context, voiceURI string, rate *float64) (VoiceSettings, error) {
	if !b.synth.Supported() {
		return VoiceSettings{}, domain.ErrVoiceUnsupported
	}
	next := b.settings
	if rate != nil {
		if *rate < MinSpeechRate || *rate > MaxSpeechRate {
			return VoiceSettings{}, fmt.Errorf("%w: rate must be between %.1f and %.1f", domain.ErrInvalidInput, MinSpeechRate, MaxSpeechRate)
		}
		next.Rate = *rate
	}
	if voiceURI = strings.TrimSpace(voiceURI); voiceURI != "" {
		voices, err := b.synth.Voices(ctx)
		if err != nil {
			return VoiceSettings{}, fmt.Errorf("list voices: %w", err)
		}
		if !slices.ContainsFunc(voices, func(v ports.Voice) bool { return v.URI == voiceURI }) {
			return VoiceSettings{}, fmt.Errorf("%w: unknown voice %q", domain.ErrInvalidInput, voiceURI)
		}
		next.VoiceURI = voiceURI
	}
	b.settings = next
	return next, nil
}

// Close releases both drivers.
func (b *VoiceBridge) Close() error {
	b.listening = false
	return errors.Join(b.recog.Close(), b.synth.Close())
}

func (b *VoiceBridge) defaultVoiceURI(ctx context.Context) string {
	voices, err := b.synth.Voices(ctx)
	if err != nil || len(voices) == 0 {
		return ""
	}
	for _, v := range voices {
		if v.Default {
			return v.URI
		}
	}
	return voices[0].URI
}
