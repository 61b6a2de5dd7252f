package voice

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/viralforge/facility-assistant/internal/ports"
)

var errClosed = errors.New("voice driver closed")

// ClientSynthesizer queues utterances for the connected client to render with its own speech engine.
// It holds at most one utterance; a new Speak replaces the previous one.
type ClientSynthesizer struct {
	mu     sync.Mutex
	voices []ports.Voice
	active *ports.Utterance
	closed bool
}

func NewClientSynthesizer(voices []ports.Voice) *ClientSynthesizer {
	return &ClientSynthesizer{voices: slices.Clone(voices)}
}

func (s *ClientSynthesizer) Supported() bool { return true }

func (s *ClientSynthesizer) Voices(context.Context) ([]ports.Voice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.voices), nil
}

// SetVoices stores the voices the browser's speech engine reported.
func (s *ClientSynthesizer) SetVoices(_ context.Context, voices []ports.Voice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	s.voices = slices.Clone(voices)
	return nil
}

func (s *ClientSynthesizer) Speak(_ context.Context, u ports.Utterance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	s.active = &u
	return nil
}

func (s *ClientSynthesizer) Active() (ports.Utterance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return ports.Utterance{}, false
	}
	return *s.active, true
}

func (s *ClientSynthesizer) Cancel(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = nil
	return nil
}

func (s *ClientSynthesizer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.active = nil
	return nil
}

// ClientRecognizer tracks whether the client should be capturing speech.
// Transcripts arrive separately through the transcript endpoint.
type ClientRecognizer struct {
	mu        sync.Mutex
	listening bool
	closed    bool
}

func (r *ClientRecognizer) Supported() bool { return true }

func (r *ClientRecognizer) Start(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return errClosed
	}
	r.listening = true
	return nil
}

func (r *ClientRecognizer) Stop(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listening = false
	return nil
}

func (r *ClientRecognizer) Listening() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listening
}

func (r *ClientRecognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.listening = false
	return nil
}
