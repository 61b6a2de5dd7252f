package voice

import (
	"context"

	"github.com/viralforge/facility-assistant/internal/domain"
	"github.com/viralforge/facility-assistant/internal/ports"
)

// Disabled stands in for both drivers when speech is turned off. Every call reports unsupported.
type Disabled struct{}

func (Disabled) Supported() bool { return false }

func (Disabled) Voices(context.Context) ([]ports.Voice, error) { return nil, domain.ErrVoiceUnsupported }

func (Disabled) SetVoices(context.Context, []ports.Voice) error { return domain.ErrVoiceUnsupported }

func (Disabled) Speak(context.Context, ports.Utterance) error { return domain.ErrVoiceUnsupported }

func (Disabled) Active() (ports.Utterance, bool) { return ports.Utterance{}, false }

func (Disabled) Cancel(context.Context) error { return domain.ErrVoiceUnsupported }

func (Disabled) Start(context.Context) error { return domain.ErrVoiceUnsupported }

func (Disabled) Stop(context.Context) error { return nil }

func (Disabled) Close() error { return nil }
