package voice

import (
	"fmt"
	"strings"

	"github.com/viralforge/facility-assistant/internal/ports"
)

const (
	DriverClient   = "client"
	DriverDisabled = "disabled"
)

// DefaultVoices is offered by the client driver when no voices are configured.
var DefaultVoices = []ports.Voice{
	{URI: "Google US English", Name: "Google US English", Lang: "en-US", Default: true},
	{URI: "Google UK English Female", Name: "Google UK English Female", Lang: "en-GB"},
	{URI: "Google UK English Male", Name: "Google UK English Male", Lang: "en-GB"},
}

// NewFactory returns a constructor producing one fresh driver pair per client session.
func NewFactory(driver string, voices []ports.Voice) (func() (ports.SpeechSynthesizer, ports.SpeechRecognizer), error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverClient:
		if len(voices) == 0 {
			voices = DefaultVoices
		}
		return func() (ports.SpeechSynthesizer, ports.SpeechRecognizer) {
			return NewClientSynthesizer(voices), &ClientRecognizer{}
		}, nil
	case DriverDisabled:
		return func() (ports.SpeechSynthesizer, ports.SpeechRecognizer) {
			return Disabled{}, Disabled{}
		}, nil
	default:
		return nil, fmt.Errorf("unsupported voice driver %q", driver)
	}
}
