package application

import (
	"context"
	"strings"

	"github.com/viralforge/facility-assistant/internal/ports"
)

// ToggleListening flips speech recognition. It will not start while a turn is in flight.
func (s *Service) ToggleListening(ctx context.Context, sessionID string) (ListeningResponse, error) {
	var res ListeningResponse
	err := s.withSession(sessionID, func(sess *clientSession) error {
		if _, err := requireAuthenticated(sess); err != nil {
			return err
		}
		listening, err := sess.voice.ToggleListening(ctx, sess.turnInFlight)
		if err != nil {
			return err
		}
		res.Listening = listening
		return nil
	})
	return res, err
}

// SubmitTranscript ends listening and sends a non-empty final transcript as a user turn.
// It returns a nil response when the transcript was blank.
func (s *Service) SubmitTranscript(ctx context.Context, sessionID string, req TranscriptRequest) (*SendMessageResponse, error) {
	err := s.withSession(sessionID, func(sess *clientSession) error {
		if _, err := requireAuthenticated(sess); err != nil {
			return err
		}
		return sess.voice.StopListening(ctx)
	})
	if err != nil {
		return nil, err
	}
	transcript := strings.TrimSpace(req.Transcript)
	if transcript == "" {
		return nil, nil
	}
	res, err := s.SendMessage(ctx, sessionID, SendMessageRequest{Text: transcript})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// CurrentUtterance reports what the session's synthesizer is speaking, if anything.
func (s *Service) CurrentUtterance(ctx context.Context, sessionID string) (UtteranceResponse, error) {
	var res UtteranceResponse
	err := s.withSession(sessionID, func(sess *clientSession) error {
		if _, err := requireAuthenticated(sess); err != nil {
			return err
		}
		if u, ok := sess.voice.Active(); ok {
			res = UtteranceResponse{Active: true, Utterance: &u}
		}
		return nil
	})
	return res, err
}

func (s *Service) CancelUtterance(ctx context.Context, sessionID string) error {
	return s.withSession(sessionID, func(sess *clientSession) error {
		if _, err := requireAuthenticated(sess); err != nil {
			return err
		}
		return sess.voice.CancelSpeech(ctx)
	})
}

func (s *Service) Voices(ctx context.Context, sessionID string) ([]ports.Voice, error) {
	var out []ports.Voice
	err := s.withSession(sessionID, func(sess *clientSession) error {
		if _, err := requireAuthenticated(sess); err != nil {
			return err
		}
		voices, err := sess.voice.Voices(ctx)
		if err != nil {
			return err
		}
		out = voices
		return nil
	})
	return out, err
}

// ReportVoices replaces the session's voice list with the one the client's speech engine offers.
func (s *Service) ReportVoices(ctx context.Context, sessionID string, req ReportVoicesRequest) ([]ports.Voice, error) {
	var out []ports.Voice
	err := s.withSession(sessionID, func(sess *clientSession) error {
		if _, err := requireAuthenticated(sess); err != nil {
			return err
		}
		voices, err := sess.voice.ReplaceVoices(ctx, req.Voices)
		if err != nil {
			return err
		}
		out = voices
		return nil
	})
	return out, err
}

func (s *Service) VoiceSettings(ctx context.Context, sessionID string) (VoiceSettings, error) {
	var out VoiceSettings
	err := s.withSession(sessionID, func(sess *clientSession) error {
		if _, err := requireAuthenticated(sess); err != nil {
			return err
		}
		out = sess.voice.Settings()
		return nil
	})
	return out, err
}

func (s *Service) UpdateVoiceSettings(ctx context.Context, sessionID string, req VoiceSettingsRequest) (VoiceSettings, error) {
	var out VoiceSettings
	err := s.withSession(sessionID, func(sess *clientSession) error {
		if _, err := requireAuthenticated(sess); err != nil {
			return err
		}
		settings, err := sess.voice.UpdateSettings(ctx, req.VoiceURI, req.Rate)
		if err != nil {
			return err
		}
		out = settings
		return nil
	})
	return out, err
}
