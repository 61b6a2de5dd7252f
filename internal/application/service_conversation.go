package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/viralforge/facility-assistant/internal/domain"
)

const defaultGatewayTimeout = 60 * time.Second

func (s *Service) Messages(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	err := s.withSession(sessionID, func(sess *clientSession) error {
		if _, err := requireAuthenticated(sess); err != nil {
			return err
		}
		out = sess.log.Messages()
		return nil
	})
	return out, err
}

// SendMessage runs one conversational turn: append the user message, ask the gateway with the
// prior history, append the reply (or the fallback text) and speak it. Only one turn may be
// outstanding per session. A reply that comes back after the log was reset is dropped.
func (s *Service) SendMessage(ctx context.Context, sessionID string, req SendMessageRequest) (SendMessageResponse, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return SendMessageResponse{}, fmt.Errorf("%w: message text is required", domain.ErrInvalidInput)
	}

	sess, ok := s.sessions.get(sessionID)
	if !ok {
		return SendMessageResponse{}, fmt.Errorf("%w: client session", domain.ErrNotFound)
	}

	sess.mu.Lock()
	sess.lastActiveAt = s.nowFn()
	if _, err := requireAuthenticated(sess); err != nil {
		sess.mu.Unlock()
		return SendMessageResponse{}, err
	}
	if sess.turnInFlight {
		sess.mu.Unlock()
		return SendMessageResponse{}, domain.ErrTurnInFlight
	}
	if err := sess.voice.StopListening(ctx); err != nil {
		s.warn(ctx, "send_message", "failed to stop recognition", err, "session_id", sess.id)
	}
	history := sess.log.History()
	userMsg := sess.log.AppendUserMessage(text)
	generation := sess.log.Generation()
	sess.turnInFlight = true
	sess.mu.Unlock()

	reply, gatewayErr := s.generate(ctx, text, history)
	failed := gatewayErr != nil
	if failed {
		s.warn(ctx, "send_message", "assistant gateway failed; replying with fallback", gatewayErr, "session_id", sess.id)
		reply = domain.FallbackReplyText
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.turnInFlight = false
	sess.lastActiveAt = s.nowFn()
	res := SendMessageResponse{UserMessage: userMsg, GatewayFailed: failed}
	if sess.log.Generation() != generation {
		res.Dropped = true
		return res, nil
	}
	botMsg := sess.log.AppendBotMessage(reply)
	res.Reply = &botMsg
	if err := sess.voice.Speak(ctx, reply); err != nil && !errors.Is(err, domain.ErrVoiceUnsupported) {
		s.warn(ctx, "send_message", "failed to speak reply", err, "session_id", sess.id)
	}

	eventType := eventTypeTurnCompleted
	if failed {
		eventType = eventTypeTurnFailed
	}
	s.emit(ctx, eventType, sess.id, map[string]any{
		"session_id":      sess.id,
		"user_message_id": userMsg.ID,
		"reply_id":        botMsg.ID,
		"completed_at":    botMsg.Timestamp,
	})
	return res, nil
}

func (s *Service) generate(ctx context.Context, prompt string, history []domain.HistoryEntry) (string, error) {
	if s.gateway == nil {
		return "", fmt.Errorf("%w: assistant gateway is not configured", domain.ErrGatewayFailure)
	}
	timeout := s.cfg.GatewayTimeout
	if timeout <= 0 {
		timeout = defaultGatewayTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reply, err := s.gateway.Generate(callCtx, prompt, history)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return "", fmt.Errorf("%w: empty reply", domain.ErrGatewayFailure)
	}
	return reply, nil
}

// AddReaction bumps an emoji tally. Unknown message ids are ignored and still succeed.
func (s *Service) AddReaction(ctx context.Context, sessionID, messageID string, req AddReactionRequest) ([]domain.ChatMessage, error) {
	emoji := strings.TrimSpace(req.Emoji)
	if emoji == "" {
		return nil, fmt.Errorf("%w: emoji is required", domain.ErrInvalidInput)
	}
	var out []domain.ChatMessage
	err := s.withSession(sessionID, func(sess *clientSession) error {
		if _, err := requireAuthenticated(sess); err != nil {
			return err
		}
		sess.log.AddReaction(messageID, emoji)
		out = sess.log.Messages()
		return nil
	})
	return out, err
}

// ClearChat resets the conversation to the seed greeting.
func (s *Service) ClearChat(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	err := s.withSession(sessionID, func(sess *clientSession) error {
		if _, err := requireAuthenticated(sess); err != nil {
			return err
		}
		sess.log.Reset()
		out = sess.log.Messages()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, eventTypeConversationClear, sessionID, map[string]any{
		"session_id": sessionID,
		"cleared_at": s.nowFn(),
	})
	return out, nil
}
