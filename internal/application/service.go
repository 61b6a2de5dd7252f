package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/facility-assistant/internal/domain"
	"github.com/viralforge/facility-assistant/internal/ports"
)

const serviceName = "facility-assistant"

type Service struct {
	cfg         Config
	credentials *CredentialStore
	matcher     ports.CredentialMatcher
	gateway     ports.AssistantGateway
	outbox      ports.OutboxRepository
	voice       VoiceFactory
	sessions    *sessionRegistry
	nowFn       func() time.Time
}

type Dependencies struct {
	Config      Config
	Credentials *CredentialStore
	Matcher     ports.CredentialMatcher
	Gateway     ports.AssistantGateway
	Outbox      ports.OutboxRepository
	Voice       VoiceFactory
}

func NewService(deps Dependencies) *Service {
	return &Service{
		cfg:         deps.Config,
		credentials: deps.Credentials,
		matcher:     deps.Matcher,
		gateway:     deps.Gateway,
		outbox:      deps.Outbox,
		voice:       deps.Voice,
		sessions:    newSessionRegistry(),
		nowFn:       func() time.Time { return time.Now().UTC() },
	}
}

// OpenSession creates a fresh client session at role selection with a seeded conversation.
func (s *Service) OpenSession(ctx context.Context) (SessionView, error) {
	if s.voice == nil {
		return SessionView{}, fmt.Errorf("voice factory is not configured")
	}
	synth, recog := s.voice()
	now := s.nowFn()
	sess := &clientSession{
		id:           uuid.NewString(),
		auth:         NewAuthenticator(s.credentials, s.matcher, s.cfg.AdminCode),
		log:          domain.NewConversationLog(),
		board:        domain.NewProblemBoard(),
		voice:        NewVoiceBridge(synth, recog, s.cfg.DefaultSpeechRate),
		createdAt:    now,
		lastActiveAt: now,
	}
	s.sessions.put(sess)
	s.emit(ctx, eventTypeSessionOpened, sess.id, map[string]any{
		"session_id": sess.id,
		"opened_at":  now,
	})

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.viewLocked(), nil
}

func (s *Service) GetSession(ctx context.Context, sessionID string) (SessionView, error) {
	var view SessionView
	err := s.withSession(sessionID, func(sess *clientSession) error {
		view = sess.viewLocked()
		return nil
	})
	return view, err
}

// CloseSession discards a client session and releases its voice drivers.
func (s *Service) CloseSession(ctx context.Context, sessionID string) error {
	sess, ok := s.sessions.remove(sessionID)
	if !ok {
		return fmt.Errorf("%w: client session", domain.ErrNotFound)
	}
	s.closeSession(ctx, sess, "closed")
	return nil
}

// SessionCount reports how many client sessions are live.
func (s *Service) SessionCount() int {
	return s.sessions.len()
}

// ExpireIdleSessions closes every session idle for longer than the configured TTL.
func (s *Service) ExpireIdleSessions(ctx context.Context) int {
	if s.cfg.SessionIdleTTL <= 0 {
		return 0
	}
	expired := s.sessions.expired(s.nowFn().Add(-s.cfg.SessionIdleTTL))
	for _, sess := range expired {
		s.closeSession(ctx, sess, "expired")
	}
	return len(expired)
}

// RunJanitor expires idle sessions on every tick until ctx is done.
func (s *Service) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.ExpireIdleSessions(ctx); n > 0 {
				slog.Default().InfoContext(ctx, "expired idle client sessions",
					"service", serviceName,
					"module", "application",
					"layer", "application",
					"operation", "expire_sessions",
					"outcome", "success",
					"count", n,
				)
			}
		}
	}
}

// Shutdown closes every live session.
func (s *Service) Shutdown(ctx context.Context) {
	for _, sess := range s.sessions.drain() {
		s.closeSession(ctx, sess, "shutdown")
	}
}

func (s *Service) closeSession(ctx context.Context, sess *clientSession, reason string) {
	sess.mu.Lock()
	err := sess.voice.Close()
	sess.mu.Unlock()
	if err != nil {
		s.warn(ctx, "close_session", "failed to release voice drivers", err, "session_id", sess.id)
	}
	s.emit(ctx, eventTypeSessionClosed, sess.id, map[string]any{
		"session_id": sess.id,
		"reason":     reason,
		"closed_at":  s.nowFn(),
	})
}

// withSession runs fn with the session locked and marks it active.
func (s *Service) withSession(sessionID string, fn func(*clientSession) error) error {
	sess, ok := s.sessions.get(sessionID)
	if !ok {
		return fmt.Errorf("%w: client session", domain.ErrNotFound)
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastActiveAt = s.nowFn()
	return fn(sess)
}

func requireAuthenticated(sess *clientSession) (domain.Account, error) {
	account, ok := sess.auth.Current()
	if !ok {
		return domain.Account{}, fmt.Errorf("%w: login required", domain.ErrUnauthorized)
	}
	return account, nil
}

func requireAdmin(sess *clientSession) (domain.Account, error) {
	account, err := requireAuthenticated(sess)
	if err != nil {
		return domain.Account{}, err
	}
	if !account.IsAdmin() {
		return domain.Account{}, fmt.Errorf("%w: admin role required", domain.ErrForbidden)
	}
	return account, nil
}
