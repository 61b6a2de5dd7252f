package application

import (
	"context"

	"github.com/viralforge/facility-assistant/internal/domain"
)

// SelectRole moves the session from role selection to the credentials form for that portal.
func (s *Service) SelectRole(ctx context.Context, sessionID string, req SelectRoleRequest) (SessionView, error) {
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return SessionView{}, err
	}
	var view SessionView
	err = s.withSession(sessionID, func(sess *clientSession) error {
		if err := sess.auth.SelectRole(role); err != nil {
			return err
		}
		view = sess.viewLocked()
		return nil
	})
	return view, err
}

func (s *Service) BackToRoleSelection(ctx context.Context, sessionID string) (SessionView, error) {
	var view SessionView
	err := s.withSession(sessionID, func(sess *clientSession) error {
		if err := sess.auth.BackToRoleSelection(); err != nil {
			return err
		}
		view = sess.viewLocked()
		return nil
	})
	return view, err
}

// Register creates an account for the selected portal role. Admin registration needs the admin code.
func (s *Service) Register(ctx context.Context, sessionID string, req RegisterRequest) error {
	var role domain.Role
	err := s.withSession(sessionID, func(sess *clientSession) error {
		role = sess.auth.SelectedRole()
		return sess.auth.Register(ctx, req.Username, role, req.Password, req.AdminCode)
	})
	if err != nil {
		return err
	}
	s.emit(ctx, eventTypeAccountRegistered, sessionID, map[string]any{
		"username":      req.Username,
		"role":          role,
		"registered_at": s.nowFn(),
	})
	return nil
}

func (s *Service) Login(ctx context.Context, sessionID string, req LoginRequest) (SessionView, error) {
	var view SessionView
	var account domain.Account
	err := s.withSession(sessionID, func(sess *clientSession) error {
		var err error
		account, err = sess.auth.Login(req.Username, req.Password)
		if err != nil {
			return err
		}
		view = sess.viewLocked()
		return nil
	})
	if err != nil {
		return SessionView{}, err
	}
	s.emit(ctx, eventTypeAccountLoggedIn, sessionID, map[string]any{
		"username":     account.Username,
		"role":         account.Role,
		"logged_in_at": s.nowFn(),
	})
	return view, nil
}

// Logout returns the session to role selection and clears its conversation, board and reset flow.
func (s *Service) Logout(ctx context.Context, sessionID string) (SessionView, error) {
	var view SessionView
	var username string
	err := s.withSession(sessionID, func(sess *clientSession) error {
		if account, ok := sess.auth.Current(); ok {
			username = account.Username
		}
		sess.auth.Logout()
		sess.resetLocked()
		if err := sess.voice.StopListening(ctx); err != nil {
			s.warn(ctx, "logout", "failed to stop recognition", err, "session_id", sess.id)
		}
		view = sess.viewLocked()
		return nil
	})
	if err != nil {
		return SessionView{}, err
	}
	if username != "" {
		s.emit(ctx, eventTypeAccountLoggedOut, sessionID, map[string]any{
			"username":      username,
			"logged_out_at": s.nowFn(),
		})
	}
	return view, nil
}
