package application

import (
	"context"
)

// FindAccount enters the reset flow and tells the client whether the admin code will be needed.
func (s *Service) FindAccount(ctx context.Context, sessionID string, req FindAccountRequest) (FindAccountResponse, error) {
	var res FindAccountResponse
	err := s.withSession(sessionID, func(sess *clientSession) error {
		account, err := sess.auth.FindAccount(req.Username)
		if err != nil {
			return err
		}
		res = FindAccountResponse{
			Username:          account.Username,
			Role:              account.Role,
			AdminCodeRequired: account.IsAdmin(),
		}
		return nil
	})
	return res, err
}

// ResetCredential sets the new password for the account found earlier in this session.
func (s *Service) ResetCredential(ctx context.Context, sessionID string, req ResetCredentialRequest) (SessionView, error) {
	var view SessionView
	var username string
	err := s.withSession(sessionID, func(sess *clientSession) error {
		username = sess.auth.resetUsername
		if err := sess.auth.ResetCredential(ctx, req.NewPassword, req.AdminCode); err != nil {
			return err
		}
		view = sess.viewLocked()
		return nil
	})
	if err != nil {
		return SessionView{}, err
	}
	s.emit(ctx, eventTypePasswordReset, sessionID, map[string]any{
		"username": username,
		"reset_at": s.nowFn(),
	})
	return view, nil
}

func (s *Service) CancelPasswordReset(ctx context.Context, sessionID string) (SessionView, error) {
	var view SessionView
	err := s.withSession(sessionID, func(sess *clientSession) error {
		sess.auth.CancelPasswordReset()
		view = sess.viewLocked()
		return nil
	})
	return view, err
}
