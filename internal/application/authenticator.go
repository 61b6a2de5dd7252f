package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/viralforge/facility-assistant/internal/domain"
	"github.com/viralforge/facility-assistant/internal/ports"
)

// Authenticator drives one client session through role selection, login and password reset.
// It is not safe for concurrent use; the owning client session serializes calls.
type Authenticator struct {
	credentials *CredentialStore
	matcher     ports.CredentialMatcher
	adminCode   string

	state        domain.AuthState
	selectedRole domain.Role
	current      *domain.Account

	resetStep     domain.ResetStep
	resetUsername string
	resetRole     domain.Role
}

func NewAuthenticator(credentials *CredentialStore, matcher ports.CredentialMatcher, adminCode string) *Authenticator {
	return &Authenticator{
		credentials: credentials,
		matcher:     matcher,
		adminCode:   adminCode,
		state:       domain.StateRoleUnselected,
	}
}

func (a *Authenticator) State() domain.AuthState { return a.state }

func (a *Authenticator) SelectedRole() domain.Role { return a.selectedRole }

// Current returns the authenticated account, or false before login.
func (a *Authenticator) Current() (domain.Account, bool) {
	if a.current == nil {
		return domain.Account{}, false
	}
	return *a.current, true
}

func (a *Authenticator) ResetStep() domain.ResetStep { return a.resetStep }

func (a *Authenticator) ResetRole() domain.Role { return a.resetRole }

// SelectRole picks the portal. Re-selecting while awaiting credentials switches portals.
func (a *Authenticator) SelectRole(role domain.Role) error {
	if a.state == domain.StateAuthenticated {
		return fmt.Errorf("%w: already logged in", domain.ErrInvalidState)
	}
	a.selectedRole = role
	a.state = domain.StateAwaitingCredentials
	return nil
}

func (a *Authenticator) BackToRoleSelection() error {
	if a.state == domain.StateAuthenticated {
		return fmt.Errorf("%w: already logged in", domain.ErrInvalidState)
	}
	a.selectedRole = ""
	a.state = domain.StateRoleUnselected
	a.clearReset()
	return nil
}

// Register creates an account with the selected role. It never logs the caller in.
func (a *Authenticator) Register(ctx context.Context, username string, role domain.Role, password, adminCode string) error {
	if a.state != domain.StateAwaitingCredentials {
		return fmt.Errorf("%w: select a role first", domain.ErrInvalidState)
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}
	if role == domain.RoleAdmin && !a.validAdminCode(adminCode) {
		return domain.ErrInvalidAdminCode
	}
	stored, err := a.matcher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return a.credentials.Add(ctx, domain.Account{Username: username, Password: stored, Role: role})
}

// Login authenticates against the stored account. The account role does not have to match
// the selected portal; the stored role decides what the session may do.
func (a *Authenticator) Login(username, password string) (domain.Account, error) {
	if a.state != domain.StateAwaitingCredentials {
		return domain.Account{}, fmt.Errorf("%w: select a role first", domain.ErrInvalidState)
	}
	if strings.TrimSpace(username) == "" || password == "" {
		return domain.Account{}, fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}
	account, ok := a.credentials.Find(username)
	if !ok {
		return domain.Account{}, domain.ErrInvalidCredentials
	}
	if err := a.matcher.Compare(account.Password, password); err != nil {
		return domain.Account{}, domain.ErrInvalidCredentials
	}
	a.current = &account
	a.state = domain.StateAuthenticated
	a.clearReset()
	return account, nil
}

// Logout returns the session to role selection. Calling it when logged out is a no-op.
func (a *Authenticator) Logout() {
	a.current = nil
	a.selectedRole = ""
	a.state = domain.StateRoleUnselected
	a.clearReset()
}

// FindAccount starts (or restarts) the reset flow and reports the role of the named account.
func (a *Authenticator) FindAccount(username string) (domain.Account, error) {
	if a.state == domain.StateAuthenticated {
		return domain.Account{}, fmt.Errorf("%w: already logged in", domain.ErrInvalidState)
	}
	if strings.TrimSpace(username) == "" {
		return domain.Account{}, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}
	a.resetStep = domain.ResetFindAccount
	a.resetUsername = ""
	a.resetRole = ""

	account, ok := a.credentials.Find(username)
	if !ok {
		return domain.Account{}, domain.ErrUserNotFound
	}
	a.resetStep = domain.ResetCredential
	a.resetUsername = account.Username
	a.resetRole = account.Role
	account.Password = ""
	return account, nil
}

// ResetCredential sets a new password for the account found by FindAccount.
// Admin accounts also require the admin code. Success ends the reset flow without logging in.
func (a *Authenticator) ResetCredential(ctx context.Context, newPassword, adminCode string) error {
	if a.resetStep != domain.ResetCredential {
		return fmt.Errorf("%w: find the account first", domain.ErrInvalidState)
	}
	return a.resetCredential(ctx, a.resetUsername, newPassword, adminCode)
}

func (a *Authenticator) resetCredential(ctx context.Context, username, newPassword, adminCode string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: new password is required", domain.ErrInvalidInput)
	}
	account, ok := a.credentials.Find(username)
	if !ok {
		return domain.ErrUserNotFound
	}
	if account.IsAdmin() && !a.validAdminCode(adminCode) {
		return domain.ErrInvalidAdminCode
	}
	stored, err := a.matcher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := a.credentials.UpdatePassword(ctx, account.Username, stored); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("update password: %w", err)
	}
	a.clearReset()
	return nil
}

func (a *Authenticator) CancelPasswordReset() {
	a.clearReset()
}

func (a *Authenticator) clearReset() {
	a.resetStep = domain.ResetInactive
	a.resetUsername = ""
	a.resetRole = ""
}

func (a *Authenticator) validAdminCode(code string) bool {
	if a.adminCode == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(code), []byte(a.adminCode)) == 1
}
