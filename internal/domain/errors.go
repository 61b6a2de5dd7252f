package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrDuplicateUsername is returned when a username is already taken, ignoring letter case.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrInvalidCredentials hides whether the username or the password failed.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserNotFound is only used by the password reset flow, which must name the missing account.
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidAdminCode = errors.New("invalid admin code")
	ErrInvalidInput     = errors.New("invalid input")
	// ErrInvalidState is returned when an operation is not allowed in the current auth state.
	ErrInvalidState = errors.New("operation not allowed in current state")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	// ErrTurnInFlight rejects new user input while an assistant call is outstanding.
	ErrTurnInFlight = errors.New("assistant turn already in flight")
	// ErrGatewayFailure never reaches clients: the conversation log absorbs it as the fallback reply.
	ErrGatewayFailure   = errors.New("assistant gateway failure")
	ErrVoiceUnsupported = errors.New("voice capability unsupported")
)
