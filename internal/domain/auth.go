package domain

// AuthState is the position of a client session in the login state machine.
type AuthState string

const (
	StateRoleUnselected      AuthState = "role_unselected"
	StateAwaitingCredentials AuthState = "awaiting_credentials"
	StateAuthenticated       AuthState = "authenticated"
)

// ResetStep tracks the password reset branch, which runs beside the main states.
type ResetStep string

const (
	ResetInactive    ResetStep = ""
	ResetFindAccount ResetStep = "find_account"
	ResetCredential  ResetStep = "reset_credential"
)
