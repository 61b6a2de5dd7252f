package application

const (
	// eventTypeSessionOpened is emitted when a client connects.
	eventTypeSessionOpened     = "session.opened"
	// eventTypeSessionClosed is emitted on explicit close, idle expiry or shutdown.
	eventTypeSessionClosed     = "session.closed"
	eventTypeAccountRegistered = "account.registered"
	eventTypeAccountLoggedIn   = "account.logged_in"
	eventTypeAccountLoggedOut  = "account.logged_out"
	eventTypePasswordReset     = "account.password_reset"
	eventTypeTurnCompleted     = "conversation.turn_completed"
	eventTypeTurnFailed        = "conversation.turn_failed"
	eventTypeConversationClear = "conversation.cleared"
	eventTypeProblemReported   = "problem.reported"
	eventTypeProblemUpdated    = "problem.status_updated"
	eventTypeProblemDeleted    = "problem.deleted"
	eventTypeProblemsCleared   = "problem.resolved_cleared"
)
