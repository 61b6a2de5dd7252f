package application

import (
	"time"

	"github.com/viralforge/facility-assistant/internal/domain"
	"github.com/viralforge/facility-assistant/internal/ports"
)

type Config struct {
	// AdminCode is the single shared secret gating admin registration and admin password resets.
	AdminCode         string
	GatewayTimeout    time.Duration
	SessionIdleTTL    time.Duration
	DefaultSpeechRate float64
}

type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	AdminCode string `json:"admin_code,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type FindAccountRequest struct {
	Username string `json:"username"`
}

type FindAccountResponse struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
	// AdminCodeRequired tells the client to collect the admin code before resetting.
	AdminCodeRequired bool `json:"admin_code_required"`
}

type ResetCredentialRequest struct {
	NewPassword string `json:"new_password"`
	AdminCode   string `json:"admin_code,omitempty"`
}

type SelectRoleRequest struct {
	Role string `json:"role"`
}

type SendMessageRequest struct {
	Text string `json:"text"`
}

// SendMessageResponse describes one conversational turn.
// Dropped is set when the log was reset while the assistant call was outstanding.
type SendMessageResponse struct {
	UserMessage   domain.ChatMessage  `json:"user_message"`
	Reply         *domain.ChatMessage `json:"reply,omitempty"`
	GatewayFailed bool                `json:"gateway_failed"`
	Dropped       bool                `json:"dropped,omitempty"`
}

type AddReactionRequest struct {
	Emoji string `json:"emoji"`
}

type ReportProblemRequest struct {
	Description string `json:"description"`
	Location    string `json:"location"`
	Priority    string `json:"priority,omitempty"`
}

type UpdateProblemStatusRequest struct {
	Status string `json:"status"`
}

// UpdateProblemStatusResponse carries the updated ticket, or Updated=false for an unknown id.
type UpdateProblemStatusResponse struct {
	Updated bool            `json:"updated"`
	Problem *domain.Problem `json:"problem,omitempty"`
}

type ListProblemsRequest struct {
	SearchTerm string
	Status     string
	Priority   string
}

type ListProblemsResponse struct {
	Items []domain.Problem `json:"items"`
	Total int              `json:"total"`
	// HasResolvedOrClosed drives whether clients offer the bulk clear action.
	HasResolvedOrClosed bool `json:"has_resolved_or_closed"`
}

type TranscriptRequest struct {
	Transcript string `json:"transcript"`
}

type ReportVoicesRequest struct {
	Voices []ports.Voice `json:"voices"`
}

type VoiceSettingsRequest struct {
	VoiceURI string   `json:"voice_uri"`
	Rate     *float64 `json:"rate,omitempty"`
}

type VoiceSettings struct {
	VoiceURI string  `json:"voice_uri"`
	Rate     float64 `json:"rate"`
}

type ListeningResponse struct {
	Listening bool `json:"listening"`
}

type UtteranceResponse struct {
	Active    bool             `json:"active"`
	Utterance *ports.Utterance `json:"utterance,omitempty"`
}

type AccountView struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// SessionView is the client-visible state of one client session.
type SessionView struct {
	SessionID    string           `json:"session_id"`
	State        domain.AuthState `json:"state"`
	SelectedRole domain.Role      `json:"selected_role,omitempty"`
	ResetStep    domain.ResetStep `json:"reset_step,omitempty"`
	ResetRole    domain.Role      `json:"reset_role,omitempty"`
	Account      *AccountView     `json:"account,omitempty"`
	TurnInFlight bool             `json:"turn_in_flight"`
	Listening    bool             `json:"listening"`
	MessageCount int              `json:"message_count"`
	CreatedAt    time.Time        `json:"created_at"`
	LastActiveAt time.Time        `json:"last_active_at"`
}
