package domain

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

const (
	SeedMessageID   = "initial-message"
	SeedMessageText = "Hello! I'm the VMCC Facility Assistant. How can I help you today? You can ask me about campus facilities or report a problem."
	// FallbackReplyText replaces the assistant reply whenever the gateway fails.
	FallbackReplyText = "Sorry, I'm having trouble connecting to my brain right now. Please try again later."
)

// ChatMessage is one turn in the conversation log.
type ChatMessage struct {
	ID        string         `json:"id"`
	Sender    Sender         `json:"sender"`
	Text      string         `json:"text"`
	Timestamp time.Time      `json:"timestamp"`
	Reactions map[string]int `json:"reactions,omitempty"`
}

// HistoryEntry is the sender/text pair forwarded to the assistant gateway.
type HistoryEntry struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

func seedMessage() ChatMessage {
	return ChatMessage{ID: SeedMessageID, Sender: SenderBot, Text: SeedMessageText}
}

// ConversationLog is the ordered message history of one client session.
// It always holds at least the seed greeting. It is not safe for concurrent use.
type ConversationLog struct {
	messages   []ChatMessage
	generation uint64
	nowFn      func() time.Time
}

func NewConversationLog() *ConversationLog {
	return &ConversationLog{
		messages: []ChatMessage{seedMessage()},
		nowFn:    func() time.Time { return time.Now().UTC() },
	}
}

func (l *ConversationLog) AppendUserMessage(text string) ChatMessage {
	return l.append(SenderUser, text)
}

func (l *ConversationLog) AppendBotMessage(text string) ChatMessage {
	return l.append(SenderBot, text)
}

func (l *ConversationLog) append(sender Sender, text string) ChatMessage {
	msg := ChatMessage{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		Timestamp: l.nowFn(),
	}
	l.messages = append(l.messages, msg)
	return msg
}

// AddReaction increments the emoji tally on a message. Unknown ids are ignored.
// Tallies only grow; there is no way to take a reaction back.
func (l *ConversationLog) AddReaction(messageID, emoji string) bool {
	for i := range l.messages {
		if l.messages[i].ID != messageID {
			continue
		}
		if l.messages[i].Reactions == nil {
			l.messages[i].Reactions = map[string]int{}
		}
		l.messages[i].Reactions[emoji]++
		return true
	}
	return false
}

// Reset replaces the whole log with the seed greeting.
func (l *ConversationLog) Reset() {
	l.messages = []ChatMessage{seedMessage()}
	l.generation++
}

// Generation changes on every Reset, letting callers detect a reset across a gateway round trip.
func (l *ConversationLog) Generation() uint64 {
	return l.generation
}

func (l *ConversationLog) Len() int {
	return len(l.messages)
}

// Messages returns a deep copy of the log in append order.
func (l *ConversationLog) Messages() []ChatMessage {
	out := make([]ChatMessage, len(l.messages))
	for i, msg := range l.messages {
		msg.Reactions = maps.Clone(msg.Reactions)
		out[i] = msg
	}
	return out
}

func (l *ConversationLog) Last() ChatMessage {
	msg := l.messages[len(l.messages)-1]
	msg.Reactions = maps.Clone(msg.Reactions)
	return msg
}

// History returns sender/text pairs for every message after the seed greeting.
func (l *ConversationLog) History() []HistoryEntry {
	out := make([]HistoryEntry, 0, len(l.messages)-1)
	for _, msg := range l.messages[1:] {
		out = append(out, HistoryEntry{Sender: msg.Sender, Text: msg.Text})
	}
	return out
}
