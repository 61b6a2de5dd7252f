package application_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/viralforge/facility-assistant/internal/application"
	"github.com/viralforge/facility-assistant/internal/domain"
)

func TestFreshSessionHasOnlyTheSeedGreeting(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	sid := f.openAs(t, domain.RoleStudent, "dana", "pw")
	messages, err := f.service.Messages(context.Background(), sid)
	if err != nil {
		t.Fatalf("messages failed: %v", err)
	}
	if len(messages) != 1 || messages[0].ID != domain.SeedMessageID || messages[0].Sender != domain.SenderBot {
		t.Fatalf("unexpected seed log: %+v", messages)
	}
}

func TestSendMessageForwardsPriorHistory(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	sid := f.openAs(t, domain.RoleStudent, "erin", "pw")

	first, err := f.service.SendMessage(ctx, sid, application.SendMessageRequest{Text: "  Where is the gym?  "})
	if err != nil {
		t.Fatalf("first turn failed: %v", err)
	}
	if first.UserMessage.Text != "Where is the gym?" || first.Reply == nil || first.GatewayFailed {
		t.Fatalf("unexpected first turn: %+v", first)
	}
	if call := f.gateway.lastCall(); len(call.history) != 0 || call.prompt != "Where is the gym?" {
		t.Fatalf("first turn should carry no history: %+v", call)
	}

	if _, err := f.service.SendMessage(ctx, sid, application.SendMessageRequest{Text: "And the pool?"}); err != nil {
		t.Fatalf("second turn failed: %v", err)
	}
	want := []domain.HistoryEntry{
		{Sender: domain.SenderUser, Text: "Where is the gym?"},
		{Sender: domain.SenderBot, Text: f.gateway.reply},
	}
	if got := f.gateway.lastCall().history; !slices.Equal(got, want) {
		t.Fatalf("expected prior history %+v, got %+v", want, got)
	}

	messages, _ := f.service.Messages(ctx, sid)
	if len(messages) != 5 {
		t.Fatalf("expected seed plus two turns, got %d", len(messages))
	}
	for i := 1; i < len(messages); i++ {
		if messages[i].Timestamp.Before(messages[i-1].Timestamp) {
			t.Fatalf("timestamps must not go backwards")
		}
	}
}

func TestSendMessageRejectsBlankText(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	sid := f.openAs(t, domain.RoleStudent, "finn", "pw")
	if _, err := f.service.SendMessage(context.Background(), sid, application.SendMessageRequest{Text: " \n "}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	messages, _ := f.service.Messages(context.Background(), sid)
	if len(messages) != 1 {
		t.Fatalf("blank text must not touch the log")
	}
}

func TestSendMessageRequiresLogin(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	view, _ := f.service.OpenSession(context.Background())
	if _, err := f.service.SendMessage(context.Background(), view.SessionID, application.SendMessageRequest{Text: "hi"}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestGatewayFailureRepliesWithFallback(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.gateway.err = domain.ErrGatewayFailure
	sid := f.openAs(t, domain.RoleStudent, "gail", "pw")

	res, err := f.service.SendMessage(context.Background(), sid, application.SendMessageRequest{Text: "hello"})
	if err != nil {
		t.Fatalf("send should not fail on gateway error: %v", err)
	}
	if !res.GatewayFailed || res.Reply == nil || res.Reply.Text != domain.FallbackReplyText || res.Reply.Sender != domain.SenderBot {
		t.Fatalf("expected fallback reply, got %+v", res)
	}
	synth, _ := f.synths.last()
	if u, ok := synth.Active(); !ok || u.Text != domain.FallbackReplyText {
		t.Fatalf("fallback reply should be spoken, got %+v", u)
	}
	if !slices.Contains(f.outbox.types(), "conversation.turn_failed") {
		t.Fatalf("expected turn_failed event")
	}
}

func TestEmptyGatewayReplyCountsAsFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.gateway.reply = "   "
	sid := f.openAs(t, domain.RoleStudent, "hank", "pw")
	res, err := f.service.SendMessage(context.Background(), sid, application.SendMessageRequest{Text: "hello"})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if !res.GatewayFailed || res.Reply.Text != domain.FallbackReplyText {
		t.Fatalf("expected fallback for empty reply, got %+v", res)
	}
}

func TestOnlyOneTurnInFlight(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	sid := f.openAs(t, domain.RoleStudent, "ivy", "pw")
	started, release := f.gateway.block()

	done := make(chan error, 1)
	go func() {
		_, err := f.service.SendMessage(ctx, sid, application.SendMessageRequest{Text: "first"})
		done <- err
	}()
	<-started

	if _, err := f.service.SendMessage(ctx, sid, application.SendMessageRequest{Text: "second"}); !errors.Is(err, domain.ErrTurnInFlight) {
		t.Fatalf("expected turn in flight, got %v", err)
	}
	view, _ := f.service.GetSession(ctx, sid)
	if !view.TurnInFlight {
		t.Fatalf("session should report the outstanding turn")
	}
	listening, err := f.service.ToggleListening(ctx, sid)
	if err != nil || listening.Listening {
		t.Fatalf("listening must not start during a turn, got %+v err=%v", listening, err)
	}

	release()
	if err := <-done; err != nil {
		t.Fatalf("first turn failed: %v", err)
	}
	messages, _ := f.service.Messages(ctx, sid)
	if len(messages) != 3 {
		t.Fatalf("expected seed, first and reply; got %d", len(messages))
	}
}

func TestReplyAfterLogoutIsDropped(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	sid := f.openAs(t, domain.RoleStudent, "jack", "pw")
	started, release := f.gateway.block()

	done := make(chan application.SendMessageResponse, 1)
	go func() {
		res, _ := f.service.SendMessage(ctx, sid, application.SendMessageRequest{Text: "hello"})
		done <- res
	}()
	<-started

	if _, err := f.service.Logout(ctx, sid); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	release()

	select {
	case res := <-done:
		if !res.Dropped || res.Reply != nil {
			t.Fatalf("reply should be dropped after logout: %+v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("turn did not finish")
	}
	view, _ := f.service.GetSession(ctx, sid)
	if view.MessageCount != 1 {
		t.Fatalf("log should stay at the seed, got %d", view.MessageCount)
	}
}

func TestReactionsAccumulate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	sid := f.openAs(t, domain.RoleStudent, "kim", "pw")

	first, err := f.service.AddReaction(ctx, sid, domain.SeedMessageID, application.AddReactionRequest{Emoji: "👍"})
	if err != nil {
		t.Fatalf("add reaction failed: %v", err)
	}
	if got := first[0].Reactions["👍"]; got != 1 {
		t.Fatalf("a fresh emoji should start at 1, got %d", got)
	}
	if _, err := f.service.AddReaction(ctx, sid, domain.SeedMessageID, application.AddReactionRequest{Emoji: "👍"}); err != nil {
		t.Fatalf("add reaction failed: %v", err)
	}
	messages, err := f.service.AddReaction(ctx, sid, "no-such-id", application.AddReactionRequest{Emoji: "👍"})
	if err != nil {
		t.Fatalf("unknown id should be ignored, got %v", err)
	}
	if got := messages[0].Reactions["👍"]; got != 2 {
		t.Fatalf("expected 2 thumbs up, got %d", got)
	}
	if _, err := f.service.AddReaction(ctx, sid, domain.SeedMessageID, application.AddReactionRequest{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty emoji, got %v", err)
	}
}

func TestClearChatRestoresSeed(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	sid := f.openAs(t, domain.RoleStudent, "lee", "pw")
	if _, err := f.service.SendMessage(ctx, sid, application.SendMessageRequest{Text: "hi"}); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	messages, err := f.service.ClearChat(ctx, sid)
	if err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if len(messages) != 1 || messages[0].ID != domain.SeedMessageID {
		t.Fatalf("expected only the seed after clear, got %+v", messages)
	}
}
