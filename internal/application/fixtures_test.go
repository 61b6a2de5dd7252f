package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/facility-assistant/internal/application"
	"github.com/viralforge/facility-assistant/internal/domain"
	"github.com/viralforge/facility-assistant/internal/ports"
)

const testAdminCode = "VMCC-ADMIN-2024"

type fixture struct {
	service     *application.Service
	credentials *application.CredentialStore
	store       *fakeStore
	gateway     *fakeGateway
	outbox      *fakeOutbox
	synths      *voiceRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStore(t, &fakeStore{items: map[string][]byte{}})
}

func newFixtureWithStore(t *testing.T, store *fakeStore) *fixture {
	t.Helper()
	return newFixtureWithConfig(t, store, application.Config{
		AdminCode:         testAdminCode,
		GatewayTimeout:    2 * time.Second,
		SessionIdleTTL:    30 * time.Minute,
		DefaultSpeechRate: 1,
	})
}

func newFixtureWithConfig(t *testing.T, store *fakeStore, cfg application.Config) *fixture {
	t.Helper()
	matcher := plainMatcher{}
	credentials := application.NewCredentialStore(store, matcher)
	if err := credentials.Load(context.Background()); err != nil {
		t.Fatalf("load credentials: %v", err)
	}
	gateway := &fakeGateway{reply: "Sure, the library opens at 8am."}
	outbox := &fakeOutbox{}
	recorder := &voiceRecorder{}
	svc := application.NewService(application.Dependencies{
		Config:      cfg,
		Credentials: credentials,
		Matcher:     matcher,
		Gateway:     gateway,
		Outbox:      outbox,
		Voice:       recorder.factory,
	})
	return &fixture{service: svc, credentials: credentials, store: store, gateway: gateway, outbox: outbox, synths: recorder}
}

// openAs opens a session and logs in with the given account, registering it first if needed.
func (f *fixture) openAs(t *testing.T, role domain.Role, username, password string) string {
	t.Helper()
	ctx := context.Background()
	view, err := f.service.OpenSession(ctx)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	if _, err := f.service.SelectRole(ctx, view.SessionID, application.SelectRoleRequest{Role: string(role)}); err != nil {
		t.Fatalf("select role: %v", err)
	}
	err = f.service.Register(ctx, view.SessionID, application.RegisterRequest{
		Username:  username,
		Password:  password,
		AdminCode: testAdminCode,
	})
	if err != nil && !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("register %s: %v", username, err)
	}
	if _, err := f.service.Login(ctx, view.SessionID, application.LoginRequest{Username: username, Password: password}); err != nil {
		t.Fatalf("login %s: %v", username, err)
	}
	return view.SessionID
}

type fakeStore struct {
	mu      sync.Mutex
	items   map[string][]byte
	failSet bool
	sets    int
}

func (s *fakeStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.items[key]
	return raw, ok, nil
}

func (s *fakeStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	if s.failSet {
		return errors.New("store unavailable")
	}
	s.items[key] = append([]byte(nil), value...)
	return nil
}

func (s *fakeStore) raw(key string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[key]
}

type plainMatcher struct{}

func (plainMatcher) Hash(password string) (string, error) { return password, nil }

func (plainMatcher) Compare(stored, password string) error {
	if stored != password {
		return domain.ErrInvalidCredentials
	}
	return nil
}

type gatewayCall struct {
	prompt  string
	history []domain.HistoryEntry
}

type fakeGateway struct {
	mu      sync.Mutex
	reply   string
	err     error
	calls   []gatewayCall
	started chan struct{}
	release chan struct{}
}

func (g *fakeGateway) Generate(ctx context.Context, prompt string, history []domain.HistoryEntry) (string, error) {
	g.mu.Lock()
	g.calls = append(g.calls, gatewayCall{prompt: prompt, history: history})
	started, release := g.started, g.release
	reply, err := g.reply, g.err
	g.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return reply, err
}

func (g *fakeGateway) lastCall() gatewayCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[len(g.calls)-1]
}

// block makes the next Generate calls wait until the returned release func is called.
func (g *fakeGateway) block() (started <-chan struct{}, release func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.started = make(chan struct{}, 1)
	g.release = make(chan struct{})
	return g.started, func() { close(g.release) }
}

type fakeOutbox struct {
	mu     sync.Mutex
	events []ports.OutboxEvent
}

func (o *fakeOutbox) Enqueue(_ context.Context, event ports.OutboxEvent) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
	return nil
}

func (o *fakeOutbox) ClaimUnpublished(context.Context, int, string, time.Time) ([]ports.OutboxRecord, error) {
	return nil, nil
}

func (o *fakeOutbox) MarkPublished(context.Context, uuid.UUID, string, time.Time) error {
	return nil
}

func (o *fakeOutbox) MarkFailed(context.Context, uuid.UUID, string, string, time.Time) error {
	return nil
}

func (o *fakeOutbox) MarkDeadLettered(context.Context, uuid.UUID, string, string, time.Time) error {
	return nil
}

func (o *fakeOutbox) types() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, 0, len(o.events))
	for _, e := range o.events {
		out = append(out, e.EventType)
	}
	return out
}

type voiceRecorder struct {
	mu          sync.Mutex
	synths      []*fakeSynth
	recognizers []*fakeRecognizer
	unsupported bool
}

func (r *voiceRecorder) factory() (ports.SpeechSynthesizer, ports.SpeechRecognizer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	synth := &fakeSynth{
		supported: !r.unsupported,
		voices: []ports.Voice{
			{URI: "en-GB-female", Name: "Serena", Lang: "en-GB"},
			{URI: "en-US-male", Name: "Alex", Lang: "en-US", Default: true},
		},
	}
	recog := &fakeRecognizer{supported: !r.unsupported}
	r.synths = append(r.synths, synth)
	r.recognizers = append(r.recognizers, recog)
	return synth, recog
}

func (r *voiceRecorder) last() (*fakeSynth, *fakeRecognizer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.synths[len(r.synths)-1], r.recognizers[len(r.recognizers)-1]
}

type fakeSynth struct {
	mu        sync.Mutex
	supported bool
	voices    []ports.Voice
	active    *ports.Utterance
	spoken    []ports.Utterance
	cancels   int
	closed    bool
}

func (s *fakeSynth) Supported() bool { return s.supported }

func (s *fakeSynth) Voices(context.Context) ([]ports.Voice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voices, nil
}

func (s *fakeSynth) SetVoices(_ context.Context, voices []ports.Voice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voices = voices
	return nil
}

func (s *fakeSynth) Speak(_ context.Context, u ports.Utterance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = &u
	s.spoken = append(s.spoken, u)
	return nil
}

func (s *fakeSynth) Active() (ports.Utterance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return ports.Utterance{}, false
	}
	return *s.active, true
}

func (s *fakeSynth) Cancel(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = nil
	s.cancels++
	return nil
}

func (s *fakeSynth) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type fakeRecognizer struct {
	mu        sync.Mutex
	supported bool
	listening bool
	starts    int
	stops     int
	closed    bool
}

func (r *fakeRecognizer) Supported() bool { return r.supported }

func (r *fakeRecognizer) Start(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listening = true
	r.starts++
	return nil
}

func (r *fakeRecognizer) Stop(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listening = false
	r.stops++
	return nil
}

func (r *fakeRecognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}
