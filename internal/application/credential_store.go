package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/viralforge/facility-assistant/internal/domain"
	"github.com/viralforge/facility-assistant/internal/ports"
)

// CredentialStoreKey is the flat-store key holding the JSON array of accounts.
const CredentialStoreKey = "vmcc-users"

// CredentialStore is the process-wide account list shared by every client session.
// Writes go through to the flat store; persistence failures are logged and do not fail the caller.
type CredentialStore struct {
	mu       sync.Mutex
	store    ports.FlatStore
	matcher  ports.CredentialMatcher
	accounts []domain.Account
}

func NewCredentialStore(store ports.FlatStore, matcher ports.CredentialMatcher) *CredentialStore {
	return &CredentialStore{store: store, matcher: matcher}
}

// Load reads the persisted accounts. Only an absent entry is seeded with the default admin.
// Malformed content is logged and served as an empty list in memory; the stored bytes are left
// untouched. Only store I/O failures are returned.
func (c *CredentialStore) Load(ctx context.Context) error {
	raw, ok, err := c.store.Get(ctx, CredentialStoreKey)
	if err != nil {
		return fmt.Errorf("load credential store: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !ok {
		seed := domain.DefaultAdmin()
		stored, err := c.matcher.Hash(seed.Password)
		if err != nil {
			return fmt.Errorf("hash default admin password: %w", err)
		}
		seed.Password = stored
		c.accounts = []domain.Account{seed}
		c.persistLocked(ctx)
		return nil
	}

	var accounts []domain.Account
	if err := json.Unmarshal(raw, &accounts); err != nil {
		slog.Default().WarnContext(ctx, "credential store content is malformed; starting empty",
			"service", serviceName,
			"module", "application",
			"layer", "application",
			"operation", "load_credentials",
			"outcome", "degraded",
			"error", err,
		)
		accounts = nil
	}
	c.accounts = accounts
	return nil
}

// Find looks up an account by case-insensitive username.
func (c *CredentialStore) Find(username string) (domain.Account, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.indexLocked(username)
	if idx < 0 {
		return domain.Account{}, false
	}
	return c.accounts[idx], true
}

// Add appends an account whose Password is already in stored form.
func (c *CredentialStore) Add(ctx context.Context, account domain.Account) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexLocked(account.Username) >= 0 {
		return domain.ErrDuplicateUsername
	}
	c.accounts = append(c.accounts, account)
	c.persistLocked(ctx)
	return nil
}

// UpdatePassword replaces the stored password of an existing account.
func (c *CredentialStore) UpdatePassword(ctx context.Context, username, stored string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.indexLocked(username)
	if idx < 0 {
		return domain.ErrUserNotFound
	}
	c.accounts[idx].Password = stored
	c.persistLocked(ctx)
	return nil
}

func (c *CredentialStore) Snapshot() []domain.Account {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.accounts)
}

func (c *CredentialStore) indexLocked(username string) int {
	username = strings.TrimSpace(username)
	return slices.IndexFunc(c.accounts, func(a domain.Account) bool {
		return domain.SameUsername(a.Username, username)
	})
}

func (c *CredentialStore) persistLocked(ctx context.Context) {
	raw, err := json.Marshal(c.accounts)
	if err == nil {
		err = c.store.Set(ctx, CredentialStoreKey, raw)
	}
	if err != nil {
		slog.Default().WarnContext(ctx, "failed to persist credential store",
			"service", serviceName,
			"module", "application",
			"layer", "application",
			"operation", "persist_credentials",
			"outcome", "failure",
			"accounts", len(c.accounts),
			"error", err,
		)
	}
}
