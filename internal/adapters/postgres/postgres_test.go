package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/facility-assistant/internal/ports"
)

func openTestDB(t *testing.T) Repositories {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := Connect(ctx, dsn, 4)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewRepositories(db)
}

func TestKVStoreUpsert(t *testing.T) {
	repos := openTestDB(t)
	ctx := context.Background()
	key := "test-" + uuid.NewString()

	if _, ok, err := repos.Store.Get(ctx, key); err != nil || ok {
		t.Fatalf("expected absent key, ok=%v err=%v", ok, err)
	}
	for _, value := range []string{`[]`, `[{"username":"admin"}]`} {
		if err := repos.Store.Set(ctx, key, []byte(value)); err != nil {
			t.Fatalf("set failed: %v", err)
		}
	}
	raw, ok, err := repos.Store.Get(ctx, key)
	if err != nil || !ok || string(raw) != `[{"username":"admin"}]` {
		t.Fatalf("expected last write to win, got %q ok=%v err=%v", raw, ok, err)
	}
}

func TestOutboxClaimAndPublish(t *testing.T) {
	repos := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	id := uuid.New()
	if err := repos.Outbox.Enqueue(ctx, ports.OutboxEvent{
		EventID:      id,
		EventType:    "problem.reported",
		PartitionKey: "p-1",
		Payload:      []byte(`{"problem_id":"p-1"}`),
		OccurredAt:   now,
	}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	token := uuid.NewString()
	records, err := repos.Outbox.ClaimUnpublished(ctx, 100, token, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	found := false
	for _, rec := range records {
		if rec.OutboxID == id {
			found = true
		}
	}
	if !found {
		t.Fatalf("claimed batch should include the new event")
	}
	if err := repos.Outbox.MarkPublished(ctx, id, token, now); err != nil {
		t.Fatalf("mark published failed: %v", err)
	}
	again, err := repos.Outbox.ClaimUnpublished(ctx, 100, uuid.NewString(), now.Add(time.Minute))
	if err != nil {
		t.Fatalf("second claim failed: %v", err)
	}
	for _, rec := range again {
		if rec.OutboxID == id {
			t.Fatalf("published events must not be claimed again")
		}
	}
}
