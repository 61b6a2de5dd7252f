package postgres

import (
	"github.com/viralforge/facility-assistant/internal/ports"
	"gorm.io/gorm"
)

type Repositories struct {
	Store  ports.FlatStore
	Outbox ports.OutboxRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Store:  &kvStore{db: db},
		Outbox: &outboxRepository{db: db},
	}
}
