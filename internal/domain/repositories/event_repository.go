package repositories

import (
	"context"

	"github.com/google/uuid"
	"token-registry.backend/internal/domain/entities"
	"token-registry.backend/pkg/utils"
)

// EventRepository is the registry event outbox
type EventRepository interface {
	Append(ctx context.Context, events ...*entities.RegistryEvent) error
	List(ctx context.Context, pagination utils.PaginationParams) ([]*entities.RegistryEvent, int64, error)
	ListUnrelayed(ctx context.Context, limit int) ([]*entities.RegistryEvent, error)
	MarkRelayed(ctx context.Context, ids []uuid.UUID) error
}
