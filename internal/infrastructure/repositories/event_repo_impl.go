package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"token-registry.backend/internal/domain/entities"
	"token-registry.backend/internal/infrastructure/models"
	"token-registry.backend/pkg/utils"
)

// EventRepositoryImpl implements the registry event outbox
type EventRepositoryImpl struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *gorm.DB) *EventRepositoryImpl {
	return &EventRepositoryImpl{db: db}
}

// Append stores events in the outbox, inside the caller's transaction if any.
func (r *EventRepositoryImpl) Append(ctx context.Context, events ...*entities.RegistryEvent) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]*models.RegistryEvent, 0, len(events))
	for _, e := range events {
		m, err := toEventModel(e)
		if err != nil {
			return err
		}
		rows = append(rows, m)
	}
	if err := GetDB(ctx, r.db).WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("append events: %w", err)
	}
	return nil
}

// List returns events newest first.
func (r *EventRepositoryImpl) List(ctx context.Context, pagination utils.PaginationParams) ([]*entities.RegistryEvent, int64, error) {
	var totalCount int64
	query := r.db.WithContext(ctx).Model(&models.RegistryEvent{})
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC").Order("id DESC")
	if pagination.Limit > 0 {
		query = query.Limit(pagination.Limit).Offset(pagination.CalculateOffset())
	}

	var ms []models.RegistryEvent
	if err := query.Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	events, err := toEventEntities(ms)
	if err != nil {
		return nil, 0, err
	}
	return events, totalCount, nil
}

// ListUnrelayed returns the oldest events not yet published.
func (r *EventRepositoryImpl) ListUnrelayed(ctx context.Context, limit int) ([]*entities.RegistryEvent, error) {
	var ms []models.RegistryEvent
	query := r.db.WithContext(ctx).
		Where("relayed_at IS NULL").
		Order("created_at ASC").Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}
	return toEventEntities(ms)
}

// MarkRelayed stamps relayed_at on the given events.
func (r *EventRepositoryImpl) MarkRelayed(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.RegistryEvent{}).
		Where("id IN ?", ids).
		Update("relayed_at", time.Now()).Error
}

func toEventModel(e *entities.RegistryEvent) (*models.RegistryEvent, error) {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", e.Type, err)
	}
	return &models.RegistryEvent{
		ID:        e.ID,
		Type:      string(e.Type),
		TokenID:   e.TokenID.Ptr(),
		Payload:   string(payload),
		CreatedAt: e.CreatedAt,
		RelayedAt: e.RelayedAt.Ptr(),
	}, nil
}

func toEventEntities(ms []models.RegistryEvent) ([]*entities.RegistryEvent, error) {
	events := make([]*entities.RegistryEvent, 0, len(ms))
	for i := range ms {
		m := &ms[i]
		payload := map[string]string{}
		if m.Payload != "" {
			if err := json.Unmarshal([]byte(m.Payload), &payload); err != nil {
				return nil, fmt.Errorf("decode event %s payload: %w", m.ID, err)
			}
		}
		events = append(events, &entities.RegistryEvent{
			ID:        m.ID,
			Type:      entities.EventType(m.Type),
			TokenID:   null.Uint64FromPtr(m.TokenID),
			Payload:   payload,
			CreatedAt: m.CreatedAt,
			RelayedAt: null.TimeFromPtr(m.RelayedAt),
		})
	}
	return events, nil
}
