package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"token-registry.backend/internal/domain/entities"
	"token-registry.backend/pkg/utils"
)

func newEvent(typ entities.EventType, at time.Time) *entities.RegistryEvent {
	id, _ := uuid.NewV7()
	return &entities.RegistryEvent{
		ID:        id,
		Type:      typ,
		Payload:   map[string]string{"k": string(typ)},
		CreatedAt: at,
	}
}

func TestEventRepository_AppendListAndRelay(t *testing.T) {
	repo := NewEventRepository(newMigratedDB(t))
	ctx := context.Background()
	base := time.Now().Add(-time.Minute)

	minted := newEvent(entities.EventTokenMinted, base)
	minted.TokenID = null.Uint64From(0)
	paused := newEvent(entities.EventPaused, base.Add(time.Second))
	unpaused := newEvent(entities.EventUnpaused, base.Add(2*time.Second))

	require.NoError(t, repo.Append(ctx))
	require.NoError(t, repo.Append(ctx, minted, paused, unpaused))

	items, total, err := repo.List(ctx, utils.GetPaginationParams(1, 2))
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, items, 2)
	require.Equal(t, entities.EventUnpaused, items[0].Type)
	require.Equal(t, entities.EventPaused, items[1].Type)

	pending, err := repo.ListUnrelayed(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	require.Equal(t, entities.EventTokenMinted, pending[0].Type)
	require.True(t, pending[0].TokenID.Valid)
	require.Equal(t, uint64(0), pending[0].TokenID.Uint64)
	require.Equal(t, "TokenMinted", pending[0].Payload["k"])

	require.NoError(t, repo.MarkRelayed(ctx, []uuid.UUID{minted.ID, paused.ID}))
	require.NoError(t, repo.MarkRelayed(ctx, nil))

	pending, err = repo.ListUnrelayed(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, unpaused.ID, pending[0].ID)
}
