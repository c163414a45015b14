package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"token-registry.backend/internal/domain/entities"
	"token-registry.backend/pkg/logger"
	"token-registry.backend/pkg/metrics"
)

const relayBatchSize = 100

// eventOutbox is the part of the event repository the relay needs
type eventOutbox interface {
	ListUnrelayed(ctx context.Context, limit int) ([]*entities.RegistryEvent, error)
	MarkRelayed(ctx context.Context, ids []uuid.UUID) error
}

// Publisher delivers one encoded event to subscribers of channel
type Publisher func(ctx context.Context, channel string, message []byte) error

// EventRelayJob publishes outbox events in creation order and marks them relayed
type EventRelayJob struct {
	repo     eventOutbox
	publish  Publisher
	channel  string
	interval time.Duration
	metrics  *metrics.Metrics
	stop     chan struct{}
}

func NewEventRelayJob(repo eventOutbox, publish Publisher, channel string, interval time.Duration, m *metrics.Metrics) *EventRelayJob {
	return &EventRelayJob{
		repo:     repo,
		publish:  publish,
		channel:  channel,
		interval: interval,
		metrics:  m,
		stop:     make(chan struct{}),
	}
}

func (j *EventRelayJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting event relay job", zap.String("channel", j.channel), zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Event relay job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Event relay job stopped")
			return
		case <-ticker.C:
			j.relayPending(ctx)
		}
	}
}

func (j *EventRelayJob) Stop() {
	close(j.stop)
}

// relayPending publishes one batch. A publish failure ends the batch so later
// events are not delivered ahead of the failed one.
func (j *EventRelayJob) relayPending(ctx context.Context) {
	pending, err := j.repo.ListUnrelayed(ctx, relayBatchSize)
	if err != nil {
		logger.Error(ctx, "Error fetching unrelayed events", zap.Error(err))
		return
	}
	if len(pending) == 0 {
		return
	}

	ids := make([]uuid.UUID, 0, len(pending))
	for _, event := range pending {
		message, err := json.Marshal(event)
		if err != nil {
			logger.Error(ctx, "Error encoding event", zap.String("eventId", event.ID.String()), zap.Error(err))
			break
		}
		if err := j.publish(ctx, j.channel, message); err != nil {
			logger.Warn(ctx, "Error publishing event", zap.String("eventId", event.ID.String()), zap.Error(err))
			break
		}
		ids = append(ids, event.ID)
	}
	if len(ids) == 0 {
		return
	}

	if err := j.repo.MarkRelayed(ctx, ids); err != nil {
		logger.Error(ctx, "Error marking events relayed", zap.Error(err))
		return
	}
	j.metrics.AddRelayed(len(ids))
	logger.Debug(ctx, "Relayed events", zap.Int("count", len(ids)))
}
