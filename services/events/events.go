package events

import (
	"context"
	"encoding/json"
	"fmt"

	"chatbooking/models"
	"chatbooking/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// EventSink receives domain events after a booking lifecycle change.
// Publishing is fire and forget; a sink failure never fails the operation
// that produced the event.
type EventSink interface {
	Publish(ctx context.Context, event models.DomainEvent)
}

// LogEventSink writes every event to the structured log. Used in development
// and as the fallback when no broker is configured.
type LogEventSink struct{}

func NewLogEventSink() *LogEventSink {
	return &LogEventSink{}
}

func (s *LogEventSink) Publish(_ context.Context, event models.DomainEvent) {
	utils.GetLogger().Info("domain event",
		zap.String("type", string(event.Type)),
		zap.String("tenantId", event.TenantID),
		zap.String("bookingId", event.BookingID),
		zap.String("providerId", event.ProviderID),
		zap.Time("start", event.Start))
}

// RedisEventSink publishes events to a per-tenant Redis channel so that
// downstream consumers (notifications, analytics) can subscribe.
type RedisEventSink struct {
	client *redis.Client
}

func NewRedisEventSink(client *redis.Client) *RedisEventSink {
	return &RedisEventSink{client: client}
}

// ChannelFor returns the pub/sub channel name for a tenant's events.
func ChannelFor(tenantID string) string {
	return fmt.Sprintf("booking-events:%s", tenantID)
}

func (s *RedisEventSink) Publish(ctx context.Context, event models.DomainEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		utils.GetLogger().Error("failed to marshal domain event", zap.Error(err))
		return
	}
	if err := s.client.Publish(ctx, ChannelFor(event.TenantID), payload).Err(); err != nil {
		utils.GetLogger().Error("failed to publish domain event",
			zap.String("type", string(event.Type)),
			zap.String("bookingId", event.BookingID),
			zap.Error(err))
	}
}

// FanoutSink forwards every event to all member sinks.
type FanoutSink struct {
	sinks []EventSink
}

func NewFanoutSink(sinks ...EventSink) *FanoutSink {
	return &FanoutSink{sinks: sinks}
}

func (s *FanoutSink) Publish(ctx context.Context, event models.DomainEvent) {
	for _, sink := range s.sinks {
		sink.Publish(ctx, event)
	}
}
