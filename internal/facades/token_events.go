package facades

//go:generate mockgen -source=token_events.go -destination=token_events_mock.go -package=facades

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"

	"github.com/sbilibin2017/gw-auth-manager/internal/logger"
	"github.com/sbilibin2017/gw-auth-manager/internal/models"
)

// consecutive write failures after which publishing is suspended
const breakerFailureThreshold = 5

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// TokenEventKafkaFacade publishes token audit events to Kafka.
type TokenEventKafkaFacade struct {
	writer  KafkaWriter
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewTokenEventKafkaFacade creates a new facade. A nil writer disables publishing.
func NewTokenEventKafkaFacade(writer KafkaWriter, openTimeout time.Duration) *TokenEventKafkaFacade {
	return &TokenEventKafkaFacade{
		writer: writer,
		breaker: gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name:        "token-events",
			MaxRequests: 1,
			Timeout:     openTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerFailureThreshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Log.Warnw("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			},
		}),
	}
}

// Publish writes the event keyed by its token id.
func (f *TokenEventKafkaFacade) Publish(ctx context.Context, event models.TokenEvent) error {
	if f.writer == nil {
		logger.Log.Warnw("Kafka writer not configured, skipping publishing", "event", event.Event, "jti", event.TokenID)
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.TokenID),
		Value: data,
		Time:  time.Now(),
	}

	_, err = f.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, f.writer.WriteMessages(ctx, msg)
	})
	if err != nil {
		logger.Log.Errorw("failed to publish token event", "event", event.Event, "jti", event.TokenID, "error", err)
		return err
	}

	logger.Log.Debugw("token event published", "event", event.Event, "jti", event.TokenID)
	return nil
}

// Close closes the underlying writer.
func (f *TokenEventKafkaFacade) Close() error {
	if f.writer == nil {
		return nil
	}
	return f.writer.Close()
}
