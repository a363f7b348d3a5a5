package facades

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbilibin2017/gw-auth-manager/internal/models"
)

func testEvent() models.TokenEvent {
	now := time.Now().UTC().Truncate(time.Second)
	return models.TokenEvent{
		Event:     models.EventTokenIssued,
		TokenID:   "jti-1",
		Subject:   "admin",
		Role:      models.RoleAdmin,
		Client:    models.ClientCLI,
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}
}

func TestTokenEventKafkaFacade_Publish(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	writer := NewMockKafkaWriter(ctrl)
	facade := NewTokenEventKafkaFacade(writer, time.Minute)
	ev := testEvent()

	writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msgs ...kafka.Message) error {
			require.Len(t, msgs, 1)
			assert.Equal(t, []byte("jti-1"), msgs[0].Key)

			var got models.TokenEvent
			require.NoError(t, json.Unmarshal(msgs[0].Value, &got))
			assert.Equal(t, ev, got)
			return nil
		})

	assert.NoError(t, facade.Publish(context.Background(), ev))
}

func TestTokenEventKafkaFacade_BreakerOpens(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	writer := NewMockKafkaWriter(ctrl)
	facade := NewTokenEventKafkaFacade(writer, time.Minute)

	writeErr := errors.New("broker unavailable")
	writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).
		Return(writeErr).
		Times(breakerFailureThreshold)

	for i := 0; i < breakerFailureThreshold; i++ {
		assert.ErrorIs(t, facade.Publish(context.Background(), testEvent()), writeErr)
	}

	// the writer is no longer called while the breaker is open
	assert.ErrorIs(t, facade.Publish(context.Background(), testEvent()), gobreaker.ErrOpenState)
}

func TestTokenEventKafkaFacade_NilWriter(t *testing.T) {
	facade := NewTokenEventKafkaFacade(nil, time.Minute)
	assert.NoError(t, facade.Publish(context.Background(), testEvent()))
	assert.NoError(t, facade.Close())
}

func TestTokenEventKafkaFacade_Close(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	writer := NewMockKafkaWriter(ctrl)
	writer.EXPECT().Close().Return(nil)

	assert.NoError(t, NewTokenEventKafkaFacade(writer, time.Minute).Close())
}
