package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"wordmatch-service/internal/app"
	"wordmatch-service/internal/domain"
)

func TestPublishCheckOverGoChannel(t *testing.T) {
	pub, sub, err := NewPublisher(PublisherConfig{})
	require.NoError(t, err)
	require.NotNil(t, sub)
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	messages, err := sub.Subscribe(ctx, DefaultTopic)
	require.NoError(t, err)

	event := app.CheckEvent{
		GameID:    "game-1",
		SetID:     "set-1",
		PlayerID:  "u1",
		Result:    domain.ScoreResult{CorrectCount: 2, Total: 3},
		CheckedAt: time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, pub.PublishCheck(ctx, event))

	select {
	case msg := <-messages:
		got, err := DecodeCheck(msg)
		require.NoError(t, err)
		msg.Ack()
		assert.Equal(t, event, got)
		assert.Equal(t, "game-1", msg.Metadata.Get("game_id"))
		assert.Equal(t, "matching.checked", msg.Metadata.Get("event_type"))
	case <-ctx.Done():
		t.Fatal("no event received")
	}
}

func TestZapAdapterForwardsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	adapter := NewZapAdapter(zap.New(core)).With(map[string]interface{}{"topic": "t"})

	adapter.Info("hello", map[string]interface{}{"n": 1})
	adapter.Trace("trace", nil)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "hello", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "t", fields["topic"])
	assert.EqualValues(t, 1, fields["n"])
	assert.Equal(t, zap.DebugLevel, entries[1].Level)
}
