package rabbitmq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/last-exercise/internal/models"
)

func TestPublisher_PublishExerciseRecorded(t *testing.T) {
	ctx := context.Background()
	amqpURI := setupAmqpURI(ctx, t)

	conn, err := Connect(ctx, amqpURI, 3, time.Second)
	require.NoError(t, err)
	defer func() {
		_ = conn.Close()
	}()

	ch, err := SetupChannel(conn, "exercises-test", []QueueConfig{{QueueName: "recorded-test", RoutingKey: "rk"}})
	require.NoError(t, err)

	p := NewPublisher(ch, "exercises-test", "rk")
	defer func() {
		_ = p.Close()
	}()

	event := models.ExerciseRecorded{
		UserID:     "u1",
		ExerciseID: "e1",
		Duration:   "10m",
		Date:       "2024-05-01",
		RecordedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.PublishExerciseRecorded(ctx, event))

	deliveries, err := ch.Consume("recorded-test", "test-consumer", true, false, false, false, nil)
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		var got models.ExerciseRecorded
		require.NoError(t, json.Unmarshal(d.Body, &got))
		assert.Equal(t, event, got)
		assert.Equal(t, "application/json", d.ContentType)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for message via exchange")
	}
}

func TestPublishMessage_MarshalError(t *testing.T) {
	badMsg := struct {
		Ch chan int `json:"ch"`
	}{
		Ch: make(chan int),
	}

	err := PublishMessage(nil, "", "queue", badMsg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rabbitmq.PublishMessage")
}

func TestNopPublisher(t *testing.T) {
	var p NopPublisher
	assert.NoError(t, p.PublishExerciseRecorded(context.Background(), models.ExerciseRecorded{}))
	assert.NoError(t, p.Close())
}
