package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeatMerge/internal/domain/models"
	domrepo "FeatMerge/internal/domain/repository"
	pkgkafka "FeatMerge/pkg/kafka"
)

type captureWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error { return nil }

func TestKafkaOutcomePublisher_Publish(t *testing.T) {
	w := &captureWriter{}
	pub := NewKafkaOutcomePublisher(pkgkafka.NewProducerWithWriter(w), "features.merged")

	err := pub.Publish(context.Background(), models.SymbolReport{
		Symbol:      "EURUSD",
		Outcome:     models.OutcomeNoTimeframes,
		Unavailable: []models.TimeframeFailure{{Timeframe: "1h", Err: domrepo.ErrSourceUnavailable}},
		Err:         domrepo.ErrNoTimeframesAvailable,
		Duration:    2 * time.Second,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "features.merged", msg.Topic)
	assert.Equal(t, "EURUSD", string(msg.Key))

	var ev map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, "no_timeframes", ev["outcome"])
	assert.Equal(t, "no timeframes available", ev["error"])
	assert.Equal(t, float64(2000), ev["duration_ms"])
	assert.Equal(t, map[string]interface{}{"1h": "source unavailable"}, ev["unavailable"])
}

func TestKafkaOutcomePublisher_Error(t *testing.T) {
	w := &captureWriter{err: errors.New("leader not available")}
	pub := NewKafkaOutcomePublisher(pkgkafka.NewProducerWithWriter(w), "t")

	err := pub.Publish(context.Background(), models.SymbolReport{Symbol: "EURUSD"})
	assert.ErrorContains(t, err, "EURUSD")
	require.NoError(t, pub.Close())
}
