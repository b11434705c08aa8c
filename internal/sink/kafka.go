package sink

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"nyx/internal/engine"
)

const defaultPublishTimeout = 5 * time.Second

// Kafka publishes events to a Kafka topic as JSON envelopes, keyed by
// event kind so consumers can partition on it.
type Kafka struct {
	writer *kafka.Writer
	log    zerolog.Logger
}

func NewKafka(brokers []string, topic string, log zerolog.Logger) *Kafka {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   topic,
	})
	return &Kafka{
		writer: writer,
		log:    log,
	}
}

func (k *Kafka) Publish(event engine.Event) {
	payload, err := engine.MarshalEvent(event)
	if err != nil {
		k.log.Error().Err(err).Str("kind", event.Kind()).Msg("unable to encode event")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultPublishTimeout)
	defer cancel()

	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Kind()),
		Value: payload,
	})
	if err != nil {
		k.log.Error().Err(err).Str("kind", event.Kind()).Msg("unable to publish event")
	}
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
