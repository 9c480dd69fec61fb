package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/balloon-drift-service/internal/config"
	"github.com/couchcryptid/balloon-drift-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes each cycle's trajectories to a Kafka topic, one message
// per object keyed by its id. It implements pipeline.SnapshotLoader.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadSnapshot serializes every trajectory of snap and writes them in a single
// WriteMessages call. Keying by object id keeps an object's history on one
// partition.
func (w *Writer) LoadSnapshot(ctx context.Context, snap domain.Snapshot) error {
	if len(snap.Trajectories) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(snap.Trajectories))
	for i := range snap.Trajectories {
		msg, err := serializeToMessage(snap.CycleID, snap.BuiltAt, snap.Trajectories[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write snapshot %s: %w", snap.CycleID, err)
	}
	w.logger.Debug("snapshot written", "cycle_id", snap.CycleID, "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a trajectory into a Kafka message tagged with
// the cycle that produced it.
func serializeToMessage(cycleID string, builtAt time.Time, traj domain.Trajectory) (kafkago.Message, error) {
	data, err := json.Marshal(traj)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize trajectory %s: %w", traj.ID, err)
	}
	return kafkago.Message{
		Key:   []byte(traj.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "cycle_id", Value: []byte(cycleID)},
			{Key: "built_at", Value: []byte(builtAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
