package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/montante-tracker/pkg/contracts/events"
)

// KafkaPublisher publica os eventos de domínio do engine após o commit.
type KafkaPublisher struct {
	LedgerWriter  *kafka.Writer
	SettledWriter *kafka.Writer
}

func NewKafkaPublisher(ledger, settled *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{LedgerWriter: ledger, SettledWriter: settled}
}

func (p *KafkaPublisher) PublishLedgerAppended(ctx context.Context, e events.LedgerAppended) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.LedgerWriter.WriteMessages(ctx, kafka.Message{Key: []byte(e.EntryID), Value: b})
}

func (p *KafkaPublisher) PublishSequenceSettled(ctx context.Context, e events.SequenceSettled) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.SettledWriter.WriteMessages(ctx, kafka.Message{Key: []byte(e.SequenceID), Value: b})
}
