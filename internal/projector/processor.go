package projector

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/montante-tracker/pkg/contracts/events"
)

// Processor consome eventos ledger_appended do Kafka e mantém o snapshot de
// bankroll no Redis. Mensagens indecifráveis vão para a DLQ em vez de travar
// o consumo. Callbacks de métricas podem ser usadas para monitorar cada etapa.
type Processor struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	Store  *RedisSnapshotStore
	DLQ    *kafka.Writer // opcional

	OnConsumed func()       // métricas (counter++)
	OnCached   func()       // métricas
	OnError    func(string) // métricas por fase
}

// Run inicia o loop principal de consumo e projeção.
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		var ev events.LedgerAppended
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			p.Log.Warn("invalid message", zap.Error(err))
			if p.OnError != nil {
				p.OnError("decode")
			}
			p.toDLQ(ctx, m)
			continue
		}

		snap := Snapshot{
			CurrentCents:   ev.BalanceAfterCents,
			AvailableCents: ev.AvailableCents,
			LastEntryID:    ev.EntryID,
			TsUnixMs:       ev.TsUnixMs,
		}
		if err := p.Store.Set(ctx, snap); err != nil {
			p.Log.Warn("redis set failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("cache")
			}
			continue
		}
		if p.OnCached != nil {
			p.OnCached()
		}
	}
}

// toDLQ encaminha uma mensagem inválida para a dead-letter queue, se houver.
func (p *Processor) toDLQ(ctx context.Context, m kafka.Message) {
	if p.DLQ == nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := p.DLQ.WriteMessages(wctx, kafka.Message{Key: m.Key, Value: m.Value, Time: time.Now()}); err != nil {
		p.Log.Warn("dlq write failed", zap.Error(err))
	}
}
