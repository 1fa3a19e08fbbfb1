package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/radieske/montante-tracker/internal/montante/domain"
)

// CreateStage cria um palier na montante, com o stake encadeado do palier
// anterior. Se o palier chegar com desfecho já decidido (backfill
// administrativo), a resolução roda na mesma transação.
func (p *Postgres) CreateStage(ctx context.Context, sequenceID string, in CreateStageInput) (*OperationResult, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	settings, err := p.lockSettings(ctx, tx)
	if err != nil {
		return nil, err
	}
	seq, err := loadSequence(ctx, tx, sequenceID, true)
	if err != nil {
		return nil, err
	}

	legs := make([]domain.Leg, len(in.Legs))
	for i, l := range in.Legs {
		status := l.Status
		if status == "" {
			status = domain.StagePending
		}
		legs[i] = domain.Leg{
			Sport:       l.Sport,
			Competition: l.Competition,
			Prediction:  l.Prediction,
			Odds:        l.Odds,
			ScheduledAt: l.ScheduledAt,
			Status:      status,
		}
	}

	st, err := domain.NewStage(seq, in.BetType, legs, p.now())
	if err != nil {
		return nil, err
	}
	if in.Status != "" && in.Status != domain.StagePending {
		if err := domain.ApplyDirectStatus(st, in.Status); err != nil {
			return nil, err
		}
	}

	st.ID = uuid.NewString()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO stages
			(id, sequence_id, number, stake_cents, bet_type, combined_odds, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		st.ID, st.SequenceID, st.Number, st.StakeCents, st.BetType, st.CombinedOdds,
		st.Status, st.CreatedAt); err != nil {
		return nil, err
	}
	for i := range st.Legs {
		st.Legs[i].ID = uuid.NewString()
		l := st.Legs[i]
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO stage_legs (id, stage_id, position, sport, competition, prediction, odds, scheduled_at, status)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			l.ID, st.ID, l.Position, l.Sport, l.Competition, l.Prediction, l.Odds,
			l.ScheduledAt, l.Status); err != nil {
			return nil, err
		}
	}

	// Backfill: desfechos já conhecidos resolvem o palier imediatamente.
	var entry *domain.LedgerEntry
	var settled *domain.Settlement
	settled, err = domain.ResolveStage(seq, st, p.now())
	if err != nil {
		return nil, err
	}
	if st.Status.Decided() {
		if err := persistStageResolution(ctx, tx, st); err != nil {
			return nil, err
		}
	}
	if settled != nil {
		entry, err = p.applySettlement(ctx, tx, settings, seq, settled)
		if err != nil {
			return nil, err
		}
	}

	if err := p.reconcile(ctx, tx, settings); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	seq.Stages = append(seq.Stages, *st)
	return &OperationResult{Sequence: seq, Stage: st, Settings: *settings, Entry: entry, Settled: settled}, nil
}

// sequenceOfStage localiza a montante dona de um palier.
func sequenceOfStage(ctx context.Context, tx *sql.Tx, stageID string) (string, error) {
	var seqID string
	err := tx.QueryRowContext(ctx, `SELECT sequence_id FROM stages WHERE id=$1`, stageID).Scan(&seqID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	return seqID, err
}

// ResolveStage aplica desfechos (por seleção ou status direto) a um palier
// aberto. Decisões parciais são persistidas; o palier só fecha quando nenhuma
// seleção resta PENDING. Um fechamento pode encerrar a montante e gerar o
// movimento de ledger terminal, tudo na mesma transação.
func (p *Postgres) ResolveStage(ctx context.Context, stageID string, in ResolveStageInput) (*OperationResult, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	settings, err := p.lockSettings(ctx, tx)
	if err != nil {
		return nil, err
	}
	seqID, err := sequenceOfStage(ctx, tx, stageID)
	if err != nil {
		return nil, err
	}
	seq, err := loadSequence(ctx, tx, seqID, true)
	if err != nil {
		return nil, err
	}

	var st *domain.Stage
	for i := range seq.Stages {
		if seq.Stages[i].ID == stageID {
			st = &seq.Stages[i]
			break
		}
	}
	if st == nil {
		return nil, domain.ErrNotFound
	}

	if in.Status != "" {
		if err := domain.ApplyDirectStatus(st, in.Status); err != nil {
			return nil, err
		}
	} else {
		if err := domain.ApplyLegOutcomes(st, in.LegOutcomes); err != nil {
			return nil, err
		}
	}

	settled, err := domain.ResolveStage(seq, st, p.now())
	if err != nil {
		return nil, err
	}
	// Persiste sempre: mesmo um palier ainda PENDING guarda os desfechos
	// parciais das seleções.
	if err := persistStageResolution(ctx, tx, st); err != nil {
		return nil, err
	}

	var entry *domain.LedgerEntry
	if settled != nil {
		entry, err = p.applySettlement(ctx, tx, settings, seq, settled)
		if err != nil {
			return nil, err
		}
	}

	if err := p.reconcile(ctx, tx, settings); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &OperationResult{Sequence: seq, Stage: st, Settings: *settings, Entry: entry, Settled: settled}, nil
}

// DeleteStage remove o último palier de uma montante em curso. O ganho
// corrente volta a derivar do novo último palier ganho (ou do stake inicial).
func (p *Postgres) DeleteStage(ctx context.Context, stageID string) (*OperationResult, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	settings, err := p.lockSettings(ctx, tx)
	if err != nil {
		return nil, err
	}
	seqID, err := sequenceOfStage(ctx, tx, stageID)
	if err != nil {
		return nil, err
	}
	seq, err := loadSequence(ctx, tx, seqID, true)
	if err != nil {
		return nil, err
	}

	removed, err := domain.RemoveLastStage(seq, stageID)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM stages WHERE id=$1`, stageID); err != nil {
		return nil, err
	}

	if err := p.reconcile(ctx, tx, settings); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &OperationResult{Sequence: seq, Stage: removed, Settings: *settings}, nil
}
