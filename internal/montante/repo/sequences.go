package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/radieske/montante-tracker/internal/montante/domain"
)

// loadSequence carrega uma montante com paliers e seleções. Com forUpdate, a
// linha da montante fica travada até o fim da transação.
func loadSequence(ctx context.Context, q queryer, id string, forUpdate bool) (*domain.Sequence, error) {
	query := `
		SELECT id, display_number, initial_stake_cents, objective_multiplier, committed_stake_cents,
		       state, closed_manually, final_gain_cents, started_at, ended_at, duration_days
		FROM sequences WHERE id=$1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var s domain.Sequence
	var rawState string
	var finalGain sql.NullInt64
	var endedAt sql.NullTime
	var duration sql.NullInt64
	err := q.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.DisplayNumber, &s.InitialStakeCents, &s.ObjectiveMultiplier, &s.CommittedStakeCents,
		&rawState, &s.ClosedManually, &finalGain, &s.StartedAt, &endedAt, &duration)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.State, s.ClosedManually = domain.NormalizeSequenceState(rawState, s.ClosedManually)
	if finalGain.Valid {
		v := finalGain.Int64
		s.FinalGainCents = &v
	}
	if endedAt.Valid {
		t := endedAt.Time
		s.EndedAt = &t
	}
	if duration.Valid {
		d := int(duration.Int64)
		s.DurationDays = &d
	}

	stages, err := loadStages(ctx, q, id)
	if err != nil {
		return nil, err
	}
	s.Stages = stages
	return &s, nil
}

// loadStages carrega os paliers de uma montante em ordem, com as seleções.
func loadStages(ctx context.Context, q queryer, sequenceID string) ([]domain.Stage, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, sequence_id, number, stake_cents, bet_type, combined_odds, status,
		       payout_cents, cumulative_progress_pct, created_at, resolved_at
		FROM stages WHERE sequence_id=$1 ORDER BY number`, sequenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stages []domain.Stage
	for rows.Next() {
		var st domain.Stage
		var payout sql.NullInt64
		var pct sql.NullFloat64
		var resolvedAt sql.NullTime
		if err := rows.Scan(&st.ID, &st.SequenceID, &st.Number, &st.StakeCents, &st.BetType,
			&st.CombinedOdds, &st.Status, &payout, &pct, &st.CreatedAt, &resolvedAt); err != nil {
			return nil, err
		}
		if payout.Valid {
			v := payout.Int64
			st.PayoutCents = &v
		}
		if pct.Valid {
			v := pct.Float64
			st.CumulativeProgressPct = &v
		}
		if resolvedAt.Valid {
			t := resolvedAt.Time
			st.ResolvedAt = &t
		}
		stages = append(stages, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range stages {
		legs, err := loadLegs(ctx, q, stages[i].ID)
		if err != nil {
			return nil, err
		}
		stages[i].Legs = legs
	}
	return stages, nil
}

func loadLegs(ctx context.Context, q queryer, stageID string) ([]domain.Leg, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, position, sport, competition, prediction, odds, scheduled_at, status
		FROM stage_legs WHERE stage_id=$1 ORDER BY position`, stageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var legs []domain.Leg
	for rows.Next() {
		var l domain.Leg
		var scheduled sql.NullTime
		if err := rows.Scan(&l.ID, &l.Position, &l.Sport, &l.Competition, &l.Prediction,
			&l.Odds, &scheduled, &l.Status); err != nil {
			return nil, err
		}
		if scheduled.Valid {
			t := scheduled.Time
			l.ScheduledAt = &t
		}
		legs = append(legs, l)
	}
	return legs, rows.Err()
}

// queryer abstrai *sql.DB e *sql.Tx para as leituras compartilhadas.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// updateSequenceRow grava os campos mutáveis de uma montante.
func updateSequenceRow(ctx context.Context, tx *sql.Tx, s *domain.Sequence) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE sequences
		SET display_number=$1, committed_stake_cents=$2, state=$3, closed_manually=$4,
		    final_gain_cents=$5, ended_at=$6, duration_days=$7
		WHERE id=$8`,
		s.DisplayNumber, s.CommittedStakeCents, s.State, s.ClosedManually,
		s.FinalGainCents, s.EndedAt, s.DurationDays, s.ID)
	return err
}

// persistStageResolution grava o palier resolvido e os status das seleções.
func persistStageResolution(ctx context.Context, tx *sql.Tx, st *domain.Stage) error {
	if _, err := tx.ExecContext(ctx, `
		UPDATE stages
		SET combined_odds=$1, status=$2, payout_cents=$3, cumulative_progress_pct=$4, resolved_at=$5
		WHERE id=$6`,
		st.CombinedOdds, st.Status, st.PayoutCents, st.CumulativeProgressPct, st.ResolvedAt, st.ID); err != nil {
		return err
	}
	for _, l := range st.Legs {
		if _, err := tx.ExecContext(ctx,
			`UPDATE stage_legs SET status=$1 WHERE id=$2`, l.Status, l.ID); err != nil {
			return err
		}
	}
	return nil
}

// applySettlement grava a transição terminal: a montante atualizada e a
// entrada única de ledger do encerramento, no mesmo tx.
func (p *Postgres) applySettlement(ctx context.Context, tx *sql.Tx, settings *domain.Settings,
	seq *domain.Sequence, settled *domain.Settlement) (*domain.LedgerEntry, error) {

	if err := updateSequenceRow(ctx, tx, seq); err != nil {
		return nil, err
	}
	entry, err := domain.AppendEntry(settings, settled.Ledger.Op, settled.Ledger.AmountCents,
		settled.Ledger.Description, &seq.ID, p.now())
	if err != nil {
		return nil, err
	}
	if err := insertLedger(ctx, tx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// CreateSequence cria uma montante IN_PROGRESS. O stake inicial é
// comprometido na criação e precisa caber no bankroll disponível.
func (p *Postgres) CreateSequence(ctx context.Context, initialStakeCents int64, objectiveMultiplier int) (*OperationResult, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	settings, err := p.lockSettings(ctx, tx)
	if err != nil {
		return nil, err
	}

	seq, err := domain.NewSequence(initialStakeCents, objectiveMultiplier, p.now())
	if err != nil {
		return nil, err
	}
	if initialStakeCents > settings.AvailableCents {
		return nil, domain.ErrInsufficientFunds
	}

	// Número de exibição sob o lock do singleton: nenhuma criação concorrente
	// pode receber o mesmo número.
	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM sequences`).Scan(&count); err != nil {
		return nil, err
	}
	seq.ID = uuid.NewString()
	seq.DisplayNumber = count + 1

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sequences
			(id, display_number, initial_stake_cents, objective_multiplier, committed_stake_cents,
			 state, closed_manually, started_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		seq.ID, seq.DisplayNumber, seq.InitialStakeCents, seq.ObjectiveMultiplier,
		seq.CommittedStakeCents, seq.State, seq.ClosedManually, seq.StartedAt); err != nil {
		return nil, err
	}

	if err := p.reconcile(ctx, tx, settings); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &OperationResult{Sequence: seq, Settings: *settings}, nil
}

// GetSequence carrega uma montante com paliers e seleções.
func (p *Postgres) GetSequence(ctx context.Context, id string) (*domain.Sequence, error) {
	return loadSequence(ctx, p.db, id, false)
}

// ListSequences devolve todas as montantes (sem paliers) por número de
// exibição.
func (p *Postgres) ListSequences(ctx context.Context) ([]domain.Sequence, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, display_number, initial_stake_cents, objective_multiplier, committed_stake_cents,
		       state, closed_manually, final_gain_cents, started_at, ended_at, duration_days
		FROM sequences ORDER BY display_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Sequence
	for rows.Next() {
		var s domain.Sequence
		var rawState string
		var finalGain sql.NullInt64
		var endedAt sql.NullTime
		var duration sql.NullInt64
		if err := rows.Scan(&s.ID, &s.DisplayNumber, &s.InitialStakeCents, &s.ObjectiveMultiplier,
			&s.CommittedStakeCents, &rawState, &s.ClosedManually, &finalGain, &s.StartedAt,
			&endedAt, &duration); err != nil {
			return nil, err
		}
		s.State, s.ClosedManually = domain.NormalizeSequenceState(rawState, s.ClosedManually)
		if finalGain.Valid {
			v := finalGain.Int64
			s.FinalGainCents = &v
		}
		if endedAt.Valid {
			t := endedAt.Time
			s.EndedAt = &t
		}
		if duration.Valid {
			d := int(duration.Int64)
			s.DurationDays = &d
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteSequence remove uma montante e renumera as restantes de forma
// contígua por ordem de criação, sob o mesmo lock que exclui criações
// concorrentes.
func (p *Postgres) DeleteSequence(ctx context.Context, id string) (*OperationResult, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	settings, err := p.lockSettings(ctx, tx)
	if err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM sequences WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound
	}

	// Renumeração: recomputação completa 1..N por ordem de criação.
	remaining, err := p.listForRenumber(ctx, tx)
	if err != nil {
		return nil, err
	}
	domain.Renumber(remaining)
	for i := range remaining {
		if _, err := tx.ExecContext(ctx,
			`UPDATE sequences SET display_number=$1 WHERE id=$2`,
			remaining[i].DisplayNumber, remaining[i].ID); err != nil {
			return nil, err
		}
	}

	if err := p.reconcile(ctx, tx, settings); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &OperationResult{Settings: *settings}, nil
}

// listForRenumber carrega o mínimo necessário para renumerar.
func (p *Postgres) listForRenumber(ctx context.Context, tx *sql.Tx) ([]domain.Sequence, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, started_at FROM sequences FOR UPDATE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Sequence
	for rows.Next() {
		var s domain.Sequence
		if err := rows.Scan(&s.ID, &s.StartedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// StopSequence encerra manualmente uma montante em curso. Resolve sempre
// para WON com o ganho corrente, mesmo abaixo do objetivo; o movimento de
// ledger pode sair negativo e é registrado assim mesmo.
func (p *Postgres) StopSequence(ctx context.Context, id string) (*OperationResult, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	settings, err := p.lockSettings(ctx, tx)
	if err != nil {
		return nil, err
	}
	seq, err := loadSequence(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}

	settled, err := domain.Stop(seq, p.now())
	if err != nil {
		return nil, err
	}
	entry, err := p.applySettlement(ctx, tx, settings, seq, settled)
	if err != nil {
		return nil, err
	}
	if err := p.reconcile(ctx, tx, settings); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &OperationResult{Sequence: seq, Settings: *settings, Entry: entry, Settled: settled}, nil
}
