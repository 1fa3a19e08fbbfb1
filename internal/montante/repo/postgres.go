package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/montante-tracker/internal/montante/domain"
)

// Postgres implementa a persistência do engine de montantes. Cada operação
// lógica (criar palier, resolver palier, depositar, ...) roda em uma única
// transação; a linha singleton de bankroll_settings é travada com FOR UPDATE
// no início de toda mutação, serializando leituras-modificações concorrentes
// de saldo e a renumeração contra criações simultâneas.
type Postgres struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgres retorna o repositório do engine.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db, now: time.Now}
}

// NewPostgresWithClock permite injetar o relógio (testes e backfills).
func NewPostgresWithClock(db *sql.DB, now func() time.Time) *Postgres {
	return &Postgres{db: db, now: now}
}

// lockSettings garante a existência da linha singleton e a trava para a
// transação corrente. Todo caminho mutante passa por aqui primeiro.
func (p *Postgres) lockSettings(ctx context.Context, tx *sql.Tx) (*domain.Settings, error) {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO bankroll_settings(id) VALUES (1) ON CONFLICT (id) DO NOTHING`); err != nil {
		return nil, err
	}
	var s domain.Settings
	err := tx.QueryRowContext(ctx, `
		SELECT initial_cents, current_cents, available_cents, updated_at
		FROM bankroll_settings WHERE id=1 FOR UPDATE`).
		Scan(&s.InitialCents, &s.CurrentCents, &s.AvailableCents, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// saveSettings grava o singleton de bankroll.
func saveSettings(ctx context.Context, tx *sql.Tx, s *domain.Settings) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE bankroll_settings
		SET initial_cents=$1, current_cents=$2, available_cents=$3, updated_at=$4
		WHERE id=1`,
		s.InitialCents, s.CurrentCents, s.AvailableCents, s.UpdatedAt)
	return err
}

// reconcile recalcula o bankroll disponível dentro da transação:
// disponível = corrente - soma dos stakes comprometidos das montantes em
// curso. Recomputação completa a cada mutação, nunca delta incremental.
func (p *Postgres) reconcile(ctx context.Context, tx *sql.Tx, s *domain.Settings) error {
	var committed int64
	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(committed_stake_cents), 0)
		FROM sequences WHERE state=$1`, domain.SequenceInProgress).
		Scan(&committed); err != nil {
		return err
	}
	s.AvailableCents = s.CurrentCents - committed
	s.UpdatedAt = p.now()
	return saveSettings(ctx, tx, s)
}

// insertLedger grava uma entrada de ledger (append-only) e preenche o ID.
func insertLedger(ctx context.Context, tx *sql.Tx, e *domain.LedgerEntry) error {
	e.ID = uuid.NewString()
	_, err := tx.ExecContext(ctx, `
		INSERT INTO bankroll_ledger
			(id, operation_type, amount_cents, balance_before_cents, balance_after_cents, description, sequence_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		e.ID, e.OperationType, e.AmountCents, e.BalanceBeforeCents, e.BalanceAfterCents,
		e.Description, e.SequenceID, e.CreatedAt)
	return err
}

// Bankroll devolve o singleton de bankroll (leitura simples).
func (p *Postgres) Bankroll(ctx context.Context) (domain.Settings, error) {
	var s domain.Settings
	err := p.db.QueryRowContext(ctx, `
		SELECT initial_cents, current_cents, available_cents, updated_at
		FROM bankroll_settings WHERE id=1`).
		Scan(&s.InitialCents, &s.CurrentCents, &s.AvailableCents, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Settings{}, nil // ainda sem movimento
	}
	return s, err
}

// Deposit credita o bankroll e registra a operação no ledger. O primeiro
// depósito com bankroll inicial zerado define o baseline.
func (p *Postgres) Deposit(ctx context.Context, amountCents int64, description string) (*OperationResult, error) {
	if amountCents <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	settings, err := p.lockSettings(ctx, tx)
	if err != nil {
		return nil, err
	}

	entry, err := domain.AppendEntry(settings, domain.OpDeposit, amountCents, description, nil, p.now())
	if err != nil {
		return nil, err
	}
	if err := insertLedger(ctx, tx, entry); err != nil {
		return nil, err
	}
	if err := p.reconcile(ctx, tx, settings); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &OperationResult{Settings: *settings, Entry: entry}, nil
}

// Withdraw debita o bankroll. Uma retirada maior que o disponível é
// rejeitada antes de qualquer escrita.
func (p *Postgres) Withdraw(ctx context.Context, amountCents int64, description string) (*OperationResult, error) {
	if amountCents <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	settings, err := p.lockSettings(ctx, tx)
	if err != nil {
		return nil, err
	}
	if amountCents > settings.AvailableCents {
		return nil, domain.ErrInsufficientFunds
	}

	entry, err := domain.AppendEntry(settings, domain.OpWithdrawal, -amountCents, description, nil, p.now())
	if err != nil {
		return nil, err
	}
	if err := insertLedger(ctx, tx, entry); err != nil {
		return nil, err
	}
	if err := p.reconcile(ctx, tx, settings); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &OperationResult{Settings: *settings, Entry: entry}, nil
}

// History devolve o ledger em ordem cronológica, filtrado por janela e
// categoria, com os totais acumulados por categoria pré-calculados.
func (p *Postgres) History(ctx context.Context, from, to *time.Time, cat domain.Category) ([]domain.HistoryLine, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, operation_type, amount_cents, balance_before_cents, balance_after_cents, description, sequence_id, created_at
		FROM bankroll_ledger
		ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		var seqID sql.NullString
		if err := rows.Scan(&e.ID, &e.OperationType, &e.AmountCents, &e.BalanceBeforeCents,
			&e.BalanceAfterCents, &e.Description, &seqID, &e.CreatedAt); err != nil {
			return nil, err
		}
		if seqID.Valid {
			e.SequenceID = &seqID.String
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return domain.WithRunningTotals(domain.FilterEntries(entries, from, to, cat)), nil
}
