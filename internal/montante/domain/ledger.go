package domain

import "time"

// AppendEntry aplica um movimento assinado ao bankroll e devolve a entrada de
// ledger correspondente. O saldo corrente muda somente por aqui.
//
// Convenção de sinal: o montante é sempre armazenado assinado (crédito > 0,
// débito < 0); o tipo da operação é apenas descritivo. DEPOSIT é sempre
// positivo, WITHDRAWAL e SEQUENCE_LOSS sempre negativos ou zero,
// SEQUENCE_GAIN pode ter qualquer sinal (um stop manual abaixo do stake
// inicial gera um ganho negativo válido).
//
// Regra do primeiro depósito: se o bankroll inicial ainda é zero, o primeiro
// DEPOSIT o define como o saldo resultante.
func AppendEntry(settings *Settings, op OperationType, amountCents int64, description string, sequenceID *string, now time.Time) (*LedgerEntry, error) {
	switch op {
	case OpDeposit:
		if amountCents <= 0 {
			return nil, ErrLedgerSign
		}
	case OpWithdrawal, OpSequenceLoss:
		if amountCents > 0 {
			return nil, ErrLedgerSign
		}
	case OpSequenceGain:
		// qualquer sinal
	default:
		return nil, ErrInvalidStatus
	}
	if op.Category() == CategorySequences && sequenceID == nil {
		return nil, ErrSequenceReference
	}

	before := settings.CurrentCents
	after := before + amountCents
	settings.CurrentCents = after
	settings.UpdatedAt = now

	if op == OpDeposit && settings.InitialCents == 0 {
		settings.InitialCents = after
	}

	return &LedgerEntry{
		OperationType:      op,
		AmountCents:        amountCents,
		BalanceBeforeCents: before,
		BalanceAfterCents:  after,
		Description:        description,
		SequenceID:         sequenceID,
		CreatedAt:          now,
	}, nil
}

// FilterEntries seleciona entradas por janela de tempo e categoria, mantendo
// a ordem cronológica de entrada.
func FilterEntries(entries []LedgerEntry, from, to *time.Time, cat Category) []LedgerEntry {
	out := make([]LedgerEntry, 0, len(entries))
	for _, e := range entries {
		if from != nil && e.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && e.CreatedAt.After(*to) {
			continue
		}
		if cat != "" && cat != CategoryAll && e.OperationType.Category() != cat {
			continue
		}
		out = append(out, e)
	}
	return out
}

// HistoryLine é uma entrada de histórico com os totais acumulados de cada
// categoria até ela, inclusive.
type HistoryLine struct {
	Entry LedgerEntry

	DepositTotalCents    int64
	WithdrawalTotalCents int64
	GainTotalCents       int64
	LossTotalCents       int64
}

// WithRunningTotals anota cada entrada com os totais acumulados por categoria.
// As entradas devem estar em ordem cronológica.
func WithRunningTotals(entries []LedgerEntry) []HistoryLine {
	lines := make([]HistoryLine, 0, len(entries))
	var dep, wd, gain, loss int64
	for _, e := range entries {
		switch e.OperationType {
		case OpDeposit:
			dep += e.AmountCents
		case OpWithdrawal:
			wd += e.AmountCents
		case OpSequenceGain:
			gain += e.AmountCents
		case OpSequenceLoss:
			loss += e.AmountCents
		}
		lines = append(lines, HistoryLine{
			Entry:                e,
			DepositTotalCents:    dep,
			WithdrawalTotalCents: wd,
			GainTotalCents:       gain,
			LossTotalCents:       loss,
		})
	}
	return lines
}
