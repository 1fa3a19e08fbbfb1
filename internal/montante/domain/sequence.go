package domain

import (
	"fmt"
	"sort"
	"time"
)

// LedgerCommand é o efeito de ledger de uma transição terminal. Exatamente um
// por encerramento de montante.
type LedgerCommand struct {
	Op          OperationType
	AmountCents int64 // assinado
	Description string
}

// Settlement descreve a transição terminal aplicada a uma montante.
type Settlement struct {
	State          SequenceState
	FinalGainCents int64
	ClosedManually bool
	Ledger         LedgerCommand
}

// NewSequence cria uma montante IN_PROGRESS com o stake inicial comprometido.
func NewSequence(initialStakeCents int64, objectiveMultiplier int, now time.Time) (*Sequence, error) {
	if initialStakeCents <= 0 {
		return nil, ErrInvalidStake
	}
	if !ValidObjective(objectiveMultiplier) {
		return nil, ErrInvalidObjective
	}
	return &Sequence{
		InitialStakeCents:   initialStakeCents,
		ObjectiveMultiplier: objectiveMultiplier,
		CommittedStakeCents: initialStakeCents,
		State:               SequenceInProgress,
		StartedAt:           now,
	}, nil
}

// ObjectiveTargetCents é o payout alvo: stake inicial x multiplicador.
func ObjectiveTargetCents(seq *Sequence) int64 {
	return seq.InitialStakeCents * int64(seq.ObjectiveMultiplier)
}

// CurrentGainCents é o valor corrente da montante: o payout do último palier
// ganho, ou o stake inicial quando nenhum palier foi ganho ainda.
func CurrentGainCents(seq *Sequence) int64 {
	for i := len(seq.Stages) - 1; i >= 0; i-- {
		st := &seq.Stages[i]
		if st.Status == StageWon && st.PayoutCents != nil {
			return *st.PayoutCents
		}
	}
	return seq.InitialStakeCents
}

// CurrentProgressPct é a progressão corrente derivada de CurrentGainCents.
func CurrentProgressPct(seq *Sequence) float64 {
	gain := CurrentGainCents(seq)
	if gain == seq.InitialStakeCents {
		return 0
	}
	return ProgressPct(seq.InitialStakeCents, gain)
}

// settle aplica a transição terminal: estado, ganho final, stake liberado,
// duração, e o comando de ledger correspondente. O valor do ganho de um stop
// manual pode ser menor que o stake inicial; o montante do ledger fica
// negativo nesse caso e é registrado assim mesmo.
func settle(seq *Sequence, state SequenceState, finalGainCents int64, closedManually bool, now time.Time) *Settlement {
	seq.State = state
	seq.ClosedManually = closedManually
	seq.FinalGainCents = &finalGainCents
	seq.CommittedStakeCents = 0
	seq.EndedAt = &now
	days := int(now.Sub(seq.StartedAt).Hours() / 24)
	seq.DurationDays = &days

	var cmd LedgerCommand
	if state == SequenceLost {
		cmd = LedgerCommand{
			Op:          OpSequenceLoss,
			AmountCents: -seq.InitialStakeCents,
			Description: fmt.Sprintf("sequence_loss:montante#%d", seq.DisplayNumber),
		}
	} else {
		cmd = LedgerCommand{
			Op:          OpSequenceGain,
			AmountCents: finalGainCents - seq.InitialStakeCents,
			Description: fmt.Sprintf("sequence_gain:montante#%d", seq.DisplayNumber),
		}
	}

	return &Settlement{
		State:          state,
		FinalGainCents: finalGainCents,
		ClosedManually: closedManually,
		Ledger:         cmd,
	}
}

// Stop encerra manualmente uma montante em curso. Resolve sempre para WON com
// o ganho corrente como ganho final, mesmo abaixo do objetivo.
func Stop(seq *Sequence, now time.Time) (*Settlement, error) {
	if seq.State != SequenceInProgress {
		return nil, ErrSequenceSettled
	}
	return settle(seq, SequenceWon, CurrentGainCents(seq), true, now), nil
}

// Renumber recalcula os números de exibição 1..N por ordem de criação.
// Recomputação completa, não deslocamento incremental: duas deleções
// concorrentes não podem deixar buracos ou duplicatas.
func Renumber(seqs []Sequence) {
	sort.SliceStable(seqs, func(i, j int) bool {
		if seqs[i].StartedAt.Equal(seqs[j].StartedAt) {
			return seqs[i].ID < seqs[j].ID
		}
		return seqs[i].StartedAt.Before(seqs[j].StartedAt)
	})
	for i := range seqs {
		seqs[i].DisplayNumber = i + 1
	}
}
