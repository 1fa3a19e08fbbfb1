package domain

import "time"

// lastStage devolve o último palier da montante ou nil.
func lastStage(seq *Sequence) *Stage {
	if len(seq.Stages) == 0 {
		return nil
	}
	return &seq.Stages[len(seq.Stages)-1]
}

// NextStakeCents calcula o stake do próximo palier: o payout do último palier
// resolvido (ganho ou anulado), ou o stake inicial quando ainda não há palier.
// Um palier só pode existir se o anterior estiver resolvido.
func NextStakeCents(seq *Sequence) (int64, error) {
	last := lastStage(seq)
	if last == nil {
		return seq.InitialStakeCents, nil
	}
	switch last.Status {
	case StageWon, StageVoid:
		return *last.PayoutCents, nil
	case StagePending:
		return 0, ErrPendingStage
	default:
		// LOST: a montante já seria terminal, nunca deveria chegar aqui
		return 0, ErrSequenceSettled
	}
}

// NewStage cria um palier PENDING encadeado na montante. Valida o estado da
// montante, o número de seleções por tipo de aposta e as odds.
// O palier criado ainda não está anexado a seq.Stages; quem persiste decide.
func NewStage(seq *Sequence, betType BetType, legs []Leg, now time.Time) (*Stage, error) {
	if seq.State != SequenceInProgress {
		return nil, ErrSequenceSettled
	}
	switch betType {
	case BetSimple:
		if len(legs) != 1 {
			return nil, ErrLegCount
		}
	case BetCombined:
		if len(legs) != CombinedLegCount {
			return nil, ErrLegCount
		}
	default:
		return nil, ErrInvalidStatus
	}
	for i := range legs {
		if legs[i].Odds <= 1.0 {
			return nil, ErrInvalidOdds
		}
		if !legs[i].Status.Valid() {
			return nil, ErrInvalidStatus
		}
		legs[i].Position = i + 1
	}

	stake, err := NextStakeCents(seq)
	if err != nil {
		return nil, err
	}

	// Odd exibida na criação: produto de todas as seleções. Na resolução ela
	// é substituída pela odd efetiva (seleções VOID excluídas).
	odds := 1.0
	for _, l := range legs {
		odds *= l.Odds
	}

	return &Stage{
		SequenceID:   seq.ID,
		Number:       len(seq.Stages) + 1,
		StakeCents:   stake,
		BetType:      betType,
		CombinedOdds: odds,
		Status:       StagePending,
		Legs:         legs,
		CreatedAt:    now,
	}, nil
}

// ApplyLegOutcomes grava desfechos nas seleções de um palier ainda aberto.
// PENDING em uma posição mantém o desfecho atual da seleção (decisões
// parciais anteriores não são descartadas).
func ApplyLegOutcomes(st *Stage, outcomes []StageStatus) error {
	if st.Status.Decided() {
		return ErrStageSettled
	}
	if len(outcomes) != len(st.Legs) {
		return ErrLegOutcomeCount
	}
	for i, o := range outcomes {
		if !o.Valid() {
			return ErrInvalidStatus
		}
		if o == StagePending {
			continue
		}
		st.Legs[i].Status = o
	}
	return nil
}

// ApplyDirectStatus grava o mesmo desfecho em todas as seleções do palier
// (resolução administrativa, sem detalhe por seleção).
func ApplyDirectStatus(st *Stage, status StageStatus) error {
	if st.Status.Decided() {
		return ErrStageSettled
	}
	if !status.Valid() || status == StagePending {
		return ErrInvalidStatus
	}
	for i := range st.Legs {
		st.Legs[i].Status = status
	}
	return nil
}

// ResolveStage roda o resolvedor sobre as seleções do palier e aplica o
// resultado: payout, progressão acumulada e, se o desfecho encerra a
// montante, a transição terminal com o respectivo comando de ledger.
// Devolve nil quando a montante continua IN_PROGRESS (palier ainda PENDING,
// anulado, ou ganho abaixo do objetivo).
func ResolveStage(seq *Sequence, st *Stage, now time.Time) (*Settlement, error) {
	if seq.State != SequenceInProgress {
		return nil, ErrSequenceSettled
	}
	if st.Status.Decided() {
		return nil, ErrStageSettled
	}

	res := ResolveLegs(st.Legs)
	if res.Status == StagePending {
		// decisões parciais já estão gravadas nas seleções; nada mais muda
		return nil, nil
	}

	st.Status = res.Status
	st.ResolvedAt = &now

	switch res.Status {
	case StageWon:
		st.CombinedOdds = res.EffectiveOdds
		payout := PayoutCents(st.StakeCents, res.EffectiveOdds)
		st.PayoutCents = &payout
		pct := ProgressPct(seq.InitialStakeCents, payout)
		st.CumulativeProgressPct = &pct
		if payout >= ObjectiveTargetCents(seq) {
			return settle(seq, SequenceWon, payout, false, now), nil
		}
		return nil, nil

	case StageLost:
		zero := int64(0)
		st.PayoutCents = &zero
		pct := ProgressPct(seq.InitialStakeCents, 0)
		st.CumulativeProgressPct = &pct
		return settle(seq, SequenceLost, 0, false, now), nil

	default: // VOID: stake devolvido, a montante não avança nem recua
		st.CombinedOdds = res.EffectiveOdds
		refund := st.StakeCents
		st.PayoutCents = &refund
		pct := carriedProgressPct(seq, st)
		st.CumulativeProgressPct = &pct
		return nil, nil
	}
}

// carriedProgressPct devolve a progressão do último palier ganho anterior ao
// palier dado, ou 0 quando não há nenhum.
func carriedProgressPct(seq *Sequence, st *Stage) float64 {
	for i := len(seq.Stages) - 1; i >= 0; i-- {
		prev := &seq.Stages[i]
		if prev.ID == st.ID || prev.Number >= st.Number {
			continue
		}
		if prev.Status == StageWon && prev.CumulativeProgressPct != nil {
			return *prev.CumulativeProgressPct
		}
	}
	return 0
}

// RemoveLastStage valida e remove o último palier de uma montante em curso.
// O ganho corrente da montante volta a derivar do novo último palier ganho
// (ou do stake inicial, se nenhum restar).
func RemoveLastStage(seq *Sequence, stageID string) (*Stage, error) {
	if seq.State != SequenceInProgress {
		return nil, ErrSequenceSettled
	}
	last := lastStage(seq)
	if last == nil {
		return nil, ErrNotFound
	}
	if last.ID != stageID {
		return nil, ErrNotLastStage
	}
	removed := *last
	seq.Stages = seq.Stages[:len(seq.Stages)-1]
	return &removed, nil
}
