package http

import (
	"github.com/radieske/montante-tracker/internal/montante/domain"
	"github.com/radieske/montante-tracker/internal/montante/dto"
)

func legResponse(l domain.Leg) dto.LegResponse {
	return dto.LegResponse{
		LegID:       l.ID,
		Sport:       l.Sport,
		Competition: l.Competition,
		Prediction:  l.Prediction,
		Odds:        l.Odds,
		ScheduledAt: l.ScheduledAt,
		Status:      string(l.Status),
	}
}

func stageResponse(st *domain.Stage) dto.StageResponse {
	out := dto.StageResponse{
		StageID:               st.ID,
		SequenceID:            st.SequenceID,
		Number:                st.Number,
		StakeCents:            st.StakeCents,
		BetType:               string(st.BetType),
		CombinedOdds:          st.CombinedOdds,
		Status:                string(st.Status),
		PayoutCents:           st.PayoutCents,
		CumulativeProgressPct: st.CumulativeProgressPct,
	}
	for _, l := range st.Legs {
		out.Legs = append(out.Legs, legResponse(l))
	}
	return out
}

func sequenceResponse(seq *domain.Sequence, withStages bool) dto.SequenceResponse {
	out := dto.SequenceResponse{
		SequenceID:          seq.ID,
		DisplayNumber:       seq.DisplayNumber,
		InitialStakeCents:   seq.InitialStakeCents,
		ObjectiveMultiplier: seq.ObjectiveMultiplier,
		ObjectiveCents:      domain.ObjectiveTargetCents(seq),
		CommittedStakeCents: seq.CommittedStakeCents,
		State:               string(seq.State),
		ClosedManually:      seq.ClosedManually,
		CurrentGainCents:    domain.CurrentGainCents(seq),
		ProgressPct:         domain.CurrentProgressPct(seq),
		FinalGainCents:      seq.FinalGainCents,
		StartedAt:           seq.StartedAt,
		EndedAt:             seq.EndedAt,
		DurationDays:        seq.DurationDays,
	}
	if withStages {
		for i := range seq.Stages {
			out.Stages = append(out.Stages, stageResponse(&seq.Stages[i]))
		}
	}
	return out
}

func historyResponse(lines []domain.HistoryLine) dto.HistoryResponse {
	out := dto.HistoryResponse{Lines: make([]dto.HistoryLineResponse, 0, len(lines))}
	for _, l := range lines {
		entry := dto.LedgerEntryResponse{
			EntryID:            l.Entry.ID,
			OperationType:      string(l.Entry.OperationType),
			AmountCents:        l.Entry.AmountCents,
			BalanceBeforeCents: l.Entry.BalanceBeforeCents,
			BalanceAfterCents:  l.Entry.BalanceAfterCents,
			Description:        l.Entry.Description,
			CreatedAt:          l.Entry.CreatedAt,
		}
		if l.Entry.SequenceID != nil {
			entry.SequenceID = *l.Entry.SequenceID
		}
		out.Lines = append(out.Lines, dto.HistoryLineResponse{
			Entry:                entry,
			DepositTotalCents:    l.DepositTotalCents,
			WithdrawalTotalCents: l.WithdrawalTotalCents,
			GainTotalCents:       l.GainTotalCents,
			LossTotalCents:       l.LossTotalCents,
		})
	}
	return out
}
