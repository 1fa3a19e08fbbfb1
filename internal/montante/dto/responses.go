package dto

import "time"

type LegResponse struct {
	LegID       string     `json:"legId"`
	Sport       string     `json:"sport"`
	Competition string     `json:"competition,omitempty"`
	Prediction  string     `json:"prediction"`
	Odds        float64    `json:"odds"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	Status      string     `json:"status"`
}

type StageResponse struct {
	StageID               string        `json:"stageId"`
	SequenceID            string        `json:"sequenceId"`
	Number                int           `json:"number"`
	StakeCents            int64         `json:"stake_cents"`
	BetType               string        `json:"bet_type"`
	CombinedOdds          float64       `json:"combined_odds"`
	Status                string        `json:"status"`
	PayoutCents           *int64        `json:"payout_cents,omitempty"`
	CumulativeProgressPct *float64      `json:"cumulative_progress_pct,omitempty"`
	Legs                  []LegResponse `json:"legs,omitempty"`
}

type SequenceResponse struct {
	SequenceID          string          `json:"sequenceId"`
	DisplayNumber       int             `json:"display_number"`
	InitialStakeCents   int64           `json:"initial_stake_cents"`
	ObjectiveMultiplier int             `json:"objective_multiplier"`
	ObjectiveCents      int64           `json:"objective_cents"`
	CommittedStakeCents int64           `json:"committed_stake_cents"`
	State               string          `json:"state"`
	ClosedManually      bool            `json:"closed_manually"`
	CurrentGainCents    int64           `json:"current_gain_cents"`
	ProgressPct         float64         `json:"progress_pct"`
	FinalGainCents      *int64          `json:"final_gain_cents,omitempty"`
	StartedAt           time.Time       `json:"started_at"`
	EndedAt             *time.Time      `json:"ended_at,omitempty"`
	DurationDays        *int            `json:"duration_days,omitempty"`
	Stages              []StageResponse `json:"stages,omitempty"`
}

type BankrollResponse struct {
	InitialCents   int64 `json:"initial_cents"`
	CurrentCents   int64 `json:"current_cents"`
	AvailableCents int64 `json:"available_cents"`
	CommittedCents int64 `json:"committed_cents"`
}

type LedgerEntryResponse struct {
	EntryID            string    `json:"entryId"`
	OperationType      string    `json:"operation_type"`
	AmountCents        int64     `json:"amount_cents"`
	BalanceBeforeCents int64     `json:"balance_before_cents"`
	BalanceAfterCents  int64     `json:"balance_after_cents"`
	Description        string    `json:"description,omitempty"`
	SequenceID         string    `json:"sequenceId,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

type HistoryLineResponse struct {
	Entry LedgerEntryResponse `json:"entry"`

	DepositTotalCents    int64 `json:"deposit_total_cents"`
	WithdrawalTotalCents int64 `json:"withdrawal_total_cents"`
	GainTotalCents       int64 `json:"gain_total_cents"`
	LossTotalCents       int64 `json:"loss_total_cents"`
}

type HistoryResponse struct {
	Lines []HistoryLineResponse `json:"lines"`
}
