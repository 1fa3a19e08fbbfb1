package dto

import "time"

type CreateSequenceRequest struct {
	InitialStakeCents   int64 `json:"initial_stake_cents"`
	ObjectiveMultiplier int   `json:"objective_multiplier"` // 2 | 3 | 5 | 10
}

type LegPayload struct {
	Sport       string     `json:"sport"`
	Competition string     `json:"competition,omitempty"`
	Prediction  string     `json:"prediction"`
	Odds        float64    `json:"odds"` // [1.01, 100]
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	Status      string     `json:"status,omitempty"` // backfill por seleção
}

type CreateStageRequest struct {
	BetType string       `json:"bet_type"` // SIMPLE | COMBINED
	Legs    []LegPayload `json:"legs"`
	Status  string       `json:"status,omitempty"` // backfill do palier inteiro
}

type ResolveStageRequest struct {
	Status      string   `json:"status,omitempty"`       // resolução direta
	LegOutcomes []string `json:"leg_outcomes,omitempty"` // por seleção; PENDING mantém
}

type DepositRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Description string `json:"description,omitempty"`
}

type WithdrawRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Description string `json:"description,omitempty"`
}
