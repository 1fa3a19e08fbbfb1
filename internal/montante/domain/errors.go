package domain

import "errors"

// Erros sentinela do engine. A camada HTTP mapeia cada um para um status 4xx;
// nenhuma operação rejeitada deixa estado parcial.
var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientFunds = errors.New("insufficient available bankroll")

	ErrInvalidStake      = errors.New("initial stake must be positive")
	ErrInvalidObjective  = errors.New("objective multiplier not in allowed set")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInvalidOdds       = errors.New("leg odds must be greater than 1.00")
	ErrInvalidStatus     = errors.New("unknown status")
	ErrLegCount          = errors.New("simple bet takes exactly one leg, combined exactly two")
	ErrLegOutcomeCount   = errors.New("leg outcomes must match the stage legs")
	ErrSequenceSettled   = errors.New("sequence already settled")
	ErrPendingStage      = errors.New("sequence already has a pending stage")
	ErrPriorStageOpen    = errors.New("previous stage is not resolved")
	ErrStageSettled      = errors.New("stage already resolved")
	ErrNotLastStage      = errors.New("only the last stage can be deleted")
	ErrLedgerSign        = errors.New("ledger amount sign does not match operation type")
	ErrSequenceReference = errors.New("sequence-driven ledger entries require a sequence reference")
)
