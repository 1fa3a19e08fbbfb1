package repo

import (
	"time"

	"github.com/radieske/montante-tracker/internal/montante/domain"
)

// LegInput é uma seleção recebida na criação de um palier. Status vazio
// significa PENDING; um status decidido é o caso de backfill administrativo.
type LegInput struct {
	Sport       string
	Competition string
	Prediction  string
	Odds        float64
	ScheduledAt *time.Time
	Status      domain.StageStatus
}

// CreateStageInput descreve um palier a criar. Se Status vier decidido (ou
// todas as seleções vierem decididas), a resolução roda na mesma transação.
type CreateStageInput struct {
	BetType domain.BetType
	Legs    []LegInput
	Status  domain.StageStatus // opcional: backfill direto do palier inteiro
}

// ResolveStageInput aplica desfechos a um palier aberto: ou um status direto
// para o palier inteiro, ou um desfecho por seleção (PENDING mantém o atual).
type ResolveStageInput struct {
	Status      domain.StageStatus
	LegOutcomes []domain.StageStatus
}

// OperationResult agrega tudo que uma operação mutante produziu: o estado
// novo das entidades tocadas e, quando houver, a entrada de ledger e a
// transição terminal que alimentam os eventos publicados após o commit.
type OperationResult struct {
	Sequence *domain.Sequence
	Stage    *domain.Stage
	Settings domain.Settings
	Entry    *domain.LedgerEntry
	Settled  *domain.Settlement
}
