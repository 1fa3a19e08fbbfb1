package domain

import "time"

// Estado de uma montante. O estado terminal é definitivo: nenhuma transição
// sai de WON ou LOST.
type SequenceState string

const (
	SequenceInProgress SequenceState = "IN_PROGRESS"
	SequenceWon        SequenceState = "WON"
	SequenceLost       SequenceState = "LOST"
)

// legacySequenceStopped é o estado "ARRETEE" gravado por versões antigas.
// É lido como WON com encerramento manual; nunca é gravado de volta.
const legacySequenceStopped = "STOPPED"

// NormalizeSequenceState converte um estado persistido (incluindo o alias
// legado STOPPED) para o estado canônico e a flag de encerramento manual.
func NormalizeSequenceState(raw string, closedManually bool) (SequenceState, bool) {
	if raw == legacySequenceStopped {
		return SequenceWon, true
	}
	return SequenceState(raw), closedManually
}

// Status de um palier e de cada seleção (leg) dentro dele.
type StageStatus string

const (
	StagePending StageStatus = "PENDING"
	StageWon     StageStatus = "WON"
	StageLost    StageStatus = "LOST"
	StageVoid    StageStatus = "VOID"
)

// Decided informa se o status representa um desfecho (qualquer coisa que não
// seja PENDING).
func (s StageStatus) Decided() bool { return s != StagePending }

// Valid informa se o status é um dos quatro valores conhecidos.
func (s StageStatus) Valid() bool {
	switch s {
	case StagePending, StageWon, StageLost, StageVoid:
		return true
	}
	return false
}

type BetType string

const (
	BetSimple   BetType = "SIMPLE"
	BetCombined BetType = "COMBINED"
)

// CombinedLegCount é fixo: uma combinada tem exatamente duas seleções.
const CombinedLegCount = 2

// ObjectiveMultipliers é o conjunto fechado de objetivos aceitos (x2, x3, x5, x10).
var ObjectiveMultipliers = []int{2, 3, 5, 10}

// ValidObjective verifica se o multiplicador pertence ao conjunto aceito.
func ValidObjective(m int) bool {
	for _, v := range ObjectiveMultipliers {
		if v == m {
			return true
		}
	}
	return false
}

// Tipo de movimento do ledger de bankroll. O valor é sempre assinado no
// campo amount; o tipo é apenas descritivo.
type OperationType string

const (
	OpDeposit      OperationType = "DEPOSIT"
	OpWithdrawal   OperationType = "WITHDRAWAL"
	OpSequenceGain OperationType = "SEQUENCE_GAIN"
	OpSequenceLoss OperationType = "SEQUENCE_LOSS"
)

// Categoria de filtro do histórico de bankroll.
type Category string

const (
	CategoryAll       Category = "all"
	CategoryMovements Category = "movements" // depósitos e retiradas
	CategorySequences Category = "sequences" // ganhos e perdas de montantes
)

// Category devolve a categoria de histórico à qual o tipo de operação pertence.
func (o OperationType) Category() Category {
	switch o {
	case OpDeposit, OpWithdrawal:
		return CategoryMovements
	default:
		return CategorySequences
	}
}

// Leg é uma seleção dentro de um palier. Os rótulos são texto livre validado
// na borda HTTP; aqui só a odd e o status carregam invariantes.
type Leg struct {
	ID          string
	Position    int
	Sport       string
	Competition string
	Prediction  string
	Odds        float64
	ScheduledAt *time.Time
	Status      StageStatus
}

// Stage é um palier: uma aposta de uma montante cujo stake é o payout do
// palier ganho anterior.
type Stage struct {
	ID         string
	SequenceID string
	Number     int // 1-based, contíguo dentro da montante
	StakeCents int64
	BetType    BetType
	// CombinedOdds é a odd usada no cálculo do payout: a odd única em SIMPLE,
	// o produto das seleções ganhas em COMBINED (regra de resolução).
	CombinedOdds          float64
	Status                StageStatus
	PayoutCents           *int64
	CumulativeProgressPct *float64 // progresso da montante no momento da resolução
	Legs                  []Leg
	CreatedAt             time.Time
	ResolvedAt            *time.Time
}

// Sequence é uma montante: uma progressão de paliers de um stake inicial até
// um objetivo multiplicador.
type Sequence struct {
	ID                  string
	DisplayNumber       int // contíguo 1..N por ordem de criação, renumerado em deleções
	InitialStakeCents   int64
	ObjectiveMultiplier int
	CommittedStakeCents int64 // = InitialStakeCents enquanto IN_PROGRESS, 0 quando terminal
	State               SequenceState
	ClosedManually      bool
	FinalGainCents      *int64
	StartedAt           time.Time
	EndedAt             *time.Time
	DurationDays        *int
	Stages              []Stage
}

// LedgerEntry é um movimento imutável de capital. Nunca é alterado ou
// removido depois de criado.
type LedgerEntry struct {
	ID                 string
	OperationType      OperationType
	AmountCents        int64 // assinado: crédito > 0, débito < 0
	BalanceBeforeCents int64
	BalanceAfterCents  int64
	Description        string
	SequenceID         *string
	CreatedAt          time.Time
}

// Settings é o singleton de bankroll. AvailableCents é sempre recalculado
// pela reconciliação, nunca ajustado incrementalmente.
type Settings struct {
	InitialCents   int64
	CurrentCents   int64
	AvailableCents int64
	UpdatedAt      time.Time
}
