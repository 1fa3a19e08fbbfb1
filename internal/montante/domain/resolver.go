package domain

// Resolution é o desfecho agregado de um palier a partir dos desfechos das
// suas seleções.
type Resolution struct {
	Status StageStatus
	// EffectiveOdds é a odd usada no payout: produto das seleções ganhas
	// (seleções VOID são excluídas do produto, não zeradas), 1 quando todas
	// VOID (reembolso integral), 0 quando perdido.
	EffectiveOdds float64
}

// ResolveLegs deriva o desfecho de um palier a partir das suas seleções, na
// ordem de precedência:
//  1. qualquer seleção LOST  -> palier LOST (payout forçado a 0)
//  2. qualquer seleção PENDING -> palier PENDING (decisões parciais são
//     mantidas, não descartadas)
//  3. todas VOID -> palier VOID, odd efetiva 1 (stake devolvido)
//  4. restante (WON ou VOID, ao menos uma WON) -> palier WON, odd efetiva =
//     produto das odds das seleções WON
//
// Seleções anuladas são reembolsadas pelas casas, não perdidas: excluir a odd
// delas do produto mantendo o palier vivo reproduz o ajuste real de uma
// combinada.
func ResolveLegs(legs []Leg) Resolution {
	anyPending := false
	anyWon := false
	won := 1.0

	for _, l := range legs {
		switch l.Status {
		case StageLost:
			return Resolution{Status: StageLost, EffectiveOdds: 0}
		case StagePending:
			anyPending = true
		case StageWon:
			anyWon = true
			won *= l.Odds
		}
	}

	if anyPending {
		return Resolution{Status: StagePending}
	}
	if !anyWon {
		return Resolution{Status: StageVoid, EffectiveOdds: 1}
	}
	return Resolution{Status: StageWon, EffectiveOdds: won}
}
