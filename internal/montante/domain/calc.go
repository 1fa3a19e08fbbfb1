package domain

import "math"

// PayoutCents calcula o retorno de um stake (em cents) multiplicado pela odd,
// arredondado ao cent mais próximo.
func PayoutCents(stakeCents int64, odds float64) int64 {
	return int64(math.Round(float64(stakeCents) * odds))
}

// ProgressPct calcula a progressão percentual de um valor corrente em relação
// ao stake inicial: ((corrente - inicial) / inicial) * 100.
// Por convenção devolve 0 quando ainda não há valor corrente ou quando o stake
// inicial é zero: "sem ganho ainda" é 0%, não um erro.
func ProgressPct(initialCents, currentCents int64) float64 {
	if initialCents <= 0 || currentCents == 0 {
		return 0
	}
	return (float64(currentCents-initialCents) / float64(initialCents)) * 100
}
