package domain

import "time"

// CommittedCents soma o capital comprometido por todas as montantes ainda em
// curso.
func CommittedCents(seqs []Sequence) int64 {
	var total int64
	for i := range seqs {
		if seqs[i].State == SequenceInProgress {
			total += seqs[i].CommittedStakeCents
		}
	}
	return total
}

// Reconcile recalcula o bankroll disponível: saldo corrente menos o total
// comprometido pelas montantes em curso. Roda após toda mutação que possa
// alterar qualquer um dos dois lados. Recomputação completa de propósito:
// imune a caminhos de atualização esquecidos, ao custo de uma soma barata.
func Reconcile(settings *Settings, seqs []Sequence, now time.Time) {
	settings.AvailableCents = settings.CurrentCents - CommittedCents(seqs)
	settings.UpdatedAt = now
}
