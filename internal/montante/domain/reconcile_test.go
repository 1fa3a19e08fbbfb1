package domain

import "testing"

func TestReconcile(t *testing.T) {
	settings := &Settings{CurrentCents: 50000}
	seqs := []Sequence{
		{State: SequenceInProgress, CommittedStakeCents: 1000},
		{State: SequenceInProgress, CommittedStakeCents: 2500},
		{State: SequenceWon, CommittedStakeCents: 0},
		{State: SequenceLost, CommittedStakeCents: 0},
	}
	Reconcile(settings, seqs, t0)
	if settings.AvailableCents != 46500 {
		t.Fatalf("available got=%d want=46500", settings.AvailableCents)
	}

	// idempotente: rodar de novo não muda nada
	Reconcile(settings, seqs, t0)
	if settings.AvailableCents != 46500 {
		t.Fatalf("reconcile must be idempotent, got=%d", settings.AvailableCents)
	}

	// liberar um stake e reconciliar recalcula por inteiro
	seqs[0].State = SequenceLost
	seqs[0].CommittedStakeCents = 0
	Reconcile(settings, seqs, t0)
	if settings.AvailableCents != 47500 {
		t.Fatalf("available after release got=%d want=47500", settings.AvailableCents)
	}
}

func TestCommittedCents_OnlyInProgress(t *testing.T) {
	seqs := []Sequence{
		{State: SequenceInProgress, CommittedStakeCents: 700},
		{State: SequenceWon, CommittedStakeCents: 700}, // dado inconsistente: terminal não conta
	}
	if got := CommittedCents(seqs); got != 700 {
		t.Fatalf("committed got=%d want=700", got)
	}
}
