package domain

import (
	"errors"
	"testing"
	"time"
)

func TestAppendEntry_SignConvention(t *testing.T) {
	seqID := "seq-1"
	cases := []struct {
		name    string
		op      OperationType
		amount  int64
		seqRef  *string
		wantErr error
	}{
		{"deposit positive", OpDeposit, 500, nil, nil},
		{"deposit zero rejected", OpDeposit, 0, nil, ErrLedgerSign},
		{"deposit negative rejected", OpDeposit, -500, nil, ErrLedgerSign},
		{"withdrawal negative", OpWithdrawal, -200, nil, nil},
		{"withdrawal positive rejected", OpWithdrawal, 200, nil, ErrLedgerSign},
		{"loss negative", OpSequenceLoss, -1000, &seqID, nil},
		{"loss positive rejected", OpSequenceLoss, 1000, &seqID, ErrLedgerSign},
		{"gain positive", OpSequenceGain, 2045, &seqID, nil},
		{"gain negative is a valid manual-stop outcome", OpSequenceGain, -300, &seqID, nil},
		{"sequence op without reference rejected", OpSequenceGain, 100, nil, ErrSequenceReference},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			settings := &Settings{CurrentCents: 10000}
			entry, err := AppendEntry(settings, c.op, c.amount, "test", c.seqRef, t0)
			if c.wantErr != nil {
				if !errors.Is(err, c.wantErr) {
					t.Fatalf("got err=%v want=%v", err, c.wantErr)
				}
				if settings.CurrentCents != 10000 {
					t.Fatalf("rejected entry must not move the balance")
				}
				return
			}
			if err != nil {
				t.Fatalf("AppendEntry: %v", err)
			}
			if entry.BalanceBeforeCents != 10000 || entry.BalanceAfterCents != 10000+c.amount {
				t.Fatalf("balances got=%d/%d want=10000/%d",
					entry.BalanceBeforeCents, entry.BalanceAfterCents, 10000+c.amount)
			}
			if settings.CurrentCents != 10000+c.amount {
				t.Fatalf("settings balance got=%d want=%d", settings.CurrentCents, 10000+c.amount)
			}
		})
	}
}

func TestAppendEntry_FirstDepositDefinesBaseline(t *testing.T) {
	settings := &Settings{}
	entry, err := AppendEntry(settings, OpDeposit, 50000, "first deposit", nil, t0)
	if err != nil {
		t.Fatalf("AppendEntry: %v", err)
	}
	if settings.InitialCents != 50000 || settings.CurrentCents != 50000 {
		t.Fatalf("first deposit must define the baseline, got initial=%d current=%d",
			settings.InitialCents, settings.CurrentCents)
	}
	if entry.BalanceAfterCents != 50000 {
		t.Fatalf("balance after got=%d", entry.BalanceAfterCents)
	}

	// segundo depósito não mexe no baseline
	if _, err := AppendEntry(settings, OpDeposit, 10000, "second", nil, t0); err != nil {
		t.Fatalf("AppendEntry: %v", err)
	}
	if settings.InitialCents != 50000 {
		t.Fatalf("baseline must be set once, got=%d", settings.InitialCents)
	}
}

func TestBankrollConservation(t *testing.T) {
	// currentBankroll após N movimentos = baseline + soma dos montantes assinados
	settings := &Settings{}
	seqID := "seq-1"
	moves := []struct {
		op     OperationType
		amount int64
		ref    *string
	}{
		{OpDeposit, 50000, nil},
		{OpSequenceGain, 2045, &seqID},
		{OpWithdrawal, -10000, nil},
		{OpSequenceLoss, -1000, &seqID},
		{OpDeposit, 500, nil},
		{OpSequenceGain, -300, &seqID},
	}
	var sum int64
	for _, m := range moves {
		if _, err := AppendEntry(settings, m.op, m.amount, "", m.ref, t0); err != nil {
			t.Fatalf("AppendEntry(%s, %d): %v", m.op, m.amount, err)
		}
		sum += m.amount
	}
	if settings.CurrentCents != sum {
		t.Fatalf("conservation broken: current=%d sum=%d", settings.CurrentCents, sum)
	}
}

func TestFilterEntries(t *testing.T) {
	seqID := "seq-1"
	entries := []LedgerEntry{
		{OperationType: OpDeposit, AmountCents: 100, CreatedAt: t0},
		{OperationType: OpSequenceGain, AmountCents: 50, SequenceID: &seqID, CreatedAt: t0.Add(time.Hour)},
		{OperationType: OpWithdrawal, AmountCents: -30, CreatedAt: t0.Add(2 * time.Hour)},
		{OperationType: OpSequenceLoss, AmountCents: -20, SequenceID: &seqID, CreatedAt: t0.Add(3 * time.Hour)},
	}

	if got := FilterEntries(entries, nil, nil, CategoryAll); len(got) != 4 {
		t.Fatalf("all: got %d entries", len(got))
	}
	if got := FilterEntries(entries, nil, nil, CategoryMovements); len(got) != 2 {
		t.Fatalf("movements: got %d entries", len(got))
	}
	if got := FilterEntries(entries, nil, nil, CategorySequences); len(got) != 2 {
		t.Fatalf("sequences: got %d entries", len(got))
	}

	from := t0.Add(30 * time.Minute)
	to := t0.Add(150 * time.Minute)
	got := FilterEntries(entries, &from, &to, CategoryAll)
	if len(got) != 2 || got[0].OperationType != OpSequenceGain || got[1].OperationType != OpWithdrawal {
		t.Fatalf("window filter got %d entries", len(got))
	}
}

func TestWithRunningTotals(t *testing.T) {
	seqID := "seq-1"
	entries := []LedgerEntry{
		{OperationType: OpDeposit, AmountCents: 100, CreatedAt: t0},
		{OperationType: OpDeposit, AmountCents: 200, CreatedAt: t0.Add(time.Hour)},
		{OperationType: OpSequenceGain, AmountCents: 50, SequenceID: &seqID, CreatedAt: t0.Add(2 * time.Hour)},
		{OperationType: OpWithdrawal, AmountCents: -30, CreatedAt: t0.Add(3 * time.Hour)},
	}
	lines := WithRunningTotals(entries)
	if len(lines) != 4 {
		t.Fatalf("got %d lines", len(lines))
	}
	last := lines[3]
	if last.DepositTotalCents != 300 || last.GainTotalCents != 50 || last.WithdrawalTotalCents != -30 {
		t.Fatalf("running totals got dep=%d gain=%d wd=%d",
			last.DepositTotalCents, last.GainTotalCents, last.WithdrawalTotalCents)
	}
	if lines[1].DepositTotalCents != 300 || lines[0].DepositTotalCents != 100 {
		t.Fatalf("totals must accumulate per line")
	}
}
