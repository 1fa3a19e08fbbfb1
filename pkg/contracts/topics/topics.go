package topics

const (
	// Bankroll
	LedgerAppended = "ledger_appended"

	// Montantes
	SequenceSettled = "sequence_settled"

	// DLQs
	LedgerAppendedDLQ = "ledger_appended_dlq"
)
