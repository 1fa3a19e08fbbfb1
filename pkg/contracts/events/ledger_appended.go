package events

type LedgerAppended struct {
	EntryID            string `json:"entry_id"`
	OperationType      string `json:"operation_type"` // DEPOSIT | WITHDRAWAL | SEQUENCE_GAIN | SEQUENCE_LOSS
	AmountCents        int64  `json:"amount_cents"`   // sempre com sinal; o tipo é apenas descritivo
	BalanceBeforeCents int64  `json:"balance_before_cents"`
	BalanceAfterCents  int64  `json:"balance_after_cents"`
	AvailableCents     int64  `json:"available_cents"` // disponível após reconciliação
	Description        string `json:"description"`
	SequenceID         string `json:"sequence_id,omitempty"` // preenchido em SEQUENCE_GAIN/SEQUENCE_LOSS
	TsUnixMs           int64  `json:"ts_unix_ms"`
}
