package events

type SequenceSettled struct {
	SequenceID     string `json:"sequence_id"`
	DisplayNumber  int    `json:"display_number"`
	State          string `json:"state"` // WON | LOST
	FinalGainCents int64  `json:"final_gain_cents"`
	ClosedManually bool   `json:"closed_manually"`
	DurationDays   int    `json:"duration_days"`
	TsUnixMs       int64  `json:"ts_unix_ms"`
}
