package domain

import "testing"

func TestPayoutCents(t *testing.T) {
	cases := []struct {
		name  string
		stake int64
		odds  float64
		want  int64
	}{
		{"even odds", 1000, 2.0, 2000},
		{"fractional odds", 1000, 1.5, 1500},
		{"chained third stage", 2100, 1.45, 3045},
		{"rounds to nearest cent", 333, 1.5, 500}, // 499.5 -> 500
		{"odds of one", 2000, 1.0, 2000},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := PayoutCents(c.stake, c.odds); got != c.want {
				t.Fatalf("PayoutCents(%d, %v) got=%d want=%d", c.stake, c.odds, got, c.want)
			}
		})
	}
}

func TestProgressPct(t *testing.T) {
	cases := []struct {
		name    string
		initial int64
		current int64
		want    float64
	}{
		{"fifty percent up", 1000, 1500, 50},
		{"tripled", 1000, 3000, 200},
		{"no movement", 1000, 1000, 0},
		{"below initial", 1000, 500, -50},
		{"zero current is zero pct, not an error", 1000, 0, 0},
		{"zero initial is zero pct, not an error", 0, 1500, 0},
		{"negative initial guarded", -10, 1500, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ProgressPct(c.initial, c.current); got != c.want {
				t.Fatalf("ProgressPct(%d, %d) got=%v want=%v", c.initial, c.current, got, c.want)
			}
		})
	}
}
