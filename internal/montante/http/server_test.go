package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/montante-tracker/internal/montante/domain"
	"github.com/radieske/montante-tracker/internal/montante/dto"
	"github.com/radieske/montante-tracker/internal/montante/repo"
)

// fakeRepo implementa Repo com funções plugáveis por teste.
type fakeRepo struct {
	bankroll       func(ctx context.Context) (domain.Settings, error)
	deposit        func(ctx context.Context, amount int64, desc string) (*repo.OperationResult, error)
	withdraw       func(ctx context.Context, amount int64, desc string) (*repo.OperationResult, error)
	history        func(ctx context.Context, from, to *time.Time, cat domain.Category) ([]domain.HistoryLine, error)
	createSequence func(ctx context.Context, stake int64, mult int) (*repo.OperationResult, error)
	listSequences  func(ctx context.Context) ([]domain.Sequence, error)
	getSequence    func(ctx context.Context, id string) (*domain.Sequence, error)
	deleteSequence func(ctx context.Context, id string) (*repo.OperationResult, error)
	stopSequence   func(ctx context.Context, id string) (*repo.OperationResult, error)
	createStage    func(ctx context.Context, seqID string, in repo.CreateStageInput) (*repo.OperationResult, error)
	resolveStage   func(ctx context.Context, stageID string, in repo.ResolveStageInput) (*repo.OperationResult, error)
	deleteStage    func(ctx context.Context, stageID string) (*repo.OperationResult, error)
}

func (f *fakeRepo) Bankroll(ctx context.Context) (domain.Settings, error) {
	return f.bankroll(ctx)
}
func (f *fakeRepo) Deposit(ctx context.Context, a int64, d string) (*repo.OperationResult, error) {
	return f.deposit(ctx, a, d)
}
func (f *fakeRepo) Withdraw(ctx context.Context, a int64, d string) (*repo.OperationResult, error) {
	return f.withdraw(ctx, a, d)
}
func (f *fakeRepo) History(ctx context.Context, from, to *time.Time, cat domain.Category) ([]domain.HistoryLine, error) {
	return f.history(ctx, from, to, cat)
}
func (f *fakeRepo) CreateSequence(ctx context.Context, s int64, m int) (*repo.OperationResult, error) {
	return f.createSequence(ctx, s, m)
}
func (f *fakeRepo) ListSequences(ctx context.Context) ([]domain.Sequence, error) {
	return f.listSequences(ctx)
}
func (f *fakeRepo) GetSequence(ctx context.Context, id string) (*domain.Sequence, error) {
	return f.getSequence(ctx, id)
}
func (f *fakeRepo) DeleteSequence(ctx context.Context, id string) (*repo.OperationResult, error) {
	return f.deleteSequence(ctx, id)
}
func (f *fakeRepo) StopSequence(ctx context.Context, id string) (*repo.OperationResult, error) {
	return f.stopSequence(ctx, id)
}
func (f *fakeRepo) CreateStage(ctx context.Context, id string, in repo.CreateStageInput) (*repo.OperationResult, error) {
	return f.createStage(ctx, id, in)
}
func (f *fakeRepo) ResolveStage(ctx context.Context, id string, in repo.ResolveStageInput) (*repo.OperationResult, error) {
	return f.resolveStage(ctx, id, in)
}
func (f *fakeRepo) DeleteStage(ctx context.Context, id string) (*repo.OperationResult, error) {
	return f.deleteStage(ctx, id)
}

func newTestServer(f *fakeRepo) *Server {
	return NewServer(zap.NewNop(), f, nil)
}

func do(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestWithdraw_ExceedingAvailableRejected(t *testing.T) {
	called := false
	srv := newTestServer(&fakeRepo{
		withdraw: func(ctx context.Context, amount int64, desc string) (*repo.OperationResult, error) {
			called = true
			return nil, domain.ErrInsufficientFunds
		},
	})
	rec := do(t, srv, http.MethodPost, "/bankroll/withdraw", dto.WithdrawRequest{AmountCents: 15000})
	if !called {
		t.Fatalf("repo not called")
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status got=%d want=409", rec.Code)
	}
}

func TestWithdraw_NonPositiveAmountIsBadRequest(t *testing.T) {
	srv := newTestServer(&fakeRepo{
		withdraw: func(ctx context.Context, amount int64, desc string) (*repo.OperationResult, error) {
			t.Fatalf("repo must not be reached")
			return nil, nil
		},
	})
	rec := do(t, srv, http.MethodPost, "/bankroll/withdraw", dto.WithdrawRequest{AmountCents: -5})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status got=%d want=400", rec.Code)
	}
}

func TestDeposit_ReturnsBankroll(t *testing.T) {
	srv := newTestServer(&fakeRepo{
		deposit: func(ctx context.Context, amount int64, desc string) (*repo.OperationResult, error) {
			return &repo.OperationResult{
				Settings: domain.Settings{InitialCents: 50000, CurrentCents: 50000, AvailableCents: 50000},
				Entry:    &domain.LedgerEntry{ID: "e1", OperationType: domain.OpDeposit, AmountCents: amount},
			}, nil
		},
	})
	rec := do(t, srv, http.MethodPost, "/bankroll/deposit", dto.DepositRequest{AmountCents: 50000})
	if rec.Code != http.StatusOK {
		t.Fatalf("status got=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp dto.BankrollResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.InitialCents != 50000 || resp.AvailableCents != 50000 || resp.CommittedCents != 0 {
		t.Fatalf("bankroll got=%+v", resp)
	}
}

func TestCreateSequence_Validation(t *testing.T) {
	srv := newTestServer(&fakeRepo{
		createSequence: func(ctx context.Context, stake int64, mult int) (*repo.OperationResult, error) {
			t.Fatalf("repo must not be reached")
			return nil, nil
		},
	})
	cases := []dto.CreateSequenceRequest{
		{InitialStakeCents: 0, ObjectiveMultiplier: 3},
		{InitialStakeCents: 1000, ObjectiveMultiplier: 4},
		{InitialStakeCents: -10, ObjectiveMultiplier: 2},
	}
	for _, c := range cases {
		rec := do(t, srv, http.MethodPost, "/sequences", c)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("payload %+v status got=%d want=400", c, rec.Code)
		}
	}
}

func TestCreateStage_OddsBounds(t *testing.T) {
	srv := newTestServer(&fakeRepo{
		createStage: func(ctx context.Context, seqID string, in repo.CreateStageInput) (*repo.OperationResult, error) {
			t.Fatalf("repo must not be reached")
			return nil, nil
		},
	})
	for _, odds := range []float64{1.0, 100.5, 0} {
		req := dto.CreateStageRequest{
			BetType: "SIMPLE",
			Legs:    []dto.LegPayload{{Sport: "football", Prediction: "home", Odds: odds}},
		}
		rec := do(t, srv, http.MethodPost, "/sequences/seq-1/stages", req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("odds %v status got=%d want=400", odds, rec.Code)
		}
	}
}

func TestCreateStage_EmptyLabelsRejected(t *testing.T) {
	srv := newTestServer(&fakeRepo{
		createStage: func(ctx context.Context, seqID string, in repo.CreateStageInput) (*repo.OperationResult, error) {
			t.Fatalf("repo must not be reached")
			return nil, nil
		},
	})
	req := dto.CreateStageRequest{
		BetType: "SIMPLE",
		Legs:    []dto.LegPayload{{Sport: "  ", Prediction: "home", Odds: 1.5}},
	}
	rec := do(t, srv, http.MethodPost, "/sequences/seq-1/stages", req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status got=%d want=400", rec.Code)
	}
}

func TestResolveStage_RequiresStatusOrOutcomes(t *testing.T) {
	srv := newTestServer(&fakeRepo{
		resolveStage: func(ctx context.Context, stageID string, in repo.ResolveStageInput) (*repo.OperationResult, error) {
			t.Fatalf("repo must not be reached")
			return nil, nil
		},
	})
	rec := do(t, srv, http.MethodPost, "/stages/st-1/resolve", dto.ResolveStageRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status got=%d want=400", rec.Code)
	}
}

func TestSequenceErrors_MapToStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"settled", domain.ErrSequenceSettled, http.StatusConflict},
		{"pending stage", domain.ErrPendingStage, http.StatusConflict},
		{"leg count", domain.ErrLegCount, http.StatusBadRequest},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			srv := newTestServer(&fakeRepo{
				createStage: func(ctx context.Context, seqID string, in repo.CreateStageInput) (*repo.OperationResult, error) {
					return nil, c.err
				},
			})
			req := dto.CreateStageRequest{
				BetType: "SIMPLE",
				Legs:    []dto.LegPayload{{Sport: "football", Prediction: "home", Odds: 1.5}},
			}
			rec := do(t, srv, http.MethodPost, "/sequences/seq-1/stages", req)
			if rec.Code != c.want {
				t.Fatalf("status got=%d want=%d", rec.Code, c.want)
			}
		})
	}
}

func TestGetSequence_ResponseShape(t *testing.T) {
	payout := int64(1500)
	pct := 50.0
	srv := newTestServer(&fakeRepo{
		getSequence: func(ctx context.Context, id string) (*domain.Sequence, error) {
			return &domain.Sequence{
				ID:                  id,
				DisplayNumber:       1,
				InitialStakeCents:   1000,
				ObjectiveMultiplier: 3,
				CommittedStakeCents: 1000,
				State:               domain.SequenceInProgress,
				StartedAt:           time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
				Stages: []domain.Stage{{
					ID: "st-1", SequenceID: id, Number: 1, StakeCents: 1000,
					BetType: domain.BetSimple, CombinedOdds: 1.5,
					Status: domain.StageWon, PayoutCents: &payout, CumulativeProgressPct: &pct,
				}},
			}, nil
		},
	})
	rec := do(t, srv, http.MethodGet, "/sequences/seq-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status got=%d", rec.Code)
	}
	var resp dto.SequenceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ObjectiveCents != 3000 {
		t.Fatalf("objective got=%d want=3000", resp.ObjectiveCents)
	}
	if resp.CurrentGainCents != 1500 || resp.ProgressPct != 50 {
		t.Fatalf("derived fields got gain=%d pct=%v", resp.CurrentGainCents, resp.ProgressPct)
	}
	if len(resp.Stages) != 1 || resp.Stages[0].StageID != "st-1" {
		t.Fatalf("stages missing from detail response")
	}
}

func TestLedgerHistory_InvalidCategoryRejected(t *testing.T) {
	srv := newTestServer(&fakeRepo{
		history: func(ctx context.Context, from, to *time.Time, cat domain.Category) ([]domain.HistoryLine, error) {
			t.Fatalf("repo must not be reached")
			return nil, nil
		},
	})
	rec := do(t, srv, http.MethodGet, "/bankroll/history?category=bogus", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status got=%d want=400", rec.Code)
	}
}

func TestLedgerHistory_PassesWindowAndCategory(t *testing.T) {
	var gotFrom, gotTo *time.Time
	var gotCat domain.Category
	srv := newTestServer(&fakeRepo{
		history: func(ctx context.Context, from, to *time.Time, cat domain.Category) ([]domain.HistoryLine, error) {
			gotFrom, gotTo, gotCat = from, to, cat
			return nil, nil
		},
	})
	rec := do(t, srv, http.MethodGet,
		"/bankroll/history?from=2025-03-01T00:00:00Z&to=2025-03-31T00:00:00Z&category=movements", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status got=%d", rec.Code)
	}
	if gotFrom == nil || gotTo == nil || gotCat != domain.CategoryMovements {
		t.Fatalf("filters not forwarded: from=%v to=%v cat=%s", gotFrom, gotTo, gotCat)
	}
}
