package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/montante-tracker/internal/montante/domain"
	"github.com/radieske/montante-tracker/internal/montante/dto"
	"github.com/radieske/montante-tracker/internal/montante/repo"
	"github.com/radieske/montante-tracker/pkg/contracts/events"
)

// Limites de entrada da borda HTTP. O engine revalida os invariantes de
// qualquer forma.
const (
	minOdds = 1.01
	maxOdds = 100.0
)

// Repo define as operações do engine usadas pelos handlers HTTP.
type Repo interface {
	Bankroll(ctx context.Context) (domain.Settings, error)
	Deposit(ctx context.Context, amountCents int64, description string) (*repo.OperationResult, error)
	Withdraw(ctx context.Context, amountCents int64, description string) (*repo.OperationResult, error)
	History(ctx context.Context, from, to *time.Time, cat domain.Category) ([]domain.HistoryLine, error)

	CreateSequence(ctx context.Context, initialStakeCents int64, objectiveMultiplier int) (*repo.OperationResult, error)
	ListSequences(ctx context.Context) ([]domain.Sequence, error)
	GetSequence(ctx context.Context, id string) (*domain.Sequence, error)
	DeleteSequence(ctx context.Context, id string) (*repo.OperationResult, error)
	StopSequence(ctx context.Context, id string) (*repo.OperationResult, error)

	CreateStage(ctx context.Context, sequenceID string, in repo.CreateStageInput) (*repo.OperationResult, error)
	ResolveStage(ctx context.Context, stageID string, in repo.ResolveStageInput) (*repo.OperationResult, error)
	DeleteStage(ctx context.Context, stageID string) (*repo.OperationResult, error)
}

// Publisher publica eventos de domínio após o commit. Best-effort: a
// consistência nunca depende do broker.
type Publisher interface {
	PublishLedgerAppended(ctx context.Context, e events.LedgerAppended) error
	PublishSequenceSettled(ctx context.Context, e events.SequenceSettled) error
}

// Server expõe a API REST do engine de montantes.
type Server struct {
	log  *zap.Logger
	repo Repo
	publ Publisher
}

// NewServer instancia o servidor HTTP do engine.
func NewServer(log *zap.Logger, r Repo, p Publisher) *Server {
	return &Server{log: log, repo: r, publ: p}
}

// Router retorna o mux HTTP com as rotas da API.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/sequences", s.sequences)            // GET lista, POST cria
	mux.HandleFunc("/sequences/", s.sequenceByID)        // GET/DELETE {id}, POST {id}/stop, POST {id}/stages
	mux.HandleFunc("/stages/", s.stageByID)              // POST {id}/resolve, DELETE {id}
	mux.HandleFunc("/bankroll", s.bankroll)              // GET
	mux.HandleFunc("/bankroll/deposit", s.deposit)       // POST
	mux.HandleFunc("/bankroll/withdraw", s.withdraw)     // POST
	mux.HandleFunc("/bankroll/history", s.ledgerHistory) // GET ?from=&to=&category=
	return mux
}

func (s *Server) sequences(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listSequences(w, r)
	case http.MethodPost:
		s.createSequence(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) listSequences(w http.ResponseWriter, r *http.Request) {
	seqs, err := s.repo.ListSequences(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	out := make([]dto.SequenceResponse, 0, len(seqs))
	for i := range seqs {
		out = append(out, sequenceResponse(&seqs[i], false))
	}
	writeJSON(w, out)
}

func (s *Server) createSequence(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSequenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.InitialStakeCents <= 0 || !domain.ValidObjective(req.ObjectiveMultiplier) {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	res, err := s.repo.CreateSequence(r.Context(), req.InitialStakeCents, req.ObjectiveMultiplier)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, sequenceResponse(res.Sequence, true))
}

func (s *Server) sequenceByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/sequences/")
	parts := strings.Split(rest, "/")
	id := parts[0]
	if id == "" {
		http.Error(w, "sequenceId required", http.StatusBadRequest)
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		seq, err := s.repo.GetSequence(r.Context(), id)
		if err != nil {
			s.writeErr(w, err)
			return
		}
		writeJSON(w, sequenceResponse(seq, true))

	case len(parts) == 1 && r.Method == http.MethodDelete:
		if _, err := s.repo.DeleteSequence(r.Context(), id); err != nil {
			s.writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case len(parts) == 2 && parts[1] == "stop" && r.Method == http.MethodPost:
		res, err := s.repo.StopSequence(r.Context(), id)
		if err != nil {
			s.writeErr(w, err)
			return
		}
		s.publish(r.Context(), res)
		writeJSON(w, sequenceResponse(res.Sequence, true))

	case len(parts) == 2 && parts[1] == "stages" && r.Method == http.MethodPost:
		s.createStage(w, r, id)

	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (s *Server) createStage(w http.ResponseWriter, r *http.Request, sequenceID string) {
	var req dto.CreateStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	in := repo.CreateStageInput{
		BetType: domain.BetType(req.BetType),
		Status:  domain.StageStatus(req.Status),
	}
	for _, l := range req.Legs {
		if l.Odds < minOdds || l.Odds > maxOdds {
			http.Error(w, "odds out of range", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(l.Sport) == "" || strings.TrimSpace(l.Prediction) == "" {
			http.Error(w, "sport and prediction required", http.StatusBadRequest)
			return
		}
		in.Legs = append(in.Legs, repo.LegInput{
			Sport:       l.Sport,
			Competition: l.Competition,
			Prediction:  l.Prediction,
			Odds:        l.Odds,
			ScheduledAt: l.ScheduledAt,
			Status:      domain.StageStatus(l.Status),
		})
	}

	res, err := s.repo.CreateStage(r.Context(), sequenceID, in)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.publish(r.Context(), res)
	writeJSON(w, stageResponse(res.Stage))
}

func (s *Server) stageByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/stages/")
	parts := strings.Split(rest, "/")
	id := parts[0]
	if id == "" {
		http.Error(w, "stageId required", http.StatusBadRequest)
		return
	}

	switch {
	case len(parts) == 2 && parts[1] == "resolve" && r.Method == http.MethodPost:
		var req dto.ResolveStageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Status == "" && len(req.LegOutcomes) == 0 {
			http.Error(w, "status or leg_outcomes required", http.StatusBadRequest)
			return
		}
		in := repo.ResolveStageInput{Status: domain.StageStatus(req.Status)}
		for _, o := range req.LegOutcomes {
			in.LegOutcomes = append(in.LegOutcomes, domain.StageStatus(o))
		}
		res, err := s.repo.ResolveStage(r.Context(), id, in)
		if err != nil {
			s.writeErr(w, err)
			return
		}
		s.publish(r.Context(), res)
		writeJSON(w, stageResponse(res.Stage))

	case len(parts) == 1 && r.Method == http.MethodDelete:
		res, err := s.repo.DeleteStage(r.Context(), id)
		if err != nil {
			s.writeErr(w, err)
			return
		}
		writeJSON(w, sequenceResponse(res.Sequence, true))

	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (s *Server) bankroll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	settings, err := s.repo.Bankroll(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, dto.BankrollResponse{
		InitialCents:   settings.InitialCents,
		CurrentCents:   settings.CurrentCents,
		AvailableCents: settings.AvailableCents,
		CommittedCents: settings.CurrentCents - settings.AvailableCents,
	})
}

func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.AmountCents <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	res, err := s.repo.Deposit(r.Context(), req.AmountCents, req.Description)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.publish(r.Context(), res)
	writeJSON(w, dto.BankrollResponse{
		InitialCents:   res.Settings.InitialCents,
		CurrentCents:   res.Settings.CurrentCents,
		AvailableCents: res.Settings.AvailableCents,
		CommittedCents: res.Settings.CurrentCents - res.Settings.AvailableCents,
	})
}

func (s *Server) withdraw(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.AmountCents <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	res, err := s.repo.Withdraw(r.Context(), req.AmountCents, req.Description)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.publish(r.Context(), res)
	writeJSON(w, dto.BankrollResponse{
		InitialCents:   res.Settings.InitialCents,
		CurrentCents:   res.Settings.CurrentCents,
		AvailableCents: res.Settings.AvailableCents,
		CommittedCents: res.Settings.CurrentCents - res.Settings.AvailableCents,
	})
}

func (s *Server) ledgerHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var from, to *time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, "invalid from", http.StatusBadRequest)
			return
		}
		from = &t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, "invalid to", http.StatusBadRequest)
			return
		}
		to = &t
	}
	cat := domain.Category(r.URL.Query().Get("category"))
	switch cat {
	case "", domain.CategoryAll, domain.CategoryMovements, domain.CategorySequences:
	default:
		http.Error(w, "invalid category", http.StatusBadRequest)
		return
	}

	lines, err := s.repo.History(r.Context(), from, to, cat)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, historyResponse(lines))
}

// publish envia os eventos gerados pela operação. Falha de publicação só
// gera log; o estado já está commitado.
func (s *Server) publish(ctx context.Context, res *repo.OperationResult) {
	if s.publ == nil || res == nil {
		return
	}
	if res.Entry != nil {
		e := events.LedgerAppended{
			EntryID:            res.Entry.ID,
			OperationType:      string(res.Entry.OperationType),
			AmountCents:        res.Entry.AmountCents,
			BalanceBeforeCents: res.Entry.BalanceBeforeCents,
			BalanceAfterCents:  res.Entry.BalanceAfterCents,
			AvailableCents:     res.Settings.AvailableCents,
			Description:        res.Entry.Description,
		}
		if res.Entry.SequenceID != nil {
			e.SequenceID = *res.Entry.SequenceID
		}
		if err := s.publ.PublishLedgerAppended(ctx, e); err != nil {
			s.log.Warn("publish ledger_appended failed", zap.Error(err))
		}
	}
	if res.Settled != nil && res.Sequence != nil {
		e := events.SequenceSettled{
			SequenceID:     res.Sequence.ID,
			DisplayNumber:  res.Sequence.DisplayNumber,
			State:          string(res.Settled.State),
			FinalGainCents: res.Settled.FinalGainCents,
			ClosedManually: res.Settled.ClosedManually,
		}
		if res.Sequence.DurationDays != nil {
			e.DurationDays = *res.Sequence.DurationDays
		}
		if err := s.publ.PublishSequenceSettled(ctx, e); err != nil {
			s.log.Warn("publish sequence_settled failed", zap.Error(err))
		}
	}
}

// writeErr mapeia os erros sentinela do engine para status HTTP.
func (s *Server) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrSequenceSettled),
		errors.Is(err, domain.ErrPendingStage),
		errors.Is(err, domain.ErrPriorStageOpen),
		errors.Is(err, domain.ErrStageSettled),
		errors.Is(err, domain.ErrNotLastStage):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidStake),
		errors.Is(err, domain.ErrInvalidObjective),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidOdds),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrLegCount),
		errors.Is(err, domain.ErrLegOutcomeCount),
		errors.Is(err, domain.ErrLedgerSign),
		errors.Is(err, domain.ErrSequenceReference):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		s.log.Error("internal error", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeJSON serializa e envia resposta JSON.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
