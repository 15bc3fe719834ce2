package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/nft-market-backoffice-poc/internal/ledger-service/dto"
	"github.com/radieske/nft-market-backoffice-poc/internal/ledger-service/ledger"
)

// Server expõe as operações do ledger e o editor de status dos requests
// (a fronteira que o painel de operação chama).
type Server struct {
	log *zap.Logger
	svc *ledger.Service
}

func NewServer(log *zap.Logger, svc *ledger.Service) *Server {
	return &Server{log: log, svc: svc}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Post("/v1/profiles", s.createProfile)
	r.Get("/v1/wallet", s.getWallet) // ?userId=
	r.Post("/v1/wallet/adjust", s.adjustBalance)
	r.Get("/v1/wallet/history", s.getHistory)
	r.Get("/v1/wallet/mutations", s.getMutations)

	r.Post("/v1/requests/withdrawals", s.createWithdrawal)
	r.Get("/v1/requests/withdrawals/{id}", s.getWithdrawal)
	r.Patch("/v1/requests/withdrawals/{id}/status", s.changeStatus(ledger.KindWithdrawal))

	r.Post("/v1/requests/deposits", s.createDeposit)
	r.Get("/v1/requests/deposits/{id}", s.getDeposit)
	r.Patch("/v1/requests/deposits/{id}/status", s.changeStatus(ledger.KindDeposit))

	return r
}

func (s *Server) createProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "bad json")
		return
	}

	balance := decimal.Zero
	if req.InitialBalance != "" {
		var err error
		if balance, err = decimal.NewFromString(req.InitialBalance); err != nil {
			httpError(w, http.StatusBadRequest, "invalid initial_balance")
			return
		}
	}

	prof, err := s.svc.CreateProfile(r.Context(), &ledger.Profile{
		ID:            req.UserID,
		Email:         req.Email,
		Username:      req.Username,
		WalletBalance: balance,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, profileResponse(prof))
}

func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		httpError(w, http.StatusBadRequest, "userId required")
		return
	}
	prof, err := s.svc.GetProfile(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse(prof))
}

func (s *Server) adjustBalance(w http.ResponseWriter, r *http.Request) {
	var req dto.AdjustBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.UserID == "" || req.Amount == "" {
		httpError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	op := ledger.Operation(req.Operation)
	if op != ledger.OpAdd && op != ledger.OpSubtract {
		httpError(w, http.StatusBadRequest, "operation must be add or subtract")
		return
	}

	mut, err := s.svc.AdjustBalance(r.Context(), req.UserID, amount, op, req.Reason)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mutationResponse(mut))
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		httpError(w, http.StatusBadRequest, "userId required")
		return
	}
	entries, err := s.svc.BalanceHistory(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]dto.HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.HistoryEntryResponse{Type: e.Type, Amount: e.Amount, Date: e.Date})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getMutations(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		httpError(w, http.StatusBadRequest, "userId required")
		return
	}
	muts, err := s.svc.Mutations(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]dto.MutationResponse, 0, len(muts))
	for i := range muts {
		out = append(out, *mutationResponse(&muts[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.UserID == "" {
		httpError(w, http.StatusBadRequest, "userId required")
		return
	}
	fee := decimal.Zero
	if req.WithdrawalFee != "" {
		var err error
		if fee, err = decimal.NewFromString(req.WithdrawalFee); err != nil {
			httpError(w, http.StatusBadRequest, "invalid withdrawal_fee")
			return
		}
	}

	wd, err := s.svc.CreateWithdrawalRequest(r.Context(), &ledger.Withdrawal{
		UserID:             req.UserID,
		NFTItemID:          req.NFTItemID,
		WithdrawalFee:      fee,
		DestinationAddress: req.DestinationAddress,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, withdrawalResponse(wd))
}

func (s *Server) getWithdrawal(w http.ResponseWriter, r *http.Request) {
	wd, err := s.svc.GetWithdrawal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, withdrawalResponse(wd))
}

func (s *Server) createDeposit(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.UserID == "" || req.Amount == "" {
		httpError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	dep, err := s.svc.CreateDepositRequest(r.Context(), &ledger.Deposit{
		UserID: req.UserID,
		Amount: amount,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, depositResponse(dep))
}

func (s *Server) getDeposit(w http.ResponseWriter, r *http.Request) {
	dep, err := s.svc.GetDeposit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, depositResponse(dep))
}

// changeStatus é o editor de status: reporta saldo anterior/novo e valor
// movido quando a transição completa o request.
func (s *Server) changeStatus(kind ledger.RequestKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req dto.ChangeStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.Status == "" {
			httpError(w, http.StatusBadRequest, "status required")
			return
		}

		res, err := s.svc.ChangeRequestStatus(r.Context(), kind, id, req.Status)
		if err != nil {
			s.writeError(w, err)
			return
		}

		out := dto.StatusChangeResponse{ID: id, Status: req.Status}
		if res.Mutation != nil {
			out.Mutation = mutationResponse(res.Mutation)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// writeError traduz os erros tipados do ledger para status HTTP.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrUserNotFound),
		errors.Is(err, ledger.ErrRequestNotFound),
		errors.Is(err, ledger.ErrItemNotFound):
		httpError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrAlreadyCompleted),
		errors.Is(err, ledger.ErrCompletionConflict),
		errors.Is(err, ledger.ErrInsufficientBalance):
		httpError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidStatus):
		httpError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error("ledger operation failed", zap.Error(err))
		httpError(w, http.StatusInternalServerError, "internal error")
	}
}

func profileResponse(p *ledger.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		UserID:        p.ID,
		Email:         p.Email,
		Username:      p.Username,
		WalletBalance: p.WalletBalance,
		UpdatedAt:     p.UpdatedAt,
	}
}

func mutationResponse(m *ledger.Mutation) *dto.MutationResponse {
	return &dto.MutationResponse{
		UserID:          m.UserID,
		Operation:       string(m.Operation),
		Amount:          m.Amount,
		PreviousBalance: m.PreviousBalance,
		NewBalance:      m.NewBalance,
		Reason:          m.Reason,
		CreatedAt:       m.CreatedAt,
	}
}

func withdrawalResponse(wd *ledger.Withdrawal) dto.WithdrawalResponse {
	return dto.WithdrawalResponse{
		ID:                 wd.ID,
		UserID:             wd.UserID,
		NFTItemID:          wd.NFTItemID,
		WithdrawalFee:      wd.WithdrawalFee,
		DestinationAddress: wd.DestinationAddress,
		Status:             wd.Status,
		CreatedAt:          wd.CreatedAt,
		CompletedAt:        wd.CompletedAt,
	}
}

func depositResponse(d *ledger.Deposit) dto.DepositResponse {
	return dto.DepositResponse{
		ID:          d.ID,
		UserID:      d.UserID,
		Amount:      d.Amount,
		Status:      d.Status,
		CreatedAt:   d.CreatedAt,
		ProcessedAt: d.ProcessedAt,
		ApprovedAt:  d.ApprovedAt,
	}
}

func httpError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, dto.ErrorResponse{Error: msg})
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
