package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/hotel-booking/internal/domain"
	"github.com/josh-kwaku/hotel-booking/internal/logging"
	"github.com/josh-kwaku/hotel-booking/internal/service/wallet"
)

type walletService interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)
	Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)
	Transfer(ctx context.Context, req wallet.TransferRequest) (decimal.Decimal, error)
	ListTransactions(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error)
}

type WalletHandler struct {
	wallets walletService
}

func NewWalletHandler(wallets walletService) *WalletHandler {
	return &WalletHandler{wallets: wallets}
}

type amountRequest struct {
	Amount decimal.NullDecimal `json:"amount"`
}

func validateAmount(amount decimal.NullDecimal) []FieldError {
	if !amount.Valid {
		return []FieldError{{Field: "amount", Message: "required"}}
	}
	if err := domain.CheckAmount(amount.Decimal); err != nil {
		return []FieldError{{Field: "amount", Message: "must be greater than 0 with at most two decimal places"}}
	}
	return nil
}

type transferRequest struct {
	ToUserID string              `json:"to_user_id"`
	Amount   decimal.NullDecimal `json:"amount"`
}

func (r transferRequest) Validate() (uuid.UUID, []FieldError) {
	errs := validateAmount(r.Amount)
	recipient, err := uuid.Parse(r.ToUserID)
	if err != nil {
		errs = append(errs, FieldError{Field: "to_user_id", Message: "must be a valid UUID"})
	}
	return recipient, errs
}

func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	wl, err := h.wallets.GetBalance(r.Context(), userID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]any{
		"balance":  wl.Balance.StringFixed(2),
		"currency": string(wl.Currency),
		"user_id":  wl.UserID,
	})
}

func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req amountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fields := validateAmount(req.Amount); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	balance, err := h.wallets.Deposit(r.Context(), userID, req.Amount.Decimal)
	if err != nil {
		logging.FromContext(r.Context()).Warn("deposit failed", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]any{
		"message":          "Deposit successful",
		"new_balance":      balance.StringFixed(2),
		"amount_deposited": req.Amount.Decimal.StringFixed(2),
	})
}

func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req amountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fields := validateAmount(req.Amount); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	balance, err := h.wallets.Withdraw(r.Context(), userID, req.Amount.Decimal)
	if err != nil {
		logging.FromContext(r.Context()).Warn("withdrawal failed", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]any{
		"message":          "Withdrawal successful",
		"new_balance":      balance.StringFixed(2),
		"amount_withdrawn": req.Amount.Decimal.StringFixed(2),
	})
}

func (h *WalletHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req transferRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	recipient, fields := req.Validate()
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	balance, err := h.wallets.Transfer(r.Context(), wallet.TransferRequest{
		FromUserID: userID,
		ToUserID:   recipient,
		Amount:     req.Amount.Decimal,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("transfer failed", "to_user_id", recipient, "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]any{
		"message":            "Transfer successful",
		"new_balance":        balance.StringFixed(2),
		"amount_transferred": req.Amount.Decimal.StringFixed(2),
		"to_user_id":         recipient,
	})
}

func (h *WalletHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	entries, err := h.wallets.ListTransactions(r.Context(), userID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]any{
		"transactions": toTransactionDTOs(entries),
	})
}
