package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"tiny-ledger/internal/domain"
	"tiny-ledger/internal/service"
)

type TransactionHandler struct {
	transactionService *service.TransactionService
}

func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// TransactionRequest accepts the amount as a JSON number or string; both
// decode without loss of precision.
type TransactionRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type TransferRequest struct {
	FromAccountID string          `json:"fromAccountId"`
	ToAccountID   string          `json:"toAccountId"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
}

func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, domain.Deposit)
}

func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, domain.Withdrawal)
}

func (h *TransactionHandler) record(w http.ResponseWriter, r *http.Request, typ domain.TransactionType) {
	var req TransactionRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}

	transaction, err := h.transactionService.RecordTransaction(r.Context(), &service.RecordRequest{
		AccountID:   mux.Vars(r)["account_id"],
		Amount:      req.Amount,
		Type:        typ,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, transaction)
}

func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if appErr := decodeJSON(r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}

	result, err := h.transactionService.Transfer(r.Context(), &service.TransferRequest{
		SourceAccountID:      req.FromAccountID,
		DestinationAccountID: req.ToAccountID,
		Amount:               req.Amount,
		Description:          req.Description,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result.Legs())
}

func (h *TransactionHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["account_id"]

	history, err := h.transactionService.GetTransactionHistory(accountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, history)
}
