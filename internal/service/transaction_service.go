package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"tiny-ledger/internal/domain"
	"tiny-ledger/internal/errors"
	"tiny-ledger/internal/events"
	"tiny-ledger/internal/repository"
)

type TransactionService struct {
	store     *repository.Store
	publisher events.Publisher
	logger    *slog.Logger
}

func NewTransactionService(store *repository.Store, publisher events.Publisher, logger *slog.Logger) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

type RecordRequest struct {
	AccountID   string
	Amount      decimal.Decimal
	Type        domain.TransactionType
	Description string
}

type TransferRequest struct {
	SourceAccountID      string
	DestinationAccountID string
	Amount               decimal.Decimal
	Description          string
}

// TransferResult holds both legs of a completed transfer.
type TransferResult struct {
	Withdrawal domain.Transaction `json:"withdrawal"`
	Deposit    domain.Transaction `json:"deposit"`
}

// Legs returns the withdrawal followed by the deposit.
func (r *TransferResult) Legs() []domain.Transaction {
	return []domain.Transaction{r.Withdrawal, r.Deposit}
}

// RecordTransaction applies a single deposit or withdrawal. The balance check,
// the commit and the event publish all happen under the account's lock.
func (s *TransactionService) RecordTransaction(ctx context.Context, req *RecordRequest) (*domain.Transaction, error) {
	s.logger.Info("Recording transaction",
		"account_id", req.AccountID,
		"amount", req.Amount,
		"type", req.Type)

	if !req.Amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}
	if !req.Type.Valid() {
		return nil, errors.ErrInvalidTransactionType
	}

	var entry domain.Transaction
	err := s.store.WithAccounts([]string{req.AccountID}, func(tx *repository.AccountTx) error {
		var err error
		entry, err = tx.Append(req.AccountID, req.Amount, req.Type, req.Description)
		if err != nil {
			return err
		}

		tx.AfterCommit(func() {
			publish(ctx, s.publisher, s.logger, events.New(events.TransactionRecorded, entry.AccountID, entry))
		})
		return nil
	})
	if err != nil {
		s.logger.Warn("Transaction rejected", "account_id", req.AccountID, "type", req.Type, "error", err)
		return nil, err
	}

	s.logger.Info("Transaction recorded", "transaction_id", entry.ID, "account_id", entry.AccountID)
	return &entry, nil
}

// Transfer moves money between two accounts. Both legs are staged while both
// account locks are held and land together; on any error neither is applied.
func (s *TransactionService) Transfer(ctx context.Context, req *TransferRequest) (*TransferResult, error) {
	s.logger.Info("Processing transfer",
		"source_account_id", req.SourceAccountID,
		"destination_account_id", req.DestinationAccountID,
		"amount", req.Amount)

	if !req.Amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}

	var result TransferResult
	ids := []string{req.SourceAccountID, req.DestinationAccountID}
	err := s.store.WithAccounts(ids, func(tx *repository.AccountTx) error {
		source, err := tx.Account(req.SourceAccountID)
		if err != nil {
			return err
		}
		destination, err := tx.Account(req.DestinationAccountID)
		if err != nil {
			return err
		}

		if source.ID == destination.ID {
			return errors.ErrSameAccountTransfer
		}

		result.Withdrawal, err = tx.Append(source.ID, req.Amount, domain.Withdrawal,
			transferDescription("Transfer to", destination.Name, req.Description))
		if err != nil {
			return err
		}

		result.Deposit, err = tx.Append(destination.ID, req.Amount, domain.Deposit,
			transferDescription("Transfer from", source.Name, req.Description))
		if err != nil {
			return err
		}

		// One event per leg, keyed by the leg's own account.
		tx.AfterCommit(func() {
			publish(ctx, s.publisher, s.logger, events.New(events.TransferCompleted, source.ID, result))
			publish(ctx, s.publisher, s.logger, events.New(events.TransferCompleted, destination.ID, result))
		})
		return nil
	})
	if err != nil {
		s.logger.Warn("Transfer failed",
			"source_account_id", req.SourceAccountID,
			"destination_account_id", req.DestinationAccountID,
			"error", err)
		return nil, err
	}

	s.logger.Info("Transfer completed successfully",
		"withdrawal_id", result.Withdrawal.ID,
		"deposit_id", result.Deposit.ID)
	return &result, nil
}

func (s *TransactionService) GetTransactionHistory(accountID string) ([]domain.Transaction, error) {
	return s.store.GetEntries(accountID)
}

func transferDescription(prefix, counterparty, description string) string {
	if strings.TrimSpace(description) == "" {
		return fmt.Sprintf("%s %s", prefix, counterparty)
	}
	return fmt.Sprintf("%s %s: %s", prefix, counterparty, description)
}
