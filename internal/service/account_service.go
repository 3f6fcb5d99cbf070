package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tiny-ledger/internal/domain"
	"tiny-ledger/internal/errors"
	"tiny-ledger/internal/events"
	"tiny-ledger/internal/repository"
)

type AccountService struct {
	store     *repository.Store
	publisher events.Publisher
	logger    *slog.Logger
}

func NewAccountService(store *repository.Store, publisher events.Publisher, logger *slog.Logger) *AccountService {
	return &AccountService{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateAccount opens a zero-balance account. The name is kept as given but
// must contain something other than whitespace.
func (s *AccountService) CreateAccount(ctx context.Context, name string) (*domain.Account, error) {
	s.logger.Info("Creating account", "name", name)

	if strings.TrimSpace(name) == "" {
		s.logger.Warn("Rejected account with blank name")
		return nil, errors.ErrEmptyAccountName
	}

	account := domain.Account{
		ID:      uuid.NewString(),
		Name:    name,
		Balance: decimal.Zero,
	}

	if err := s.store.CreateAccount(account); err != nil {
		return nil, err
	}

	s.logger.Info("Account created successfully", "account_id", account.ID)
	publish(ctx, s.publisher, s.logger, events.New(events.AccountCreated, account.ID, account))
	return &account, nil
}

func (s *AccountService) GetAccount(accountID string) (*domain.Account, error) {
	s.logger.Debug("Getting account", "account_id", accountID)
	return s.store.GetAccount(accountID)
}

// ListAccounts returns every account in no guaranteed order.
func (s *AccountService) ListAccounts() []domain.Account {
	return s.store.ListAccounts()
}

func (s *AccountService) GetBalance(accountID string) (decimal.Decimal, error) {
	account, err := s.store.GetAccount(accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}
