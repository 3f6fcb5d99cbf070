package repository

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"tiny-ledger/internal/domain"
	"tiny-ledger/internal/errors"
)

// accountRecord holds one account and its log. mu serializes every
// read-check-commit against this account.
type accountRecord struct {
	mu      sync.Mutex
	account domain.Account
	entries []domain.Transaction
}

// Store owns all ledger state and is the only writer of balances and logs.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]*accountRecord
	logger   *slog.Logger
	now      func() time.Time
}

// NewStore creates an empty Store
func NewStore(logger *slog.Logger) *Store {
	return &Store{
		accounts: make(map[string]*accountRecord),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateAccount registers account with an empty log. The account is visible
// to every lookup that starts after CreateAccount returns.
func (s *Store) CreateAccount(account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.ID]; exists {
		s.logger.Error("Duplicate account id generated", "account_id", account.ID)
		return errors.NewAppErrorf(errors.InternalError, "account %s already exists", account.ID)
	}

	s.accounts[account.ID] = &accountRecord{
		account: account,
		entries: make([]domain.Transaction, 0),
	}

	s.logger.Debug("Account registered", "account_id", account.ID)
	return nil
}

func (s *Store) lookup(id string) (*accountRecord, error) {
	s.mu.RLock()
	rec, ok := s.accounts[id]
	s.mu.RUnlock()

	if !ok {
		s.logger.Warn("Account not found", "account_id", id)
		return nil, errors.NewAppErrorf(errors.NotFound, "account not found: %s", id)
	}
	return rec, nil
}

// GetAccount returns a snapshot of the account.
func (s *Store) GetAccount(id string) (*domain.Account, error) {
	rec, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	rec.mu.Lock()
	account := rec.account
	rec.mu.Unlock()

	return &account, nil
}

// ListAccounts returns a snapshot of every account in no particular order.
func (s *Store) ListAccounts() []domain.Account {
	s.mu.RLock()
	records := make([]*accountRecord, 0, len(s.accounts))
	for _, rec := range s.accounts {
		records = append(records, rec)
	}
	s.mu.RUnlock()

	out := make([]domain.Account, 0, len(records))
	for _, rec := range records {
		rec.mu.Lock()
		out = append(out, rec.account)
		rec.mu.Unlock()
	}
	return out
}

// GetEntries returns a copy of the account's log, oldest first.
func (s *Store) GetEntries(id string) ([]domain.Transaction, error) {
	rec, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	out := make([]domain.Transaction, len(rec.entries))
	copy(out, rec.entries)
	return out, nil
}

// WithAccounts runs fn while holding the locks of every listed account.
// Locks are taken in ascending id order whatever order ids come in, and a
// repeated id is locked once. Entries appended through the AccountTx become
// visible only if fn returns nil; otherwise nothing is applied. Hooks
// registered with AfterCommit run after the changes land and before any lock
// is released, so per-account side effects follow commit order.
func (s *Store) WithAccounts(ids []string, fn func(tx *AccountTx) error) error {
	ordered := uniqueSorted(ids)

	records := make(map[string]*accountRecord, len(ordered))
	for _, id := range ordered {
		rec, err := s.lookup(id)
		if err != nil {
			return err
		}
		records[id] = rec
	}

	for _, id := range ordered {
		records[id].mu.Lock()
	}
	defer func() {
		for i := len(ordered) - 1; i >= 0; i-- {
			records[ordered[i]].mu.Unlock()
		}
	}()

	tx := newAccountTx(records, s.now)
	if err := fn(tx); err != nil {
		return err
	}

	tx.commit()
	if len(tx.pending) > 0 {
		s.logger.Debug("Ledger entries committed", "accounts", ordered, "entries", len(tx.pending))
	}
	return nil
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
