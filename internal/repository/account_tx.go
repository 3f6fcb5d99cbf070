package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tiny-ledger/internal/domain"
	"tiny-ledger/internal/errors"
)

// AccountTx is the unit of work handed to WithAccounts callbacks. It stages
// balance changes and new entries for the locked accounts until commit.
type AccountTx struct {
	records  map[string]*accountRecord
	balances map[string]decimal.Decimal
	pending  []domain.Transaction
	after    []func()
	now      func() time.Time
}

func newAccountTx(records map[string]*accountRecord, now func() time.Time) *AccountTx {
	balances := make(map[string]decimal.Decimal, len(records))
	for id, rec := range records {
		balances[id] = rec.account.Balance
	}
	return &AccountTx{
		records:  records,
		balances: balances,
		now:      now,
	}
}

// Account returns the locked account as seen inside this unit of work,
// including staged balance changes.
func (tx *AccountTx) Account(id string) (domain.Account, error) {
	rec, ok := tx.records[id]
	if !ok {
		return domain.Account{}, errors.NewAppErrorf(errors.InternalError, "account %s is not part of this unit of work", id)
	}
	account := rec.account
	account.Balance = tx.balances[id]
	return account, nil
}

// Append stages a new entry on a locked account. A withdrawal that would take
// the staged balance below zero is rejected and stages nothing.
func (tx *AccountTx) Append(accountID string, amount decimal.Decimal, typ domain.TransactionType, description string) (domain.Transaction, error) {
	if _, ok := tx.records[accountID]; !ok {
		return domain.Transaction{}, errors.NewAppErrorf(errors.InternalError, "account %s is not part of this unit of work", accountID)
	}
	if !typ.Valid() {
		return domain.Transaction{}, errors.ErrInvalidTransactionType
	}
	if !amount.IsPositive() {
		return domain.Transaction{}, errors.ErrInvalidAmount
	}

	entry := domain.Transaction{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		Amount:      amount,
		Type:        typ,
		Description: description,
		Timestamp:   tx.nextTimestamp(accountID),
	}

	newBalance := tx.balances[accountID].Add(entry.Signed())
	if newBalance.IsNegative() {
		return domain.Transaction{}, errors.ErrInsufficientFunds
	}

	tx.balances[accountID] = newBalance
	tx.pending = append(tx.pending, entry)
	return entry, nil
}

// AfterCommit registers fn to run once the staged changes are applied, while
// the account locks are still held. Hooks run in registration order and are
// dropped if the unit of work fails.
func (tx *AccountTx) AfterCommit(fn func()) {
	tx.after = append(tx.after, fn)
}

// nextTimestamp never goes backwards relative to the account's last entry,
// so a log is ordered by time as well as by position.
func (tx *AccountTx) nextTimestamp(accountID string) time.Time {
	ts := tx.now()

	last, ok := tx.lastTimestamp(accountID)
	if ok && ts.Before(last) {
		return last
	}
	return ts
}

func (tx *AccountTx) lastTimestamp(accountID string) (time.Time, bool) {
	for i := len(tx.pending) - 1; i >= 0; i-- {
		if tx.pending[i].AccountID == accountID {
			return tx.pending[i].Timestamp, true
		}
	}
	entries := tx.records[accountID].entries
	if len(entries) == 0 {
		return time.Time{}, false
	}
	return entries[len(entries)-1].Timestamp, true
}

func (tx *AccountTx) commit() {
	for _, entry := range tx.pending {
		rec := tx.records[entry.AccountID]
		rec.entries = append(rec.entries, entry)
	}
	for id, balance := range tx.balances {
		tx.records[id].account.Balance = balance
	}
	for _, fn := range tx.after {
		fn()
	}
}
