package handler

import (
	"github.com/gorilla/mux"
)

// Register mounts the ledger API under /api.
func Register(router *mux.Router, accounts *AccountHandler, transactions *TransactionHandler) {
	api := router.PathPrefix("/api").Subrouter()

	// Account routes
	api.HandleFunc("/accounts", accounts.CreateAccount).Methods("POST")
	api.HandleFunc("/accounts", accounts.ListAccounts).Methods("GET")
	api.HandleFunc("/accounts/{account_id}", accounts.GetAccount).Methods("GET")
	api.HandleFunc("/accounts/{account_id}/balance", accounts.GetBalance).Methods("GET")

	// Transaction routes
	api.HandleFunc("/transactions/transfer", transactions.Transfer).Methods("POST")
	api.HandleFunc("/transactions/{account_id}/deposit", transactions.Deposit).Methods("POST")
	api.HandleFunc("/transactions/{account_id}/withdraw", transactions.Withdraw).Methods("POST")
	api.HandleFunc("/transactions/{account_id}", transactions.GetTransactions).Methods("GET")
}
