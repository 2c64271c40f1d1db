/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"net/http"
	"time"

	"github.com/flamego/flamego"
	"github.com/shopspring/decimal"

	"github.com/humaidq/coinbook/db"
)

// ListAccounts returns every account without computed balances.
func ListAccounts(c flamego.Context) {
	accounts, err := db.ListAccounts(c.Request().Context())
	if err != nil {
		writeStoreError(c, err)
		return
	}

	writeData(c, http.StatusOK, accounts)
}

// AccountBalances returns every account with its computed balance and
// the net worth summary.
func AccountBalances(c flamego.Context) {
	balances, summary, err := db.ListAccountBalances(c.Request().Context(), time.Now().UTC())
	if err != nil {
		writeStoreError(c, err)
		return
	}

	writeData(c, http.StatusOK, map[string]any{
		"accounts": balances,
		"summary":  summary,
	})
}

type createAccountRequest struct {
	Name           string              `json:"name"`
	Kind           db.AccountKind      `json:"kind"`
	Grouping       string              `json:"grouping"`
	IncludeInStats *bool               `json:"includeInStats"`
	InitialBalance decimal.Decimal     `json:"initialBalance"`
	Currency       string              `json:"currency"`
	CreditLimit    decimal.NullDecimal `json:"creditLimit"`
	BillDay        *int                `json:"billDay"`
	PayDay         *int                `json:"payDay"`
}

// CreateAccount creates a new physical or credit account.
func CreateAccount(c flamego.Context) {
	var req createAccountRequest
	if err := decodeBody(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name == "" {
		writeError(c, http.StatusBadRequest, errMissingName)
		return
	}

	if req.Kind != db.AccountPhysical && req.Kind != db.AccountCredit {
		writeError(c, http.StatusBadRequest, errInvalidKind)
		return
	}

	includeInStats := true
	if req.IncludeInStats != nil {
		includeInStats = *req.IncludeInStats
	}

	currency := req.Currency
	if currency == "" {
		currency = "TWD"
	}

	account, err := db.CreateAccount(c.Request().Context(), db.CreateAccountInput{
		Name:           req.Name,
		Kind:           req.Kind,
		Grouping:       req.Grouping,
		IncludeInStats: includeInStats,
		InitialBalance: req.InitialBalance,
		Currency:       currency,
		CreditLimit:    req.CreditLimit,
		BillDay:        req.BillDay,
		PayDay:         req.PayDay,
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}

	writeData(c, http.StatusCreated, account)
}

// GetAccount returns one account with its balance as of now.
func GetAccount(c flamego.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request().Context()

	account, err := db.GetAccount(ctx, id)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	balance, err := db.BalanceAsOf(ctx, id, time.Now().UTC())
	if err != nil {
		writeStoreError(c, err)
		return
	}

	writeData(c, http.StatusOK, map[string]any{
		"account": account,
		"balance": balance.Round(2),
	})
}
