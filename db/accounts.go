/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const accountColumns = `id, name, kind, grouping, include_in_stats, initial_balance,
	currency, credit_limit, bill_day, pay_day, created_at, updated_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account

	err := row.Scan(
		&a.ID, &a.Name, &a.Kind, &a.Grouping, &a.IncludeInStats, &a.InitialBalance,
		&a.Currency, &a.CreditLimit, &a.BillDay, &a.PayDay, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &a, nil
}

// CreateAccountInput holds the fields for a new account.
type CreateAccountInput struct {
	Name           string
	Kind           AccountKind
	Grouping       string
	IncludeInStats bool
	InitialBalance decimal.Decimal
	Currency       string
	CreditLimit    decimal.NullDecimal
	BillDay        *int
	PayDay         *int
}

// CreateAccount inserts a new account and returns it.
func CreateAccount(ctx context.Context, input CreateAccountInput) (*Account, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	row := pool.QueryRow(ctx, `
		INSERT INTO accounts (name, kind, grouping, include_in_stats, initial_balance,
			currency, credit_limit, bill_day, pay_day)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+accountColumns,
		input.Name, input.Kind, input.Grouping, input.IncludeInStats,
		input.InitialBalance, input.Currency, input.CreditLimit, input.BillDay,
		input.PayDay)

	account, err := scanAccount(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// GetAccount returns an account by ID.
func GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	row := pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}

// ListAccounts returns all accounts ordered by name.
func ListAccounts(ctx context.Context) ([]Account, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	rows, err := pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	defer rows.Close()

	var accounts []Account

	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}

		accounts = append(accounts, *a)
	}

	return accounts, rows.Err()
}

// realizedFilter keeps entries that actually happened: scheduled plan
// occurrences never move money.
const realizedFilter = `(schedule_state IS NULL OR schedule_state <> 'scheduled')`

// BalanceAsOf computes an account's balance from realized entries dated
// strictly before the cutoff.
func BalanceAsOf(ctx context.Context, accountID uuid.UUID, cutoff time.Time) (decimal.Decimal, error) {
	account, err := GetAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	return balanceForAccount(ctx, account, cutoff)
}

func balanceForAccount(ctx context.Context, account *Account, cutoff time.Time) (decimal.Decimal, error) {
	rows, err := pool.Query(ctx, `
		SELECT kind, COALESCE(SUM(amount), 0), COALESCE(SUM(fee), 0)
		FROM ledger_entries
		WHERE account_id = $1 AND occurred_at < $2 AND `+realizedFilter+`
		GROUP BY kind`, account.ID, cutoff)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum account entries: %w", err)
	}

	primary := make(kindTotals)
	fees := decimal.Zero

	for rows.Next() {
		var (
			kind        EntryKind
			amount, fee decimal.Decimal
		)

		if err := rows.Scan(&kind, &amount, &fee); err != nil {
			rows.Close()
			return decimal.Zero, fmt.Errorf("failed to scan kind total: %w", err)
		}

		primary[kind] = amount
		fees = fees.Add(fee)
	}

	rows.Close()

	if err := rows.Err(); err != nil {
		return decimal.Zero, err
	}

	var inboundTransfers decimal.Decimal

	err = pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM ledger_entries
		WHERE to_account_id = $1 AND kind = $2 AND occurred_at < $3 AND `+realizedFilter,
		account.ID, EntryTransfer, cutoff).Scan(&inboundTransfers)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum inbound transfers: %w", err)
	}

	inbound := kindTotals{EntryTransfer: inboundTransfers}

	return combineBalance(account.Kind, account.InitialBalance, primary, inbound, fees), nil
}

// AccountBalance is an account with its computed current balance.
type AccountBalance struct {
	Account

	Balance         decimal.Decimal     `json:"balance"`
	AvailableCredit decimal.NullDecimal `json:"availableCredit"`
}

// BalanceSummary is the net worth position across accounts that count
// towards statistics.
type BalanceSummary struct {
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	NetWorth         decimal.Decimal `json:"netWorth"`
}

// ListAccountBalances computes every account's balance as of now in two
// grouped queries, along with the net worth summary. Positive physical
// balances are assets; negative credit balances are liabilities.
func ListAccountBalances(ctx context.Context, now time.Time) ([]AccountBalance, *BalanceSummary, error) {
	if pool == nil {
		return nil, nil, ErrDatabaseConnectionNotInitialized
	}

	accounts, err := ListAccounts(ctx)
	if err != nil {
		return nil, nil, err
	}

	rows, err := pool.Query(ctx, `
		SELECT account_id, kind, COALESCE(SUM(amount), 0), COALESCE(SUM(fee), 0)
		FROM ledger_entries
		WHERE occurred_at < $1 AND `+realizedFilter+`
		GROUP BY account_id, kind`, now)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sum entries: %w", err)
	}

	primaryByAccount := make(map[uuid.UUID]kindTotals)
	feesByAccount := make(map[uuid.UUID]decimal.Decimal)

	for rows.Next() {
		var (
			accountID   uuid.UUID
			kind        EntryKind
			amount, fee decimal.Decimal
		)

		if err := rows.Scan(&accountID, &kind, &amount, &fee); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("failed to scan account total: %w", err)
		}

		if primaryByAccount[accountID] == nil {
			primaryByAccount[accountID] = make(kindTotals)
		}

		primaryByAccount[accountID][kind] = amount
		feesByAccount[accountID] = feesByAccount[accountID].Add(fee)
	}

	rows.Close()

	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	rows, err = pool.Query(ctx, `
		SELECT to_account_id, COALESCE(SUM(amount), 0)
		FROM ledger_entries
		WHERE to_account_id IS NOT NULL AND kind = $1
		  AND occurred_at < $2 AND `+realizedFilter+`
		GROUP BY to_account_id`, EntryTransfer, now)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sum inbound transfers: %w", err)
	}

	inboundByAccount := make(map[uuid.UUID]decimal.Decimal)

	for rows.Next() {
		var (
			accountID uuid.UUID
			amount    decimal.Decimal
		)

		if err := rows.Scan(&accountID, &amount); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("failed to scan inbound total: %w", err)
		}

		inboundByAccount[accountID] = amount
	}

	rows.Close()

	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	balances := make([]AccountBalance, 0, len(accounts))
	summary := &BalanceSummary{}

	for i := range accounts {
		account := accounts[i]

		primary := primaryByAccount[account.ID]
		if primary == nil {
			primary = kindTotals{}
		}

		inbound := kindTotals{EntryTransfer: inboundByAccount[account.ID]}
		balance := combineBalance(account.Kind, account.InitialBalance, primary,
			inbound, feesByAccount[account.ID]).Round(2)

		ab := AccountBalance{Account: account, Balance: balance}

		if account.Kind == AccountCredit && account.CreditLimit.Valid {
			ab.AvailableCredit = decimal.NewNullDecimal(
				account.CreditLimit.Decimal.Add(balance).Round(2))
		}

		balances = append(balances, ab)

		if !account.IncludeInStats {
			continue
		}

		switch {
		case account.Kind == AccountPhysical && balance.IsPositive():
			summary.TotalAssets = summary.TotalAssets.Add(balance)
		case account.Kind == AccountCredit && balance.IsNegative():
			summary.TotalLiabilities = summary.TotalLiabilities.Add(balance.Abs())
		}
	}

	summary.TotalAssets = summary.TotalAssets.Round(2)
	summary.TotalLiabilities = summary.TotalLiabilities.Round(2)
	summary.NetWorth = summary.TotalAssets.Sub(summary.TotalLiabilities).Round(2)

	return balances, summary, nil
}
