/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// kindTotals maps entry kinds to summed amounts.
type kindTotals map[EntryKind]decimal.Decimal

func (t kindTotals) get(k EntryKind) decimal.Decimal {
	return t[k]
}

// combineBalance applies the balance sign rules for one account given the
// summed entry amounts per kind. The primary totals cover entries
// recorded against the account, inbound covers entries where the account
// is the transfer destination, and fees is the sum of all fees charged
// on primary entries.
//
// Credit accounts ignore income, payables and receivables: salaries are
// not paid onto cards and debts are tracked against physical accounts.
func combineBalance(kind AccountKind, initial decimal.Decimal, primary, inbound kindTotals, fees decimal.Decimal) decimal.Decimal {
	balance := initial.
		Sub(primary.get(EntryExpense)).
		Sub(primary.get(EntryTransfer)).
		Add(inbound.get(EntryTransfer)).
		Add(primary.get(EntryRefund)).
		Add(primary.get(EntryReward)).
		Add(primary.get(EntryDiscount)).
		Add(primary.get(EntryBalanceAdjustment)).
		Sub(primary.get(EntryInterest)).
		Sub(fees)

	if kind == AccountCredit {
		return balance
	}

	return balance.
		Add(primary.get(EntryIncome)).
		Sub(primary.get(EntryPayable)).
		Add(primary.get(EntryReceivable))
}

// entryDelta returns the realized balance effect of one entry on the
// given account, including the fee. Inbound transfers credit the
// destination account at full amount.
func entryDelta(e *LedgerEntry, accountID uuid.UUID) decimal.Decimal {
	if e.AccountID == accountID {
		var delta decimal.Decimal

		switch e.Kind {
		case EntryExpense, EntryTransfer, EntryPayable, EntryInterest:
			delta = e.Amount.Neg()
		default:
			// income, receivable, refund, reward, discount, balance_adjustment
			delta = e.Amount
		}

		return delta.Sub(e.Fee)
	}

	if e.Kind == EntryTransfer && e.ToAccountID != nil && *e.ToAccountID == accountID {
		return e.Amount
	}

	return decimal.Zero
}
