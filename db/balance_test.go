// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
//
// SPDX-License-Identifier: Apache-2.0
package db

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCombineBalancePhysical(t *testing.T) {
	t.Parallel()

	primary := kindTotals{
		EntryIncome:            dec("50"),
		EntryExpense:           dec("30"),
		EntryTransfer:          dec("20"),
		EntryPayable:           dec("5"),
		EntryReceivable:        dec("15"),
		EntryRefund:            dec("2"),
		EntryInterest:          dec("1"),
		EntryBalanceAdjustment: dec("4"),
	}
	inbound := kindTotals{EntryTransfer: dec("10")}

	got := combineBalance(AccountPhysical, dec("100"), primary, inbound, dec("3"))
	if !got.Equal(dec("122")) {
		t.Errorf("combineBalance() = %s, want 122", got)
	}
}

func TestCombineBalanceCreditIgnoresCashKinds(t *testing.T) {
	t.Parallel()

	// Income, payables and receivables never move a card balance.
	primary := kindTotals{
		EntryExpense:    dec("500"),
		EntryRefund:     dec("50"),
		EntryIncome:     dec("1000"),
		EntryPayable:    dec("100"),
		EntryReceivable: dec("200"),
	}
	inbound := kindTotals{EntryTransfer: dec("300")}

	got := combineBalance(AccountCredit, decimal.Zero, primary, inbound, decimal.Zero)
	if !got.Equal(dec("-150")) {
		t.Errorf("combineBalance() = %s, want -150", got)
	}
}

func TestCombineBalanceCreditSpendAndRepay(t *testing.T) {
	t.Parallel()

	// Spend 800 with 10 in fees and 5 interest, repay 600: owing 215.
	primary := kindTotals{
		EntryExpense:  dec("800"),
		EntryInterest: dec("5"),
	}
	inbound := kindTotals{EntryTransfer: dec("600")}

	got := combineBalance(AccountCredit, decimal.Zero, primary, inbound, dec("10"))
	if !got.Equal(dec("-215")) {
		t.Errorf("combineBalance() = %s, want -215", got)
	}
}

func TestEntryDelta(t *testing.T) {
	t.Parallel()

	account := uuid.New()
	other := uuid.New()

	tests := []struct {
		name  string
		entry LedgerEntry
		want  string
	}{
		{
			name:  "income credits",
			entry: LedgerEntry{Kind: EntryIncome, Amount: dec("100"), AccountID: account},
			want:  "100",
		},
		{
			name:  "expense with fee debits both",
			entry: LedgerEntry{Kind: EntryExpense, Amount: dec("40"), Fee: dec("2"), AccountID: account},
			want:  "-42",
		},
		{
			name: "transfer out debits",
			entry: LedgerEntry{
				Kind: EntryTransfer, Amount: dec("50"), AccountID: account, ToAccountID: &other,
			},
			want: "-50",
		},
		{
			name: "transfer in credits full amount",
			entry: LedgerEntry{
				Kind: EntryTransfer, Amount: dec("50"), Fee: dec("1"),
				AccountID: other, ToAccountID: &account,
			},
			want: "50",
		},
		{
			name:  "payable debits",
			entry: LedgerEntry{Kind: EntryPayable, Amount: dec("25"), AccountID: account},
			want:  "-25",
		},
		{
			name:  "refund credits",
			entry: LedgerEntry{Kind: EntryRefund, Amount: dec("12"), AccountID: account},
			want:  "12",
		},
		{
			name:  "interest debits",
			entry: LedgerEntry{Kind: EntryInterest, Amount: dec("3"), AccountID: account},
			want:  "-3",
		},
		{
			name:  "unrelated account untouched",
			entry: LedgerEntry{Kind: EntryExpense, Amount: dec("99"), AccountID: other},
			want:  "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := entryDelta(&tt.entry, account); !got.Equal(dec(tt.want)) {
				t.Errorf("entryDelta() = %s, want %s", got, tt.want)
			}
		})
	}
}
