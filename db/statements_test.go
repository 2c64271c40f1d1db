// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
//
// SPDX-License-Identifier: Apache-2.0
package db

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestStatementDueDate(t *testing.T) {
	t.Parallel()

	cycleEnd := utcDate(2025, time.January, 15)

	tests := []struct {
		name    string
		billDay *int
		payDay  *int
		want    time.Time
	}{
		{
			name:    "pay day after cycle end stays in month",
			billDay: intPtr(15), payDay: intPtr(20),
			want: utcDate(2025, time.January, 20),
		},
		{
			name:    "pay day before cycle end moves to next month",
			billDay: intPtr(15), payDay: intPtr(5),
			want: utcDate(2025, time.February, 5),
		},
		{
			name:    "falls back to bill day",
			billDay: intPtr(15), payDay: nil,
			want: utcDate(2025, time.February, 15),
		},
		{
			name:    "falls back to first of month",
			billDay: nil, payDay: nil,
			want: utcDate(2025, time.February, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := statementDueDate(cycleEnd, tt.billDay, tt.payDay)
			if !got.Equal(tt.want) {
				t.Errorf("statementDueDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReconciliationTotal(t *testing.T) {
	t.Parallel()

	card := uuid.New()
	bank := uuid.New()

	entries := []LedgerEntry{
		{Kind: EntryExpense, Amount: dec("100"), Fee: dec("5"), AccountID: card},
		{Kind: EntryRefund, Amount: dec("20"), AccountID: card},
		// Repayment transfer must not count towards the bill
		{Kind: EntryTransfer, Amount: dec("500"), AccountID: bank, ToAccountID: &card},
	}

	if got := reconciliationTotal(entries, card); !got.Equal(dec("85")) {
		t.Errorf("reconciliationTotal() = %s, want 85", got)
	}
}
