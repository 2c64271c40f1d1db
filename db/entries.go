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

const ledgerEntryColumns = `id, kind, amount, fee, discount, category, subcategory, note,
	merchant, counterparty, account_id, to_account_id, occurred_at, billing_assignment,
	recurring, plan_id, period_index, schedule_state, statement_id, reconciled,
	created_at, updated_at`

func scanLedgerEntry(row pgx.Row) (*LedgerEntry, error) {
	var e LedgerEntry

	err := row.Scan(
		&e.ID, &e.Kind, &e.Amount, &e.Fee, &e.Discount, &e.Category, &e.Subcategory,
		&e.Note, &e.Merchant, &e.Counterparty, &e.AccountID, &e.ToAccountID,
		&e.OccurredAt, &e.BillingAssignment, &e.Recurring, &e.PlanID, &e.PeriodIndex,
		&e.ScheduleState, &e.StatementID, &e.Reconciled, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &e, nil
}

func collectLedgerEntries(rows pgx.Rows) ([]LedgerEntry, error) {
	defer rows.Close()

	var entries []LedgerEntry

	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}

		entries = append(entries, *e)
	}

	return entries, rows.Err()
}

// CreateLedgerEntryInput holds the fields for a new ledger entry.
type CreateLedgerEntryInput struct {
	Kind              EntryKind
	Amount            decimal.Decimal
	Fee               decimal.Decimal
	Discount          decimal.Decimal
	Category          string
	Subcategory       *string
	Note              string
	Merchant          *string
	Counterparty      *string
	AccountID         uuid.UUID
	ToAccountID       *uuid.UUID
	OccurredAt        time.Time
	BillingAssignment *time.Time
	Recurring         bool
	PlanID            *uuid.UUID
	PeriodIndex       *int
	ScheduleState     *ScheduleState
}

// CreateLedgerEntry inserts a new ledger entry and returns it.
func CreateLedgerEntry(ctx context.Context, input CreateLedgerEntryInput) (*LedgerEntry, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	row := pool.QueryRow(ctx, `
		INSERT INTO ledger_entries (kind, amount, fee, discount, category, subcategory,
			note, merchant, counterparty, account_id, to_account_id, occurred_at,
			billing_assignment, recurring, plan_id, period_index, schedule_state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING `+ledgerEntryColumns,
		input.Kind, input.Amount, input.Fee, input.Discount, input.Category,
		input.Subcategory, input.Note, input.Merchant, input.Counterparty,
		input.AccountID, input.ToAccountID, input.OccurredAt, input.BillingAssignment,
		input.Recurring, input.PlanID, input.PeriodIndex, input.ScheduleState)

	entry, err := scanLedgerEntry(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger entry: %w", err)
	}

	return entry, nil
}

// GetLedgerEntry returns a single entry by ID.
func GetLedgerEntry(ctx context.Context, id uuid.UUID) (*LedgerEntry, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	row := pool.QueryRow(ctx,
		`SELECT `+ledgerEntryColumns+` FROM ledger_entries WHERE id = $1`, id)

	entry, err := scanLedgerEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEntryNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}

	return entry, nil
}

// ListAccountEntries returns every entry touching the account, either as
// the primary account or as a transfer destination, oldest first.
func ListAccountEntries(ctx context.Context, accountID uuid.UUID) ([]LedgerEntry, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	rows, err := pool.Query(ctx, `
		SELECT `+ledgerEntryColumns+`
		FROM ledger_entries
		WHERE account_id = $1 OR to_account_id = $1
		ORDER BY occurred_at, created_at`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list account entries: %w", err)
	}

	return collectLedgerEntries(rows)
}

// ListPlanEntries returns the materialized occurrences of a plan in
// period order.
func ListPlanEntries(ctx context.Context, planID uuid.UUID) ([]LedgerEntry, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	rows, err := pool.Query(ctx, `
		SELECT `+ledgerEntryColumns+`
		FROM ledger_entries
		WHERE plan_id = $1
		ORDER BY period_index`, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan entries: %w", err)
	}

	return collectLedgerEntries(rows)
}
