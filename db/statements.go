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

const statementColumns = `id, account_id, billing_cycle_start, billing_cycle_end, due_date,
	statement_amount, paid_amount, paid_date, status, note, created_at, updated_at`

func scanStatement(row pgx.Row) (*Statement, error) {
	var s Statement

	err := row.Scan(
		&s.ID, &s.AccountID, &s.BillingCycleStart, &s.BillingCycleEnd, &s.DueDate,
		&s.StatementAmount, &s.PaidAmount, &s.PaidDate, &s.Status, &s.Note,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// reconciliationTotal sums the entries bound to a statement. Card
// repayments are ignored, credits reduce the total, everything else adds
// amount plus fee.
func reconciliationTotal(entries []LedgerEntry, cardID uuid.UUID) decimal.Decimal {
	total := decimal.Zero

	for i := range entries {
		e := &entries[i]
		if isCardPayment(e, cardID) {
			continue
		}

		if reducesBill(e.Kind) {
			total = total.Sub(e.Amount)
		} else {
			total = total.Add(e.Amount).Add(e.Fee)
		}
	}

	return total.Round(2)
}

// AssembleBillingPeriods builds the billing cycle view of a credit card,
// annotating cycles that already have a saved statement.
func AssembleBillingPeriods(ctx context.Context, accountID uuid.UUID) ([]BillingPeriod, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	account, err := GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if account.Kind != AccountCredit {
		return nil, ErrNotCreditAccount
	}

	if account.BillDay == nil {
		return nil, ErrBillDayNotSet
	}

	entries, err := ListAccountEntries(ctx, accountID)
	if err != nil {
		return nil, err
	}

	periods := assembleBillingPeriods(accountID, entries, *account.BillDay, time.Now().UTC())
	if len(periods) == 0 {
		return nil, nil
	}

	rows, err := pool.Query(ctx,
		`SELECT `+statementColumns+` FROM statements WHERE account_id = $1`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list statements: %w", err)
	}

	defer rows.Close()

	// Statements are matched to cycles by the civil date the cycle ends on.
	byEndDate := make(map[string]*Statement)

	for rows.Next() {
		s, err := scanStatement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan statement: %w", err)
		}

		byEndDate[s.BillingCycleEnd.UTC().Format("2006-01-02")] = s
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range periods {
		if s, ok := byEndDate[periods[i].CycleEnd.Format("2006-01-02")]; ok {
			id := s.ID
			periods[i].StatementID = &id
			periods[i].StatementAmount = s.StatementAmount
		}
	}

	return periods, nil
}

// StatementDetail is a statement with its account name and the total of
// the entries reconciled against it.
type StatementDetail struct {
	Statement

	AccountName    string              `json:"accountName"`
	ConfirmedTotal decimal.Decimal     `json:"confirmedTotal"`
	Difference     decimal.NullDecimal `json:"difference"`
}

func statementDetail(ctx context.Context, s *Statement, accountName string) (*StatementDetail, error) {
	rows, err := pool.Query(ctx, `
		SELECT `+ledgerEntryColumns+`
		FROM ledger_entries
		WHERE statement_id = $1 AND reconciled = TRUE`, s.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list statement entries: %w", err)
	}

	entries, err := collectLedgerEntries(rows)
	if err != nil {
		return nil, err
	}

	detail := &StatementDetail{
		Statement:      *s,
		AccountName:    accountName,
		ConfirmedTotal: reconciliationTotal(entries, s.AccountID),
	}

	if s.StatementAmount.Valid {
		detail.Difference = decimal.NewNullDecimal(
			s.StatementAmount.Decimal.Sub(detail.ConfirmedTotal).Round(2))
	}

	return detail, nil
}

// GetStatement returns a statement with its reconciled total and the
// entries bound to it.
func GetStatement(ctx context.Context, id uuid.UUID) (*StatementDetail, []LedgerEntry, error) {
	if pool == nil {
		return nil, nil, ErrDatabaseConnectionNotInitialized
	}

	row := pool.QueryRow(ctx, `
		SELECT `+statementColumns+` FROM statements WHERE id = $1`, id)

	s, err := scanStatement(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, ErrStatementNotFound
	} else if err != nil {
		return nil, nil, fmt.Errorf("failed to get statement: %w", err)
	}

	account, err := GetAccount(ctx, s.AccountID)
	if err != nil {
		return nil, nil, err
	}

	detail, err := statementDetail(ctx, s, account.Name)
	if err != nil {
		return nil, nil, err
	}

	rows, err := pool.Query(ctx, `
		SELECT `+ledgerEntryColumns+`
		FROM ledger_entries
		WHERE statement_id = $1
		ORDER BY occurred_at`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list statement entries: %w", err)
	}

	entries, err := collectLedgerEntries(rows)
	if err != nil {
		return nil, nil, err
	}

	return detail, entries, nil
}

// ListStatements returns statements newest first, optionally filtered by
// account and status.
func ListStatements(ctx context.Context, accountID *uuid.UUID, status *StatementStatus) ([]StatementDetail, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	rows, err := pool.Query(ctx, `
		SELECT s.id, s.account_id, s.billing_cycle_start, s.billing_cycle_end,
			s.due_date, s.statement_amount, s.paid_amount, s.paid_date, s.status,
			s.note, s.created_at, s.updated_at, a.name
		FROM statements s
		JOIN accounts a ON a.id = s.account_id
		WHERE ($1::uuid IS NULL OR s.account_id = $1)
		  AND ($2::text IS NULL OR s.status = $2)
		ORDER BY s.billing_cycle_end DESC`, accountID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list statements: %w", err)
	}

	type namedStatement struct {
		Statement
		accountName string
	}

	var scanned []namedStatement

	for rows.Next() {
		var n namedStatement

		err := rows.Scan(
			&n.ID, &n.AccountID, &n.BillingCycleStart, &n.BillingCycleEnd, &n.DueDate,
			&n.StatementAmount, &n.PaidAmount, &n.PaidDate, &n.Status, &n.Note,
			&n.CreatedAt, &n.UpdatedAt, &n.accountName,
		)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan statement: %w", err)
		}

		scanned = append(scanned, n)
	}

	rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	details := make([]StatementDetail, 0, len(scanned))

	for i := range scanned {
		detail, err := statementDetail(ctx, &scanned[i].Statement, scanned[i].accountName)
		if err != nil {
			return nil, err
		}

		details = append(details, *detail)
	}

	return details, nil
}

// UpdateStatementInput holds the updatable statement fields; nil fields
// are left unchanged.
type UpdateStatementInput struct {
	StatementAmount *decimal.Decimal
	PaidAmount      *decimal.Decimal
	PaidDate        *time.Time
	Status          *StatementStatus
	Note            *string
}

// UpdateStatement applies the non-nil fields and returns the updated
// statement.
func UpdateStatement(ctx context.Context, id uuid.UUID, input UpdateStatementInput) (*Statement, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	row := pool.QueryRow(ctx, `
		UPDATE statements SET
			statement_amount = COALESCE($2::numeric, statement_amount),
			paid_amount = COALESCE($3::numeric, paid_amount),
			paid_date = COALESCE($4::timestamptz, paid_date),
			status = COALESCE($5::text, status),
			note = COALESCE($6::text, note),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+statementColumns,
		id, input.StatementAmount, input.PaidAmount, input.PaidDate, input.Status,
		input.Note)

	s, err := scanStatement(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStatementNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to update statement: %w", err)
	}

	return s, nil
}

// SaveReconciliationInput describes one reconciliation pass over a
// billing cycle: entries the user matched against the bill and entries
// pushed to the next cycle.
type SaveReconciliationInput struct {
	AccountID    uuid.UUID
	CycleStart   time.Time
	CycleEnd     time.Time
	ConfirmedIDs []uuid.UUID
	DeferredIDs  []uuid.UUID
}

// SaveReconciliation records a reconciliation pass atomically: it
// upserts the cycle's statement, rebinds the confirmed entries, pushes
// deferred entries into the next cycle, and recomputes the statement
// amount and status. Replaying the same input yields the same statement.
func SaveReconciliation(ctx context.Context, input SaveReconciliationInput) (*Statement, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	account, err := GetAccount(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}

	if account.Kind != AccountCredit {
		return nil, ErrNotCreditAccount
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	cycleStart := input.CycleStart.UTC()
	cycleEnd := input.CycleEnd.UTC()
	dueDate := statementDueDate(cycleEnd, account.BillDay, account.PayDay)

	// One statement per cycle, keyed by the civil date the cycle ends on.
	row := tx.QueryRow(ctx, `
		SELECT `+statementColumns+`
		FROM statements
		WHERE account_id = $1 AND billing_cycle_end::date = $2::date`,
		input.AccountID, cycleEnd)

	statement, err := scanStatement(row)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		row = tx.QueryRow(ctx, `
			INSERT INTO statements (account_id, billing_cycle_start, billing_cycle_end,
				due_date, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+statementColumns,
			input.AccountID, cycleStart, cycleEnd, dueDate, StatementPending)

		statement, err = scanStatement(row)
		if err != nil {
			return nil, fmt.Errorf("failed to create statement: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to find statement: %w", err)
	default:
		row = tx.QueryRow(ctx, `
			UPDATE statements SET
				billing_cycle_start = $2, billing_cycle_end = $3, due_date = $4,
				status = $5, updated_at = NOW()
			WHERE id = $1
			RETURNING `+statementColumns,
			statement.ID, cycleStart, cycleEnd, dueDate, StatementPending)

		statement, err = scanStatement(row)
		if err != nil {
			return nil, fmt.Errorf("failed to update statement: %w", err)
		}
	}

	// Entries previously bound to this statement but no longer mentioned
	// revert to unreconciled.
	keep := make([]uuid.UUID, 0, len(input.ConfirmedIDs)+len(input.DeferredIDs))
	keep = append(keep, input.ConfirmedIDs...)
	keep = append(keep, input.DeferredIDs...)

	_, err = tx.Exec(ctx, `
		UPDATE ledger_entries
		SET statement_id = NULL, reconciled = FALSE, updated_at = NOW()
		WHERE statement_id = $1 AND NOT (id = ANY($2))`,
		statement.ID, keep)
	if err != nil {
		return nil, fmt.Errorf("failed to unbind entries: %w", err)
	}

	if len(input.ConfirmedIDs) > 0 {
		_, err = tx.Exec(ctx, `
			UPDATE ledger_entries
			SET statement_id = $1, reconciled = TRUE, updated_at = NOW()
			WHERE id = ANY($2)`,
			statement.ID, input.ConfirmedIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to bind confirmed entries: %w", err)
		}
	}

	if len(input.DeferredIDs) > 0 {
		nextCycleStart := cycleEnd.AddDate(0, 0, 1)

		_, err = tx.Exec(ctx, `
			UPDATE ledger_entries
			SET billing_assignment = $1, statement_id = NULL, reconciled = FALSE,
				updated_at = NOW()
			WHERE id = ANY($2)`,
			nextCycleStart, input.DeferredIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to defer entries: %w", err)
		}
	}

	rows, err := tx.Query(ctx, `
		SELECT `+ledgerEntryColumns+`
		FROM ledger_entries
		WHERE statement_id = $1 AND reconciled = TRUE`, statement.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bound entries: %w", err)
	}

	bound, err := collectLedgerEntries(rows)
	if err != nil {
		return nil, err
	}

	amount := reconciliationTotal(bound, input.AccountID)

	// The statement is confirmed once nothing billable in the window is
	// left unreconciled.
	var unreconciled int

	err = tx.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM ledger_entries
		WHERE (account_id = $1 OR to_account_id = $1)
		  AND occurred_at >= $2 AND occurred_at < $3
		  AND (billing_assignment IS NULL
		       OR (billing_assignment >= $2 AND billing_assignment < $3))
		  AND reconciled = FALSE`,
		input.AccountID, cycleStart, cycleEnd.AddDate(0, 0, 1)).Scan(&unreconciled)
	if err != nil {
		return nil, fmt.Errorf("failed to count unreconciled entries: %w", err)
	}

	status := StatementConfirmed
	if unreconciled > 0 {
		status = StatementPending
	}

	row = tx.QueryRow(ctx, `
		UPDATE statements
		SET statement_amount = $2, status = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+statementColumns,
		statement.ID, amount, status)

	statement, err = scanStatement(row)
	if err != nil {
		return nil, fmt.Errorf("failed to finalize statement: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit reconciliation: %w", err)
	}

	logger.Info("Saved reconciliation", "account", input.AccountID,
		"cycleEnd", cycleEnd.Format("2006-01-02"), "amount", amount,
		"status", status)

	return statement, nil
}

// statementDueDate places the due date on payDay after the cycle ends,
// falling back to the bill day, then the first of the month.
func statementDueDate(cycleEnd time.Time, billDay, payDay *int) time.Time {
	day := 1

	switch {
	case payDay != nil:
		day = *payDay
	case billDay != nil:
		day = *billDay
	}

	dueDate := dateForDay(cycleEnd.Year(), cycleEnd.Month(), day)
	if !dueDate.After(cycleEnd) {
		dueDate = dueDate.AddDate(0, 1, 0)
	}

	return dueDate
}
