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

// defaultRecurringPeriods is how many periods a new recurring plan (and
// each extension) covers.
const defaultRecurringPeriods = 12

const paymentPlanColumns = `id, name, kind, amount, total_amount, total_periods, frequency,
	payment_day, start_date, account_id, category, subcategory, counterparty, note, status,
	created_at, updated_at`

func scanPaymentPlan(row pgx.Row) (*PaymentPlan, error) {
	var p PaymentPlan

	err := row.Scan(
		&p.ID, &p.Name, &p.Kind, &p.Amount, &p.TotalAmount, &p.TotalPeriods,
		&p.Frequency, &p.PaymentDay, &p.StartDate, &p.AccountID, &p.Category,
		&p.Subcategory, &p.Counterparty, &p.Note, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// CreatePaymentPlanInput holds the fields for a new payment plan.
type CreatePaymentPlanInput struct {
	Name         string
	Kind         PlanKind
	Amount       decimal.Decimal
	TotalPeriods *int
	Frequency    PlanFrequency
	PaymentDay   int
	StartDate    time.Time
	AccountID    uuid.UUID
	Category     string
	Subcategory  *string
	Counterparty *string
	Note         *string
}

// CreatePaymentPlan inserts a new plan. Recurring plans without an
// explicit length default to a year of periods; installment plans derive
// their total amount from the per-period amount.
func CreatePaymentPlan(ctx context.Context, input CreatePaymentPlanInput) (*PaymentPlan, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	totalPeriods := input.TotalPeriods
	if input.Kind == PlanRecurring && totalPeriods == nil {
		defaults := defaultRecurringPeriods
		totalPeriods = &defaults
	}

	var totalAmount decimal.NullDecimal
	if input.Kind == PlanInstallment && totalPeriods != nil {
		totalAmount = decimal.NewNullDecimal(
			input.Amount.Mul(decimal.NewFromInt(int64(*totalPeriods))))
	}

	row := pool.QueryRow(ctx, `
		INSERT INTO payment_plans (name, kind, amount, total_amount, total_periods,
			frequency, payment_day, start_date, account_id, category, subcategory,
			counterparty, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+paymentPlanColumns,
		input.Name, input.Kind, input.Amount, totalAmount, totalPeriods,
		input.Frequency, input.PaymentDay, input.StartDate, input.AccountID,
		input.Category, input.Subcategory, input.Counterparty, input.Note)

	plan, err := scanPaymentPlan(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment plan: %w", err)
	}

	return plan, nil
}

// GetPaymentPlan returns a plan by ID.
func GetPaymentPlan(ctx context.Context, id uuid.UUID) (*PaymentPlan, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	row := pool.QueryRow(ctx,
		`SELECT `+paymentPlanColumns+` FROM payment_plans WHERE id = $1`, id)

	plan, err := scanPaymentPlan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPlanNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get payment plan: %w", err)
	}

	return plan, nil
}

// ListPaymentPlans returns plans, optionally filtered by status and kind,
// newest first.
func ListPaymentPlans(ctx context.Context, status *PlanStatus, kind *PlanKind) ([]PaymentPlan, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	rows, err := pool.Query(ctx, `
		SELECT `+paymentPlanColumns+`
		FROM payment_plans
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::text IS NULL OR kind = $2)
		ORDER BY created_at DESC`, status, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment plans: %w", err)
	}

	defer rows.Close()

	var plans []PaymentPlan

	for rows.Next() {
		p, err := scanPaymentPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment plan: %w", err)
		}

		plans = append(plans, *p)
	}

	return plans, rows.Err()
}

// UpdatePaymentPlanInput holds the updatable plan fields; nil fields are
// left unchanged.
type UpdatePaymentPlanInput struct {
	Name         *string
	AccountID    *uuid.UUID
	Category     *string
	Subcategory  *string
	Counterparty *string
	Note         *string
	Status       *PlanStatus
}

// UpdatePaymentPlan applies the non-nil fields and returns the updated
// plan.
func UpdatePaymentPlan(ctx context.Context, id uuid.UUID, input UpdatePaymentPlanInput) (*PaymentPlan, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	row := pool.QueryRow(ctx, `
		UPDATE payment_plans SET
			name = COALESCE($2, name),
			account_id = COALESCE($3, account_id),
			category = COALESCE($4, category),
			subcategory = COALESCE($5, subcategory),
			counterparty = COALESCE($6, counterparty),
			note = COALESCE($7, note),
			status = COALESCE($8, status),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+paymentPlanColumns,
		id, input.Name, input.AccountID, input.Category, input.Subcategory,
		input.Counterparty, input.Note, input.Status)

	plan, err := scanPaymentPlan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPlanNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to update payment plan: %w", err)
	}

	return plan, nil
}

// BackfillPlan materializes every missing period of the plan as a ledger
// entry. Safe to run repeatedly and concurrently: existing periods are
// skipped up front and duplicate inserts are absorbed by the unique
// period index. Returns how many periods were missing.
func BackfillPlan(ctx context.Context, plan *PaymentPlan) (int, error) {
	if pool == nil {
		return 0, ErrDatabaseConnectionNotInitialized
	}

	now := time.Now().UTC()
	total := planTotalPeriods(plan, now)

	rows, err := pool.Query(ctx,
		`SELECT period_index FROM ledger_entries
		 WHERE plan_id = $1 AND period_index IS NOT NULL`, plan.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to list existing periods: %w", err)
	}

	existing := make(map[int]bool)

	for rows.Next() {
		var idx int
		if err := rows.Scan(&idx); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan period index: %w", err)
		}

		existing[idx] = true
	}

	rows.Close()

	if err := rows.Err(); err != nil {
		return 0, err
	}

	var missing []int

	for i := 0; i < total; i++ {
		if !existing[i] {
			missing = append(missing, i)
		}
	}

	if len(missing) == 0 {
		return 0, nil
	}

	kind := EntryExpense
	if plan.Category == CategoryPayables {
		kind = EntryPayable
	}

	batch := &pgx.Batch{}

	for _, idx := range missing {
		date := periodDate(plan.StartDate, idx, plan.Frequency, plan.PaymentDay)

		state := ScheduleScheduled
		if !date.After(now) {
			state = ScheduleConfirmed
		}

		note := fmt.Sprintf("[Recurring] %s", plan.Name)
		if plan.Kind == PlanInstallment {
			note = fmt.Sprintf("[Installment %d/%d] %s", idx+1, total, plan.Name)
		}

		batch.Queue(`
			INSERT INTO ledger_entries (kind, amount, category, subcategory, note,
				counterparty, account_id, occurred_at, billing_assignment, recurring,
				plan_id, period_index, schedule_state)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8, $9, $10, $11, $12)
			ON CONFLICT (plan_id, period_index) WHERE plan_id IS NOT NULL DO NOTHING`,
			kind, plan.Amount, plan.Category, plan.Subcategory, note,
			plan.Counterparty, plan.AccountID, date, plan.Kind == PlanRecurring,
			plan.ID, idx, state)
	}

	results := pool.SendBatch(ctx, batch)

	for range missing {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return 0, fmt.Errorf("failed to backfill plan period: %w", err)
		}
	}

	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("failed to close backfill batch: %w", err)
	}

	logger.Debug("Backfilled plan periods", "plan", plan.ID, "created", len(missing))

	return len(missing), nil
}

// ConfirmPlanEntry marks one scheduled occurrence as confirmed. When the
// last occurrence of an installment plan is confirmed, the plan itself is
// completed.
func ConfirmPlanEntry(ctx context.Context, planID, entryID uuid.UUID) (*LedgerEntry, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	row := pool.QueryRow(ctx, `
		UPDATE ledger_entries
		SET schedule_state = $3, updated_at = NOW()
		WHERE id = $1 AND plan_id = $2
		RETURNING `+ledgerEntryColumns,
		entryID, planID, ScheduleConfirmed)

	entry, err := scanLedgerEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEntryNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to confirm plan entry: %w", err)
	}

	plan, err := GetPaymentPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	if plan.Kind == PlanInstallment {
		var remaining int

		err := pool.QueryRow(ctx, `
			SELECT COUNT(*) FROM ledger_entries
			WHERE plan_id = $1 AND schedule_state = $2`,
			planID, ScheduleScheduled).Scan(&remaining)
		if err != nil {
			return nil, fmt.Errorf("failed to count scheduled periods: %w", err)
		}

		if remaining == 0 {
			_, err := pool.Exec(ctx, `
				UPDATE payment_plans SET status = $2, updated_at = NOW()
				WHERE id = $1`, planID, PlanCompleted)
			if err != nil {
				return nil, fmt.Errorf("failed to complete plan: %w", err)
			}

			logger.Info("Installment plan completed", "plan", planID)
		}
	}

	return entry, nil
}

// DeletePaymentPlan removes a plan, deleting its scheduled occurrences
// and detaching confirmed ones so the paid history survives.
func DeletePaymentPlan(ctx context.Context, id uuid.UUID) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx,
		`DELETE FROM ledger_entries WHERE plan_id = $1 AND schedule_state = $2`,
		id, ScheduleScheduled)
	if err != nil {
		return fmt.Errorf("failed to delete scheduled entries: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE ledger_entries SET plan_id = NULL, updated_at = NOW() WHERE plan_id = $1`,
		id)
	if err != nil {
		return fmt.Errorf("failed to detach confirmed entries: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM payment_plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete payment plan: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrPlanNotFound
	}

	return tx.Commit(ctx)
}

// ExtendPaymentPlan adds another year of periods to a recurring plan and
// backfills them. Returns the updated plan and how many entries were
// created.
func ExtendPaymentPlan(ctx context.Context, id uuid.UUID) (*PaymentPlan, int, error) {
	if pool == nil {
		return nil, 0, ErrDatabaseConnectionNotInitialized
	}

	plan, err := GetPaymentPlan(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	if plan.Kind != PlanRecurring {
		return nil, 0, ErrNotRecurringPlan
	}

	row := pool.QueryRow(ctx, `
		UPDATE payment_plans
		SET total_periods = COALESCE(total_periods, 0) + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+paymentPlanColumns,
		id, defaultRecurringPeriods)

	plan, err = scanPaymentPlan(row)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to extend payment plan: %w", err)
	}

	created, err := BackfillPlan(ctx, plan)
	if err != nil {
		return nil, 0, err
	}

	return plan, created, nil
}

// PlanSummary aggregates the paid and outstanding state of a plan.
type PlanSummary struct {
	PaidCount       int             `json:"paidCount"`
	ScheduledCount  int             `json:"scheduledCount"`
	PaidAmount      decimal.Decimal `json:"paidAmount"`
	ScheduledAmount decimal.Decimal `json:"scheduledAmount"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	UnpaidAmount    decimal.Decimal `json:"unpaidAmount"`
}

// summarizePlan derives a summary from a plan's materialized entries.
func summarizePlan(plan *PaymentPlan, entries []LedgerEntry) PlanSummary {
	var s PlanSummary

	for i := range entries {
		e := &entries[i]
		if e.ScheduleState == nil {
			continue
		}

		switch *e.ScheduleState {
		case ScheduleConfirmed:
			s.PaidCount++
			s.PaidAmount = s.PaidAmount.Add(e.Amount)
		case ScheduleScheduled:
			s.ScheduledCount++
			s.ScheduledAmount = s.ScheduledAmount.Add(e.Amount)
		}
	}

	if plan.TotalAmount.Valid {
		s.TotalAmount = plan.TotalAmount.Decimal
	} else {
		s.TotalAmount = s.PaidAmount.Add(s.ScheduledAmount)
	}

	s.UnpaidAmount = s.TotalAmount.Sub(s.PaidAmount)
	if s.UnpaidAmount.IsNegative() {
		s.UnpaidAmount = decimal.Zero
	}

	s.PaidAmount = s.PaidAmount.Round(2)
	s.ScheduledAmount = s.ScheduledAmount.Round(2)
	s.TotalAmount = s.TotalAmount.Round(2)
	s.UnpaidAmount = s.UnpaidAmount.Round(2)

	return s
}

// GetPlanDetail returns a plan with its entries and summary.
func GetPlanDetail(ctx context.Context, id uuid.UUID) (*PaymentPlan, []LedgerEntry, PlanSummary, error) {
	plan, err := GetPaymentPlan(ctx, id)
	if err != nil {
		return nil, nil, PlanSummary{}, err
	}

	entries, err := ListPlanEntries(ctx, id)
	if err != nil {
		return nil, nil, PlanSummary{}, err
	}

	return plan, entries, summarizePlan(plan, entries), nil
}
