/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"net/http"

	"github.com/flamego/flamego"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/humaidq/coinbook/db"
)

// GetBillingPeriods returns the assembled billing cycles of a credit
// card.
func GetBillingPeriods(c flamego.Context) {
	v := c.Query("accountId")
	if v == "" {
		writeError(c, http.StatusBadRequest, errMissingAccountID)
		return
	}

	id, err := uuid.Parse(v)
	if err != nil {
		writeError(c, http.StatusBadRequest, errInvalidID)
		return
	}

	periods, err := db.AssembleBillingPeriods(c.Request().Context(), id)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	writeData(c, http.StatusOK, periods)
}

// ListStatements returns saved statements, optionally filtered by
// accountId and status query parameters.
func ListStatements(c flamego.Context) {
	var (
		accountID *uuid.UUID
		status    *db.StatementStatus
	)

	if v := c.Query("accountId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeError(c, http.StatusBadRequest, errInvalidID)
			return
		}

		accountID = &id
	}

	if v := c.Query("status"); v != "" {
		s := db.StatementStatus(v)
		status = &s
	}

	statements, err := db.ListStatements(c.Request().Context(), accountID, status)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	writeData(c, http.StatusOK, statements)
}

// GetStatement returns one statement with its bound entries.
func GetStatement(c flamego.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	statement, entries, err := db.GetStatement(c.Request().Context(), id)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	writeData(c, http.StatusOK, map[string]any{
		"statement": statement,
		"entries":   entries,
	})
}

type updateStatementRequest struct {
	StatementAmount *decimal.Decimal    `json:"statementAmount"`
	PaidAmount      *decimal.Decimal    `json:"paidAmount"`
	PaidDate        *string             `json:"paidDate"`
	Status          *db.StatementStatus `json:"status"`
	Note            *string             `json:"note"`
}

// UpdateStatement updates statement fields such as the official amount
// or the paid status.
func UpdateStatement(c flamego.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	var req updateStatementRequest
	if err := decodeBody(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	input := db.UpdateStatementInput{
		StatementAmount: req.StatementAmount,
		PaidAmount:      req.PaidAmount,
		Status:          req.Status,
		Note:            req.Note,
	}

	if req.PaidDate != nil {
		paidDate, err := parseDate(*req.PaidDate)
		if err != nil {
			writeError(c, http.StatusBadRequest, err)
			return
		}

		input.PaidDate = &paidDate
	}

	statement, err := db.UpdateStatement(c.Request().Context(), id, input)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	writeData(c, http.StatusOK, statement)
}

type saveReconciliationRequest struct {
	AccountID         uuid.UUID   `json:"accountId"`
	BillingCycleStart string      `json:"billingCycleStart"`
	BillingCycleEnd   string      `json:"billingCycleEnd"`
	ConfirmedIDs      []uuid.UUID `json:"confirmedIds"`
	DeferredIDs       []uuid.UUID `json:"deferredIds"`
}

// SaveReconciliation records a reconciliation pass over one billing
// cycle.
func SaveReconciliation(c flamego.Context) {
	var req saveReconciliationRequest
	if err := decodeBody(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	if req.AccountID == uuid.Nil {
		writeError(c, http.StatusBadRequest, errMissingAccountID)
		return
	}

	if req.BillingCycleStart == "" || req.BillingCycleEnd == "" {
		writeError(c, http.StatusBadRequest, errMissingCycleBounds)
		return
	}

	cycleStart, err := parseDate(req.BillingCycleStart)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	cycleEnd, err := parseDate(req.BillingCycleEnd)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	if cycleEnd.Before(cycleStart) {
		writeError(c, http.StatusBadRequest, errMissingCycleBounds)
		return
	}

	statement, err := db.SaveReconciliation(c.Request().Context(), db.SaveReconciliationInput{
		AccountID:    req.AccountID,
		CycleStart:   cycleStart,
		CycleEnd:     cycleEnd,
		ConfirmedIDs: req.ConfirmedIDs,
		DeferredIDs:  req.DeferredIDs,
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}

	writeData(c, http.StatusOK, statement)
}
