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

var recordKinds = map[db.EntryKind]bool{
	db.EntryExpense:           true,
	db.EntryIncome:            true,
	db.EntryTransfer:          true,
	db.EntryReceivable:        true,
	db.EntryPayable:           true,
	db.EntryBalanceAdjustment: true,
	db.EntryRefund:            true,
	db.EntryInterest:          true,
	db.EntryReward:            true,
	db.EntryDiscount:          true,
}

type createRecordRequest struct {
	Kind              db.EntryKind    `json:"kind"`
	Amount            decimal.Decimal `json:"amount"`
	Fee               decimal.Decimal `json:"fee"`
	Discount          decimal.Decimal `json:"discount"`
	Category          string          `json:"category"`
	Subcategory       *string         `json:"subcategory"`
	Note              string          `json:"note"`
	Merchant          *string         `json:"merchant"`
	Counterparty      *string         `json:"counterparty"`
	AccountID         uuid.UUID       `json:"accountId"`
	ToAccountID       *uuid.UUID      `json:"toAccountId"`
	OccurredAt        string          `json:"occurredAt"`
	BillingAssignment *string         `json:"billingAssignment"`
	Recurring         bool            `json:"recurring"`
}

// CreateRecord creates a manual ledger entry.
func CreateRecord(c flamego.Context) {
	var req createRecordRequest
	if err := decodeBody(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	if !recordKinds[req.Kind] {
		writeError(c, http.StatusBadRequest, errInvalidKind)
		return
	}

	if req.Amount.IsNegative() || req.Fee.IsNegative() || req.Discount.IsNegative() {
		writeError(c, http.StatusBadRequest, errInvalidAmount)
		return
	}

	if req.AccountID == uuid.Nil {
		writeError(c, http.StatusBadRequest, errMissingAccountID)
		return
	}

	occurredAt, err := parseDate(req.OccurredAt)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	input := db.CreateLedgerEntryInput{
		Kind:         req.Kind,
		Amount:       req.Amount,
		Fee:          req.Fee,
		Discount:     req.Discount,
		Category:     req.Category,
		Subcategory:  req.Subcategory,
		Note:         req.Note,
		Merchant:     req.Merchant,
		Counterparty: req.Counterparty,
		AccountID:    req.AccountID,
		ToAccountID:  req.ToAccountID,
		OccurredAt:   occurredAt,
		Recurring:    req.Recurring,
	}

	if req.BillingAssignment != nil {
		assignment, err := parseDate(*req.BillingAssignment)
		if err != nil {
			writeError(c, http.StatusBadRequest, err)
			return
		}

		input.BillingAssignment = &assignment
	}

	entry, err := db.CreateLedgerEntry(c.Request().Context(), input)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	writeData(c, http.StatusCreated, entry)
}
