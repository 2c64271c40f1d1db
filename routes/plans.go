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

// ListPlans returns payment plans, optionally filtered by status and
// kind query parameters.
func ListPlans(c flamego.Context) {
	var (
		status *db.PlanStatus
		kind   *db.PlanKind
	)

	if v := c.Query("status"); v != "" {
		s := db.PlanStatus(v)
		status = &s
	}

	if v := c.Query("kind"); v != "" {
		k := db.PlanKind(v)
		kind = &k
	}

	plans, err := db.ListPaymentPlans(c.Request().Context(), status, kind)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	writeData(c, http.StatusOK, plans)
}

type createPlanRequest struct {
	Name         string           `json:"name"`
	Kind         db.PlanKind      `json:"kind"`
	Amount       decimal.Decimal  `json:"amount"`
	TotalPeriods *int             `json:"totalPeriods"`
	Frequency    db.PlanFrequency `json:"frequency"`
	PaymentDay   int              `json:"paymentDay"`
	StartDate    string           `json:"startDate"`
	AccountID    uuid.UUID        `json:"accountId"`
	Category     string           `json:"category"`
	Subcategory  *string          `json:"subcategory"`
	Counterparty *string          `json:"counterparty"`
	Note         *string          `json:"note"`
}

// CreatePlan creates a payment plan and materializes its periods.
func CreatePlan(c flamego.Context) {
	var req createPlanRequest
	if err := decodeBody(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name == "" {
		writeError(c, http.StatusBadRequest, errMissingName)
		return
	}

	if req.Category == "" {
		writeError(c, http.StatusBadRequest, errMissingCategory)
		return
	}

	if req.AccountID == uuid.Nil {
		writeError(c, http.StatusBadRequest, errMissingAccountID)
		return
	}

	if req.Kind != db.PlanInstallment && req.Kind != db.PlanRecurring {
		writeError(c, http.StatusBadRequest, errInvalidKind)
		return
	}

	if req.Amount.IsNegative() || req.Amount.IsZero() {
		writeError(c, http.StatusBadRequest, errInvalidAmount)
		return
	}

	switch req.Frequency {
	case db.FrequencyWeekly, db.FrequencyMonthly, db.FrequencyYearly:
	case "":
		req.Frequency = db.FrequencyMonthly
	default:
		writeError(c, http.StatusBadRequest, errInvalidFrequency)
		return
	}

	if req.PaymentDay < 1 || req.PaymentDay > 31 {
		writeError(c, http.StatusBadRequest, errInvalidPaymentDay)
		return
	}

	if req.Kind == db.PlanInstallment && (req.TotalPeriods == nil || *req.TotalPeriods < 1) {
		writeError(c, http.StatusBadRequest, errMissingPeriods)
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request().Context()

	plan, err := db.CreatePaymentPlan(ctx, db.CreatePaymentPlanInput{
		Name:         req.Name,
		Kind:         req.Kind,
		Amount:       req.Amount,
		TotalPeriods: req.TotalPeriods,
		Frequency:    req.Frequency,
		PaymentDay:   req.PaymentDay,
		StartDate:    startDate,
		AccountID:    req.AccountID,
		Category:     req.Category,
		Subcategory:  req.Subcategory,
		Counterparty: req.Counterparty,
		Note:         req.Note,
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}

	created, err := db.BackfillPlan(ctx, plan)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	writeData(c, http.StatusCreated, planMutationResponse{
		Plan:           plan,
		RecordsCreated: created,
	})
}

// planMutationResponse is the contract for plan endpoints that may
// materialize new records as a side effect.
type planMutationResponse struct {
	Plan           *db.PaymentPlan `json:"plan"`
	RecordsCreated int             `json:"recordsCreated"`
}

type planGeneration struct {
	PlanID         uuid.UUID `json:"planId"`
	PlanName       string    `json:"planName"`
	RecordsCreated int       `json:"recordsCreated"`
}

type generateRecordsResponse struct {
	TotalCreated int              `json:"totalCreated"`
	Details      []planGeneration `json:"details"`
}

// GenerateRecords tops up missing periods across every active plan.
func GenerateRecords(c flamego.Context) {
	ctx := c.Request().Context()

	active := db.PlanActive
	plans, err := db.ListPaymentPlans(ctx, &active, nil)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	resp := generateRecordsResponse{Details: make([]planGeneration, 0, len(plans))}

	for i := range plans {
		created, err := db.BackfillPlan(ctx, &plans[i])
		if err != nil {
			writeStoreError(c, err)
			return
		}

		resp.TotalCreated += created
		resp.Details = append(resp.Details, planGeneration{
			PlanID:         plans[i].ID,
			PlanName:       plans[i].Name,
			RecordsCreated: created,
		})
	}

	writeData(c, http.StatusOK, resp)
}

// GetPlan returns one plan with its materialized entries and summary.
func GetPlan(c flamego.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	plan, entries, summary, err := db.GetPlanDetail(c.Request().Context(), id)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	writeData(c, http.StatusOK, map[string]any{
		"plan":    plan,
		"entries": entries,
		"summary": summary,
	})
}

type updatePlanRequest struct {
	Name         *string        `json:"name"`
	AccountID    *uuid.UUID     `json:"accountId"`
	Category     *string        `json:"category"`
	Subcategory  *string        `json:"subcategory"`
	Counterparty *string        `json:"counterparty"`
	Note         *string        `json:"note"`
	Status       *db.PlanStatus `json:"status"`
}

// UpdatePlan updates plan metadata and tops up any missing periods.
func UpdatePlan(c flamego.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	var req updatePlanRequest
	if err := decodeBody(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request().Context()

	plan, err := db.UpdatePaymentPlan(ctx, id, db.UpdatePaymentPlanInput{
		Name:         req.Name,
		AccountID:    req.AccountID,
		Category:     req.Category,
		Subcategory:  req.Subcategory,
		Counterparty: req.Counterparty,
		Note:         req.Note,
		Status:       req.Status,
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}

	if _, err := db.BackfillPlan(ctx, plan); err != nil {
		writeStoreError(c, err)
		return
	}

	writeData(c, http.StatusOK, plan)
}

// DeletePlan removes a plan, its scheduled entries, and detaches paid
// history.
func DeletePlan(c flamego.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	if err := db.DeletePaymentPlan(c.Request().Context(), id); err != nil {
		writeStoreError(c, err)
		return
	}

	writeData(c, http.StatusOK, map[string]any{"deleted": true})
}

// ConfirmPlanRecord marks a scheduled plan occurrence as paid.
func ConfirmPlanRecord(c flamego.Context) {
	planID, err := paramUUID(c, "id")
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	entryID, err := paramUUID(c, "record_id")
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	entry, err := db.ConfirmPlanEntry(c.Request().Context(), planID, entryID)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	writeData(c, http.StatusOK, entry)
}

// ExtendPlan adds another year of periods to a recurring plan.
func ExtendPlan(c flamego.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	plan, created, err := db.ExtendPaymentPlan(c.Request().Context(), id)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	writeData(c, http.StatusOK, planMutationResponse{
		Plan:           plan,
		RecordsCreated: created,
	})
}
