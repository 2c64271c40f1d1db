/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"net/http"

	"github.com/flamego/flamego"

	"github.com/humaidq/coinbook/db"
)

// CashflowReport returns the forward-looking cash plan for a month.
func CashflowReport(c flamego.Context) {
	year, month, err := queryYearMonth(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	report, err := db.GetCashflowReport(c.Request().Context(), year, month)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	writeData(c, http.StatusOK, report)
}

// MonthlyReport returns the retrospective spending breakdown for a
// month.
func MonthlyReport(c flamego.Context) {
	year, month, err := queryYearMonth(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	report, err := db.GetMonthlyReport(c.Request().Context(), year, month)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	writeData(c, http.StatusOK, report)
}
