/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/flamego/flamego"
	"github.com/google/uuid"

	"github.com/humaidq/coinbook/db"
	"github.com/humaidq/coinbook/logging"
)

var logger = logging.Logger(logging.SourceWeb)

type response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeData(c flamego.Context, status int, data any) {
	writeResponse(c, status, response{Success: true, Data: data})
}

func writeError(c flamego.Context, status int, err error) {
	writeResponse(c, status, response{Success: false, Error: err.Error()})
}

func writeResponse(c flamego.Context, status int, body response) {
	w := c.ResponseWriter()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// writeStoreError maps store sentinels to HTTP status codes. Unknown
// errors are logged and hidden from the client.
func writeStoreError(c flamego.Context, err error) {
	switch {
	case errors.Is(err, db.ErrAccountNotFound),
		errors.Is(err, db.ErrPlanNotFound),
		errors.Is(err, db.ErrEntryNotFound),
		errors.Is(err, db.ErrStatementNotFound):
		writeError(c, http.StatusNotFound, err)
	case errors.Is(err, db.ErrNotCreditAccount),
		errors.Is(err, db.ErrBillDayNotSet),
		errors.Is(err, db.ErrNotRecurringPlan):
		writeError(c, http.StatusBadRequest, err)
	default:
		logger.Error("Request failed",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"error", err)
		writeError(c, http.StatusInternalServerError, errInternal)
	}
}

func decodeBody(c flamego.Context, dst any) error {
	if err := json.NewDecoder(c.Request().Request.Body).Decode(dst); err != nil {
		return errInvalidBody
	}

	return nil
}

func paramUUID(c flamego.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, errInvalidID
	}

	return id, nil
}

// parseDate accepts a civil date or a full RFC 3339 timestamp.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errInvalidDate
	}

	return t.UTC(), nil
}

// queryYearMonth reads year and month query parameters, defaulting to
// the current month.
func queryYearMonth(c flamego.Context) (int, int, error) {
	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())

	if v := c.Query("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1970 || parsed > 9999 {
			return 0, 0, errInvalidYear
		}

		year = parsed
	}

	if v := c.Query("month"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 12 {
			return 0, 0, errInvalidMonth
		}

		month = parsed
	}

	return year, month, nil
}
