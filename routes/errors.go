/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import "errors"

var (
	errInternal           = errors.New("internal server error")
	errInvalidBody        = errors.New("invalid request body")
	errInvalidID          = errors.New("invalid id")
	errInvalidDate        = errors.New("invalid date")
	errInvalidYear        = errors.New("year out of range")
	errInvalidMonth       = errors.New("month out of range")
	errMissingName        = errors.New("name is required")
	errMissingCategory    = errors.New("category is required")
	errMissingAccountID   = errors.New("accountId is required")
	errInvalidKind        = errors.New("invalid kind")
	errInvalidAmount      = errors.New("amount must not be negative")
	errInvalidFrequency   = errors.New("invalid frequency")
	errInvalidPaymentDay  = errors.New("payment day out of range")
	errMissingPeriods     = errors.New("totalPeriods is required for installment plans")
	errMissingCycleBounds = errors.New("billing cycle start and end are required")
)
