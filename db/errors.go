/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"errors"

	"github.com/humaidq/coinbook/logging"
)

var logger = logging.Logger(logging.SourceDB)

var (
	ErrDatabaseURLEnvVarNotSet          = errors.New("DATABASE_URL environment variable is not set")
	ErrDatabaseNameNotSpecified         = errors.New("database name not specified in DATABASE_URL")
	ErrDatabaseConnectionNotInitialized = errors.New("database connection not initialized")

	ErrAccountNotFound   = errors.New("account not found")
	ErrPlanNotFound      = errors.New("payment plan not found")
	ErrEntryNotFound     = errors.New("ledger entry not found")
	ErrStatementNotFound = errors.New("statement not found")

	ErrNotCreditAccount = errors.New("account is not a credit account")
	ErrBillDayNotSet    = errors.New("credit account bill day not set")
	ErrNotRecurringPlan = errors.New("only recurring plans can be extended")
)
