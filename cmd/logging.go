/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import "github.com/humaidq/coinbook/logging"

var appLogger = logging.Logger(logging.SourceApp)
var webLogger = logging.Logger(logging.SourceWeb)
