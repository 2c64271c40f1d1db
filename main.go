/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/humaidq/coinbook/cmd"
)

func main() {
	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	app := &cli.Command{
		Name:  "coinbook",
		Usage: "Coinbook - Personal Bookkeeping",
		Commands: []*cli.Command{
			cmd.CmdStart,
			cmd.CmdMigrate,
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
