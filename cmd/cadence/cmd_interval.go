/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/friendsincode/cadence/internal/allocation"
	"github.com/friendsincode/cadence/internal/policy"
	"github.com/friendsincode/cadence/internal/roster"
	"github.com/friendsincode/cadence/internal/slots"
)

var intervalApply bool

var intervalCmd = &cobra.Command{
	Use:   "interval",
	Short: "Inspect or change the recurrence interval",
}

var intervalGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the stored recurrence interval in weeks",
	RunE:  runIntervalGet,
}

var intervalSetCmd = &cobra.Command{
	Use:   "set <weeks>",
	Short: fmt.Sprintf("Store the recurrence interval (%d-%d weeks)", allocation.MinIntervalWeeks, allocation.MaxIntervalWeeks),
	Args:  cobra.ExactArgs(1),
	RunE:  runIntervalSet,
}

var intervalSuggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest an interval from roster size and slot count",
	RunE:  runIntervalSuggest,
}

func init() {
	rootCmd.AddCommand(intervalCmd)
	intervalCmd.AddCommand(intervalGetCmd)
	intervalCmd.AddCommand(intervalSetCmd)
	intervalCmd.AddCommand(intervalSuggestCmd)

	intervalSuggestCmd.Flags().BoolVar(&intervalApply, "apply", false, "Persist the suggested interval")
}

func runIntervalGet(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	database, err := initDatabase()
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}

	weeks := policy.NewService(database, logger).IntervalWeeks(context.Background())
	fmt.Printf("Recurrence interval: %d weeks\n", weeks)
	return nil
}

func runIntervalSet(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	weeks, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("parse weeks: %w", err)
	}

	database, err := initDatabase()
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}

	if err := policy.NewService(database, logger).SetIntervalWeeks(context.Background(), weeks); err != nil {
		if errors.Is(err, policy.ErrInvalidInterval) {
			return fmt.Errorf("interval must be between %d and %d weeks", allocation.MinIntervalWeeks, allocation.MaxIntervalWeeks)
		}
		return fmt.Errorf("set interval: %w", err)
	}

	fmt.Printf("Recurrence interval set to %d weeks\n", weeks)
	return nil
}

func runIntervalSuggest(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	database, err := initDatabase()
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}

	ctx := context.Background()
	policySvc := policy.NewService(database, logger)

	names, err := roster.NewService(database, logger).List(ctx)
	if err != nil {
		return fmt.Errorf("list roster: %w", err)
	}
	catalog, err := slots.NewService(database, logger).LoadCatalog(ctx)
	if err != nil {
		return fmt.Errorf("load slot catalog: %w", err)
	}

	suggested := policySvc.Suggest(len(names), len(catalog))
	fmt.Printf("Roster size: %d, slots per week: %d\n", len(names), len(catalog))
	fmt.Printf("Suggested interval: %d weeks\n", suggested)

	if intervalApply {
		if err := policySvc.SetIntervalWeeks(ctx, suggested); err != nil {
			return fmt.Errorf("apply suggested interval: %w", err)
		}
		fmt.Println("Applied.")
	}

	return nil
}
