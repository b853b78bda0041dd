/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/friendsincode/cadence/internal/calendar"
	"github.com/friendsincode/cadence/internal/events"
	"github.com/friendsincode/cadence/internal/meetings"
	"github.com/friendsincode/cadence/internal/policy"
	"github.com/friendsincode/cadence/internal/roster"
	"github.com/friendsincode/cadence/internal/slots"
)

var allocateCmd = &cobra.Command{
	Use:   "allocate [names...]",
	Short: "Allocate meeting series for roster members",
	Long: `Runs one allocation batch. With names given, only those roster members are
allocated; without arguments every unscheduled roster member is covered.

Each person lands in the first free slot occurrence that does not collide
with an existing calendar commitment. Members who already have an upcoming
series are left alone.

Examples:
  cadence allocate
  cadence allocate "Alice Smith" "Bob Jones"`,
	RunE: runAllocate,
}

func init() {
	rootCmd.AddCommand(allocateCmd)
}

// newMeetingsService wires the offline command path: same services the server
// uses, minus cache and HTTP.
func newMeetingsService(database *gorm.DB) *meetings.Service {
	bus := events.NewBus()
	rosterSvc := roster.NewService(database, logger)
	slotsSvc := slots.NewService(database, logger)
	policySvc := policy.NewService(database, logger)
	calStore := calendar.NewGormStore(database, logger)

	return meetings.NewService(rosterSvc, slotsSvc, policySvc, calStore, bus, logger, meetings.Options{
		TitlePrefix:      cfg.TitlePrefix,
		CalendarLinkBase: cfg.CalendarLinkBase,
	})
}

func runAllocate(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	database, err := initDatabase()
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}

	svc := newMeetingsService(database)
	ctx := context.Background()

	var result *meetings.BatchResult
	if len(args) > 0 {
		result, err = svc.AllocateForNames(ctx, args)
	} else {
		result, err = svc.AllocateForAllUnscheduled(ctx)
	}
	if err != nil {
		return fmt.Errorf("allocate: %w", err)
	}

	for _, a := range result.Assignments {
		switch a.Status {
		case meetings.StatusCreated:
			when := ""
			if a.Start != nil {
				when = a.Start.Format("Mon Jan 2 2006 3:04 PM")
			}
			fmt.Printf("  %-24s created, first occurrence %s\n", a.Name, when)
		case meetings.StatusAlreadyScheduled:
			fmt.Printf("  %-24s already scheduled\n", a.Name)
		case meetings.StatusNoSlotFound:
			fmt.Printf("  %-24s no free slot within %d weeks\n", a.Name, result.WeeksSearched)
		default:
			fmt.Printf("  %-24s error\n", a.Name)
		}
	}

	fmt.Printf("\nAllocation complete:\n")
	fmt.Printf("  Processed:         %d\n", result.Processed)
	fmt.Printf("  Created:           %d\n", result.Created)
	fmt.Printf("  Already scheduled: %d\n", result.AlreadyScheduled)
	fmt.Printf("  No slot found:     %d\n", result.NoSlotFound)
	for _, msg := range result.Errors {
		fmt.Printf("  Error: %s\n", msg)
	}

	return nil
}
