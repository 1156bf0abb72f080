package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	corestore "github.com/kilianp07/svitlosync/core/store"
	"github.com/kilianp07/svitlosync/core/timetable"
	infrastore "github.com/kilianp07/svitlosync/infra/store"
	"github.com/kilianp07/svitlosync/pkg/export"
)

var (
	weekNumber int
	weekFormat string
)

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Inspect stored week records",
}

var weekShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a stored week record with its outage summary",
	RunE:  showWeek,
}

func init() {
	weekShowCmd.Flags().IntVarP(&weekNumber, "week", "w", 0, "ISO week number (defaults to the current week)")
	weekShowCmd.Flags().StringVarP(&weekFormat, "format", "f", "json", "output format: json or csv")
	weekCmd.AddCommand(weekShowCmd)
	rootCmd.AddCommand(weekCmd)
}

func showWeek(cmd *cobra.Command, args []string) error {
	cfg, closeLog, err := loadStorageConfig()
	if err != nil {
		return err
	}
	defer closeLog()

	week := weekNumber
	if week == 0 {
		loc, err := cfg.Source.Location()
		if err != nil {
			return fmt.Errorf("timezone: %w", err)
		}
		week = timetable.ISOWeek(time.Now().In(loc))
	}
	if week < 1 || week > 53 {
		return fmt.Errorf("week %d out of range", week)
	}

	ctx := context.Background()
	backend, err := infrastore.NewBackend(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer backend.Close()

	rec, err := backend.Get(ctx, week)
	if errors.Is(err, corestore.ErrNotFound) {
		return fmt.Errorf("no record stored for week %d", week)
	}
	if err != nil {
		return err
	}
	return export.Write(cmd.OutOrStdout(), weekFormat, rec)
}
