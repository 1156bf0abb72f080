package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/svitlosync/core/timetable"
)

var encodeCmd = &cobra.Command{
	Use:   "encode HH:MM-HH:MM...",
	Short: "Print the day code for a set of outage windows",
	Args:  cobra.ArbitraryArgs,
	RunE:  encodeWindows,
}

func init() {
	rootCmd.AddCommand(encodeCmd)
}

// parseWindowArg splits "15:00-17:30" into a RawWindow. The times themselves
// are validated by the encoder.
func parseWindowArg(s string) (timetable.RawWindow, error) {
	from, to, ok := strings.Cut(s, "-")
	if !ok {
		return timetable.RawWindow{}, fmt.Errorf("window %q: expected FROM-TO", s)
	}
	return timetable.RawWindow{From: strings.TrimSpace(from), To: strings.TrimSpace(to)}, nil
}

func encodeWindows(cmd *cobra.Command, args []string) error {
	windows := make([]timetable.RawWindow, 0, len(args))
	for _, a := range args {
		w, err := parseWindowArg(a)
		if err != nil {
			return err
		}
		windows = append(windows, w)
	}
	code, skipped := timetable.EncodeDayReport(windows)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %.1fh\n", code, code.OutageHours())
	for _, s := range skipped {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s\n", s)
	}
	return nil
}
