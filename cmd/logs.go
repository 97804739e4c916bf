package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent check-in attempts and attendance stats",
	RunE:  runLogs,
}

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().Int("limit", 20, "Number of attempts to show")
}

func runLogs(cmd *cobra.Command, args []string) error {
	d, cleanup, err := buildDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	attempts, err := d.attempts.Recent(cmd.Context(), mustGetInt(cmd, "limit"))
	if err != nil {
		return fmt.Errorf("could not read attempt log: %w", err)
	}

	for _, attempt := range attempts {
		who := "-"
		if attempt.IdentityID != nil {
			who = *attempt.IdentityID
		}
		fmt.Printf("%s  %-24s %-8s confidence %.1f\n",
			attempt.OccurredAt.Format("2006-01-02 15:04:05"), attempt.Outcome, who, attempt.Confidence)
	}

	stats, err := d.attempts.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("could not compute stats: %w", err)
	}

	fmt.Printf("\nAttempts: %d  Successes: %d (%.1f%%)  Today: %d\n",
		stats.TotalAttempts, stats.TotalSuccesses, stats.SuccessRate, stats.TodaySuccesses)
	if stats.TotalSuccesses > 0 {
		fmt.Printf("Average confidence: %.1f\n", stats.AvgConfidence)
	}
	return nil
}
