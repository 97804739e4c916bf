package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceclock/internal/audit"
)

var checkinCmd = &cobra.Command{
	Use:   "checkin",
	Short: "Verify a face capture against the enrolled employees",
	Long: `Runs one verification: detects the face in the image, matches it
against the enrolled employees and records the attempt in the
attendance log.`,
	RunE: runCheckin,
}

func init() {
	rootCmd.AddCommand(checkinCmd)

	checkinCmd.Flags().String("image", "", "Path to the face capture (JPEG, PNG or BMP)")
	checkinCmd.MarkFlagRequired("image")
}

func runCheckin(cmd *cobra.Command, args []string) error {
	imagePath := mustGetString(cmd, "image")
	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("could not read image file: %w", err)
	}

	d, cleanup, err := buildDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := d.service.Verify(cmd.Context(), imageData)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	switch result.Outcome {
	case audit.OutcomeSuccess:
		fmt.Printf("Welcome, %s! (confidence %.1f)\n", result.Identity.Name, result.Confidence)
	case audit.OutcomeLowConfidence:
		fmt.Printf("Face not matched with enough confidence (%.1f)\n", result.Confidence)
	default:
		fmt.Printf("Check-in failed: %s\n", result.Outcome)
	}
	fmt.Printf("Attempt recorded as %s\n", result.AttemptID)
	return nil
}
