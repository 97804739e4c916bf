package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register [employee-id] [name]",
	Short: "Enroll a new employee from a face capture",
	Long: `Enrolls a new employee. The image must contain exactly one face that
passes the enrollment quality checks. The face is indexed in the
provider's face set so later check-ins can match it.`,
	Args: cobra.ExactArgs(2),
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)

	registerCmd.Flags().String("image", "", "Path to the face capture (JPEG, PNG or BMP)")
	registerCmd.MarkFlagRequired("image")
}

func runRegister(cmd *cobra.Command, args []string) error {
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

	identity, err := d.service.Register(cmd.Context(), args[0], args[1], imageData)
	if err != nil {
		return fmt.Errorf("enrollment failed: %w", err)
	}

	fmt.Printf("Enrolled %s (%s)\n", identity.Name, identity.ID)
	fmt.Printf("  Quality: %.1f\n", identity.Quality)
	fmt.Printf("  Blur:    %.1f\n", identity.Blur)
	return nil
}
