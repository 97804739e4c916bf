package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceclock/internal/registry"
)

var employeesCmd = &cobra.Command{
	Use:   "employees",
	Short: "List enrolled employees",
	RunE:  runEmployees,
}

func init() {
	rootCmd.AddCommand(employeesCmd)

	employeesCmd.Flags().String("name", "", "Filter by name (case and diacritics insensitive)")
}

func runEmployees(cmd *cobra.Command, args []string) error {
	d, cleanup, err := buildDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	identities, err := d.registry.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("could not list employees: %w", err)
	}

	filter := registry.NormalizeName(mustGetString(cmd, "name"))
	shown := 0
	for _, identity := range identities {
		if filter != "" && registry.NormalizeName(identity.Name) != filter {
			continue
		}
		fmt.Printf("%s  %s  (enrolled %s, quality %.1f)\n",
			identity.ID, identity.Name, identity.EnrolledAt.Format("2006-01-02"), identity.Quality)
		shown++
	}
	fmt.Printf("Total: %d\n", shown)
	return nil
}
