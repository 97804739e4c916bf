package cmd

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var resyncCmd = &cobra.Command{
	Use:   "resync",
	Short: "Re-add all enrolled faces to the provider face set",
	Long: `Walks the identity registry and re-adds every enrolled face token to
the configured face set. Useful after the set was recreated on the
provider side or when enrollments degraded to pairwise matching.`,
	RunE: runResync,
}

func init() {
	rootCmd.AddCommand(resyncCmd)
}

func runResync(cmd *cobra.Command, args []string) error {
	d, cleanup, err := buildDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	identities, err := d.registry.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("could not list employees: %w", err)
	}
	if len(identities) == 0 {
		fmt.Println("No enrolled employees to sync")
		return nil
	}

	bar := progressbar.NewOptions(len(identities),
		progressbar.OptionSetDescription("Syncing faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("faces"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	setToken := d.cfg.FacePP.FaceSetToken
	var failed int
	for _, identity := range identities {
		if err := d.client.AddFace(cmd.Context(), identity.FaceToken, setToken); err != nil {
			failed++
			fmt.Printf("\nWarning: could not sync %s (%s): %v\n", identity.Name, identity.ID, err)
		}
		bar.Add(1)
	}
	fmt.Println()

	fmt.Printf("Synced %d of %d faces to set %s\n", len(identities)-failed, len(identities), setToken)
	if failed > 0 {
		return fmt.Errorf("%d faces could not be synced", failed)
	}
	return nil
}
