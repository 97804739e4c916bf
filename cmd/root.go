package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "faceclock",
	Short: "Face recognition attendance tracking",
	Long: `Faceclock is an attendance tracking service that enrolls employees from
face captures and verifies check-ins against them using the Face++
recognition API. It ships a CLI for enrollment and verification plus a
web server exposing the same operations over HTTP.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
