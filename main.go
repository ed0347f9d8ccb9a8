package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	raygun_errors "github.com/sthembisoo/raygun-reporter/cmd/raygun/errors"
	"github.com/sthembisoo/raygun-reporter/cmd/serve"
)

var rootCmd = &cobra.Command{
	Use:   "raygun-reporter",
	Short: "Report errors and crashes to raygun",
}

func main() {
	// A missing .env is fine; real deployments set RAYGUN_* directly.
	_ = godotenv.Load()

	rootCmd.AddCommand(raygun_errors.NewCmdRaygunErrors())
	rootCmd.AddCommand(serve.NewCmdServe())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
