package main

import (
	"github.com/spf13/cobra"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:           "relayctl",
	Short:         "Client for the upload relay",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server",
		"http://localhost:3000", "base URL of the upload relay")
	rootCmd.AddCommand(uploadCmd, healthCmd)
}
