// Command palletepro runs the PalletePro backend and its maintenance tasks.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information, set at build time with -ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func newRootCmd() *cobra.Command {
	var envFiles []string

	root := &cobra.Command{
		Use:           "palletepro",
		Short:         "PalletePro - sawmill and pallet production backend",
		Long:          "PalletePro serves the subscription, PIX payment, stock, production, sales and truck APIs of the PalletePro dashboard.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files to load before reading the environment")

	root.AddCommand(
		newServeCmd(&envFiles),
		newMigrateCmd(&envFiles),
		newTokenCmd(&envFiles),
		newPlansCmd(&envFiles),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "PalletePro %s\n", Version)
			if BuildTime != "unknown" {
				fmt.Fprintf(out, "Built: %s\n", BuildTime)
			}
			if GitCommit != "unknown" {
				fmt.Fprintf(out, "Commit: %s\n", GitCommit)
			}
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
