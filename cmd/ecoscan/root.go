package main

import (
	"os"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "ecoscan",
		Short:         "EcoScan analyzes photos of waste items for recyclability",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultConfig := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", defaultConfig, "Path to configuration file")

	cmd.AddCommand(newAnalyzeCmd(flags))
	cmd.AddCommand(newCheckCmd())

	return cmd
}
