package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lectern/internal/config"
)

// Set via -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "lectern",
		Short:         "Personal academic website generator",
		Long:          "lectern ingests a tree of markdown documents and site data files and produces a bilingual academic website with feeds and preview images.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", config.DefaultPath, "configuration file path")

	rootCmd.AddCommand(newBuildCommand(&configFlag))
	rootCmd.AddCommand(newServeCommand(&configFlag))
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "lectern %s (%s)\n", version, commit)
			return nil
		},
	}
}

func newInitCommand() *cobra.Command {
	var targetPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteSample(targetPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", targetPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&targetPath, "output", "o", config.DefaultPath, "where to write the sample configuration")
	return cmd
}
