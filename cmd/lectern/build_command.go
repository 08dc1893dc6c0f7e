package main

import (
	"github.com/spf13/cobra"

	"lectern/internal/commands"
	sitecmd "lectern/internal/commands/site"
)

func newBuildCommand(configFlag *string) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Scan the content tree and write the static site artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configFlag)
			if err != nil {
				return err
			}

			target := outputDir
			if target == "" {
				target = a.cfg.Build.OutputDir
			}
			if err := ensureDir(target); err != nil {
				return err
			}

			ctx := cmd.Context()
			commandLogger := commands.CommandLogger(a.provider, "site")

			scan := sitecmd.NewScanContentHandler(a.engine, commandLogger)
			if err := scan.Execute(ctx, sitecmd.ScanContentCommand{}); err != nil {
				return err
			}

			buildSite := sitecmd.NewBuildSiteHandler(a.builder, commandLogger)
			return buildSite.Execute(ctx, sitecmd.BuildSiteCommand{OutputDir: target})
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (defaults to build.output_dir)")
	return cmd
}
