package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"lectern/internal/commands"
	sitecmd "lectern/internal/commands/site"
	"lectern/internal/logging"
	"lectern/internal/server"
)

func newServeCommand(configFlag *string) *cobra.Command {
	var addr string
	var noWatch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site locally, re-syncing content as files change",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configFlag)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			commandLogger := commands.CommandLogger(a.provider, "site")
			scan := sitecmd.NewScanContentHandler(a.engine, commandLogger)
			if err := scan.Execute(ctx, sitecmd.ScanContentCommand{}); err != nil {
				return err
			}

			if !noWatch {
				go func() {
					if err := a.engine.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
						a.logger.Error("watch.stopped", "error", err)
					}
				}()
			}

			listenAddr := addr
			if listenAddr == "" {
				listenAddr = a.cfg.Server.Addr
			}

			serverOpts := []server.Option{
				server.WithImageGenerator(a.generator),
				server.WithLogger(logging.ModuleLogger(a.provider, "lectern.server")),
			}
			if a.info != nil {
				serverOpts = append(serverOpts, server.WithSiteData(a.info, a.changelog))
			}

			srv := server.New(server.Config{
				Addr:         listenAddr,
				SiteURL:      a.cfg.Site.URL,
				Collection:   a.cfg.Content.Collection,
				Extension:    a.cfg.Content.Extension,
				Locales:      a.cfg.Content.Locales,
				Titles:       a.cfg.Site.Title,
				Descriptions: a.cfg.Site.Description,
			}, a.store, serverOpts...)

			err = srv.Start(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to server.addr)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "disable filesystem watching")
	return cmd
}
