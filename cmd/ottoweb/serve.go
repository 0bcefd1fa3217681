package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/ottoweb/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var addr, static string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the recipe extraction API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log, err := ctx.newLogger("")
			if err != nil {
				return err
			}
			defer ctx.close()

			if addr == "" {
				addr = cfg.Server.Addr
			}
			if static == "" {
				static = cfg.Server.StaticDir
			}

			src, store := newSource(cfg, log)
			srv := server.New(src, log.With("http"),
				server.WithStore(store),
				server.WithStaticDir(static),
				server.WithTimeouts(
					time.Duration(cfg.Server.ReadTimeoutSeconds)*time.Second,
					time.Duration(cfg.Server.WriteTimeoutSeconds)*time.Second,
				),
			)

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(runCtx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().StringVar(&static, "static", "", "directory with a browser front end")
	return cmd
}
