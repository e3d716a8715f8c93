package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pders01/wkpd/internal/debuglog"
	"github.com/pders01/wkpd/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve trending, suggestions and articles as JSON over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()

		addr := serveAddr
		if addr == "" {
			addr = cfg.Server.Addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(newClient(cfg), cfg.Wiki.RelatedLimit, Version)
		fmt.Fprintf(cmd.OutOrStdout(), "wkpd %s listening on http://%s\n", Version, addr)
		debuglog.Infof("serving on %s", addr)

		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}
