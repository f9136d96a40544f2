package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/telekom/smtp-mail-adapter/pkg/api"
)

const drainTimeout = 30 * time.Second

func NewServeCommand() *cobra.Command {
	var listenAddress string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the mail operations over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			log := rt.Logger()

			a, err := newAdapter(rt, false)
			if err != nil {
				return err
			}

			serverCfg := rt.cfg.Server
			if listenAddress != "" {
				serverCfg.ListenAddress = listenAddress
			}
			server := api.NewServer(log, serverCfg, rt.debug)
			if err := server.RegisterAll([]api.APIController{
				api.NewMailController(log.Sugar(), a),
			}); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			serveErr := server.Listen(ctx)

			log.Info("Waiting for in-flight mail")
			drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
			defer cancel()
			_ = a.Drain(drainCtx)

			return serveErr
		},
	}

	cmd.Flags().StringVar(&listenAddress, "listen-address", "", "Address to listen on, overrides server.listenAddress")

	return cmd
}
