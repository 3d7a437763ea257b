package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/ToxPredict/internal/app"
	"github.com/turtacn/ToxPredict/internal/infrastructure/monitoring/logging"
)

func newServeCmd() *cobra.Command {
	var (
		port     int
		grpcPort int
		bundle   string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the prediction HTTP server",
		Long: "Load the artifact bundle and serve predictions over HTTP until SIGINT or SIGTERM.\n" +
			"With --grpc-port (or grpc.enabled) the standard gRPC health service is served as well.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := cliCtx.Config
			if port > 0 {
				cfg.Server.Port = port
			}
			if grpcPort > 0 {
				cfg.GRPC.Enabled = true
				cfg.GRPC.Port = grpcPort
			}
			useBundleDir(cliCtx, bundle)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app.Version = Version
			a, err := app.New(ctx, cfg, cliCtx.Logger)
			if err != nil {
				return err
			}
			cliCtx.Logger.Info("Starting ToxPredict server", logging.String("addr", cfg.Server.Addr()),
				logging.String("version", Version))
			return a.Run(ctx)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port (overrides config)")
	cmd.Flags().IntVar(&grpcPort, "grpc-port", 0, "enable the gRPC health endpoint on this port")
	cmd.Flags().StringVar(&bundle, "bundle", "", "local bundle directory (overrides the configured source)")
	return cmd
}

//Personal.AI order the ending
