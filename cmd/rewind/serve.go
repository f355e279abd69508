package main

import (
	"fmt"
	"net"

	"github.com/aretw0/rewind"
	"github.com/aretw0/rewind/internal/cli"
	httpadapter "github.com/aretw0/rewind/pkg/adapters/http"
	"github.com/aretw0/rewind/pkg/observability"
	"github.com/aretw0/rewind/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve <file>",
	Short: "Start the HTTP session server",
	Long:  `Exposes sessions of the machine defined in <file> as a JSON API, with Prometheus metrics on /metrics.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, logger, err := environment(cmd)
		if err != nil {
			return err
		}
		cfg, err := loadDefinition(args[0])
		if err != nil {
			return err
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		backend, err := cli.OpenBackend(ctx, s)
		if err != nil {
			return err
		}
		defer backend.Close()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics := observability.NewMetrics(reg)
		hooks := observability.Chain(metrics.Hooks(), observability.LoggingHooks(logger))

		mgr := session.NewManager(cfg, backend.Store,
			session.WithLocker(backend.Locker),
			session.WithLogger(logger),
			session.WithMachineOptions(rewind.WithLifecycleHooks(hooks), rewind.WithLogger(logger)),
		)
		handler := httpadapter.NewHandler(mgr, httpadapter.WithGatherer(reg), httpadapter.WithLogger(logger))

		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.Port))
		if err != nil {
			return err
		}
		logger.Info("serving definition", "file", args[0], "store", s.Store)
		return cli.Serve(ctx, ln, handler, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (overrides REWIND_PORT)")
}
