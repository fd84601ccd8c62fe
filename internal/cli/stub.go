package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/kingrea/plandesk/internal/logging"
	"github.com/kingrea/plandesk/internal/plan"
	"github.com/kingrea/plandesk/internal/stubserver"
)

// demoPlans seed the stub backend when --demo is set.
var demoPlans = []plan.Plan{
	{ID: 1, Name: "Basic", DurationDays: 30, Price: decimal.RequireFromString("199.00")},
	{ID: 2, Name: "Silver", DurationDays: 90, Price: decimal.RequireFromString("499.00")},
	{ID: 3, Name: "Gold", DurationDays: 365, Price: decimal.RequireFromString("1499.00")},
}

func newStubCommand(opts *options) *cobra.Command {
	var (
		host string
		port int
		demo bool
	)
	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Serve an in-memory plan backend",
		Long: `Serve the admin plan REST resource from memory until interrupted.
Point the console at it with --api-url or "plandesk use".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := stubserver.SettingsFromConfig(opts.cfg)
			if host != "" {
				settings.Host = host
			}
			if cmd.Flags().Changed("port") {
				settings.Port = port
			}
			serverOpts := []stubserver.Option{stubserver.WithLogger(logging.Printf{Logger: opts.logger})}
			if demo {
				serverOpts = append(serverOpts, stubserver.WithSeed(demoPlans))
			}
			srv := stubserver.NewServer(settings, serverOpts...)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := srv.Start(ctx); err != nil {
				return err
			}
			opts.logger.Info("stub backend ready", "url", srv.BaseURL(), "plans", len(srv.Plans()))
			<-ctx.Done()

			opts.logger.Info("shutting down stub backend")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "Listen host (default from config)")
	cmd.Flags().IntVar(&port, "port", stubserver.DefaultPort, "Listen port (default from config)")
	cmd.Flags().BoolVar(&demo, "demo", false, "Seed a few sample plans")
	return cmd
}
