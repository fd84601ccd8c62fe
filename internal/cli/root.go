// Package cli holds the cobra commands behind the plandesk binary. The bare
// command opens the TUI; subcommands run one plan operation and exit.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kingrea/plandesk/internal/config"
	"github.com/kingrea/plandesk/internal/logging"
	"github.com/kingrea/plandesk/internal/planapi"
	"github.com/kingrea/plandesk/internal/tui"
)

// options are the persistent flags shared by every command.
type options struct {
	dir     string
	apiURL  string
	timeout time.Duration

	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand builds the plandesk command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "plandesk",
		Short: "Manage subscription plans",
		Long: `plandesk is an admin console for the subscription plan catalogue.
Run it without a subcommand to open the interactive screen.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.dir, "dir", "", "Project directory holding .plandesk (default: current directory)")
	flags.StringVar(&opts.apiURL, "api-url", "", "Plan collection URL, e.g. http://127.0.0.1:8000/api/admin/plan/")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Per-request timeout (default from config)")

	cmd.AddCommand(
		newListCommand(opts),
		newAddCommand(opts),
		newEditCommand(opts),
		newDeleteCommand(opts),
		newUseCommand(opts),
		newStubCommand(opts),
	)
	return cmd
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		logging.New(cmd.ErrOrStderr(), "info").Error("plandesk failed", "error", err)
		return 1
	}
	return 0
}

func (o *options) load(cmd *cobra.Command) error {
	dir := o.dir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		dir = cwd
	}
	if err := config.InitDir(dir); err != nil {
		return fmt.Errorf("initialize %s: %w", config.Dir, err)
	}
	cfg, err := config.NewConfig(dir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if o.apiURL != "" {
		if err := cfg.OverrideBaseURL(o.apiURL); err != nil {
			return err
		}
	}
	if o.timeout != 0 {
		if err := cfg.OverrideTimeout(o.timeout); err != nil {
			return err
		}
	}
	o.cfg = cfg
	o.logger = logging.New(cmd.ErrOrStderr(), cfg.LogLevel())
	return nil
}

func (o *options) client() (*planapi.Client, error) {
	return planapi.New(o.cfg.BaseURL(), planapi.WithTimeout(o.cfg.Timeout()))
}

func runTUI(cmd *cobra.Command, opts *options) error {
	app, err := tui.NewApp(opts.cfg, tui.WithContext(cmd.Context()))
	if err != nil {
		return err
	}
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}
