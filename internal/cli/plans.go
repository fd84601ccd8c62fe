package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kingrea/plandesk/internal/manager"
	"github.com/kingrea/plandesk/internal/plan"
)

func newListCommand(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List plans in server order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.client()
			if err != nil {
				return err
			}
			m := manager.New()
			if res := m.Load(cmd.Context(), api); !res.OK() {
				return res.Err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(m.Plans())
			}
			return writePlans(cmd.OutOrStdout(), m.Plans(), opts.cfg.Currency())
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the server records as JSON")
	return cmd
}

func newAddCommand(opts *options) *cobra.Command {
	var draft plan.Draft
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.client()
			if err != nil {
				return err
			}
			m := manager.New(manager.WithRecorder(resultLogger(opts)))
			m.OpenAdd()
			m.SetDraft(draft)
			res := m.Create(cmd.Context(), api)
			if !res.OK() {
				return res.Err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message())
			return nil
		},
	}
	bindFields(cmd, &draft)
	return cmd
}

func newEditCommand(opts *options) *cobra.Command {
	var changes plan.Fields
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Replace a plan's fields",
		Long: `Replace a plan's fields. Flags that are not given keep the values the
server currently reports, and the whole record is sent back.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			api, err := opts.client()
			if err != nil {
				return err
			}
			m := manager.New(manager.WithRecorder(resultLogger(opts)))
			if res := m.Load(cmd.Context(), api); !res.OK() {
				return res.Err
			}
			if err := m.BeginEdit(id); err != nil {
				return err
			}
			buffer := m.EditBuffer()
			flags := cmd.Flags()
			if flags.Changed("name") {
				buffer.Name = changes.Name
			}
			if flags.Changed("days") {
				buffer.DurationDays = changes.DurationDays
			}
			if flags.Changed("price") {
				buffer.Price = changes.Price
			}
			m.SetEditBuffer(buffer)
			res := m.Save(cmd.Context(), api)
			if !res.OK() {
				return res.Err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message())
			return nil
		},
	}
	bindFields(cmd, &changes)
	return cmd
}

func newDeleteCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			api, err := opts.client()
			if err != nil {
				return err
			}
			m := manager.New(manager.WithRecorder(resultLogger(opts)))
			if res := m.Load(cmd.Context(), api); !res.OK() {
				return res.Err
			}
			res := m.Delete(cmd.Context(), api, id)
			if !res.OK() {
				return res.Err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message())
			return nil
		},
	}
}

func newUseCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "use URL",
		Short: "Save the plan collection URL to the project config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.cfg.SetBaseURL(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Using %s\n", opts.cfg.BaseURL())
			return nil
		},
	}
}

func bindFields(cmd *cobra.Command, fields *plan.Fields) {
	flags := cmd.Flags()
	flags.StringVar(&fields.Name, "name", "", "Plan name")
	flags.StringVar(&fields.DurationDays, "days", "", "Duration in days")
	flags.StringVar(&fields.Price, "price", "", "Price")
}

// resultLogger traces every outcome at debug level. Failures are reported
// once more by Execute.
func resultLogger(opts *options) manager.Recorder {
	return manager.RecorderFunc(func(r manager.Result) {
		opts.logger.Debug(r.Message(), "op", string(r.Op), "plan", r.PlanID)
	})
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid plan id %q", raw)
	}
	return id, nil
}

func writePlans(w io.Writer, plans []plan.Plan, currency string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tNAME\tDURATION (DAYS)\tPRICE (%s)\n", currency)
	for _, p := range plans {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", p.ID, p.Name, p.DurationDays, p.Price.StringFixed(2))
	}
	return tw.Flush()
}
