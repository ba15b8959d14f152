package history

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"vocal-assistant/cmd/vocal/cmd/cli"
	"vocal-assistant/internal/app"
	"vocal-assistant/internal/app/export"
)

var (
	limit      int
	exportPath string
)

func init() {
	Cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show, 0 for all")
	Cmd.Flags().StringVarP(&exportPath, "export", "o", "", "write the runs to an .xlsx file instead of printing them")
}

// Cmd represents the history command
var Cmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent pipeline runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := cli.EnvFrom(ctx)
		if err != nil {
			return err
		}
		dao, cleanup, err := app.InitializeHistory(ctx, env.Settings, env.Logger)
		if err != nil {
			return err
		}
		defer cleanup()

		runs, err := dao.ListRuns(ctx, limit)
		if err != nil {
			return err
		}

		if exportPath != "" {
			if err := export.RunsToExcel(runs, exportPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d runs to %s\n", len(runs), exportPath)
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tOPERATION\tINPUT\tPROVIDER\tOUTCOME\tDURATION\tERROR")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				r.StartedAt.Local().Format("2006-01-02 15:04:05"),
				r.Operation, r.Input, r.Provider, r.Outcome,
				r.Duration.Round(time.Millisecond), r.ErrorMessage)
		}
		return w.Flush()
	},
}
