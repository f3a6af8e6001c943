package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/arcane-sim/arcaneviz/internal/api"
	"github.com/arcane-sim/arcaneviz/internal/report"
)

const requestTimeout = 10 * time.Second

func newReportCmd() *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the attack results report to stdout",
		Long: `Fetches the current run's attack results from the server and prints the
plain-text report. With --run it reports an archived run instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			log := newLogger(s)
			defer log.Sync()
			client := api.NewClient(s.ServerURL, log)

			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			var res *api.ResultsSnapshot
			if runID != "" {
				res, err = client.RunResults(ctx, runID)
			} else {
				res, err = client.Results(ctx)
			}
			switch {
			case errors.Is(err, api.ErrNotAvailable):
				return fmt.Errorf("results are not available yet")
			case errors.Is(err, api.ErrNotFound):
				return fmt.Errorf("run %q not found", runID)
			case err != nil:
				return err
			}

			fmt.Fprint(os.Stdout, report.Format(res))
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "archived run id (default: current run)")
	return cmd
}
