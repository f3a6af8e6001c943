package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arcane-sim/arcaneviz/internal/api"
	"github.com/arcane-sim/arcaneviz/internal/report"
)

func newRunsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List the archived runs on the server",
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

			runs, err := client.Runs(ctx)
			if err != nil {
				return err
			}
			fmt.Fprint(os.Stdout, report.RunList(runs))
			return nil
		},
	}
}
