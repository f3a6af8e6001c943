package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arcane-sim/arcaneviz/internal/viz"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Open the live viewer window (the default action)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch()
		},
	}
}

func runWatch() error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	log := newLogger(s)
	defer log.Sync()

	log.Info("starting live viewer",
		zap.String("server", s.ServerURL),
		zap.Duration("poll_interval", s.PollInterval),
		zap.Int("events_window", s.EventsWindow))

	g := viz.New(viz.Config{
		ServerURL:    s.ServerURL,
		PollInterval: s.PollInterval,
		EventsWindow: s.EventsWindow,
		AssetsDir:    s.AssetsDir,
	}, log)
	return g.Run("ARCANE Viewer")
}
