// Package cli wires the arcaneviz commands: watch (the live client), report
// and runs (terminal output against a running server). Configuration merges
// flags, ARCANEVIZ_* environment variables and an optional config file.
package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var cfgFile string

// Settings is the resolved configuration every command runs with.
type Settings struct {
	ServerURL    string        `mapstructure:"server"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	EventsWindow int           `mapstructure:"events_window"`
	AssetsDir    string        `mapstructure:"assets"`
	LogFile      string        `mapstructure:"log_file"`
	Debug        bool          `mapstructure:"debug"`
}

var rootCmd *cobra.Command

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd = &cobra.Command{
		Use:   "viz",
		Short: "Live viewer for an ARCANE simulation server",
		Long: `viz renders a running ARCANE social-engineering simulation: the tile
world with animated agents, a live activity feed, attack results and the
archived run history. Without a subcommand it starts the live viewer.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ./arcaneviz.yaml)")
	pf.String("server", "http://127.0.0.1:8000", "simulation server base URL")
	pf.Duration("poll-interval", time.Second, "state poll interval")
	pf.Int("events-window", 50, "number of recent events to request")
	pf.String("assets", "assets", "assets directory (maps, sprites)")
	pf.String("log-file", "", "write logs to this file instead of stderr")
	pf.Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newWatchCmd(), newReportCmd(), newRunsCmd())
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("arcaneviz")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("ARCANEVIZ")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	for _, key := range []string{"server", "poll-interval", "events-window", "assets", "log-file", "debug"} {
		if err := viper.BindPFlag(strings.ReplaceAll(key, "-", "_"), rootCmd.PersistentFlags().Lookup(key)); err != nil {
			return err
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func loadSettings() (Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return s, fmt.Errorf("unmarshal config: %w", err)
	}
	if s.PollInterval <= 0 {
		return s, fmt.Errorf("poll interval must be positive, got %s", s.PollInterval)
	}
	if s.EventsWindow <= 0 {
		return s, fmt.Errorf("events window must be positive, got %d", s.EventsWindow)
	}
	return s, nil
}

// newLogger builds the process logger. With a log file set it rotates via
// lumberjack; otherwise it writes a console encoding to stderr.
func newLogger(s Settings) *zap.Logger {
	level := zap.InfoLevel
	if s.Debug {
		level = zap.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var sink zapcore.WriteSyncer
	var enc zapcore.Encoder
	if s.LogFile != "" {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   s.LogFile,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     14, // days
		})
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		sink = zapcore.Lock(os.Stderr)
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	return zap.New(zapcore.NewCore(enc, sink, level))
}
