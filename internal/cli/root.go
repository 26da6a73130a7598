package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/existflow/taskboard/internal/config"
	"github.com/existflow/taskboard/internal/logger"
	"github.com/existflow/taskboard/internal/realtime"
	"github.com/existflow/taskboard/internal/tui"
)

var (
	logLevel   string
	logFile    string
	logConsole bool
	storeName  string
	storeDSN   string

	// cfg is loaded by the root PersistentPreRunE and read by every command
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "taskboard",
	Short: "Taskboard - collaborative kanban board in the terminal",
	Long: `Taskboard is a kanban task board with board, list and calendar views,
an activity log and a live change feed shared by every session on the same store.

Run 'taskboard' without arguments to launch the interactive TUI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config from file (or defaults if not exists)
		loaded, err := config.Load()
		if err != nil {
			logger.Warn("Failed to load config, using defaults", logger.F("error", err))
			loaded = config.DefaultConfig()
		}
		cfg = loaded

		// Override with CLI flags if provided
		var overrides []func(*config.Config)
		if cmd.Flags().Changed("log-level") {
			overrides = append(overrides, func(c *config.Config) { c.LogLevel = logLevel })
		}
		if cmd.Flags().Changed("log-file") {
			overrides = append(overrides, func(c *config.Config) { c.LogFile = logFile })
		}
		if cmd.Flags().Changed("log-console") {
			overrides = append(overrides, func(c *config.Config) { c.LogConsole = logConsole })
		}
		if cmd.Flags().Changed("store") {
			overrides = append(overrides, func(c *config.Config) { c.Store = storeName })
		}
		if cmd.Flags().Changed("dsn") {
			overrides = append(overrides, func(c *config.Config) { c.DSN = storeDSN })
		}
		apply := func(c *config.Config) {
			for _, o := range overrides {
				o(c)
			}
		}
		apply(cfg)

		if err := cfg.Validate(); err != nil {
			return err
		}

		// Persist flag values into the file, leaving environment overrides out
		if len(overrides) > 0 {
			if err := config.Update(apply); err != nil {
				logger.Warn("Failed to save config", logger.F("error", err))
			}
		}

		logConfig := logger.Config{
			Level:      logger.ParseLevel(cfg.LogLevel),
			FilePath:   cfg.LogFile,
			MaxSize:    10 * 1024 * 1024, // 10MB
			MaxAge:     7,
			MaxBackups: 5,
			Console:    cfg.LogConsole,
		}

		if err := logger.Init(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Info("Taskboard started", logger.F("command", cmd.Name()))
		return nil
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		b, closeStore, err := openBoard(cmd.Context())
		if err != nil {
			logger.Error("Failed to open board, starting with an in-memory board", logger.F("error", err))
			b, closeStore = minimalBoard()
		}
		defer closeStore()

		opts := tui.Options{SearchDebounce: cfg.SearchDebounce}
		bridgeOpts := []realtime.Option{realtime.WithInterval(cfg.SimulationInterval)}
		if cfg.SimulationInterval == 0 {
			bridgeOpts = append(bridgeOpts, realtime.WithoutSimulation())
		}

		if err := tui.Run(b, opts, bridgeOpts); err != nil {
			// the renderer is gone, say so on a plain terminal
			fmt.Fprintln(os.Stderr, "Taskboard could not start its interface. Run 'taskboard list' to see your tasks.")
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Info("Taskboard exiting", logger.F("command", cmd.Name()))
		logger.Close()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add logging flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")

	// Store flags
	rootCmd.PersistentFlags().StringVar(&storeName, "store", "", "Store driver (sqlite, postgres, memory)")
	rootCmd.PersistentFlags().StringVar(&storeDSN, "dsn", "", "Store location: sqlite file path or postgres URL")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(columnCmd)
	rootCmd.AddCommand(activityCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(themeCmd)
}
