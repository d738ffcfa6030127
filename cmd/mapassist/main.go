// Package main provides the entry point for the mapassist command line tool.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jobrunner/mapassist/internal/app"
	"github.com/jobrunner/mapassist/internal/config"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

var (
	cfgFile  string
	savePath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mapassist",
	Short: "mapassist - indoor mapping editing assistant",
	Long: `mapassist speeds up editing of indoor maps such as parking garages.

It works on a polygon dataset and offers the assistants an editor plugin
would run on user actions:
  - Click selection with name suggestion from neighbouring polygons
  - Combining polygons into a minimum-area rectangle
  - Tagging newly drawn polygons with the active level
  - Marking polygons as verified
  - Moving polygons without distortion`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("mapassist %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Build Date: %s\n", buildDate)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&savePath, "save", "", "write the dataset as GeoJSON after the command")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "log format (json, text)")
	rootCmd.PersistentFlags().String("output", "json", "result format (json, yaml)")
	rootCmd.PersistentFlags().String("dataset", "", "GeoJSON dataset to load")
	rootCmd.PersistentFlags().String("store", "memory", "store type (memory, sqlite)")
	rootCmd.PersistentFlags().String("level", "", "level being edited")

	// Bind flags to viper
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("store.dataset", rootCmd.PersistentFlags().Lookup("dataset"))
	_ = viper.BindPFlag("store.type", rootCmd.PersistentFlags().Lookup("store"))
	_ = viper.BindPFlag("assist.level", rootCmd.PersistentFlags().Lookup("level"))

	rootCmd.AddCommand(versionCmd, selectCmd(), combineCmd(), verifyCmd(), moveCmd(), settleCmd())
}

func initConfig() {
	// A missing .env file is fine.
	_ = godotenv.Load(".env")

	config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// runWithApp loads configuration, wires the application, runs fn and
// prints its result.
func runWithApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) (any, error)) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}

	result, runErr := fn(ctx, a)
	if runErr == nil && savePath != "" {
		runErr = a.Save(ctx, savePath)
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), app.ShutdownTimeout)
	defer cancel()
	if err := a.Close(closeCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	if runErr != nil {
		return runErr
	}

	return render(cmd.OutOrStdout(), cfg.Output.Format, result)
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(time.Now().UTC().Format(time.RFC3339))
			}
			return a
		},
	}

	// Results go to stdout, so logs use stderr.
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
