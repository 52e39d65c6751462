// Package cli implements the warnctx command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/warnctx/internal/config"
	"github.com/sprite-ai/warnctx/internal/history"
	"github.com/sprite-ai/warnctx/internal/logging"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "warnctx",
	Short: "Correlate static-analysis warnings with the commits that explain them",
	Long: `warnctx locates the commit behind each static-analysis warning, finds the
change to the warned-about file and extracts the source context that best
explains why the warning appeared or went away.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ./warnctx.yaml)")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error, off")
	pf.StringVar(&logFormat, "log-format", "", "log format: text, json")

	rootCmd.AddCommand(buildCmd, resolveCmd, showCmd, browseCmd, serveCmd, configCmd, versionCmd)
}

// setup loads configuration and installs the logger before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if logFormat != "" {
		c.Log.Format = logFormat
	}
	if err := c.Validate(); err != nil {
		return err
	}

	cfg = c
	logger = logging.Setup(cmd.ErrOrStderr(), logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	return nil
}

func newPool() *history.Pool {
	return history.NewPool(cfg.CloneDir, cfg.Clone, logger)
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
