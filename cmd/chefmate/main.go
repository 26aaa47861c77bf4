package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"chefmate/internal/app"
	"chefmate/internal/config"
	"chefmate/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli carries the state shared by every command of one invocation.
type cli struct {
	verbose bool
	cfg     *config.Config
	logger  *zap.Logger
	rt      *app.Runtime
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, closeAll := newRootCmd()
	err := root.ExecuteContext(ctx)
	closeAll()
	if err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. The returned func releases whatever the
// executed command opened.
func newRootCmd() (*cobra.Command, func()) {
	c := &cli{}
	root := &cobra.Command{
		Use:          "chefmate",
		Short:        "ChefMate - recipes and a shopping list that merges itself",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			level := cfg.LogLevel
			if c.verbose {
				level = "debug"
			}
			logger, err := logging.New(level)
			if err != nil {
				return err
			}
			c.cfg, c.logger = cfg, logger
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(c.recipesCmd(), c.listCmd(), c.metricsCmd())
	return root, c.close
}

func (c *cli) close() {
	if c.rt != nil {
		if err := c.rt.Close(); err != nil {
			c.logger.Warn("failed to close stores", zap.Error(err))
		}
		c.rt = nil
	}
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}

// runtime starts the App on first use.
func (c *cli) runtime(ctx context.Context) (*app.Runtime, error) {
	if c.rt != nil {
		return c.rt, nil
	}
	rt, err := app.Start(ctx, c.cfg, c.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to start: %w", err)
	}
	c.rt = rt
	return rt, nil
}
