package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/canvasfmt/runner"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Format Canvas templates in place whenever they change",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"."}
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		engine, err := newEngine()
		if err != nil {
			return &ExitError{Code: 2, Err: err}
		}
		return runWatch(ctx, engine, args)
	},
}

func runWatch(ctx context.Context, engine *runner.Engine, dirs []string) error {
	w, err := runner.NewWatcher(engine, logger, dirs)
	if err != nil {
		logger.Error("Error starting watcher", zap.Strings("dirs", dirs), zap.Error(err))
		return &ExitError{Code: 2, Err: err}
	}
	logger.Info("Watching for changes", zap.Strings("dirs", dirs))
	defer saveCache(engine)
	return w.Watch(ctx)
}
