package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/glslgen/internal/config"
	"github.com/Faultbox/glslgen/internal/logger"
	"github.com/Faultbox/glslgen/internal/watch"
)

func cmdWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	depfile := fs.String("M", "", "Also write a make-style dependency file")
	debounce := fs.Duration("debounce", 200*time.Millisecond, "Quiet period before regenerating")
	cfg, flags := setup(fs, args)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(*debounce, logger.Log.Named("watch"))
	if err != nil {
		fatal("%v", err)
	}
	defer w.Close()

	// A failed run still watches the manifest and the shaders it names, so
	// fixing the error triggers the next run.
	rebuild := func() {
		files := manifestFiles(cfg)
		if s, err := generate(ctx, cfg, *depfile); err != nil {
			logger.Error("Generation failed", zap.Error(err))
		} else {
			files = append(files, s.Dependencies()...)
		}
		if err := w.Set(files); err != nil {
			logger.Error("Cannot watch shader sources", zap.Error(err))
		}
	}

	rebuild()
	logger.Info("Watching for changes, press Ctrl+C to stop")

	err = w.Run(ctx, func(changed []string) {
		logger.Info("Sources changed", zap.Strings("files", changed))
		if reloaded, err := config.Load(flags); err != nil {
			logger.Error("Manifest reload failed, keeping the previous one", zap.Error(err))
		} else {
			cfg = reloaded
		}
		rebuild()
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		fatal("%v", err)
	}
}

// manifestFiles lists the manifest itself and every shader it declares.
func manifestFiles(cfg *config.Config) []string {
	var files []string
	if cfg.Path != "" {
		files = append(files, cfg.Path)
	}
	for _, s := range cfg.Shaders {
		files = append(files, cfg.Resolve(s.Path))
	}
	return files
}
