package main

import (
	"context"
	"flag"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/glslgen/internal/config"
	"github.com/Faultbox/glslgen/internal/glcheck"
	"github.com/Faultbox/glslgen/internal/logger"
	"github.com/Faultbox/glslgen/internal/session"
)

func cmdVerify(args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	cfg, _ := setup(fs, args)
	defer logger.Sync()

	s, err := session.FromConfig(context.Background(), cfg, logger.Log)
	if err != nil {
		fatal("%v", err)
	}
	if len(s.Programs()) == 0 {
		logger.Warn("No programs declared, nothing to verify")
		return
	}

	gc, err := glcheck.Open(logger.Log.Named("glcheck"))
	if err != nil {
		fatal("%v", err)
	}
	defer gc.Close()

	reflected := cfg.Codegen.Locations == config.LocationsReflected
	failed := 0
	for _, p := range s.Programs() {
		report, err := gc.Verify(p)
		if err != nil {
			logger.Error("Verification failed", zap.String("program", p.ID), zap.Error(err))
			failed++
			continue
		}
		fmt.Println(report)
		if report.Failed(reflected) {
			failed++
		}
	}

	if failed > 0 {
		gc.Close()
		fatal("%d of %d programs failed verification", failed, len(s.Programs()))
	}
}
