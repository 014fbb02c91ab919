package main

import (
	"context"
	"flag"

	"go.uber.org/zap"

	"github.com/Faultbox/glslgen/internal/config"
	"github.com/Faultbox/glslgen/internal/logger"
	"github.com/Faultbox/glslgen/internal/session"
)

func cmdGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	depfile := fs.String("M", "", "Also write a make-style dependency file")
	cfg, _ := setup(fs, args)
	defer logger.Sync()

	if _, err := generate(context.Background(), cfg, *depfile); err != nil {
		fatal("%v", err)
	}
}

// generate runs the whole pipeline once and writes the output file.
func generate(ctx context.Context, cfg *config.Config, depfile string) (*session.Session, error) {
	s, err := session.FromConfig(ctx, cfg, logger.Log)
	if err != nil {
		return nil, err
	}

	out := cfg.Resolve(cfg.Output.Path)
	if err := s.Emit(out); err != nil {
		return nil, err
	}
	if depfile != "" {
		if err := s.WriteDepfile(cfg.Resolve(depfile), out); err != nil {
			return nil, err
		}
	}

	logger.Debug("Pipeline finished",
		zap.Int("shaders", len(s.Shaders())),
		zap.Int("programs", len(s.Programs())),
		zap.Int("uniform_sets", len(s.UniformSets())))
	return s, nil
}
