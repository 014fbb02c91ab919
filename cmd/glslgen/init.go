package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Faultbox/glslgen/internal/config"
)

func cmdInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite an existing manifest")
	fs.Parse(args)

	path := config.FileName
	if fs.NArg() > 0 {
		path = filepath.Join(fs.Arg(0), config.FileName)
	}
	if _, err := os.Stat(path); err == nil && !*force {
		fatal("%s already exists (use -force to overwrite)", path)
	}

	if err := starterConfig().SaveTo(path); err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Wrote %s\n", path)
}

// starterConfig is the default manifest with one example program.
func starterConfig() *config.Config {
	cfg := config.Default()
	cfg.Shaders = []config.ShaderConfig{
		{Path: "shaders/quad.vert"},
		{Path: "shaders/quad.frag"},
	}
	cfg.Programs = []config.ProgramConfig{
		{Name: "quad", Shaders: []string{"quad_vert", "quad_frag"}},
	}
	return cfg
}
