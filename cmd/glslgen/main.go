// glslgen generates typed Go wrappers for the uniforms of GLSL shaders.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Faultbox/glslgen/internal/config"
	"github.com/Faultbox/glslgen/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "generate", "gen":
		cmdGenerate(args)
	case "reflect":
		cmdReflect(args)
	case "verify":
		cmdVerify(args)
	case "watch":
		cmdWatch(args)
	case "init":
		cmdInit(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`glslgen - typed Go uniform setters for GLSL shaders

Usage:
  glslgen <command> [options]

Commands:
  generate               Compile the manifest's shaders and write the Go file
  reflect <file>...      Print the uniforms of shaders or SPIR-V binaries
  verify                 Link every program with the GL driver and compare locations
  watch                  Regenerate whenever a shader or include changes
  init                   Write a starter glslgen.yaml

Common options:
  -config <path>         Manifest (default ./glslgen.yaml)
  -o <file>              Generated Go file
  -package <name>        Package of the generated file
  -target source|glsl    Embed the input GLSL or transpiled GLSL
  -locations query|reflected
  -workers <n>           Parallel compilations
  -strict                Fail on uniforms declared with different types
  -debug                 Enable debug logging

Examples:
  glslgen init
  glslgen generate -o shaders/shaders_gen.go
  glslgen reflect -format yaml shaders/blur.frag
  glslgen watch -debug`)
}

// setup parses args on fs, loads the manifest and starts logging.
// Subcommand flags must be registered on fs before calling it.
func setup(fs *flag.FlagSet, args []string) (*config.Config, *config.Flags) {
	flags := config.BindFlags(fs)
	fs.Parse(args)

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	return cfg, flags
}

func fatal(format string, args ...any) {
	logger.Sync()
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
