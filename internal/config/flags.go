package config

import "flag"

// Flags are the command-line overrides shared by every subcommand.
type Flags struct {
	Config    string
	Debug     bool
	Output    string
	Package   string
	Target    string
	Locations string
	Workers   int
	Strict    bool
}

// BindFlags registers the override flags on fs.
func BindFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to manifest (default ./"+FileName+")")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Output, "o", "", "Generated Go file")
	fs.StringVar(&f.Package, "package", "", "Package name of the generated file")
	fs.StringVar(&f.Target, "target", "", "Embedded source: source or glsl")
	fs.StringVar(&f.Locations, "locations", "", "Uniform locations: query or reflected")
	fs.IntVar(&f.Workers, "workers", 0, "Parallel compilations")
	fs.BoolVar(&f.Strict, "strict", false, "Fail on uniforms declared with different types")
	return f
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Output != "" {
		cfg.Output.Path = f.Output
	}
	if f.Package != "" {
		cfg.Output.Package = f.Package
	}
	if f.Target != "" {
		cfg.Compiler.Target = f.Target
	}
	if f.Locations != "" {
		cfg.Codegen.Locations = f.Locations
	}
	if f.Workers > 0 {
		cfg.Compiler.Workers = f.Workers
	}
	if f.Strict {
		cfg.Codegen.StrictUniformTypes = true
	}
}
