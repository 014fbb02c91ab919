// Package config handles loading and validation of the glslgen manifest.
package config

import (
	"path/filepath"
	"time"

	"github.com/Faultbox/glslgen/internal/shader"
)

// FileName is the manifest file looked up in the working directory.
const FileName = "glslgen.yaml"

// Config is a glslgen manifest.
type Config struct {
	Output      OutputConfig       `yaml:"output"`
	Compiler    CompilerConfig     `yaml:"compiler"`
	Codegen     CodegenConfig      `yaml:"codegen"`
	Shaders     []ShaderConfig     `yaml:"shaders"`
	Programs    []ProgramConfig    `yaml:"programs"`
	UniformSets []UniformSetConfig `yaml:"uniform_sets"`
	Logging     LoggingConfig      `yaml:"logging"`

	// BaseDir is the directory relative paths are resolved against: the
	// directory of the loaded manifest, or the working directory.
	BaseDir string `yaml:"-"`
	// Path is the absolute path of the loaded manifest, empty when none
	// was found.
	Path string `yaml:"-"`
}

// OutputConfig holds the generated file settings.
type OutputConfig struct {
	Path    string `yaml:"path"`    // Generated Go file
	Package string `yaml:"package"` // Package clause of the generated file
}

// CompilerConfig holds the shader toolchain settings.
type CompilerConfig struct {
	Glslang     string            `yaml:"glslang"`      // glslangValidator executable
	SpirvCross  string            `yaml:"spirv_cross"`  // spirv-cross executable
	IncludeDirs []string          `yaml:"include_dirs"` // Searched for #include, last first
	Defines     map[string]string `yaml:"defines"`
	GlslVersion string            `yaml:"glsl_version"` // Transpile target, e.g. "330" or "300 es"
	Target      string            `yaml:"target"`       // "source" or "glsl"
	Workers     int               `yaml:"workers"`      // Parallel compilations, 0 means one per CPU
	Timeout     time.Duration     `yaml:"timeout"`      // Per tool invocation
}

// CodegenConfig holds code generation settings.
type CodegenConfig struct {
	Locations          string `yaml:"locations"` // "query" or "reflected"
	StrictUniformTypes bool   `yaml:"strict_uniform_types"`
}

// ShaderConfig declares one shader stage.
type ShaderConfig struct {
	Name  string `yaml:"name,omitempty"` // Defaults to a name derived from Path
	Path  string `yaml:"path"`
	Stage string `yaml:"stage,omitempty"` // Defaults to the file extension
}

// ProgramConfig declares a program linked from shaders.
type ProgramConfig struct {
	Name    string   `yaml:"name"`
	Shaders []string `yaml:"shaders"`
}

// UniformSetConfig declares a set of programs sharing an interface.
type UniformSetConfig struct {
	Name     string   `yaml:"name"`
	Programs []string `yaml:"programs"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Targets accepted by CompilerConfig.Target.
const (
	TargetSource = "source"
	TargetGLSL   = "glsl"
)

// Location modes accepted by CodegenConfig.Locations.
const (
	LocationsQuery     = "query"
	LocationsReflected = "reflected"
)

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Path:    "shaders_gen.go",
			Package: "shaders",
		},
		Compiler: CompilerConfig{
			Glslang:     "glslangValidator",
			SpirvCross:  "spirv-cross",
			GlslVersion: "330",
			Target:      TargetSource,
			Workers:     0,
			Timeout:     30 * time.Second,
		},
		Codegen: CodegenConfig{
			Locations:          LocationsQuery,
			StrictUniformTypes: false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// ShaderName returns the declared name, or one derived from the path.
func (s ShaderConfig) ShaderName() string {
	if s.Name != "" {
		return s.Name
	}
	return shader.DefaultName(s.Path)
}

// ShaderStage returns the declared stage, or the one implied by the path.
func (s ShaderConfig) ShaderStage() (shader.Stage, error) {
	if s.Stage != "" {
		return shader.ParseStage(s.Stage)
	}
	return shader.StageFromPath(s.Path)
}

// Resolve makes path absolute relative to BaseDir.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.BaseDir, path)
}
