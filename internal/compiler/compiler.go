// Package compiler wraps the external shader toolchain: GLSL to SPIR-V
// compilation, SPIR-V to GLSL transpilation and include expansion.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Faultbox/glslgen/internal/shader"
)

// Errors returned by the toolchain wrappers.
var (
	ErrToolNotFound       = errors.New("shader tool not found")
	ErrIncludeNotFound    = errors.New("include not found")
	ErrIncludeCycle       = errors.New("include cycle")
	ErrUnknownGlslVersion = errors.New("unknown GLSL version")
)

// Source is one shader stage ready for compilation.
type Source struct {
	// Path identifies the source in diagnostics.
	Path  string
	Text  string
	Stage shader.Stage
	// Defines are passed as preprocessor macros.
	Defines map[string]string
}

// Output is the result of a successful compilation.
type Output struct {
	SPIRV []uint32
	// GLSL is set by compilers that also emit GLSL directly.
	GLSL     string
	Warnings []string
}

// Compiler turns shader source into SPIR-V.
type Compiler interface {
	Compile(ctx context.Context, src Source) (*Output, error)
}

// Transpiler turns SPIR-V into GLSL of a given version.
type Transpiler interface {
	Transpile(ctx context.Context, words []uint32, version GlslVersion) (string, error)
}

// CompilationError is returned when the compiler rejects a shader. Message
// is the compiler output, unmodified.
type CompilationError struct {
	Path       string
	ErrorCount int
	Message    string
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("%s: %d compilation error(s):\n%s", e.Path, e.ErrorCount, e.Message)
}

// TranspileError is returned when SPIR-V cannot be converted to GLSL.
type TranspileError struct {
	Version GlslVersion
	Message string
}

func (e *TranspileError) Error() string {
	return fmt.Sprintf("transpiling to GLSL %s: %s", e.Version, e.Message)
}

var errorSummary = regexp.MustCompile(`(\d+) compilation errors?`)

// diagnostics splits compiler output into error and warning lines.
type diagnostics struct {
	errors   []string
	warnings []string
	// summaryCount is the count from a "N compilation errors" line, -1 when
	// absent.
	summaryCount int
}

func parseDiagnostics(output string) diagnostics {
	d := diagnostics{summaryCount: -1}
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case errorSummary.MatchString(line):
			if n, err := strconv.Atoi(errorSummary.FindStringSubmatch(line)[1]); err == nil {
				d.summaryCount = n
			}
		case strings.HasPrefix(line, "ERROR:"):
			d.errors = append(d.errors, line)
		case strings.HasPrefix(line, "WARNING:"):
			d.warnings = append(d.warnings, line)
		}
	}
	return d
}

// errorCount is the number of errors reported, at least one.
func (d diagnostics) errorCount() int {
	if d.summaryCount > 0 {
		return d.summaryCount
	}
	if len(d.errors) > 0 {
		return len(d.errors)
	}
	return 1
}

// sortedDefines returns the define names in a stable order.
func sortedDefines(defines map[string]string) []string {
	names := make([]string, 0, len(defines))
	for name := range defines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
