package compiler

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// DefaultSpirvCrossPath is the spirv-cross executable looked up on PATH.
const DefaultSpirvCrossPath = "spirv-cross"

// SpirvCross transpiles SPIR-V to GLSL with the spirv-cross CLI.
type SpirvCross struct {
	Path string
}

// NewSpirvCross resolves the spirv-cross executable.
func NewSpirvCross(path string) (*SpirvCross, error) {
	if path == "" {
		path = DefaultSpirvCrossPath
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrToolNotFound, path, err)
	}
	return &SpirvCross{Path: resolved}, nil
}

// Args returns the command line used to transpile input.
func (s *SpirvCross) Args(input string, version GlslVersion) []string {
	args := []string{input, "--version", version.Number()}
	if version.ES {
		args = append(args, "--es")
	} else {
		args = append(args, "--no-es")
	}
	return args
}

// Transpile converts words to GLSL source of the given version.
func (s *SpirvCross) Transpile(ctx context.Context, words []uint32, version GlslVersion) (string, error) {
	tmp, err := os.CreateTemp("", "glslgen-*.spv")
	if err != nil {
		return "", fmt.Errorf("creating input file: %w", err)
	}
	inPath := tmp.Name()
	defer os.Remove(inPath)

	if err := binary.Write(tmp, binary.LittleEndian, words); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing SPIR-V: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("writing SPIR-V: %w", err)
	}

	path := s.Path
	if path == "" {
		path = DefaultSpirvCrossPath
	}

	cmd := exec.CommandContext(ctx, path, s.Args(inPath, version)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &TranspileError{Version: version, Message: strings.TrimSpace(stderr.String())}
		}
		return "", fmt.Errorf("running %s: %w", path, err)
	}

	return stdout.String(), nil
}
