package compiler

import (
	"strings"
)

// DefaultDefines are always passed to the compiler and injected into
// embedded sources, so shaders can detect the generator.
var DefaultDefines = map[string]string{"GLSLGEN": "1"}

func isIncludeExtension(line string) bool {
	fields := strings.Fields(line)
	return len(fields) >= 2 && fields[0] == "#extension" && fields[1] == "GL_GOOGLE_include_directive"
}

func isLineDirective(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "#line ") || trimmed == "#line"
}

// FilterSource prepares GLSL for a driver without include support: the
// GL_GOOGLE_include_directive extension is removed and #line directives,
// which may carry file names, are commented out.
func FilterSource(text string) string {
	lines := strings.SplitAfter(text, "\n")
	var out strings.Builder
	out.Grow(len(text))
	for _, line := range lines {
		switch {
		case isIncludeExtension(line):
		case isLineDirective(line):
			out.WriteString("// ")
			out.WriteString(line)
		default:
			out.WriteString(line)
		}
	}
	return out.String()
}

// InjectDefines inserts #define lines after the #version directive, or at
// the top when there is none.
func InjectDefines(text string, defines map[string]string) string {
	if len(defines) == 0 {
		return text
	}

	var block strings.Builder
	for _, name := range sortedDefines(defines) {
		block.WriteString("#define ")
		block.WriteString(name)
		if v := defines[name]; v != "" {
			block.WriteString(" ")
			block.WriteString(v)
		}
		block.WriteString("\n")
	}

	lines := strings.SplitAfter(text, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#version") {
			head := strings.Join(lines[:i+1], "")
			if !strings.HasSuffix(head, "\n") {
				head += "\n"
			}
			return head + block.String() + strings.Join(lines[i+1:], "")
		}
	}
	return block.String() + text
}

// MergeDefines returns DefaultDefines overlaid with extra.
func MergeDefines(extra map[string]string) map[string]string {
	out := make(map[string]string, len(DefaultDefines)+len(extra))
	for k, v := range DefaultDefines {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
