package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/naga/glsl"
)

// GlslVersion is a GLSL language version, e.g. 330 or 300 es.
type GlslVersion struct {
	// Value is the #version number, e.g. 330.
	Value int
	ES    bool
}

// GlslVersions lists the versions the generator can target.
var GlslVersions = []GlslVersion{
	{Value: 110}, {Value: 120}, {Value: 130}, {Value: 140}, {Value: 150},
	{Value: 330}, {Value: 400}, {Value: 410}, {Value: 420}, {Value: 430},
	{Value: 440}, {Value: 450}, {Value: 460},
	{Value: 100, ES: true}, {Value: 300, ES: true},
}

// Number returns the version number as used by #version, e.g. "330".
func (v GlslVersion) Number() string {
	return strconv.Itoa(v.Value)
}

// String returns "330" or "300 es".
func (v GlslVersion) String() string {
	if v.ES {
		return v.Number() + " es"
	}
	return v.Number()
}

// ExplicitUniformLocations reports whether v accepts layout(location = N)
// on plain uniforms, so transpiled sources keep reflected locations.
func (v GlslVersion) ExplicitUniformLocations() bool {
	if v.ES {
		return v.Value >= 310
	}
	return v.Value >= 430
}

// Naga converts v to the naga GLSL backend version.
func (v GlslVersion) Naga() glsl.Version {
	return glsl.Version{Major: uint8(v.Value / 100), Minor: uint8(v.Value % 100), ES: v.ES}
}

// ParseGlslVersion parses "330", "3.30", "300 es" or "1.00 es".
func ParseGlslVersion(s string) (GlslVersion, error) {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 || len(fields) > 2 {
		return GlslVersion{}, fmt.Errorf("%w: %q", ErrUnknownGlslVersion, s)
	}

	var v GlslVersion
	if len(fields) == 2 {
		switch fields[1] {
		case "es":
			v.ES = true
		case "core":
		default:
			return GlslVersion{}, fmt.Errorf("%w: %q", ErrUnknownGlslVersion, s)
		}
	}

	number := fields[0]
	if major, minor, ok := strings.Cut(number, "."); ok {
		if len(minor) != 2 {
			return GlslVersion{}, fmt.Errorf("%w: %q", ErrUnknownGlslVersion, s)
		}
		number = major + minor
	}
	n, err := strconv.Atoi(number)
	if err != nil {
		return GlslVersion{}, fmt.Errorf("%w: %q", ErrUnknownGlslVersion, s)
	}
	v.Value = n

	for _, known := range GlslVersions {
		if known == v {
			return v, nil
		}
	}
	return GlslVersion{}, fmt.Errorf("%w: %q", ErrUnknownGlslVersion, s)
}
