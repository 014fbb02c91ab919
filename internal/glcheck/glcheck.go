// Package glcheck links generated programs against a real OpenGL driver
// and compares the driver's uniform locations with the reflected ones.
package glcheck

import (
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/glslgen/internal/program"
	"github.com/Faultbox/glslgen/internal/shader"
	"github.com/Faultbox/glslgen/pkg/glshader"
)

// Context is a hidden window with a GL 4.1 core context. It must be used
// from the goroutine that opened it.
type Context struct {
	log       *zap.Logger
	sdlWindow *sdl.Window
	glContext sdl.GLContext
}

// Open creates the hidden window and makes its context current.
func Open(log *zap.Logger) (*Context, error) {
	if log == nil {
		log = zap.NewNop()
	}
	// GL calls must stay on the thread that owns the context
	runtime.LockOSThread()

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	// OpenGL 4.1 Core Profile (max supported on macOS)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)

	c := &Context{log: log}
	var err error
	c.sdlWindow, err = sdl.CreateWindow("glslgen", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		1, 1, sdl.WINDOW_OPENGL|sdl.WINDOW_HIDDEN)
	if err != nil {
		sdl.Quit()
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	c.glContext, err = c.sdlWindow.GLCreateContext()
	if err != nil {
		c.sdlWindow.Destroy()
		sdl.Quit()
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}

	if err := gl.Init(); err != nil {
		c.Close()
		return nil, fmt.Errorf("gl.Init failed: %w", err)
	}

	log.Debug("GL context created",
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))))
	return c, nil
}

// Close destroys the context and shuts SDL down.
func (c *Context) Close() {
	if c.glContext != nil {
		sdl.GLDeleteContext(c.glContext)
		c.glContext = nil
	}
	if c.sdlWindow != nil {
		c.sdlWindow.Destroy()
		c.sdlWindow = nil
	}
	sdl.Quit()
	runtime.UnlockOSThread()
}

// Mismatch is a uniform the driver placed somewhere other than reflected.
type Mismatch struct {
	Uniform   string
	Reflected uint32
	Driver    int32
}

// Report is the outcome of verifying one program.
type Report struct {
	Program    string
	Mismatches []Mismatch
	// Removed lists reflected uniforms the driver optimized away.
	Removed []string
	// Unreflected lists active driver uniforms that reflection missed.
	Unreflected []string
}

// Failed reports whether the report contains a problem. Location
// mismatches only matter when generated code trusts reflected locations.
func (r Report) Failed(reflectedLocations bool) bool {
	if len(r.Unreflected) > 0 {
		return true
	}
	return reflectedLocations && len(r.Mismatches) > 0
}

func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "program %s:", r.Program)
	if len(r.Mismatches) == 0 && len(r.Removed) == 0 && len(r.Unreflected) == 0 {
		b.WriteString(" ok")
		return b.String()
	}
	for _, m := range r.Mismatches {
		fmt.Fprintf(&b, "\n\t%s: reflected location %d, driver location %d", m.Uniform, m.Reflected, m.Driver)
	}
	for _, name := range r.Removed {
		fmt.Fprintf(&b, "\n\t%s: removed by the driver", name)
	}
	for _, name := range r.Unreflected {
		fmt.Fprintf(&b, "\n\t%s: active but not reflected", name)
	}
	return b.String()
}

// Verify compiles and links p with the driver and compares locations.
func (c *Context) Verify(p *program.Program) (Report, error) {
	names := make([]uint32, 0, len(p.Shaders))
	defer func() {
		for _, n := range names {
			gl.DeleteShader(n)
		}
	}()
	for _, sh := range p.Shaders {
		n, err := glshader.CompileShader(glStage(sh.Stage), sh.Source, sh.Name)
		if err != nil {
			return Report{}, err
		}
		names = append(names, n)
	}

	name, err := glshader.LinkProgram(names...)
	if err != nil {
		return Report{}, fmt.Errorf("linking %s: %w", p.ID, err)
	}
	defer gl.DeleteProgram(name)

	driver := make(map[string]int32)
	for _, u := range p.Uniforms {
		driver[u.Name] = glshader.Lookup(name, u.Name).Value()
	}
	report := compare(p, driver, activeUniforms(name))

	c.log.Debug("Program verified",
		zap.String("program", p.ID),
		zap.Int("mismatches", len(report.Mismatches)),
		zap.Int("removed", len(report.Removed)))
	return report, nil
}

// compare builds a report from driver locations (-1 when absent) and the
// names of every active driver uniform.
func compare(p *program.Program, driver map[string]int32, active []string) Report {
	r := Report{Program: p.ID}
	reflected := make(map[string]bool)
	for _, u := range p.Uniforms {
		reflected[u.Name] = true
		loc := driver[u.Name]
		switch {
		case loc < 0:
			r.Removed = append(r.Removed, u.Name)
		case uint32(loc) != u.Location:
			r.Mismatches = append(r.Mismatches, Mismatch{Uniform: u.Name, Reflected: u.Location, Driver: loc})
		}
	}
	for _, name := range active {
		if !reflected[name] {
			r.Unreflected = append(r.Unreflected, name)
		}
	}
	sort.Strings(r.Unreflected)
	return r
}

// activeUniforms lists default-block uniforms. Arrays are reported by the
// driver as "name[0]"; block members carry a dot and are skipped.
func activeUniforms(program uint32) []string {
	var count, maxLen int32
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORMS, &count)
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORM_MAX_LENGTH, &maxLen)
	if count == 0 || maxLen == 0 {
		return nil
	}

	var names []string
	buf := make([]uint8, maxLen)
	for i := int32(0); i < count; i++ {
		var length, size int32
		var xtype uint32
		gl.GetActiveUniform(program, uint32(i), maxLen, &length, &size, &xtype, &buf[0])
		if name, ok := uniformName(string(buf[:length])); ok {
			names = append(names, name)
		}
	}
	return names
}

func uniformName(driverName string) (string, bool) {
	if strings.Contains(driverName, ".") {
		return "", false
	}
	return strings.TrimSuffix(driverName, "[0]"), true
}

func glStage(s shader.Stage) uint32 {
	switch s {
	case shader.Fragment:
		return gl.FRAGMENT_SHADER
	case shader.Compute:
		return glshader.ComputeShader
	default:
		return gl.VERTEX_SHADER
	}
}
