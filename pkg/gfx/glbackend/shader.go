package glbackend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"postfx/pkg/gfx"
)

// program is a linked GL program with a uniform location cache
type program struct {
	id        uint32
	locations map[string]int32
	deleted   bool
}

func (p *program) Dispose() {
	if p.deleted {
		return
	}
	p.deleted = true
	gl.DeleteProgram(p.id)
}

func (p *program) location(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
	p.locations[name] = loc
	return loc
}

// injectDefines places one #define per entry right after the #version line.
// Keys are emitted in sorted order so equal define sets produce equal sources.
func injectDefines(source string, defines map[string]string) string {
	if len(defines) == 0 {
		return source
	}
	keys := make([]string, 0, len(defines))
	for k := range defines {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "#define %s %s\n", k, defines[k])
	}

	v := strings.Index(source, "#version")
	if v < 0 {
		return b.String() + source
	}
	nl := strings.IndexByte(source[v:], '\n')
	if nl < 0 {
		return source + "\n" + b.String()
	}
	end := v + nl + 1
	return source[:end] + b.String() + source[end:]
}

// createShaderProgram compiles and links a shader program from source
func createShaderProgram(vertexSource, fragmentSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}

	fragmentShader, err := compileShader(fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))

		gl.DeleteProgram(program)
		gl.DeleteShader(vertexShader)
		gl.DeleteShader(fragmentShader)

		return 0, fmt.Errorf("shader program linking failed: %v", log)
	}

	// the linked program keeps its own copy
	gl.DetachShader(program, vertexShader)
	gl.DetachShader(program, fragmentShader)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	return program, nil
}

// compileShader compiles a shader from source
func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))

		gl.DeleteShader(shader)

		return 0, fmt.Errorf("shader compilation failed: %v", log)
	}

	return shader, nil
}

// upload binds m's program and pushes every uniform. Textures take
// consecutive units starting at 0.
func (c *Context) upload(m *gfx.Material) error {
	p, ok := m.Program().(*program)
	if !ok {
		return fmt.Errorf("material %s was not created by this backend", m.Name)
	}
	gl.UseProgram(p.id)

	unit := int32(0)
	for _, name := range m.Uniforms.Names() {
		loc := p.location(name)
		if loc < 0 {
			continue
		}
		v, _ := m.Uniforms.Get(name)
		switch val := v.(type) {
		case float32:
			gl.Uniform1f(loc, val)
		case int32:
			gl.Uniform1i(loc, val)
		case bool:
			var i int32
			if val {
				i = 1
			}
			gl.Uniform1i(loc, i)
		case mgl32.Vec2:
			gl.Uniform2f(loc, val[0], val[1])
		case mgl32.Vec3:
			gl.Uniform3f(loc, val[0], val[1], val[2])
		case mgl32.Vec4:
			gl.Uniform4f(loc, val[0], val[1], val[2], val[3])
		case mgl32.Mat3:
			gl.UniformMatrix3fv(loc, 1, false, &val[0])
		case mgl32.Mat4:
			gl.UniformMatrix4fv(loc, 1, false, &val[0])
		case []float32:
			if len(val) > 0 {
				gl.Uniform1fv(loc, int32(len(val)), &val[0])
			}
		case []mgl32.Vec3:
			if len(val) > 0 {
				gl.Uniform3fv(loc, int32(len(val)), &val[0][0])
			}
		case *texture:
			if val == nil {
				continue
			}
			gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
			gl.BindTexture(gl.TEXTURE_2D, val.id)
			gl.Uniform1i(loc, unit)
			unit++
		case nil:
		default:
			return fmt.Errorf("material %s: unsupported uniform %s of type %T", m.Name, name, v)
		}
	}
	return nil
}
