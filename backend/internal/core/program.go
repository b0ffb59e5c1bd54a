package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gogpu/naga/ir"

	"github.com/gogpu/rhi"
)

type program struct {
	resource
	stages  [rhi.ShaderStageFragment + 1]*shader
	attrs   rhi.VertexAttributes
	rootSig rhi.RootSignature
	linked  bool
	log     string
}

// IsLinked implements rhi.Program.
func (p *program) IsLinked() bool { return p.linked }

// LinkLog implements rhi.Program.
func (p *program) LinkLog() string { return p.log }

// VertexAttributes implements rhi.Program.
func (p *program) VertexAttributes() rhi.VertexAttributes { return p.attrs }

// Shader implements rhi.Program.
func (p *program) Shader(s rhi.ShaderStage) rhi.Shader {
	if int(s) >= len(p.stages) || p.stages[s] == nil {
		return nil
	}
	return p.stages[s]
}

func (r *Renderer) createProgram(desc rhi.ProgramDescriptor) (*program, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	given := [...]rhi.Shader{
		rhi.ShaderStageVertex:                 desc.Vertex,
		rhi.ShaderStageTessellationControl:    desc.TessellationControl,
		rhi.ShaderStageTessellationEvaluation: desc.TessellationEvaluation,
		rhi.ShaderStageGeometry:               desc.Geometry,
		rhi.ShaderStageFragment:               desc.Fragment,
	}
	p := &program{attrs: desc.VertexAttributes}
	for stage, s := range given {
		if s == nil {
			continue
		}
		cs := r.asShader(s, "CreateProgram")
		if cs == nil {
			continue
		}
		if cs.stage != rhi.ShaderStage(stage) {
			return nil, fmt.Errorf("%w: %s shader attached as %s", rhi.ErrInvalidDescriptor, cs.stage, rhi.ShaderStage(stage))
		}
		p.stages[stage] = cs
	}

	p.init(r, rhi.ResourceTypeProgram, nil)
	for _, cs := range p.stages {
		if cs != nil {
			p.hold(cs)
		}
	}
	if desc.RootSignature != nil && r.owns(desc.RootSignature, "CreateProgram") {
		p.rootSig = desc.RootSignature
		p.hold(desc.RootSignature)
	}

	if err := p.link(); err != nil {
		p.log = err.Error()
		r.warn("program link failed: %s", p.log)
	} else {
		p.linked = true
	}
	return p, nil
}

// link checks that every stage compiled and that stage interfaces match.
func (p *program) link() error {
	var attached int
	for _, s := range p.stages {
		if s == nil {
			continue
		}
		attached++
		if !s.compiled {
			return fmt.Errorf("%s shader is not compiled: %s", s.stage, s.log)
		}
	}
	if attached == 0 {
		return errors.New("no shader stages attached")
	}
	vs := p.stages[rhi.ShaderStageVertex]
	fs := p.stages[rhi.ShaderStageFragment]

	if vs != nil && len(p.attrs) > 0 {
		if ep := vs.entry(); ep != nil {
			for _, loc := range inputLocations(vs.module, ep) {
				if int(loc) >= len(p.attrs) {
					return fmt.Errorf("vertex input location %d has no attribute (%d declared)", loc, len(p.attrs))
				}
			}
		}
	}
	// Intermediate stages have no IR, so the check only runs when the
	// vertex stage feeds the fragment stage directly.
	if vs != nil && fs != nil && p.stages[rhi.ShaderStageGeometry] == nil &&
		p.stages[rhi.ShaderStageTessellationEvaluation] == nil {
		vep, fep := vs.entry(), fs.entry()
		if vep != nil && fep != nil {
			outputs := make(map[uint32]bool)
			for _, loc := range outputLocations(vs.module, vep) {
				outputs[loc] = true
			}
			var missing []string
			for _, loc := range inputLocations(fs.module, fep) {
				if !outputs[loc] {
					missing = append(missing, fmt.Sprint(loc))
				}
			}
			if len(missing) > 0 {
				return fmt.Errorf("fragment inputs at locations %s are not written by the vertex stage",
					strings.Join(missing, ", "))
			}
		}
	}
	return nil
}

// locations collects @location bindings of a value, looking through
// struct members.
func locations(m *ir.Module, binding *ir.Binding, th ir.TypeHandle, out []uint32) []uint32 {
	if binding != nil {
		if lb, ok := (*binding).(ir.LocationBinding); ok {
			out = append(out, lb.Location)
		}
		return out
	}
	if int(th) >= len(m.Types) {
		return out
	}
	if st, ok := m.Types[th].Inner.(ir.StructType); ok {
		for _, mem := range st.Members {
			if mem.Binding == nil {
				continue
			}
			if lb, ok := (*mem.Binding).(ir.LocationBinding); ok {
				out = append(out, lb.Location)
			}
		}
	}
	return out
}

func inputLocations(m *ir.Module, ep *ir.EntryPoint) []uint32 {
	var out []uint32
	for _, arg := range ep.Function.Arguments {
		out = locations(m, arg.Binding, arg.Type, out)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func outputLocations(m *ir.Module, ep *ir.EntryPoint) []uint32 {
	res := ep.Function.Result
	if res == nil {
		return nil
	}
	return locations(m, res.Binding, res.Type, nil)
}

// asProgram returns the core program behind p when r owns it.
func (r *Renderer) asProgram(p rhi.Program, where string) *program {
	if p == nil || !r.owns(p, where) {
		return nil
	}
	cp, ok := p.(*program)
	if !ok {
		r.warn("%s: foreign program implementation", where)
		return nil
	}
	return cp
}
