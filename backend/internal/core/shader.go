package core

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
)

type shader struct {
	resource
	stage      rhi.ShaderStage
	format     rhi.ShaderFormat
	entryPoint string
	module     *ir.Module // nil for precompiled sources
	translated []byte
	native     hal.ShaderModule
	compiled   bool
	log        string
}

// Stage implements rhi.Shader.
func (s *shader) Stage() rhi.ShaderStage { return s.stage }

// Format implements rhi.Shader.
func (s *shader) Format() rhi.ShaderFormat { return s.format }

// Translated implements rhi.Shader.
func (s *shader) Translated() []byte { return s.translated }

// IsCompiled implements rhi.Shader.
func (s *shader) IsCompiled() bool { return s.compiled }

// CompileLog implements rhi.Shader.
func (s *shader) CompileLog() string { return s.log }

// entry returns the IR entry point the shader was compiled from.
func (s *shader) entry() *ir.EntryPoint {
	if s.module == nil {
		return nil
	}
	for i := range s.module.EntryPoints {
		if s.module.EntryPoints[i].Name == s.entryPoint {
			return &s.module.EntryPoints[i]
		}
	}
	return nil
}

// shaderLanguage implements rhi.ShaderLanguage for a renderer.
type shaderLanguage struct {
	r *Renderer
}

// Name implements rhi.ShaderLanguage.
func (l *shaderLanguage) Name() string { return l.r.profile.Language }

// Format implements rhi.ShaderLanguage.
func (l *shaderLanguage) Format() rhi.ShaderFormat { return l.r.profile.ShaderFormat }

// Renderer implements rhi.ShaderLanguage.
func (l *shaderLanguage) Renderer() rhi.Renderer { return l.r }

// CreateVertexShader implements rhi.ShaderLanguage.
func (l *shaderLanguage) CreateVertexShader(src rhi.ShaderSource) (rhi.VertexShader, error) {
	return l.r.createShader(rhi.ShaderStageVertex, src)
}

// CreateTessellationControlShader implements rhi.ShaderLanguage.
func (l *shaderLanguage) CreateTessellationControlShader(src rhi.ShaderSource) (rhi.TessellationControlShader, error) {
	return l.r.createShader(rhi.ShaderStageTessellationControl, src)
}

// CreateTessellationEvaluationShader implements rhi.ShaderLanguage.
func (l *shaderLanguage) CreateTessellationEvaluationShader(src rhi.ShaderSource) (rhi.TessellationEvaluationShader, error) {
	return l.r.createShader(rhi.ShaderStageTessellationEvaluation, src)
}

// CreateGeometryShader implements rhi.ShaderLanguage.
func (l *shaderLanguage) CreateGeometryShader(src rhi.ShaderSource) (rhi.GeometryShader, error) {
	return l.r.createShader(rhi.ShaderStageGeometry, src)
}

// CreateFragmentShader implements rhi.ShaderLanguage.
func (l *shaderLanguage) CreateFragmentShader(src rhi.ShaderSource) (rhi.FragmentShader, error) {
	return l.r.createShader(rhi.ShaderStageFragment, src)
}

// CreateProgram implements rhi.ShaderLanguage.
func (l *shaderLanguage) CreateProgram(desc rhi.ProgramDescriptor) (rhi.Program, error) {
	return l.r.createProgram(desc)
}

func (r *Renderer) stageSupported(stage rhi.ShaderStage) bool {
	switch stage {
	case rhi.ShaderStageGeometry:
		return r.profile.Caps.GeometryShaders
	case rhi.ShaderStageTessellationControl, rhi.ShaderStageTessellationEvaluation:
		return r.profile.Caps.TessellationShaders
	default:
		return true
	}
}

// createShader returns a shader object even when compilation fails; the
// failure is logged and kept in CompileLog.
func (r *Renderer) createShader(stage rhi.ShaderStage, src rhi.ShaderSource) (*shader, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	if !r.stageSupported(stage) {
		r.warn("%s shaders are not supported", stage)
		return nil, fmt.Errorf("%w: %s shaders on %s", rhi.ErrUnsupported, stage, r.profile.Name)
	}
	s := &shader{stage: stage, format: r.profile.ShaderFormat, entryPoint: src.EntryPoint}
	s.init(r, stage.ResourceType(), func() { r.dev.releaseShader(&s.native) })

	var err error
	switch {
	case src.Format == rhi.ShaderFormatWGSL:
		err = r.compileWGSL(s, string(src.Code))
	case r.profile.accepts(src.Format):
		err = r.loadNative(s, src)
	default:
		err = fmt.Errorf("%s source cannot be used by %s, supply WGSL or %s", src.Format, r.profile.Name, r.profile.ShaderFormat)
	}
	if err != nil {
		s.log = err.Error()
		r.warn("%s shader compile failed: %s", stage, s.log)
		return s, nil
	}
	s.compiled = true
	return s, nil
}

var irStages = map[rhi.ShaderStage]ir.ShaderStage{
	rhi.ShaderStageVertex:   ir.StageVertex,
	rhi.ShaderStageFragment: ir.StageFragment,
}

func (r *Renderer) compileWGSL(s *shader, code string) error {
	irStage, ok := irStages[s.stage]
	if !ok {
		return fmt.Errorf("WGSL has no %s stage, supply %s source", s.stage, r.profile.ShaderFormat)
	}
	ast, err := naga.Parse(code)
	if err != nil {
		return err
	}
	module, err := naga.LowerWithSource(ast, code)
	if err != nil {
		return err
	}
	verrs, err := naga.Validate(module)
	if err != nil {
		return err
	}
	if len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, e := range verrs {
			msgs[i] = e.Error()
		}
		return errors.New(strings.Join(msgs, "; "))
	}

	found := false
	for _, ep := range module.EntryPoints {
		if ep.Stage != irStage || (s.entryPoint != "" && ep.Name != s.entryPoint) {
			continue
		}
		s.entryPoint = ep.Name
		found = true
		break
	}
	if !found {
		if s.entryPoint != "" {
			return fmt.Errorf("no %s entry point %q", s.stage, s.entryPoint)
		}
		return fmt.Errorf("no %s entry point", s.stage)
	}
	s.module = module

	if r.profile.Translate == nil {
		s.translated = []byte(code)
		s.format = rhi.ShaderFormatWGSL
	} else {
		out, err := r.profile.Translate(module, s.stage, s.entryPoint)
		if err != nil {
			return fmt.Errorf("translate to %s: %w", r.profile.Language, err)
		}
		s.translated = out
	}

	native, err := create(r.dev, func(d hal.Device) (hal.ShaderModule, error) {
		return d.CreateShaderModule(&hal.ShaderModuleDescriptor{
			Label:  s.label(),
			Source: hal.ShaderSource{WGSL: code},
		})
	})
	if err != nil {
		return fmt.Errorf("create shader module: %w", err)
	}
	s.native = native
	return nil
}

// loadNative accepts precompiled source in the backend's own format.
// Only SPIR-V reaches the hal device; other native text is kept for
// inspection and has no device module.
func (r *Renderer) loadNative(s *shader, src rhi.ShaderSource) error {
	if len(src.Code) == 0 {
		return errors.New("empty shader source")
	}
	s.translated = append([]byte(nil), src.Code...)
	if s.entryPoint == "" {
		s.entryPoint = "main"
	}
	if src.Format != rhi.ShaderFormatSPIRV {
		return nil
	}
	words, err := SPIRVWords(src.Code)
	if err != nil {
		return err
	}
	native, err := create(r.dev, func(d hal.Device) (hal.ShaderModule, error) {
		return d.CreateShaderModule(&hal.ShaderModuleDescriptor{
			Label:  s.label(),
			Source: hal.ShaderSource{SPIRV: words},
		})
	})
	if err != nil {
		return fmt.Errorf("create shader module: %w", err)
	}
	s.native = native
	return nil
}

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// SPIRVWords converts a little-endian SPIR-V binary to words.
func SPIRVWords(code []byte) ([]uint32, error) {
	if len(code) < 4 || len(code)%4 != 0 {
		return nil, fmt.Errorf("SPIR-V size %d is not a positive multiple of 4", len(code))
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	if words[0] != spirvMagic {
		return nil, fmt.Errorf("bad SPIR-V magic %#08x", words[0])
	}
	return words, nil
}

// asShader returns the core shader behind s when r owns it.
func (r *Renderer) asShader(s rhi.Shader, where string) *shader {
	if s == nil || !r.owns(s, where) {
		return nil
	}
	cs, ok := s.(*shader)
	if !ok {
		r.warn("%s: foreign %s implementation", where, s.ResourceType())
		return nil
	}
	return cs
}
