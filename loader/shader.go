package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/rhi"
)

var shaderTags = map[string]rhi.ShaderFormat{
	"wgsl":  rhi.ShaderFormatWGSL,
	"glsl":  rhi.ShaderFormatGLSL,
	"vert":  rhi.ShaderFormatGLSL,
	"frag":  rhi.ShaderFormatGLSL,
	"essl":  rhi.ShaderFormatESSL,
	"hlsl":  rhi.ShaderFormatHLSL,
	"spv":   rhi.ShaderFormatSPIRV,
	"spirv": rhi.ShaderFormatSPIRV,
}

// ShaderFormat maps a format tag or file extension, with or without the
// leading dot, to a shader format.
func ShaderFormat(tag string) (rhi.ShaderFormat, error) {
	f, ok := shaderTags[strings.ToLower(strings.TrimPrefix(tag, "."))]
	if !ok {
		return 0, fmt.Errorf("%w: shader tag %q", ErrUnsupportedFormat, tag)
	}
	return f, nil
}

// Shader compiles code of the tagged format as the given stage. The stage
// entry point is chosen by the shader language. Compile failures are
// reported by the returned shader, not as an error.
func Shader(lang rhi.ShaderLanguage, stage rhi.ShaderStage, code []byte, tag string) (rhi.Shader, error) {
	if len(code) == 0 {
		return nil, ErrEmptyData
	}
	format, err := ShaderFormat(tag)
	if err != nil {
		return nil, err
	}
	src := rhi.ShaderSource{Code: code, Format: format}
	switch stage {
	case rhi.ShaderStageVertex:
		return lang.CreateVertexShader(src)
	case rhi.ShaderStageTessellationControl:
		return lang.CreateTessellationControlShader(src)
	case rhi.ShaderStageTessellationEvaluation:
		return lang.CreateTessellationEvaluationShader(src)
	case rhi.ShaderStageGeometry:
		return lang.CreateGeometryShader(src)
	case rhi.ShaderStageFragment:
		return lang.CreateFragmentShader(src)
	default:
		return nil, fmt.Errorf("%w: shader stage %v", rhi.ErrInvalidDescriptor, stage)
	}
}

// ShaderFile reads a shader file tagged by its extension.
func ShaderFile(lang rhi.ShaderLanguage, stage rhi.ShaderStage, path string) (rhi.Shader, error) {
	code, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("loader: read shader: %w", err)
	}
	s, err := Shader(lang, stage, code, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", filepath.Base(path), err)
	}
	s.SetDebugName(filepath.Base(path))
	return s, nil
}

// Program loads a vertex and a fragment shader file and links them.
func Program(lang rhi.ShaderLanguage, attrs rhi.VertexAttributes, vertexPath, fragmentPath string) (rhi.Program, error) {
	vs, err := ShaderFile(lang, rhi.ShaderStageVertex, vertexPath)
	if err != nil {
		return nil, err
	}
	fs, err := ShaderFile(lang, rhi.ShaderStageFragment, fragmentPath)
	if err != nil {
		vs.AddReference()
		vs.ReleaseReference()
		return nil, err
	}
	return lang.CreateProgram(rhi.ProgramDescriptor{
		VertexAttributes: attrs,
		Vertex:           vs.(rhi.VertexShader),
		Fragment:         fs.(rhi.FragmentShader),
	})
}
