package rhi

import "fmt"

// ShaderFormat tags the language of shader source bytes.
type ShaderFormat uint8

const (
	// ShaderFormatWGSL is portable source every backend translates.
	ShaderFormatWGSL ShaderFormat = iota
	ShaderFormatGLSL
	ShaderFormatESSL
	ShaderFormatHLSL
	// ShaderFormatSPIRV is a little-endian SPIR-V binary.
	ShaderFormatSPIRV
)

var shaderFormatNames = [...]string{"WGSL", "GLSL", "ESSL", "HLSL", "SPIR-V"}

// String returns the format name.
func (f ShaderFormat) String() string {
	if int(f) < len(shaderFormatNames) {
		return shaderFormatNames[f]
	}
	return fmt.Sprintf("ShaderFormat(%d)", uint8(f))
}

// ShaderStage identifies a programmable pipeline stage.
type ShaderStage uint8

const (
	ShaderStageVertex ShaderStage = iota
	ShaderStageTessellationControl
	ShaderStageTessellationEvaluation
	ShaderStageGeometry
	ShaderStageFragment
)

var shaderStageNames = [...]string{"vertex", "tessellation control", "tessellation evaluation", "geometry", "fragment"}

// String returns the stage name.
func (s ShaderStage) String() string {
	if int(s) < len(shaderStageNames) {
		return shaderStageNames[s]
	}
	return fmt.Sprintf("ShaderStage(%d)", uint8(s))
}

// ResourceType returns the resource type of shaders of stage s.
func (s ShaderStage) ResourceType() ResourceType {
	switch s {
	case ShaderStageTessellationControl:
		return ResourceTypeTessellationControlShader
	case ShaderStageTessellationEvaluation:
		return ResourceTypeTessellationEvaluationShader
	case ShaderStageGeometry:
		return ResourceTypeGeometryShader
	case ShaderStageFragment:
		return ResourceTypeFragmentShader
	default:
		return ResourceTypeVertexShader
	}
}

// ShaderSource is shader code handed to a ShaderLanguage.
type ShaderSource struct {
	Code   []byte
	Format ShaderFormat
	// EntryPoint selects the function to use. Empty picks the first entry
	// point of the stage, or "main" for GLSL and HLSL.
	EntryPoint string
}

// WGSL returns a WGSL source with the given entry point.
func WGSL(code, entryPoint string) ShaderSource {
	return ShaderSource{Code: []byte(code), Format: ShaderFormatWGSL, EntryPoint: entryPoint}
}

// Shader is the common part of every shader stage resource.
//
// A shader whose source failed to compile is still returned by the
// factory; IsCompiled reports false and CompileLog holds the diagnostic.
type Shader interface {
	Resource

	Stage() ShaderStage
	// Format returns the backend-native format the stage was compiled to.
	Format() ShaderFormat
	// Translated returns the backend-native source text or binary.
	Translated() []byte
	IsCompiled() bool
	CompileLog() string
}

// VertexShader is a vertex stage.
type VertexShader interface{ Shader }

// TessellationControlShader is a hull stage.
type TessellationControlShader interface{ Shader }

// TessellationEvaluationShader is a domain stage.
type TessellationEvaluationShader interface{ Shader }

// GeometryShader is a geometry stage.
type GeometryShader interface{ Shader }

// FragmentShader is a pixel stage.
type FragmentShader interface{ Shader }

// ProgramDescriptor lists the stages to link. Any stage may be nil.
type ProgramDescriptor struct {
	RootSignature          RootSignature
	VertexAttributes       VertexAttributes
	Vertex                 VertexShader
	TessellationControl    TessellationControlShader
	TessellationEvaluation TessellationEvaluationShader
	Geometry               GeometryShader
	Fragment               FragmentShader
}

// Program is a linked set of shader stages. It holds a reference to each
// attached stage.
//
// Link failure does not fail program creation. Callers must check
// IsLinked before using the program; LinkLog holds the diagnostic.
type Program interface {
	Resource

	IsLinked() bool
	LinkLog() string
	VertexAttributes() VertexAttributes
	// Shader returns the stage attached for s, or nil.
	Shader(s ShaderStage) Shader
}

// ShaderLanguage creates shaders and programs in one backend language.
type ShaderLanguage interface {
	// Name returns the language name, for example "GLSL" or "HLSL".
	Name() string
	Format() ShaderFormat
	Renderer() Renderer

	CreateVertexShader(src ShaderSource) (VertexShader, error)
	CreateTessellationControlShader(src ShaderSource) (TessellationControlShader, error)
	CreateTessellationEvaluationShader(src ShaderSource) (TessellationEvaluationShader, error)
	CreateGeometryShader(src ShaderSource) (GeometryShader, error)
	CreateFragmentShader(src ShaderSource) (FragmentShader, error)
	CreateProgram(desc ProgramDescriptor) (Program, error)
}
