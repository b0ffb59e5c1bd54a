package rhi

// ResourceType identifies the category of a resource.
type ResourceType uint8

const (
	ResourceTypeRootSignature ResourceType = iota
	ResourceTypeResourceGroup
	ResourceTypeProgram
	ResourceTypeVertexArray
	ResourceTypeSwapChain
	ResourceTypeFramebuffer
	ResourceTypeIndexBuffer
	ResourceTypeVertexBuffer
	ResourceTypeUniformBuffer
	ResourceTypeIndirectBuffer
	ResourceTypeTexture1D
	ResourceTypeTexture2D
	ResourceTypeTexture3D
	ResourceTypeTextureCube
	ResourceTypePipelineState
	ResourceTypeSamplerState
	ResourceTypeRasterizerState
	ResourceTypeBlendState
	ResourceTypeDepthStencilState
	ResourceTypeVertexShader
	ResourceTypeTessellationControlShader
	ResourceTypeTessellationEvaluationShader
	ResourceTypeGeometryShader
	ResourceTypeFragmentShader

	// NumResourceTypes is the number of resource types.
	NumResourceTypes
)

var resourceTypeNames = [...]string{
	ResourceTypeRootSignature:                "RootSignature",
	ResourceTypeResourceGroup:                "ResourceGroup",
	ResourceTypeProgram:                      "Program",
	ResourceTypeVertexArray:                  "VertexArray",
	ResourceTypeSwapChain:                    "SwapChain",
	ResourceTypeFramebuffer:                  "Framebuffer",
	ResourceTypeIndexBuffer:                  "IndexBuffer",
	ResourceTypeVertexBuffer:                 "VertexBuffer",
	ResourceTypeUniformBuffer:                "UniformBuffer",
	ResourceTypeIndirectBuffer:               "IndirectBuffer",
	ResourceTypeTexture1D:                    "Texture1D",
	ResourceTypeTexture2D:                    "Texture2D",
	ResourceTypeTexture3D:                    "Texture3D",
	ResourceTypeTextureCube:                  "TextureCube",
	ResourceTypePipelineState:                "PipelineState",
	ResourceTypeSamplerState:                 "SamplerState",
	ResourceTypeRasterizerState:              "RasterizerState",
	ResourceTypeBlendState:                   "BlendState",
	ResourceTypeDepthStencilState:            "DepthStencilState",
	ResourceTypeVertexShader:                 "VertexShader",
	ResourceTypeTessellationControlShader:    "TessellationControlShader",
	ResourceTypeTessellationEvaluationShader: "TessellationEvaluationShader",
	ResourceTypeGeometryShader:               "GeometryShader",
	ResourceTypeFragmentShader:               "FragmentShader",
}

// String returns the resource type name.
func (t ResourceType) String() string {
	if int(t) < len(resourceTypeNames) {
		return resourceTypeNames[t]
	}
	return "Unknown"
}

// IsTexture reports whether t is one of the texture types.
func (t ResourceType) IsTexture() bool {
	return t >= ResourceTypeTexture1D && t <= ResourceTypeTextureCube
}

// IsBuffer reports whether t is one of the buffer types.
func (t ResourceType) IsBuffer() bool {
	return t >= ResourceTypeIndexBuffer && t <= ResourceTypeIndirectBuffer
}

// IsShader reports whether t is one of the shader stage types.
func (t ResourceType) IsShader() bool {
	return t >= ResourceTypeVertexShader && t <= ResourceTypeFragmentShader
}

// Resource is implemented by every GPU-visible object.
//
// A resource is bound to exactly one renderer for its whole lifetime.
type Resource interface {
	RefCounter

	// ResourceType returns the resource category.
	ResourceType() ResourceType

	// Renderer returns the renderer that created the resource.
	Renderer() Renderer

	// SetDebugName assigns a name shown by native debugging tools.
	// Backends without native debug labels keep the name locally and
	// report the missing support through the renderer log.
	SetDebugName(name string)

	// DebugName returns the name set with SetDebugName.
	DebugName() string
}
