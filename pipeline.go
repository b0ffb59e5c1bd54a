package rhi

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// RasterizerState is a rasterizer descriptor translated for one backend.
type RasterizerState interface {
	Resource
	Descriptor() RasterizerDescriptor
}

// BlendState is a blend descriptor translated for one backend.
type BlendState interface {
	Resource
	Descriptor() BlendDescriptor
}

// DepthStencilState is a depth-stencil descriptor translated for one backend.
type DepthStencilState interface {
	Resource
	Descriptor() DepthStencilDescriptor
}

// SamplerState is a sampler descriptor translated for one backend.
type SamplerState interface {
	Resource
	Descriptor() SamplerDescriptor
}

// DescriptorRangeType is the kind of resource a descriptor range binds.
type DescriptorRangeType uint8

const (
	DescriptorRangeTexture DescriptorRangeType = iota
	DescriptorRangeUniformBuffer
	DescriptorRangeSampler
)

// String returns the range type name.
func (t DescriptorRangeType) String() string {
	switch t {
	case DescriptorRangeTexture:
		return "Texture"
	case DescriptorRangeUniformBuffer:
		return "UniformBuffer"
	case DescriptorRangeSampler:
		return "Sampler"
	default:
		return fmt.Sprintf("DescriptorRangeType(%d)", uint8(t))
	}
}

// DescriptorRange is one binding of a root parameter.
type DescriptorRange struct {
	Type DescriptorRangeType
	// Name is the uniform or block name used by GLSL sources.
	Name    string
	Binding uint32
	// Dimension applies to texture ranges. Zero means 2D.
	Dimension gputypes.TextureViewDimension
	// SamplerBinding is the binding of the sampler paired with a texture
	// range. It is used only when Sampled is true.
	Sampled        bool
	SamplerBinding uint32
}

// RootParameter is one resource group slot of a root signature.
type RootParameter struct {
	Ranges     []DescriptorRange
	Visibility gputypes.ShaderStages
}

// RootSignatureDescriptor describes the resource binding layout of a pipeline.
type RootSignatureDescriptor struct {
	Parameters []RootParameter
}

// Validate reports duplicated bindings inside a parameter.
func (d RootSignatureDescriptor) Validate() error {
	for i, p := range d.Parameters {
		seen := make(map[uint32]bool)
		for _, r := range p.Ranges {
			if r.Type > DescriptorRangeSampler {
				return fmt.Errorf("%w: root parameter %d range type %d", ErrInvalidDescriptor, i, r.Type)
			}
			bindings := []uint32{r.Binding}
			if r.Type == DescriptorRangeTexture && r.Sampled {
				bindings = append(bindings, r.SamplerBinding)
			}
			for _, b := range bindings {
				if seen[b] {
					return fmt.Errorf("%w: root parameter %d binding %d used twice", ErrInvalidDescriptor, i, b)
				}
				seen[b] = true
			}
		}
	}
	return nil
}

// RootSignature is the binding layout shared by pipeline states and the
// resource groups bound to them.
type RootSignature interface {
	Resource

	Descriptor() RootSignatureDescriptor

	// CreateResourceGroup creates a group for root parameter index.
	// resources must match the parameter's ranges one to one. samplers is
	// either nil or has the same length as resources. Every non-nil sampler
	// is held by the group; a sampler at i is bound to the sampler binding
	// only when range i is a sampled texture.
	CreateResourceGroup(index int, resources []Resource, samplers []SamplerState) (ResourceGroup, error)
}

// ResourceGroup is a set of resources bound together to one root
// parameter. It holds one reference to every member.
type ResourceGroup interface {
	Resource

	RootSignature() RootSignature
	ParameterIndex() int
	Resources() []Resource
	// SamplerStates returns nil when the group was created without samplers.
	SamplerStates() []SamplerState
}

// PipelineStateDescriptor describes a complete graphics pipeline.
type PipelineStateDescriptor struct {
	RootSignature      RootSignature
	Program            Program
	VertexAttributes   VertexAttributes
	Topology           PrimitiveTopology
	Rasterizer         RasterizerDescriptor
	DepthStencil       DepthStencilDescriptor
	Blend              BlendDescriptor
	ColorFormats       []gputypes.TextureFormat
	DepthStencilFormat gputypes.TextureFormat
	SampleCount        uint32
}

// DefaultPipelineState returns a triangle list pipeline with default
// states, one RGBA8 color target and a 32-bit float depth buffer.
func DefaultPipelineState() PipelineStateDescriptor {
	return PipelineStateDescriptor{
		Topology:           PrimitiveTopologyTriangleList,
		Rasterizer:         DefaultRasterizer(),
		DepthStencil:       DefaultDepthStencil(),
		Blend:              DefaultBlend(),
		ColorFormats:       []gputypes.TextureFormat{gputypes.TextureFormatRGBA8Unorm},
		DepthStencilFormat: gputypes.TextureFormatDepth32Float,
		SampleCount:        1,
	}
}

// Validate checks the fixed-function descriptors.
func (d PipelineStateDescriptor) Validate() error {
	if d.Program == nil {
		return fmt.Errorf("%w: pipeline state without program", ErrInvalidDescriptor)
	}
	if d.Topology > PrimitiveTopologyPatchList {
		return fmt.Errorf("%w: topology %d", ErrInvalidDescriptor, d.Topology)
	}
	if len(d.ColorFormats) > MaxRenderTargets {
		return fmt.Errorf("%w: %d color targets", ErrInvalidDescriptor, len(d.ColorFormats))
	}
	if err := d.Rasterizer.Validate(); err != nil {
		return err
	}
	if err := d.DepthStencil.Validate(); err != nil {
		return err
	}
	return d.Blend.Validate()
}

// PipelineState bundles a program with fixed-function state.
// It holds a reference to its program and root signature and owns its
// rasterizer, depth-stencil and blend state objects.
type PipelineState interface {
	Resource

	RootSignature() RootSignature
	Program() Program
	VertexAttributes() VertexAttributes
	Topology() PrimitiveTopology
	RasterizerState() RasterizerState
	DepthStencilState() DepthStencilState
	BlendState() BlendState
}
