package core

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
)

// rootSignature keeps one bind group layout per root parameter.
type rootSignature struct {
	resource
	desc    rhi.RootSignatureDescriptor
	layouts []hal.BindGroupLayout
	layout  hal.PipelineLayout
}

// Descriptor implements rhi.RootSignature.
func (rs *rootSignature) Descriptor() rhi.RootSignatureDescriptor { return rs.desc }

func (rs *rootSignature) release() {
	rs.r.dev.releasePipelineLayout(&rs.layout)
	for i := range rs.layouts {
		rs.r.dev.releaseBindGroupLayout(&rs.layouts[i])
	}
}

func layoutEntries(p rhi.RootParameter) []gputypes.BindGroupLayoutEntry {
	vis := p.Visibility
	if vis == 0 {
		vis = gputypes.ShaderStageVertex | gputypes.ShaderStageFragment
	}
	entries := make([]gputypes.BindGroupLayoutEntry, 0, len(p.Ranges))
	for _, rg := range p.Ranges {
		e := gputypes.BindGroupLayoutEntry{Binding: rg.Binding, Visibility: vis}
		switch rg.Type {
		case rhi.DescriptorRangeTexture:
			dim := rg.Dimension
			if dim == gputypes.TextureViewDimensionUndefined {
				dim = gputypes.TextureViewDimension2D
			}
			e.Texture = &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: dim,
			}
			entries = append(entries, e)
			if rg.Sampled {
				entries = append(entries, gputypes.BindGroupLayoutEntry{
					Binding:    rg.SamplerBinding,
					Visibility: vis,
					Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
				})
			}
			continue
		case rhi.DescriptorRangeUniformBuffer:
			e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}
		case rhi.DescriptorRangeSampler:
			e.Sampler = &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering}
		}
		entries = append(entries, e)
	}
	return entries
}

// CreateRootSignature implements rhi.Renderer.
func (r *Renderer) CreateRootSignature(desc rhi.RootSignatureDescriptor) (rhi.RootSignature, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if !r.profile.Caps.UniformBuffers {
		for _, p := range desc.Parameters {
			for _, rg := range p.Ranges {
				if rg.Type == rhi.DescriptorRangeUniformBuffer {
					return nil, fmt.Errorf("%w: %s has no uniform buffers", rhi.ErrUnsupported, r.profile.Name)
				}
			}
		}
	}

	rs := &rootSignature{desc: desc, layouts: make([]hal.BindGroupLayout, len(desc.Parameters))}
	rs.init(r, rhi.ResourceTypeRootSignature, rs.release)
	for i, p := range desc.Parameters {
		layout, err := create(r.dev, func(d hal.Device) (hal.BindGroupLayout, error) {
			return d.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
				Label:   fmt.Sprintf("RootParameter%d", i),
				Entries: layoutEntries(p),
			})
		})
		if err != nil {
			rs.discard()
			return nil, fmt.Errorf("rhi: create root parameter %d: %w", i, err)
		}
		rs.layouts[i] = layout
	}
	layout, err := create(r.dev, func(d hal.Device) (hal.PipelineLayout, error) {
		return d.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
			Label:            "RootSignature",
			BindGroupLayouts: rs.layouts,
		})
	})
	if err != nil {
		rs.discard()
		return nil, fmt.Errorf("rhi: create root signature: %w", err)
	}
	rs.layout = layout
	return rs, nil
}

// resourceGroup binds a list of resources to one root parameter.
type resourceGroup struct {
	resource
	rootSig   *rootSignature
	index     int
	resources []rhi.Resource
	samplers  []rhi.SamplerState
	group     hal.BindGroup
}

// RootSignature implements rhi.ResourceGroup.
func (g *resourceGroup) RootSignature() rhi.RootSignature { return g.rootSig }

// ParameterIndex implements rhi.ResourceGroup.
func (g *resourceGroup) ParameterIndex() int { return g.index }

// Resources implements rhi.ResourceGroup.
func (g *resourceGroup) Resources() []rhi.Resource { return g.resources }

// SamplerStates implements rhi.ResourceGroup.
func (g *resourceGroup) SamplerStates() []rhi.SamplerState { return g.samplers }

var errSkipped = errors.New("skipped")

// bindingFor returns the bind group entry for res in range rg.
func (rs *rootSignature) bindingFor(rg rhi.DescriptorRange, res rhi.Resource) (gputypes.BindGroupEntry, error) {
	e := gputypes.BindGroupEntry{Binding: rg.Binding}
	if !rs.r.owns(res, "CreateResourceGroup") {
		return e, errSkipped
	}
	switch rg.Type {
	case rhi.DescriptorRangeTexture:
		t, ok := res.(textured)
		if !ok {
			return e, fmt.Errorf("%w: binding %d expects a texture, got %s", rhi.ErrInvalidDescriptor, rg.Binding, res.ResourceType())
		}
		var h uintptr
		if v := t.base().view; v != nil {
			h = v.NativeHandle()
		}
		e.Resource = gputypes.TextureViewBinding{TextureView: h}
	case rhi.DescriptorRangeUniformBuffer:
		b, ok := res.(*buffer)
		if !ok || b.kind != rhi.ResourceTypeUniformBuffer {
			return e, fmt.Errorf("%w: binding %d expects a uniform buffer, got %s", rhi.ErrInvalidDescriptor, rg.Binding, res.ResourceType())
		}
		var h uintptr
		if b.native != nil {
			h = b.native.NativeHandle()
		}
		e.Resource = gputypes.BufferBinding{Buffer: h, Size: uint64(alignUp(b.size, copyAlignment))}
	case rhi.DescriptorRangeSampler:
		s, ok := res.(*samplerState)
		if !ok {
			return e, fmt.Errorf("%w: binding %d expects a sampler state, got %s", rhi.ErrInvalidDescriptor, rg.Binding, res.ResourceType())
		}
		e.Resource = gputypes.SamplerBinding{Sampler: s.handle()}
	}
	return e, nil
}

func (s *samplerState) handle() uintptr {
	if s.sampler == nil {
		return 0
	}
	return s.sampler.NativeHandle()
}

// CreateResourceGroup implements rhi.RootSignature. Resources owned by
// another renderer are left out of the group under OwnerPolicyLog.
func (rs *rootSignature) CreateResourceGroup(index int, resources []rhi.Resource, samplers []rhi.SamplerState) (rhi.ResourceGroup, error) {
	r := rs.r
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(rs.desc.Parameters) {
		return nil, fmt.Errorf("%w: root parameter %d of %d", rhi.ErrInvalidDescriptor, index, len(rs.desc.Parameters))
	}
	ranges := rs.desc.Parameters[index].Ranges
	if len(resources) != len(ranges) {
		return nil, fmt.Errorf("%w: %d resources for %d ranges", rhi.ErrInvalidDescriptor, len(resources), len(ranges))
	}
	if samplers != nil && len(samplers) != len(resources) {
		return nil, fmt.Errorf("%w: %d samplers for %d resources", rhi.ErrInvalidDescriptor, len(samplers), len(resources))
	}

	var entries []gputypes.BindGroupEntry
	kept := make([]rhi.Resource, len(resources))
	var keptSamplers []rhi.SamplerState
	if samplers != nil {
		keptSamplers = make([]rhi.SamplerState, len(samplers))
	}
	for i, rg := range ranges {
		if resources[i] == nil {
			return nil, fmt.Errorf("%w: resource %d is nil", rhi.ErrInvalidDescriptor, i)
		}
		hasSampler := samplers != nil && samplers[i] != nil
		if hasSampler && rg.Type == rhi.DescriptorRangeTexture && !rg.Sampled {
			return nil, fmt.Errorf("%w: sampler for unsampled texture range %d", rhi.ErrInvalidDescriptor, i)
		}
		e, err := rs.bindingFor(rg, resources[i])
		skipped := errors.Is(err, errSkipped)
		if err != nil && !skipped {
			return nil, err
		}
		if !skipped {
			entries = append(entries, e)
			kept[i] = resources[i]
		}

		if !hasSampler || !r.owns(samplers[i], "CreateResourceGroup") {
			continue
		}
		s, ok := samplers[i].(*samplerState)
		if !ok {
			return nil, fmt.Errorf("%w: foreign sampler state implementation", rhi.ErrInvalidDescriptor)
		}
		// Held at every slot; only a kept texture range has a sampler binding.
		keptSamplers[i] = s
		if skipped || rg.Type != rhi.DescriptorRangeTexture {
			continue
		}
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  rg.SamplerBinding,
			Resource: gputypes.SamplerBinding{Sampler: s.handle()},
		})
	}

	g := &resourceGroup{rootSig: rs, index: index, resources: kept, samplers: keptSamplers}
	g.init(r, rhi.ResourceTypeResourceGroup, func() { r.dev.releaseBindGroup(&g.group) })
	g.hold(rs)
	g.hold(kept...)
	for _, s := range keptSamplers {
		if s != nil {
			g.hold(s)
		}
	}

	group, err := create(r.dev, func(d hal.Device) (hal.BindGroup, error) {
		return d.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:   fmt.Sprintf("ResourceGroup%d", index),
			Layout:  rs.layouts[index],
			Entries: entries,
		})
	})
	if err != nil {
		g.discard()
		return nil, fmt.Errorf("rhi: create resource group: %w", err)
	}
	g.group = group
	return g, nil
}

// bindSamplers applies sampler states of the group to their texture units.
func (g *resourceGroup) bindSamplers() {
	ranges := g.rootSig.desc.Parameters[g.index].Ranges
	for i, s := range g.samplers {
		if s == nil || g.resources[i] == nil || ranges[i].Type != rhi.DescriptorRangeTexture {
			continue
		}
		if cs, ok := s.(*samplerState); ok {
			cs.bind(ranges[i].SamplerBinding)
		}
	}
	for i, res := range g.resources {
		if ranges[i].Type != rhi.DescriptorRangeSampler || res == nil {
			continue
		}
		if cs, ok := res.(*samplerState); ok {
			cs.bind(ranges[i].Binding)
		}
	}
}
