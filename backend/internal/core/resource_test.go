package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/rhi"
)

func TestNewRequiresQueue(t *testing.T) {
	_, err := New(testProfile(), rhi.WithDevice(&noop.Device{}, nil))
	if !errors.Is(err, rhi.ErrNoDevice) {
		t.Fatalf("New() error = %v, want ErrNoDevice", err)
	}
}

func TestNewRejectsIncompleteProfile(t *testing.T) {
	if _, err := New(&Profile{Name: "x"}); err == nil {
		t.Fatal("New() with no variants succeeded")
	}
}

func TestOpenDeviceFromRegistry(t *testing.T) {
	r, err := New(testProfile())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if r.Device() == nil {
		t.Fatal("Device() = nil")
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestResourceLifecycle(t *testing.T) {
	env := newTestEnv(t, nil)
	vb, err := env.r.CreateVertexBuffer(rhi.BufferDescriptor{Size: 64})
	if err != nil {
		t.Fatalf("CreateVertexBuffer() error = %v", err)
	}
	if got := live(env.r, rhi.ResourceTypeVertexBuffer); got != 1 {
		t.Fatalf("live vertex buffers = %d, want 1", got)
	}
	if vb.RefCount() != 0 {
		t.Fatalf("new object RefCount = %d, want 0", vb.RefCount())
	}

	vb.AddReference()
	vb.AddReference()
	if n := vb.ReleaseReference(); n != 1 {
		t.Fatalf("ReleaseReference() = %d, want 1", n)
	}
	if vb.IsDestroyed() {
		t.Fatal("destroyed with one reference left")
	}
	vb.ReleaseReference()
	if !vb.IsDestroyed() {
		t.Fatal("not destroyed after last release")
	}
	if got := env.dev.destroyedCount("buffer"); got != 1 {
		t.Fatalf("hal buffers destroyed = %d, want 1", got)
	}
	if got := live(env.r, rhi.ResourceTypeVertexBuffer); got != 0 {
		t.Fatalf("live vertex buffers = %d, want 0", got)
	}

	stats := env.r.Statistics()
	if stats.Created != 1 || stats.Destroyed != 1 {
		t.Fatalf("Created/Destroyed = %d/%d, want 1/1", stats.Created, stats.Destroyed)
	}
	if err := vb.CopyDataFrom([]byte{1}); !errors.Is(err, rhi.ErrResourceDestroyed) {
		t.Fatalf("CopyDataFrom after destroy error = %v", err)
	}
}

func TestReleaseWithoutReferencePanics(t *testing.T) {
	env := newTestEnv(t, nil)
	ib, err := env.r.CreateIndexBuffer(rhi.BufferDescriptor{Size: 12, IndexFormat: rhi.IndexFormatUint16})
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("ReleaseReference on zero count did not panic")
		}
	}()
	ib.ReleaseReference()
}

func TestHandleKeepsResourceAlive(t *testing.T) {
	env := newTestEnv(t, nil)
	s, err := env.r.CreateSamplerState(rhi.DefaultSampler())
	if err != nil {
		t.Fatal(err)
	}
	h := rhi.NewHandle[rhi.SamplerState](s)
	clone := h.Clone()
	h.Reset()
	if s.IsDestroyed() {
		t.Fatal("sampler destroyed while a clone holds it")
	}
	clone.Reset()
	if !s.IsDestroyed() {
		t.Fatal("sampler alive after every handle reset")
	}
	if got := env.dev.destroyedCount("sampler"); got != 1 {
		t.Fatalf("hal samplers destroyed = %d, want 1", got)
	}
}

func TestDebugNames(t *testing.T) {
	env := newTestEnv(t, nil)
	tex, err := env.r.CreateTexture2D(rhi.TextureDescriptor{Width: 4, Height: 4, Format: gputypes.TextureFormatRGBA8Unorm})
	if err != nil {
		t.Fatal(err)
	}
	tex.SetDebugName("albedo")
	if tex.DebugName() != "albedo" {
		t.Fatalf("DebugName() = %q", tex.DebugName())
	}
	if env.tracer.count("Label") != 1 {
		t.Fatalf("label calls = %d, want 1", env.tracer.count("Label"))
	}

	noLabels := newTestEnv(t, func(p *Profile) { p.Caps.DebugLabels = false })
	buf, err := noLabels.r.CreateVertexBuffer(rhi.BufferDescriptor{Size: 4})
	if err != nil {
		t.Fatal(err)
	}
	buf.SetDebugName("a")
	buf.SetDebugName("b")
	if buf.DebugName() != "b" {
		t.Fatalf("DebugName() = %q, want kept locally", buf.DebugName())
	}
	if noLabels.tracer.count("Label") != 0 {
		t.Fatal("label traced on a backend without labels")
	}
	warnings := 0
	for _, l := range noLabels.log.Lines() {
		if strings.Contains(l, "debug names") {
			warnings++
		}
	}
	if warnings != 1 {
		t.Fatalf("missing-label warnings = %d, want 1", warnings)
	}
}

func TestCloseReportsAndFreesLiveResources(t *testing.T) {
	env := newTestEnv(t, nil)
	if _, err := env.r.CreateVertexBuffer(rhi.BufferDescriptor{Size: 16}); err != nil {
		t.Fatal(err)
	}
	tex, err := env.r.CreateTexture2D(rhi.TextureDescriptor{Width: 2, Height: 2, Format: gputypes.TextureFormatRGBA8Unorm})
	if err != nil {
		t.Fatal(err)
	}
	tex.AddReference()

	if err := env.r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !env.log.Contains("1 VertexBuffer") || !env.log.Contains("1 Texture2D") {
		t.Fatalf("leak report missing, log = %q", env.log.Lines())
	}
	if env.dev.destroyedCount("buffer") != 1 || env.dev.destroyedCount("texture") != 1 {
		t.Fatalf("hal objects not freed at close: %v", env.dev.destroyed)
	}
	if env.dev.destroyedCount("device") != 0 {
		t.Fatal("injected device destroyed by Close")
	}

	// Releasing after Close must not touch the device again.
	tex.ReleaseReference()
	if env.dev.destroyedCount("texture") != 1 {
		t.Fatal("texture destroyed twice")
	}
	if _, err := env.r.CreateVertexBuffer(rhi.BufferDescriptor{Size: 4}); !errors.Is(err, rhi.ErrRendererClosed) {
		t.Fatalf("create after Close error = %v", err)
	}
	if err := env.r.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}

func TestAllocatorBacksBufferShadow(t *testing.T) {
	alloc := &rhi.HeapAllocator{}
	env := newTestEnv(t, nil, rhi.WithAllocator(alloc))
	vb, err := env.r.CreateVertexBuffer(rhi.BufferDescriptor{Size: 10})
	if err != nil {
		t.Fatal(err)
	}
	// The host copy is padded to the queue write granularity.
	if got := alloc.Stats().LiveBytes; got != 12 {
		t.Fatalf("LiveBytes = %d, want 12", got)
	}
	vb.AddReference()
	vb.ReleaseReference()
	if got := alloc.Stats(); got.LiveBytes != 0 || got.Frees != 1 {
		t.Fatalf("stats after destroy = %+v, want everything freed", got)
	}
}
