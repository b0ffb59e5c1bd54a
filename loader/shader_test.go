package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rhi"
)

const triangleWGSL = `
@vertex
fn vs_main(@location(0) pos: vec2<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(pos, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`

func TestShaderFormat(t *testing.T) {
	tests := []struct {
		tag  string
		want rhi.ShaderFormat
	}{
		{"wgsl", rhi.ShaderFormatWGSL},
		{".WGSL", rhi.ShaderFormatWGSL},
		{".frag", rhi.ShaderFormatGLSL},
		{"essl", rhi.ShaderFormatESSL},
		{".hlsl", rhi.ShaderFormatHLSL},
		{".spv", rhi.ShaderFormatSPIRV},
	}
	for _, tt := range tests {
		got, err := ShaderFormat(tt.tag)
		if err != nil || got != tt.want {
			t.Errorf("ShaderFormat(%q) = %v, %v; want %v", tt.tag, got, err, tt.want)
		}
	}
	if _, err := ShaderFormat(".metal"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("metal: error = %v", err)
	}
}

func TestShader(t *testing.T) {
	lang := newRenderer(t).ShaderLanguage()
	s, err := Shader(lang, rhi.ShaderStageFragment, []byte(triangleWGSL), "wgsl")
	if err != nil {
		t.Fatalf("Shader() error = %v", err)
	}
	if s.Stage() != rhi.ShaderStageFragment || !s.IsCompiled() {
		t.Fatalf("stage %v compiled %v log %q", s.Stage(), s.IsCompiled(), s.CompileLog())
	}
	if _, err := Shader(lang, rhi.ShaderStageVertex, nil, "wgsl"); !errors.Is(err, ErrEmptyData) {
		t.Errorf("empty code: error = %v", err)
	}
}

func TestProgramFromFiles(t *testing.T) {
	lang := newRenderer(t).ShaderLanguage()
	dir := t.TempDir()
	path := filepath.Join(dir, "triangle.wgsl")
	if err := os.WriteFile(path, []byte(triangleWGSL), 0o600); err != nil {
		t.Fatal(err)
	}
	attrs := rhi.VertexAttributes{{Name: "Position", Format: gputypes.VertexFormatFloat32x2, Stride: 8}}
	p, err := Program(lang, attrs, path, path)
	if err != nil {
		t.Fatalf("Program() error = %v", err)
	}
	if !p.IsLinked() {
		t.Fatalf("not linked: %s", p.LinkLog())
	}
	if p.Shader(rhi.ShaderStageVertex).DebugName() != "triangle.wgsl" {
		t.Error("debug name not set from the file")
	}

	if _, err := Program(lang, attrs, path, filepath.Join(dir, "missing.wgsl")); err == nil {
		t.Fatal("missing fragment file accepted")
	}
}
