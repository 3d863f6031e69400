package gpu

import (
	"strings"
	"testing"

	"github.com/gogpu/strips"
)

func TestRenderShaderSourceEmbedded(t *testing.T) {
	if renderShaderWGSL == "" {
		t.Fatal("render shader source is empty")
	}
	for _, entry := range []string{"fn vs_main", "fn fs_main"} {
		if !strings.Contains(renderShaderWGSL, entry) {
			t.Errorf("render shader missing %q", entry)
		}
	}
	// The bind group must declare every binding the pipeline layout has.
	for _, binding := range []string{
		"@binding(0)", "@binding(1)", "@binding(2)", "@binding(3)", "@binding(4)",
	} {
		if !strings.Contains(renderShaderWGSL, binding) {
			t.Errorf("render shader missing %s", binding)
		}
	}
}

func TestInstanceVertexLayoutMatchesPacking(t *testing.T) {
	layouts := instanceVertexLayout()
	if len(layouts) != 1 {
		t.Fatalf("len(layouts) = %d, want 1", len(layouts))
	}
	if got := uint64(layouts[0].ArrayStride); got != strips.InstanceWords*4 {
		t.Errorf("ArrayStride = %d, want %d", got, strips.InstanceWords*4)
	}
	attrs := layouts[0].Attributes
	if len(attrs) != 2 {
		t.Fatalf("len(attrs) = %d, want 2", len(attrs))
	}
	if attrs[0].Offset != 0 || attrs[0].ShaderLocation != 0 {
		t.Errorf("attr 0 at offset %d location %d, want 0/0", attrs[0].Offset, attrs[0].ShaderLocation)
	}
	// The paint word follows the vec4 of xy, widths, col_idx, payload.
	if attrs[1].Offset != 16 || attrs[1].ShaderLocation != 1 {
		t.Errorf("attr 1 at offset %d location %d, want 16/1", attrs[1].Offset, attrs[1].ShaderLocation)
	}
}

func TestNewRendererRejectsNilDevice(t *testing.T) {
	if _, err := NewRenderer(nil, nil, strips.DefaultRenderConfig(64, 64)); err == nil {
		t.Error("NewRenderer(nil, nil) = nil error, want ErrNilDevice")
	}
}
