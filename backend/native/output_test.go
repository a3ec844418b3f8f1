package native

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/compositor/backend"
	"github.com/gogpu/compositor/region"
)

func TestNewOutputRequiresDevice(t *testing.T) {
	if _, err := NewOutput(nil, nil, testDisplay); !errors.Is(err, ErrNoDevice) {
		t.Errorf("NewOutput(nil) error = %v, want ErrNoDevice", err)
	}
}

func TestCompileCompositeShader(t *testing.T) {
	code, err := compileShaderToSPIRV(compositeWGSL)
	if err != nil {
		t.Skipf("Skipping: naga cannot compile the composite shader: %v", err)
	}
	if len(code) == 0 || code[0] != 0x07230203 {
		t.Errorf("SPIR-V magic = %#x, want 0x07230203", code[0])
	}
}

func TestOutputUploadsDamage(t *testing.T) {
	out := newTestOutput(t)
	s, sp := newTestScene(out)
	mapWindow(sp, image.Rect(8, 8, 24, 24))

	frame(s, out, region.Rect(testDisplay))
	uploads, bytes := out.Stats()
	if uploads != 1 || bytes != 4*testDisplay.Dx()*testDisplay.Dy() {
		t.Errorf("Stats() = %d, %d, want one full upload", uploads, bytes)
	}

	damage := region.Rect(image.Rect(10, 10, 20, 14))
	frame(s, out, damage)
	uploads, bytes2 := out.Stats()
	if uploads != 2 || bytes2-bytes != 4*10*4 {
		t.Errorf("second upload = %d bytes, want %d", bytes2-bytes, 4*10*4)
	}
}

func TestOutputSkipsEmptyFrames(t *testing.T) {
	out := newTestOutput(t)
	out.EndFrame(region.Region{})
	if uploads, _ := out.Stats(); uploads != 0 {
		t.Errorf("uploads = %d, want 0", uploads)
	}
}

func TestOutputResize(t *testing.T) {
	out := newTestOutput(t)
	old := out.Texture()
	out.Resize(image.Rect(0, 0, 32, 32))
	if out.Texture() == old {
		t.Error("Resize() kept the old texture")
	}
	if out.Target().Rect() != image.Rect(0, 0, 32, 32) {
		t.Errorf("swap chain = %v, want 32x32", out.Target().Rect())
	}
}

func TestOutputCloseTwice(t *testing.T) {
	out := newTestOutput(t)
	out.Close()
	out.Close()
	if _, err := out.NewThumbnailCache(nil); !errors.Is(err, ErrClosed) {
		t.Errorf("NewThumbnailCache() after Close error = %v, want ErrClosed", err)
	}
}

func TestRegisteredBackend(t *testing.T) {
	b, err := backend.Get(Name, backend.Config{Display: testDisplay})
	if err != nil {
		if errors.Is(err, ErrShader) {
			t.Skipf("Skipping: %v", err)
		}
		t.Fatalf("backend.Get(native) error = %v", err)
	}
	defer b.Close()
	if b.Name() != "native" {
		t.Errorf("Name() = %q, want native", b.Name())
	}
	if _, ok := b.(*Output); !ok {
		t.Errorf("backend = %T, want *Output", b)
	}
}
