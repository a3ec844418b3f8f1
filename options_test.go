package compositor

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/gogpu/compositor/effect/builtin"
	"github.com/gogpu/compositor/region"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.frameInterval != DefaultFrameInterval {
		t.Errorf("frameInterval = %v, want %v", o.frameInterval, DefaultFrameInterval)
	}
	if o.maxFrameDelay != 250*time.Millisecond {
		t.Errorf("maxFrameDelay = %v, want 250ms", o.maxFrameDelay)
	}
	if !o.defaults {
		t.Error("default effects disabled by default")
	}
	if o.builtin != builtin.DefaultOptions() {
		t.Errorf("builtin = %+v, want the defaults", o.builtin)
	}
}

func TestOptionsApply(t *testing.T) {
	bg := color.RGBA{B: 0x80, A: 0xff}
	p := PresenterFunc(func(image.Image, region.Region) error { return nil })
	o := defaultOptions()
	for _, opt := range []Option{
		WithBackendName("software"),
		WithBuffers(3),
		WithBackground(bg),
		WithoutBufferAge(),
		WithEffects("fade", "glow"),
		WithEffectAt("zoom", 5),
		WithPresenter(p),
		WithFrameInterval(time.Millisecond),
		WithMaxFrameDelay(time.Second),
	} {
		opt(&o)
	}

	if o.backendName != "software" || o.buffers != 3 || o.background != bg || !o.noBufferAge {
		t.Errorf("backend options = %q %d %v %v", o.backendName, o.buffers, o.background, o.noBufferAge)
	}
	want := []EffectPosition{{"fade", -1}, {"glow", -1}, {"zoom", 5}}
	if len(o.effects) != len(want) {
		t.Fatalf("effects = %v, want %v", o.effects, want)
	}
	for i := range want {
		if o.effects[i] != want[i] {
			t.Errorf("effects[%d] = %v, want %v", i, o.effects[i], want[i])
		}
	}
	if len(o.presenters) != 1 {
		t.Errorf("presenters = %d, want 1", len(o.presenters))
	}
	if o.frameInterval != time.Millisecond || o.maxFrameDelay != time.Second {
		t.Errorf("pacing = %v, %v", o.frameInterval, o.maxFrameDelay)
	}
}

func TestWithBackgroundReachesBackend(t *testing.T) {
	bg := color.RGBA{G: 0x80, A: 0xff}
	c := newTestCompositor(t, WithBackground(bg), WithoutDefaultEffects())
	c.Composite()
	img := c.Backend().Front().(*image.RGBA)
	if got := img.RGBAAt(50, 50); got != bg {
		t.Errorf("background pixel = %v, want %v", got, bg)
	}
}
