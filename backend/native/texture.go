package native

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// texture is an RGBA8 texture with a view for sampling.
type texture struct {
	device hal.Device
	tex    hal.Texture
	view   hal.TextureView
	size   image.Point
}

func newTexture(device hal.Device, label string, size image.Point) (*texture, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("%w: %s %v", ErrInvalidDimensions, label, size)
	}
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: uint32(size.X), Height: uint32(size.Y), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s texture: %w", label, err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("create %s texture view: %w", label, err)
	}
	return &texture{device: device, tex: tex, view: view, size: size}, nil
}

// write uploads the r part of img. The texture origin matches
// img.Rect.Min. It returns the number of bytes queued.
func (t *texture) write(queue hal.Queue, img *image.RGBA, r image.Rectangle) int {
	r = r.Intersect(img.Rect).Intersect(image.Rectangle{Max: t.size}.Add(img.Rect.Min))
	if r.Empty() {
		return 0
	}
	rowBytes := 4 * r.Dx()
	data := make([]byte, rowBytes*r.Dy())
	for y := 0; y < r.Dy(); y++ {
		i := img.PixOffset(r.Min.X, r.Min.Y+y)
		copy(data[y*rowBytes:], img.Pix[i:i+rowBytes])
	}
	o := r.Min.Sub(img.Rect.Min)
	queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: uint32(o.X), Y: uint32(o.Y), Z: 0},
		},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(rowBytes),
			RowsPerImage: uint32(r.Dy()),
		},
		&hal.Extent3D{Width: uint32(r.Dx()), Height: uint32(r.Dy()), DepthOrArrayLayers: 1},
	)
	return len(data)
}

func (t *texture) destroy() {
	if t.view != nil {
		t.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		t.device.DestroyTexture(t.tex)
		t.tex = nil
	}
}
