package native

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sync"
	"time"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/compositor/effect"
	"github.com/gogpu/compositor/internal/cache"
	"github.com/gogpu/compositor/internal/logging"
)

// ThumbnailEffectName is the name a thumbnail cache is loaded under.
const ThumbnailEffectName = "thumbnails"

// Renderer draws a single window into an offscreen image.
// *scene.Scene implements it.
type Renderer interface {
	RenderWindowOffscreen(w effect.Window) (image.Image, error)
}

// Thumbnail is a window image held on the GPU.
type Thumbnail struct {
	target *texture
	// serial is the fence value signalled once the last upload is done.
	serial uint64
}

// Texture returns the thumbnail texture.
func (t *Thumbnail) Texture() hal.Texture { return t.target.tex }

// View returns the sampling view of the thumbnail texture.
func (t *Thumbnail) View() hal.TextureView { return t.target.view }

// Size returns the texture size in pixels.
func (t *Thumbnail) Size() image.Point { return t.target.size }

// ThumbnailCache renders windows offscreen and keeps the results as GPU
// textures, least recently used first out.
//
// It is also an effect: loaded into the effect chain it forgets windows
// as they are deleted. It never paints, so it is never active.
type ThumbnailCache struct {
	mu      sync.Mutex
	device  hal.Device
	queue   hal.Queue
	r       Renderer
	fence   hal.Fence
	serial  uint64
	timeout time.Duration
	entries *cache.Cache[uint64, *Thumbnail]
	closed  bool
}

var (
	_ effect.Effect                = (*ThumbnailCache)(nil)
	_ effect.WindowDeletedObserver = (*ThumbnailCache)(nil)
	_ effect.Destroyer             = (*ThumbnailCache)(nil)
)

// NewThumbnailCache returns a cache holding at most limit thumbnails whose
// reads wait at most timeout for pending uploads.
func NewThumbnailCache(device hal.Device, queue hal.Queue, r Renderer, limit int, timeout time.Duration) (*ThumbnailCache, error) {
	if device == nil || queue == nil {
		return nil, ErrNoDevice
	}
	if r == nil {
		return nil, errors.New("native: thumbnail cache needs a renderer")
	}
	fence, err := device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("create fence: %w", err)
	}
	c := &ThumbnailCache{
		device:  device,
		queue:   queue,
		r:       r,
		fence:   fence,
		timeout: timeout,
		entries: cache.New[uint64, *Thumbnail](limit),
	}
	c.entries.OnEvict(func(_ uint64, t *Thumbnail) { t.target.destroy() })
	return c, nil
}

// IsActive reports false: the cache takes no part in painting.
func (c *ThumbnailCache) IsActive() bool { return false }

// WindowDeleted drops the thumbnail of w.
func (c *ThumbnailCache) WindowDeleted(w effect.Window) { c.Forget(w.ID()) }

// Update renders w offscreen and uploads the result. The upload is
// fenced; Acquire waits for it.
func (c *ThumbnailCache) Update(w effect.Window) error {
	img, err := c.r.RenderWindowOffscreen(w)
	if err != nil {
		return fmt.Errorf("native: render thumbnail of %d: %w", w.ID(), err)
	}
	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(img.Bounds())
		draw.Draw(rgba, rgba.Rect, img, img.Bounds().Min, draw.Src)
	}
	size := rgba.Rect.Size()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	t, ok := c.entries.Get(w.ID())
	if !ok || t.target.size != size {
		tex, err := newTexture(c.device, "thumbnail", size)
		if err != nil {
			logging.Logger().Error("native: thumbnail texture", "window", w.ID(), "err", err)
			return err
		}
		t = &Thumbnail{target: tex}
		c.entries.Set(w.ID(), t)
	}
	t.target.write(c.queue, rgba, rgba.Rect)

	c.serial++
	if err := c.queue.Submit(nil, c.fence, c.serial); err != nil {
		return fmt.Errorf("native: submit thumbnail: %w", err)
	}
	t.serial = c.serial
	return nil
}

// Acquire returns the thumbnail of window id once its last upload is
// complete. A wait that runs out of time is logged and the texture is
// returned as it is.
func (c *ThumbnailCache) Acquire(id uint64) (*Thumbnail, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, false
	}
	t, ok := c.entries.Get(id)
	if !ok {
		return nil, false
	}
	done, err := c.device.Wait(c.fence, t.serial, c.timeout)
	switch {
	case err != nil:
		logging.Logger().Warn("native: thumbnail fence wait failed", "window", id, "err", err)
	case !done:
		logging.Logger().Warn("native: thumbnail fence timed out", "window", id, "timeout", c.timeout)
	}
	return t, true
}

// Forget drops the thumbnail of window id.
func (c *ThumbnailCache) Forget(id uint64) {
	c.entries.Delete(id)
}

// Len returns the number of cached thumbnails.
func (c *ThumbnailCache) Len() int { return c.entries.Len() }

// Destroy releases every texture and the fence.
func (c *ThumbnailCache) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.entries.Clear()
	c.device.DestroyFence(c.fence)
}
