// Package cache provides a generic LRU cache for backend resources.
//
//	c := cache.New[string, *image.RGBA](64)
//	c.OnEvict(func(_ string, img *image.RGBA) { ... })
//	img := c.GetOrCreate("key", render)
//
// Evicted and deleted values are handed to the eviction callback so that
// textures and other resources can be released.
package cache
