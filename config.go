package qd

// RendererConfig holds tunables for a [Canvas] and its glyph cache.
// Zero fields take their defaults.
type RendererConfig struct {
	// AtlasPageSize is the width and height in pixels of each glyph cache
	// texture page.
	AtlasPageSize int

	// MaxQueueLength bounds the draw queue. When exceeded, the queue is
	// flushed implicitly.
	MaxQueueLength int

	// QuantizeStep is the granularity, in pixels, at which subpixel
	// offsets and scales are quantized for glyph cache lookups. Smaller
	// steps render more accurately but cache more glyph variants.
	QuantizeStep float32
}

// DefaultRendererConfig returns the default configuration: 1024 pixel
// atlas pages, a 100000 item queue bound, and 0.1 pixel quantization.
func DefaultRendererConfig() RendererConfig {
	return RendererConfig{
		AtlasPageSize:  1024,
		MaxQueueLength: 100000,
		QuantizeStep:   0.1,
	}
}

func (c RendererConfig) withDefaults() RendererConfig {
	def := DefaultRendererConfig()
	if c.AtlasPageSize <= 0 {
		c.AtlasPageSize = def.AtlasPageSize
	}
	if c.MaxQueueLength <= 0 {
		c.MaxQueueLength = def.MaxQueueLength
	}
	if c.QuantizeStep <= 0 {
		c.QuantizeStep = def.QuantizeStep
	}
	return c
}
