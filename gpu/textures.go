package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/strips"
)

// frameTextures owns the textures that persist across frames: the render
// target, the packed coverage and paint-table textures, the atlas, and the
// clip input. Each is recreated only when its required size changes, since
// texture creation dominates upload cost.
type frameTextures struct {
	targetTex        hal.Texture
	targetView       hal.TextureView
	targetW, targetH uint32

	alphaTex  hal.Texture
	alphaView hal.TextureView
	alphaRows uint32

	paintTex  hal.Texture
	paintView hal.TextureView
	paintRows uint32

	atlasTex       hal.Texture
	atlasView      hal.TextureView
	atlasW, atlasH uint32

	clipTex   hal.Texture
	clipView  hal.TextureView
	clipDepth uint32
}

// createTexture2D creates a single-mip 2D texture and its default view.
func createTexture2D(
	device hal.Device,
	label string,
	w, h uint32,
	format gputypes.TextureFormat,
	usage gputypes.TextureUsage,
) (hal.Texture, hal.TextureView, error) {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", label, err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, nil, fmt.Errorf("create %s view: %w", label, err)
	}
	return tex, view, nil
}

// ensureTarget keeps the render target sized to the viewport.
func (t *frameTextures) ensureTarget(device hal.Device, w, h uint32) error {
	if t.targetTex != nil && t.targetW == w && t.targetH == h {
		return nil
	}
	t.destroyPair(device, &t.targetTex, &t.targetView)

	tex, view, err := createTexture2D(device, "strips_target", w, h,
		gputypes.TextureFormatRGBA8Unorm,
		gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageCopySrc)
	if err != nil {
		return err
	}
	t.targetTex, t.targetView = tex, view
	t.targetW, t.targetH = w, h
	return nil
}

// ensureAlphas keeps the coverage texture at least rows tall. It only grows:
// a frame with fewer columns reuses the larger texture and uploads fewer rows.
func (t *frameTextures) ensureAlphas(device hal.Device, texWidth, rows uint32) error {
	if t.alphaTex != nil && t.alphaRows >= rows {
		return nil
	}
	t.destroyPair(device, &t.alphaTex, &t.alphaView)

	tex, view, err := createTexture2D(device, "strips_alphas", texWidth, rows,
		gputypes.TextureFormatRGBA32Uint,
		gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopyDst)
	if err != nil {
		return err
	}
	t.alphaTex, t.alphaView = tex, view
	t.alphaRows = rows
	return nil
}

// ensurePaints keeps the encoded-paint texture at least rows tall.
func (t *frameTextures) ensurePaints(device hal.Device, texWidth, rows uint32) error {
	if t.paintTex != nil && t.paintRows >= rows {
		return nil
	}
	t.destroyPair(device, &t.paintTex, &t.paintView)

	tex, view, err := createTexture2D(device, "strips_paints", texWidth, rows,
		gputypes.TextureFormatRGBA32Uint,
		gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopyDst)
	if err != nil {
		return err
	}
	t.paintTex, t.paintView = tex, view
	t.paintRows = rows
	return nil
}

// ensureAtlas keeps the atlas texture sized to the paint atlas.
func (t *frameTextures) ensureAtlas(device hal.Device, w, h uint32) error {
	if t.atlasTex != nil && t.atlasW == w && t.atlasH == h {
		return nil
	}
	t.destroyPair(device, &t.atlasTex, &t.atlasView)

	tex, view, err := createTexture2D(device, "strips_atlas", w, h,
		gputypes.TextureFormatRGBA8Unorm,
		gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopyDst)
	if err != nil {
		return err
	}
	t.atlasTex, t.atlasView = tex, view
	t.atlasW, t.atlasH = w, h
	return nil
}

// ensureClip keeps the clip-input texture sized for depth slots of
// SlotWidth x StripHeight pixels each.
func (t *frameTextures) ensureClip(device hal.Device, depth uint32) error {
	if t.clipTex != nil && t.clipDepth == depth {
		return nil
	}
	t.destroyPair(device, &t.clipTex, &t.clipView)

	tex, view, err := createTexture2D(device, "strips_clip",
		SlotWidth, depth*strips.StripHeight,
		gputypes.TextureFormatRGBA8Unorm,
		gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopyDst)
	if err != nil {
		return err
	}
	t.clipTex, t.clipView = tex, view
	t.clipDepth = depth
	return nil
}

// destroyPair releases one texture and its view, nil-safe.
func (t *frameTextures) destroyPair(device hal.Device, tex *hal.Texture, view *hal.TextureView) {
	if *view != nil {
		device.DestroyTextureView(*view)
		*view = nil
	}
	if *tex != nil {
		device.DestroyTexture(*tex)
		*tex = nil
	}
}

// destroyTextures releases all textures. Safe to call multiple times.
func (t *frameTextures) destroyTextures(device hal.Device) {
	if device == nil {
		return
	}
	t.destroyPair(device, &t.clipTex, &t.clipView)
	t.destroyPair(device, &t.atlasTex, &t.atlasView)
	t.destroyPair(device, &t.paintTex, &t.paintView)
	t.destroyPair(device, &t.alphaTex, &t.alphaView)
	t.destroyPair(device, &t.targetTex, &t.targetView)
	t.targetW, t.targetH = 0, 0
	t.alphaRows, t.paintRows = 0, 0
	t.atlasW, t.atlasH = 0, 0
	t.clipDepth = 0
}
