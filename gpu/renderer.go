package gpu

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/strips"
	"github.com/gogpu/strips/paint"
)

//go:embed shaders/render_strips.wgsl
var renderShaderWGSL string

// Renderer errors.
var (
	// ErrNilDevice is returned when constructing a renderer without a
	// device or queue.
	ErrNilDevice = errors.New("gpu: device and queue are required")

	// ErrNotInitialized is returned when rendering with a renderer whose
	// GPU resources were never created or already destroyed.
	ErrNotInitialized = errors.New("gpu: renderer not initialized")

	// ErrFramebufferSize is returned when the readback destination cannot
	// hold the configured viewport.
	ErrFramebufferSize = errors.New("gpu: framebuffer too small")

	// ErrSlotOutOfRange is returned for a clip upload addressing a slot the
	// allocator never handed out.
	ErrSlotOutOfRange = errors.New("gpu: clip slot out of range")
)

// copyPitchAlignment is the BytesPerRow alignment WebGPU and DX12 require
// for texture-to-buffer copies.
const copyPitchAlignment = 256

// Renderer is the GPU strip compositor. It compiles the embedded render
// shader through naga, owns the pipeline and frame textures, and renders
// frames with one instanced draw: four vertices per strip quad, one instance
// per strip, drawn in submission order under premultiplied source-over
// blending.
//
// Renderer is safe for concurrent use; each Render call submits and waits
// for its own frame.
type Renderer struct {
	mu sync.Mutex

	device hal.Device
	queue  hal.Queue
	config strips.RenderConfig

	shaderModule hal.ShaderModule
	bindLayout   hal.BindGroupLayout
	pipeLayout   hal.PipelineLayout
	pipeline     hal.RenderPipeline
	spirvCode    []uint32

	textures frameTextures
	slots    *SlotAllocator

	// clipStaging mirrors the clip texture on the CPU so slot uploads batch
	// into one WriteTexture per frame.
	clipStaging []byte
	clipDirty   bool

	initialized bool
}

// NewRenderer creates a GPU strip compositor for the given device, queue,
// and render configuration. The shader is compiled and all pipeline state
// created up front; a renderer that constructs successfully can render.
func NewRenderer(device hal.Device, queue hal.Queue, config strips.RenderConfig) (*Renderer, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	if config.Width == 0 || config.Height == 0 {
		return nil, fmt.Errorf("gpu: viewport %dx%d is empty", config.Width, config.Height)
	}

	r := &Renderer{
		device:      device,
		queue:       queue,
		config:      config,
		slots:       NewSlotAllocator(DefaultSlotDepth),
		clipStaging: make([]byte, DefaultSlotDepth*slotPixelCount),
	}

	if err := r.init(); err != nil {
		r.Destroy()
		return nil, err
	}
	return r, nil
}

// Config returns the render configuration the pipeline was built for.
func (r *Renderer) Config() strips.RenderConfig {
	return r.config
}

// Slots returns the clip slot allocator. Encoders allocate a slot per clip
// layer, render the layer through UploadClip, and reference it with a slot
// paint.
func (r *Renderer) Slots() *SlotAllocator {
	return r.slots
}

// init compiles the shader and creates pipeline state.
func (r *Renderer) init() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	spirvBytes, err := naga.Compile(renderShaderWGSL)
	if err != nil {
		return fmt.Errorf("gpu: failed to compile render shader: %w", err)
	}

	r.spirvCode = make([]uint32, len(spirvBytes)/4)
	for i := range r.spirvCode {
		r.spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	shaderModule, err := r.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: "strips_render_shader",
		Source: hal.ShaderSource{
			SPIRV: r.spirvCode,
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: failed to create shader module: %w", err)
	}
	r.shaderModule = shaderModule

	if err := r.createBindGroupLayout(); err != nil {
		return err
	}
	if err := r.createPipeline(); err != nil {
		return err
	}

	r.initialized = true
	strips.Logger().Info("gpu strip pipeline compiled",
		"spirv_words", len(r.spirvCode),
		"viewport", fmt.Sprintf("%dx%d", r.config.Width, r.config.Height))
	return nil
}

// createBindGroupLayout creates the single bind group layout: the config
// uniform plus the four textures the fragment stage reads.
func (r *Renderer) createBindGroupLayout() error {
	layout, err := r.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "strips_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer: &gputypes.BufferBindingLayout{
					Type:           gputypes.BufferBindingTypeUniform,
					MinBindingSize: uniformSize,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeUint,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeUint,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    3,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    4,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: failed to create bind group layout: %w", err)
	}
	r.bindLayout = layout

	pipeLayout, err := r.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "strips_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{r.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("gpu: failed to create pipeline layout: %w", err)
	}
	r.pipeLayout = pipeLayout
	return nil
}

// instanceVertexLayout returns the per-instance vertex buffer layout.
// Matches VertexInput in render_strips.wgsl and Strip.PackInstance:
//
//	location 0: xy, widths, col_idx, payload (vec4<u32>)
//	location 1: paint (u32)
func instanceVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: instanceStride,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatUint32x4, Offset: 0, ShaderLocation: 0},
				{Format: gputypes.VertexFormatUint32, Offset: 16, ShaderLocation: 1},
			},
		},
	}
}

// createPipeline creates the strip render pipeline: triangle-strip quads,
// premultiplied source-over blending into an RGBA8 target.
func (r *Renderer) createPipeline() error {
	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := r.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "strips_render_pipeline",
		Layout: r.pipeLayout,
		Vertex: hal.VertexState{
			Module:     r.shaderModule,
			EntryPoint: "vs_main",
			Buffers:    instanceVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     r.shaderModule,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    gputypes.TextureFormatRGBA8Unorm,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleStrip,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: failed to create render pipeline: %w", err)
	}
	r.pipeline = pipeline
	return nil
}

// UploadClip stores one slot of premultiplied clip-layer pixels, SlotWidth x
// StripHeight RGBA floats in the cpu.SlotStore layout. The content reaches
// the clip texture on the next Render.
func (r *Renderer) UploadClip(slot uint32, pixels []float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if int(slot) >= r.slots.Depth() {
		return fmt.Errorf("%w: slot %d of %d", ErrSlotOutOfRange, slot, r.slots.Depth())
	}
	if len(pixels) != slotPixelCount {
		return fmt.Errorf("gpu: clip upload of %d values, want %d", len(pixels), slotPixelCount)
	}

	copy(r.clipStaging[int(slot)*slotPixelCount:], floatsToRGBA8(pixels))
	r.clipDirty = true
	return nil
}

// Render composites one frame into dst, a tightly packed premultiplied RGBA
// framebuffer of the configured viewport size. Strips draw in list order;
// the frame's alpha buffer, the paint table, and the atlas are uploaded
// before the draw.
func (r *Renderer) Render(frame *strips.Frame, table *paint.Table, atlas *paint.Atlas, dst []uint8) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized {
		return ErrNotInitialized
	}
	w, h := r.config.Width, r.config.Height
	if uint64(len(dst)) < uint64(w)*uint64(h)*4 {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrFramebufferSize, uint64(w)*uint64(h)*4, len(dst))
	}

	if err := r.uploadFrame(frame, table, atlas); err != nil {
		return err
	}
	return r.encodeSubmitReadback(frame, dst)
}

// uploadFrame sizes the frame textures and uploads coverage, paints, atlas,
// and pending clip content.
func (r *Renderer) uploadFrame(frame *strips.Frame, table *paint.Table, atlas *paint.Atlas) error {
	texWidth := r.config.AlphaTexelsPerRow()
	bits := r.config.AlphaTextureWidthBits

	alphaWords := frame.Alphas.PackTexels(bits)
	alphaRows := uint32(len(alphaWords)) / 4 / texWidth
	paintWords := table.PackTexels(bits)
	paintRows := uint32(len(paintWords)) / 4 / texWidth
	atlasW := uint32(atlas.Width())   //nolint:gosec // bounded by texture limits
	atlasH := uint32(atlas.Height())  //nolint:gosec // bounded by texture limits
	clipDepth := uint32(r.slots.Depth()) //nolint:gosec // depth is small and positive

	if err := r.textures.ensureTarget(r.device, r.config.Width, r.config.Height); err != nil {
		return err
	}
	if err := r.textures.ensureAlphas(r.device, texWidth, alphaRows); err != nil {
		return err
	}
	if err := r.textures.ensurePaints(r.device, texWidth, paintRows); err != nil {
		return err
	}
	if err := r.textures.ensureAtlas(r.device, atlasW, atlasH); err != nil {
		return err
	}
	if err := r.textures.ensureClip(r.device, clipDepth); err != nil {
		return err
	}

	r.writeTexels(r.textures.alphaTex, wordsToBytes(alphaWords), texWidth, alphaRows, texelBytes)
	r.writeTexels(r.textures.paintTex, wordsToBytes(paintWords), texWidth, paintRows, texelBytes)

	// The atlas carries no dirty tracking, so its pixels upload every frame.
	r.writeTexels(r.textures.atlasTex, floatsToRGBA8(atlas.Pixels()), atlasW, atlasH, 4)

	if r.clipDirty {
		r.writeTexels(r.textures.clipTex, r.clipStaging, SlotWidth, clipDepth*strips.StripHeight, 4)
		r.clipDirty = false
	}
	return nil
}

// writeTexels uploads a full-width texel block to a texture.
func (r *Renderer) writeTexels(tex hal.Texture, data []byte, width, rows, bytesPerTexel uint32) {
	r.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
		},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  width * bytesPerTexel,
			RowsPerImage: rows,
		},
		&hal.Extent3D{Width: width, Height: rows, DepthOrArrayLayers: 1},
	)
}

// encodeSubmitReadback records the strip draw, copies the target to a
// staging buffer, submits, waits, and reads the pixels back into dst.
func (r *Renderer) encodeSubmitReadback(frame *strips.Frame, dst []uint8) error {
	w, h := r.config.Width, r.config.Height

	uniformBuf, err := r.createAndUploadBuffer("strips_uniform", uniformBytes(r.config),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	defer r.device.DestroyBuffer(uniformBuf)

	instanceCount := uint32(len(frame.Strips)) //nolint:gosec // strip count fits uint32
	var instanceBuf hal.Buffer
	if instanceCount > 0 {
		instanceBuf, err = r.createAndUploadBuffer("strips_instances", instancesToBytes(frame.Strips),
			gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
		if err != nil {
			return err
		}
		defer r.device.DestroyBuffer(instanceBuf)
	}

	bindGroup, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "strips_bind",
		Layout: r.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: uniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: r.textures.alphaView.NativeHandle()}},
			{Binding: 2, Resource: gputypes.TextureViewBinding{TextureView: r.textures.paintView.NativeHandle()}},
			{Binding: 3, Resource: gputypes.TextureViewBinding{TextureView: r.textures.atlasView.NativeHandle()}},
			{Binding: 4, Resource: gputypes.TextureViewBinding{TextureView: r.textures.clipView.NativeHandle()}},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: failed to create bind group: %w", err)
	}
	defer r.device.DestroyBindGroup(bindGroup)

	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "strips_encoder",
	})
	if err != nil {
		return fmt.Errorf("gpu: failed to create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("strips_frame"); err != nil {
		return fmt.Errorf("gpu: begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "strips_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       r.textures.targetView,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
		}},
	})
	if instanceCount > 0 {
		rp.SetPipeline(r.pipeline)
		rp.SetBindGroup(0, bindGroup, nil)
		rp.SetVertexBuffer(0, instanceBuf, 0)
		rp.Draw(4, instanceCount, 0, 0)
	}
	rp.End()

	// The copy needs the target in a transfer-source layout; transition
	// explicitly and restore afterwards so the next pass sees a render
	// attachment. No-op on backends without explicit layouts.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.textures.targetTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	// WebGPU and DX12 require BytesPerRow aligned to 256 bytes.
	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	stagingBuf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "strips_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("gpu: failed to create staging buffer: %w", err)
	}
	defer r.device.DestroyBuffer(stagingBuf)

	encoder.CopyTextureToBuffer(r.textures.targetTex, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: r.textures.targetTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.textures.targetTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("gpu: end encoding: %w", err)
	}
	defer r.device.FreeCommandBuffer(cmdBuf)

	fence, err := r.device.CreateFence()
	if err != nil {
		return fmt.Errorf("gpu: failed to create fence: %w", err)
	}
	defer r.device.DestroyFence(fence)

	if err := r.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("gpu: submit: %w", err)
	}
	fenceOK, err := r.device.Wait(fence, 1, 5*time.Second)
	if err != nil || !fenceOK {
		return fmt.Errorf("gpu: wait for frame: ok=%v err=%w", fenceOK, err)
	}

	readback := make([]byte, stagingSize)
	if err := r.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return fmt.Errorf("gpu: readback: %w", err)
	}

	if alignedBytesPerRow == bytesPerRow {
		copy(dst, readback[:uint64(bytesPerRow)*uint64(h)])
	} else {
		for row := uint32(0); row < h; row++ {
			srcOff := uint64(row) * uint64(alignedBytesPerRow)
			dstOff := uint64(row) * uint64(bytesPerRow)
			copy(dst[dstOff:dstOff+uint64(bytesPerRow)], readback[srcOff:srcOff+uint64(bytesPerRow)])
		}
	}
	return nil
}

// createAndUploadBuffer creates a GPU buffer and uploads data.
func (r *Renderer) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create %s: %w", label, err)
	}
	r.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// SPIRVCode returns the compiled SPIR-V words, for diagnostics.
func (r *Renderer) SPIRVCode() []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.spirvCode
}

// Destroy releases all GPU resources in reverse creation order. Safe to
// call multiple times or on a partially constructed renderer.
func (r *Renderer) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.device == nil {
		return
	}

	r.textures.destroyTextures(r.device)

	if r.pipeline != nil {
		r.device.DestroyRenderPipeline(r.pipeline)
		r.pipeline = nil
	}
	if r.pipeLayout != nil {
		r.device.DestroyPipelineLayout(r.pipeLayout)
		r.pipeLayout = nil
	}
	if r.bindLayout != nil {
		r.device.DestroyBindGroupLayout(r.bindLayout)
		r.bindLayout = nil
	}
	if r.shaderModule != nil {
		r.device.DestroyShaderModule(r.shaderModule)
		r.shaderModule = nil
	}

	r.initialized = false
}
