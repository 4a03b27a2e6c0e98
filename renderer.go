package vulkanitos

import (
	"image"
	"log"
	"path/filepath"
	"time"

	"github.com/Mehdi-Antoine/vulkanitos/camera"
	"github.com/Mehdi-Antoine/vulkanitos/config"
	"github.com/Mehdi-Antoine/vulkanitos/mesh"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Renderer draws the scene. The viewer picks an implementation when it is
// assembled; tests drive the main loop with a fake.
type Renderer interface {
	InitializeDevice() error
	BuildFrameGraph() error
	SubmitFrame() error
	Teardown() error
}

// Shader files looked up in Options.ShaderDir.
const (
	SceneVertexShader     = "shader.vert.spv"
	SceneFragmentShader   = "shader.frag.spv"
	LuminanceVertexShader = "luminance.vert.spv"
	LuminanceFragShader   = "luminance.frag.spv"
	ComputeShader         = "compute.comp.spv"
	ShaderEntryPoint      = "main"
)

// Options configures a VulkanRenderer.
type Options struct {
	AppName          string
	Validation       bool
	ValidationLayers []string
	DeviceExtensions []string
	FramesInFlight   int
	MaxAnisotropy    float32
	ShaderDir        string
	Logger           *log.Logger
}

// OptionsFromConfig maps the renderer and asset sections of c.
func OptionsFromConfig(c *config.Config, logger *log.Logger) Options {
	return Options{
		AppName:          c.Window.Title,
		Validation:       c.Renderer.Validation,
		ValidationLayers: c.Renderer.ValidationLayers,
		DeviceExtensions: c.Renderer.DeviceExtensions,
		FramesInFlight:   c.Renderer.FramesInFlight,
		MaxAnisotropy:    c.Renderer.MaxAnisotropy,
		ShaderDir:        c.Assets.ShaderDir,
		Logger:           logger,
	}
}

// VulkanRenderer renders a textured mesh through the two subpass render
// graph, with a compute pass displacing the vertices every frame.
//
// Objects are owned by three release stacks: release holds everything
// created once, perImage holds what is sized by the swapchain image count
// and unit holds what is rebuilt on every swapchain recreation.
type VulkanRenderer struct {
	opts    Options
	logger  *log.Logger
	window  Window
	camera  *camera.TrackBall
	mesh    *mesh.Mesh
	texture *image.RGBA

	release  Releaser
	perImage Releaser
	unit     Releaser

	ctx         *DeviceContext
	resources   *ResourceManager
	depthFormat vk.Format

	pipelineCache   *PipelineCache
	layouts         *DescriptorLayouts
	sceneLayout     *PipelineLayout
	luminanceLayout *PipelineLayout
	computeLayout   *PipelineLayout
	vertices        *BoundBuffer
	indices         *BoundBuffer
	triangle        *BoundBuffer
	tex             *Texture
	sync            []*FrameSync

	matrices    *UniformPool
	computeData *UniformPool
	binder      *DescriptorBinder

	swapchain    *Swapchain
	oldSwapchain *Swapchain
	renderPass   *RenderPass
	scene        *GraphicsPipeline
	luminance    *GraphicsPipeline
	compute      *ComputePipeline
	depth        *ImageResource
	beauty       *ImageResource
	framebuffers []*Framebuffer
	graphicsCmds []*CommandBuffer
	computeCmds  []*CommandBuffer

	manager      *SwapchainManager
	orchestrator *FrameOrchestrator
	start        time.Time
}

// NewVulkanRenderer prepares a renderer for m textured with tex. Nothing
// touches Vulkan until InitializeDevice.
func NewVulkanRenderer(win Window, cam *camera.TrackBall, m *mesh.Mesh, tex *image.RGBA, opts Options) *VulkanRenderer {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.FramesInFlight < 1 {
		opts.FramesInFlight = DefaultFramesInFlight
	}
	r := &VulkanRenderer{
		opts:    opts,
		logger:  opts.Logger,
		window:  win,
		camera:  cam,
		mesh:    m,
		texture: tex,
	}
	if opts.Validation {
		r.release.OnRelease = func(name string) { r.logger.Printf("release %s", name) }
	}
	return r
}

// InitializeDevice creates the instance, surface, device, queues and
// command pools.
func (r *VulkanRenderer) InitializeDevice() error {
	ctx, err := CreateDeviceContext(r.window, BootstrapOptions{
		AppName:          r.opts.AppName,
		Validation:       r.opts.Validation,
		ValidationLayers: r.opts.ValidationLayers,
		DeviceExtensions: r.opts.DeviceExtensions,
		Logger:           r.logger,
	}, &r.release)
	if err != nil {
		return err
	}
	r.ctx = ctx
	r.resources = ctx.Device.CreateResourceManager(ctx.GraphicsPool, ctx.GraphicsQueue, r.logger)

	r.depthFormat, err = ctx.PhysicalDevice.FindDepthFormat()
	return err
}

// BuildFrameGraph uploads the mesh and texture, creates the layouts and
// sync objects and builds the first swapchain.
func (r *VulkanRenderer) BuildFrameGraph() error {
	if r.ctx == nil {
		return errors.New("build frame graph: device not initialized")
	}
	d := r.ctx.Device
	var err error

	if r.pipelineCache, err = d.CreatePipelineCache(); err != nil {
		return err
	}
	r.release.Push("pipeline cache", r.pipelineCache)

	if r.layouts, err = d.CreateDescriptorLayouts(); err != nil {
		return err
	}
	r.release.Push("descriptor set layouts", r.layouts)

	if r.sceneLayout, err = d.CreatePipelineLayout(r.layouts.Graphics); err != nil {
		return err
	}
	r.release.Push("scene pipeline layout", r.sceneLayout)
	if r.luminanceLayout, err = d.CreatePipelineLayout(r.layouts.Luminance); err != nil {
		return err
	}
	r.release.Push("luminance pipeline layout", r.luminanceLayout)
	if r.computeLayout, err = d.CreatePipelineLayout(r.layouts.Compute); err != nil {
		return err
	}
	r.release.Push("compute pipeline layout", r.computeLayout)

	if err := r.uploadStatic(); err != nil {
		return err
	}

	if r.sync, err = d.CreateFrameSync(r.opts.FramesInFlight); err != nil {
		return err
	}
	for _, s := range r.sync {
		r.release.Push("frame sync", s)
	}

	r.release.Push("per image resources", &r.perImage)
	r.release.PushFunc("retired swapchain", func() {
		if r.oldSwapchain != nil {
			r.oldSwapchain.Destroy()
			r.oldSwapchain = nil
		}
	})
	r.release.Push("swapchain resources", &r.unit)

	r.manager = NewSwapchainManager(r.window, r)
	if err := r.manager.Create(); err != nil {
		return err
	}
	r.orchestrator = newFrameOrchestrator(r, r.opts.FramesInFlight, r.manager)
	r.start = time.Now()
	r.resources.LogDetails()
	return nil
}

func (r *VulkanRenderer) uploadStatic() error {
	var err error
	vertexUsage := vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit | vk.BufferUsageStorageBufferBit)
	if r.vertices, err = r.resources.UploadBuffer("vertices", r.mesh.VertexBytes(), vertexUsage); err != nil {
		return err
	}
	r.release.Push("vertex buffer", r.vertices)
	if err := r.handVerticesToCompute(); err != nil {
		return err
	}

	if r.indices, err = r.resources.UploadBuffer("indices", r.mesh.IndexBytes(), vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit)); err != nil {
		return err
	}
	r.release.Push("index buffer", r.indices)

	if r.triangle, err = r.resources.UploadBuffer("triangle", TriangleBytes(FullScreenTriangle), vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)); err != nil {
		return err
	}
	r.release.Push("triangle buffer", r.triangle)

	if r.tex, err = r.resources.UploadTexture(r.texture, r.opts.MaxAnisotropy); err != nil {
		return err
	}
	r.release.Push("texture", r.tex)
	return nil
}

// handVerticesToCompute releases the freshly uploaded vertex buffer from
// the graphics family so the first compute acquire has a matching release.
func (r *VulkanRenderer) handVerticesToCompute() error {
	if r.ctx.Families.Graphics == r.ctx.Families.Compute {
		return nil
	}
	_, release := graphicsBarriers(uint32(r.ctx.Families.Graphics), uint32(r.ctx.Families.Compute))
	return r.ctx.GraphicsPool.RunOneTime(r.ctx.GraphicsQueue, func(cb *CommandBuffer) error {
		cb.CmdBufferBarrier(r.vertices.Buffer, release)
		return nil
	})
}

// ensurePerImage sizes the uniform pools and descriptor sets for n
// swapchain images, rebuilding them only when n changes.
func (r *VulkanRenderer) ensurePerImage(n int) error {
	if r.binder != nil && r.binder.Len() == n {
		return nil
	}
	r.perImage.Destroy()
	r.binder, r.matrices, r.computeData = nil, nil, nil

	matrices, err := r.resources.CreateUniformPool(n, MatricesSize)
	if err != nil {
		return err
	}
	r.perImage.PushFunc("matrices", func() {
		r.resources.Forget("uniforms", matrices.Memory.Size)
		matrices.Destroy()
	})

	computeData, err := r.resources.CreateUniformPool(n, ComputeDataSize)
	if err != nil {
		return err
	}
	r.perImage.PushFunc("compute data", func() {
		r.resources.Forget("uniforms", computeData.Memory.Size)
		computeData.Destroy()
	})

	binder, err := r.ctx.Device.CreateDescriptorBinder(r.layouts, n)
	if err != nil {
		return err
	}
	r.perImage.Push("descriptor pool", binder)

	for i := 0; i < n; i++ {
		binder.WriteGraphics(i, matrices.Buffers[i], r.tex)
		binder.WriteCompute(i, r.vertices.Buffer, computeData.Buffers[i])
	}
	r.matrices, r.computeData, r.binder = matrices, computeData, binder
	return nil
}

// WaitIdle blocks until the device has no pending work.
func (r *VulkanRenderer) WaitIdle() error {
	return r.ctx.Device.WaitIdle()
}

// DestroySwapchainUnit releases everything built by CreateSwapchainUnit.
// The swapchain itself is retired, not destroyed, so its handle can be
// passed to the next one.
func (r *VulkanRenderer) DestroySwapchainUnit() {
	r.unit.Destroy()
}

// CreateSwapchainUnit builds the swapchain for a width x height framebuffer
// and everything that depends on it.
func (r *VulkanRenderer) CreateSwapchainUnit(width, height int) error {
	d := r.ctx.Device

	sc, err := d.CreateSwapchain(r.ctx.Surface, CreateSwapchainOptions{
		OldSwapchain:   r.oldSwapchain,
		Width:          width,
		Height:         height,
		GraphicsFamily: r.ctx.Families.Graphics,
		PresentFamily:  r.ctx.Families.Present,
	})
	if err != nil {
		return err
	}
	if r.oldSwapchain != nil {
		r.oldSwapchain.Destroy()
		r.oldSwapchain = nil
	}
	r.swapchain = sc
	r.unit.PushFunc("swapchain", func() {
		r.oldSwapchain = r.swapchain
		r.swapchain = nil
	})
	extent := sc.Extent

	images, err := sc.GetImages()
	if err != nil {
		return err
	}
	views := make([]*ImageView, len(images))
	for i, img := range images {
		if views[i], err = img.CreateImageView(); err != nil {
			return err
		}
		r.unit.Push("swapchain image view", views[i])
	}

	if r.renderPass, err = d.CreateRenderGraph(sc.Format(), r.depthFormat); err != nil {
		return err
	}
	r.unit.Push("render pass", r.renderPass)

	if err := r.createPipelines(extent); err != nil {
		return err
	}

	depth, err := r.resources.CreateDepthAttachment(extent, r.depthFormat)
	if err != nil {
		return err
	}
	r.depth = depth
	r.unit.PushFunc("depth attachment", func() {
		r.resources.Forget("depth", depth.Memory.Size)
		depth.Destroy()
	})

	beauty, err := r.resources.CreateBeautyAttachment(extent, sc.Format())
	if err != nil {
		return err
	}
	r.beauty = beauty
	r.unit.PushFunc("beauty attachment", func() {
		r.resources.Forget("beauty", beauty.Memory.Size)
		beauty.Destroy()
	})

	if err := r.ensurePerImage(len(images)); err != nil {
		return err
	}

	r.framebuffers = make([]*Framebuffer, len(images))
	for i := range images {
		fb, err := r.renderPass.CreateFramebuffer(extent, beauty.View, depth.View, views[i])
		if err != nil {
			return err
		}
		r.framebuffers[i] = fb
		r.unit.Push("framebuffer", fb)
		r.binder.WriteLuminance(i, beauty.View)
	}

	if err := r.recordCommandBuffers(len(images), extent); err != nil {
		return err
	}

	r.logger.Printf("swapchain %dx%d, %d images, format %d, present mode %d",
		extent.Width, extent.Height, len(images), sc.Format(), sc.PresentMode)
	return nil
}

func (r *VulkanRenderer) shader(name string) string {
	return filepath.Join(r.opts.ShaderDir, name)
}

func (r *VulkanRenderer) createPipelines(extent vk.Extent2D) error {
	d := r.ctx.Device

	scene := d.CreateGraphicsPipelineConfig().
		SetSubpass(SceneSubpass).
		SetPipelineLayout(r.sceneLayout).
		AddVertexDescriptor(MeshVertexLayout{})
	defer scene.Destroy()
	if err := scene.AddShaderStageFromFile(r.shader(SceneVertexShader), ShaderEntryPoint, vk.ShaderStageVertexBit); err != nil {
		return err
	}
	if err := scene.AddShaderStageFromFile(r.shader(SceneFragmentShader), ShaderEntryPoint, vk.ShaderStageFragmentBit); err != nil {
		return err
	}
	var err error
	if r.scene, err = scene.CreateGraphicsPipeline(r.pipelineCache, r.renderPass, extent); err != nil {
		return err
	}
	r.unit.Push("scene pipeline", r.scene)

	luminance := d.CreateGraphicsPipelineConfig().
		SetSubpass(LuminanceSubpass).
		SetCullMode(vk.CullModeNone).
		SetDepth(false).
		SetPipelineLayout(r.luminanceLayout).
		AddVertexDescriptor(TriangleVertexLayout{})
	defer luminance.Destroy()
	if err := luminance.AddShaderStageFromFile(r.shader(LuminanceVertexShader), ShaderEntryPoint, vk.ShaderStageVertexBit); err != nil {
		return err
	}
	if err := luminance.AddShaderStageFromFile(r.shader(LuminanceFragShader), ShaderEntryPoint, vk.ShaderStageFragmentBit); err != nil {
		return err
	}
	if r.luminance, err = luminance.CreateGraphicsPipeline(r.pipelineCache, r.renderPass, extent); err != nil {
		return err
	}
	r.unit.Push("luminance pipeline", r.luminance)

	if r.compute, err = d.CreateComputePipelineFromFile(r.pipelineCache, r.shader(ComputeShader), ShaderEntryPoint, r.computeLayout); err != nil {
		return err
	}
	r.unit.Push("compute pipeline", r.compute)
	return nil
}

func (r *VulkanRenderer) recordCommandBuffers(n int, extent vk.Extent2D) error {
	var err error
	if r.graphicsCmds, err = r.ctx.GraphicsPool.AllocateBuffers(n); err != nil {
		return err
	}
	graphicsCmds := r.graphicsCmds
	r.unit.PushFunc("graphics command buffers", func() { r.ctx.GraphicsPool.FreeBuffers(graphicsCmds) })

	if r.computeCmds, err = r.ctx.ComputePool.AllocateBuffers(n); err != nil {
		return err
	}
	computeCmds := r.computeCmds
	r.unit.PushFunc("compute command buffers", func() { r.ctx.ComputePool.FreeBuffers(computeCmds) })

	for i := 0; i < n; i++ {
		if err := r.recordGraphics(i, extent); err != nil {
			return err
		}
		if err := r.recordCompute(i); err != nil {
			return err
		}
	}
	return nil
}

func (r *VulkanRenderer) recordGraphics(i int, extent vk.Extent2D) error {
	acquire, release := graphicsBarriers(uint32(r.ctx.Families.Graphics), uint32(r.ctx.Families.Compute))

	cb := r.graphicsCmds[i]
	if err := cb.BeginSimultaneous(); err != nil {
		return err
	}
	cb.CmdBufferBarrier(r.vertices.Buffer, acquire)
	cb.CmdBeginRenderPass(r.renderPass, r.framebuffers[i].VKFramebuffer, extent, ClearValues())

	cb.CmdBindGraphicsPipeline(r.scene)
	cb.CmdBindDescriptorSets(vk.PipelineBindPointGraphics, r.sceneLayout, 0, r.binder.Graphics[i])
	cb.CmdBindVertexBuffer(r.vertices.Buffer)
	cb.CmdBindIndexBuffer(r.indices.Buffer)
	cb.CmdDrawIndexed(len(r.mesh.Indices))

	cb.CmdNextSubpass()
	cb.CmdBindGraphicsPipeline(r.luminance)
	cb.CmdBindDescriptorSets(vk.PipelineBindPointGraphics, r.luminanceLayout, 0, r.binder.Luminance[i])
	cb.CmdBindVertexBuffer(r.triangle.Buffer)
	cb.CmdDraw(len(FullScreenTriangle))

	cb.CmdEndRenderPass()
	cb.CmdBufferBarrier(r.vertices.Buffer, release)
	return cb.End()
}

func (r *VulkanRenderer) recordCompute(i int) error {
	acquire, release := computeBarriers(uint32(r.ctx.Families.Graphics), uint32(r.ctx.Families.Compute))

	cb := r.computeCmds[i]
	if err := cb.BeginSimultaneous(); err != nil {
		return err
	}
	cb.CmdBufferBarrier(r.vertices.Buffer, acquire)
	cb.CmdBindComputePipeline(r.compute)
	cb.CmdBindDescriptorSets(vk.PipelineBindPointCompute, r.computeLayout, 0, r.binder.Compute[i])
	cb.CmdDispatch(DispatchSize(len(r.mesh.Vertices)), 1, 1)
	cb.CmdBufferBarrier(r.vertices.Buffer, release)
	return cb.End()
}

func (r *VulkanRenderer) waitSlot(slot int) error {
	fence := r.sync[slot].InFlight
	if fence.Signaled() {
		return nil
	}
	return fence.Wait(0)
}

func (r *VulkanRenderer) acquire(slot int) (uint32, bool, error) {
	return r.swapchain.AcquireNextImage(r.sync[slot].ImageAvailable)
}

func (r *VulkanRenderer) resetSlot(slot int) error {
	return r.sync[slot].InFlight.Reset()
}

func (r *VulkanRenderer) updateUniforms(image uint32) error {
	m := MatricesFor(r.camera, r.swapchain.Extent)
	if err := r.matrices.Buffers[image].Write(ValueBytes(&m)); err != nil {
		return err
	}
	c := ComputeDataAt(time.Since(r.start), len(r.mesh.Vertices))
	return r.computeData.Buffers[image].Write(ValueBytes(&c))
}

func (r *VulkanRenderer) submitCompute(slot int, image uint32) error {
	return r.ctx.ComputeQueue.Submit(SubmitInfo{
		Buffers: []*CommandBuffer{r.computeCmds[image]},
		Signal:  []vk.Semaphore{r.sync[slot].ComputeFinished.VKSemaphore},
	}, nil)
}

func (r *VulkanRenderer) submitGraphics(slot int, image uint32) error {
	s := r.sync[slot]
	return r.ctx.GraphicsQueue.Submit(SubmitInfo{
		Buffers:    []*CommandBuffer{r.graphicsCmds[image]},
		WaitFor:    []vk.Semaphore{s.ComputeFinished.VKSemaphore, s.ImageAvailable.VKSemaphore},
		WaitStages: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageVertexInputBit),
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		Signal: []vk.Semaphore{s.RenderFinished.VKSemaphore},
	}, s.InFlight)
}

func (r *VulkanRenderer) present(slot int, image uint32) (bool, error) {
	return r.ctx.PresentQueue.Present(r.swapchain, image, []vk.Semaphore{r.sync[slot].RenderFinished.VKSemaphore})
}

// SubmitFrame renders one frame.
func (r *VulkanRenderer) SubmitFrame() error {
	if r.orchestrator == nil {
		return errors.New("submit frame: frame graph not built")
	}
	return r.orchestrator.SubmitFrame()
}

// InvalidateSwapchain schedules a swapchain recreation after the next
// present, as needed after a resize or a shader change.
func (r *VulkanRenderer) InvalidateSwapchain() {
	if r.manager != nil {
		r.manager.Invalidate()
	}
}

// Teardown waits for the device to go idle and releases every object in
// reverse creation order. It is safe to call after a failed startup.
func (r *VulkanRenderer) Teardown() error {
	var err error
	if r.ctx != nil {
		err = r.ctx.Device.WaitIdle()
	}
	r.release.Destroy()
	r.ctx = nil
	r.orchestrator = nil
	return err
}
