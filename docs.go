/*
Package vulkanitos renders a textured mesh with Vulkan. It is a thin layer of
wrappers over the native Vulkan objects, plus the frame machinery of an
interactive viewer built on them.

Every wrapper exposes its native handle in a field prefixed with VK, so
callers are never limited to what the wrappers provide.

Lifecycle

A viewer goes through three phases:

	1. InitializeDevice: instance, surface, physical device selection,
	   logical device, graphics, compute and present queues, command pools.
	2. BuildFrameGraph: mesh, index, full screen triangle and texture uploads,
	   descriptor set layouts, pipeline layouts, per slot sync objects, and
	   the first swapchain with everything that depends on it.
	3. SubmitFrame, once per main loop iteration, then Teardown.

Frames

Up to K frames are in flight, one per FrameSlots entry; K defaults to 1. A
frame waits on its slot fence, acquires a swapchain image, waits out the
other slots since the vertex buffer is shared, writes the uniforms of that
image, submits the compute pass that displaces the vertices, submits the
graphics pass behind the compute semaphore and presents. Both command
buffers move the vertex buffer between the queue families. An out of date swapchain moves the SwapchainManager to
its pending state and the swapchain is rebuilt before the next frame.

Render graph

	attachment 0  beauty  color, read back as an input attachment
	attachment 1  depth
	attachment 2  final   the swapchain image

Subpass 0 draws the mesh into beauty and depth. Subpass 1 reads beauty and
draws a full screen triangle into final.

Teardown

Objects are pushed on a Releaser as they are created and destroyed in the
reverse order. Swapchain dependent objects live on a nested Releaser that
is drained on every recreation.
*/
package vulkanitos
