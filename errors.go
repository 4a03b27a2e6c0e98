package vulkanitos

import (
	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedPlatform is returned when no physical device offers the
	// queue families, extensions, surface support and features the viewer needs.
	ErrUnsupportedPlatform = errors.New("no suitable vulkan device")

	// ErrNoMemoryType is returned when no memory type matches both the
	// resource requirements and the requested property flags.
	ErrNoMemoryType = errors.New("no matching memory type")

	// ErrUnsupportedTransition is returned for an image layout pair that the
	// barrier table does not know about.
	ErrUnsupportedTransition = errors.New("unsupported layout transition")

	// ErrInvalidShader is returned for shader files that are not SPIR-V.
	ErrInvalidShader = errors.New("invalid shader module")

	// ErrLayerNotSupported is returned when a requested validation layer is
	// not available on this system.
	ErrLayerNotSupported = errors.New("validation layer not supported")

	// ErrExtensionNotSupported is returned when an instance extension
	// required by the window is missing.
	ErrExtensionNotSupported = errors.New("extension not supported")

	// ErrLinearBlitUnsupported is returned when the texture format cannot be
	// blitted with linear filtering, which mipmap generation relies on.
	ErrLinearBlitUnsupported = errors.New("texture format does not support linear blitting")
)
