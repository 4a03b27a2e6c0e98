package vulkanitos

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestMipLevels(t *testing.T) {
	tests := []struct {
		w, h uint32
		want uint32
	}{
		{1, 1, 1},
		{2, 1, 2},
		{256, 256, 9},
		{512, 300, 10},
		{300, 1024, 11},
		{1000, 7, 10},
		{0, 0, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MipLevels(tt.w, tt.h), "%dx%d", tt.w, tt.h)
	}
}

func TestMipChainHalvesAndClamps(t *testing.T) {
	chain := mipChain(8, 2)
	assert.Equal(t, []vk.Extent2D{
		{Width: 8, Height: 2},
		{Width: 4, Height: 1},
		{Width: 2, Height: 1},
		{Width: 1, Height: 1},
	}, chain)

	chain = mipChain(5, 5)
	require.Len(t, chain, 3)
	assert.Equal(t, vk.Extent2D{Width: 1, Height: 1}, chain[2])
}

func TestTransitionTable(t *testing.T) {
	tr, err := transitionFor(vk.FormatR8g8b8a8Unorm, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
	require.NoError(t, err)
	assert.Equal(t, vk.AccessFlags(0), tr.SrcAccess)
	assert.Equal(t, vk.AccessFlags(vk.AccessTransferWriteBit), tr.DstAccess)
	assert.Equal(t, vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit), tr.SrcStage)
	assert.Equal(t, vk.PipelineStageFlags(vk.PipelineStageTransferBit), tr.DstStage)

	tr, err = transitionFor(vk.FormatR8g8b8a8Unorm, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
	require.NoError(t, err)
	assert.Equal(t, vk.AccessFlags(vk.AccessShaderReadBit), tr.DstAccess)
	assert.Equal(t, vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit), tr.DstStage)

	tr, err = transitionFor(vk.FormatD32Sfloat, vk.ImageLayoutUndefined, vk.ImageLayoutDepthStencilAttachmentOptimal)
	require.NoError(t, err)
	assert.Equal(t, vk.ImageAspectFlags(vk.ImageAspectDepthBit), tr.Aspect)
	assert.Equal(t, vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit), tr.DstStage)

	tr, err = transitionFor(vk.FormatD24UnormS8Uint, vk.ImageLayoutUndefined, vk.ImageLayoutDepthStencilAttachmentOptimal)
	require.NoError(t, err)
	assert.Equal(t, vk.ImageAspectFlags(vk.ImageAspectDepthBit|vk.ImageAspectStencilBit), tr.Aspect)
}

func TestTransitionTableRejectsOtherPairs(t *testing.T) {
	pairs := [][2]vk.ImageLayout{
		{vk.ImageLayoutShaderReadOnlyOptimal, vk.ImageLayoutTransferDstOptimal},
		{vk.ImageLayoutUndefined, vk.ImageLayoutPresentSrc},
		{vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutUndefined},
	}
	for _, p := range pairs {
		_, err := transitionFor(vk.FormatR8g8b8a8Unorm, p[0], p[1])
		assert.True(t, errors.Is(err, ErrUnsupportedTransition), "%v", p)
	}
}
