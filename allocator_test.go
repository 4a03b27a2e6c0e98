package vulkanitos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlign(t *testing.T) {
	assert.Equal(t, uint64(12), alignUp(12, 3))
	assert.Equal(t, uint64(12), alignUp(10, 3))
	assert.Equal(t, uint64(256), alignUp(1, 256))
	assert.Equal(t, uint64(7), alignUp(7, 0))
}

func TestAllocatorHonorsAlignment(t *testing.T) {
	a := &LinearAllocator{Size: 1024}

	var offsets []uint64
	for i := 0; i < 4; i++ {
		r := a.Allocate(192, 256)
		require.NotNil(t, r, "allocation %d", i)
		offsets = append(offsets, r.Offset)
	}
	assert.Equal(t, []uint64{0, 256, 512, 768}, offsets)
	assert.Nil(t, a.Allocate(1, 256))
	assert.Equal(t, uint64(4*192), a.Used())
}

func TestAllocator(t *testing.T) {
	a := &LinearAllocator{Size: 1024}

	assert.Nil(t, a.Allocate(2048, 1))

	first := a.Allocate(512, 1)
	require.NotNil(t, first)
	assert.Nil(t, a.Allocate(768, 1))

	second := a.Allocate(500, 1)
	require.NotNil(t, second)
	assert.Equal(t, uint64(512), second.Offset)

	assert.Nil(t, a.Allocate(50, 1))
	require.NotNil(t, a.Allocate(5, 1))
	assert.Nil(t, a.Allocate(20, 1))

	a.Free(second)
	again := a.Allocate(500, 1)
	require.NotNil(t, again)
	assert.Equal(t, uint64(512), again.Offset)

	a.Free(first)
	head := a.Allocate(20, 16)
	require.NotNil(t, head)
	assert.Equal(t, uint64(0), head.Offset)
	next := a.Allocate(40, 16)
	require.NotNil(t, next)
	assert.Equal(t, uint64(32), next.Offset)

	assert.Nil(t, a.Allocate(500, 1))
}

func TestUniformLayoutFitsEveryBuffer(t *testing.T) {
	align, total := uniformLayout(3, 200, 16, 256)
	assert.Equal(t, uint64(256), align)
	assert.Equal(t, uint64(712), total)

	a := &LinearAllocator{Size: total}
	for i := 0; i < 3; i++ {
		r := a.Allocate(200, align)
		require.NotNil(t, r)
		assert.Equal(t, uint64(i)*256, r.Offset)
	}

	align, total = uniformLayout(2, 64, 64, 0)
	assert.Equal(t, uint64(64), align)
	assert.Equal(t, uint64(128), total)

	_, total = uniformLayout(0, 64, 64, 0)
	assert.Zero(t, total)
}
