package vulkanitos

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFamilies(t *testing.T) {
	idx, err := resolveFamilies([]familyCaps{
		{graphics: true, compute: true},
		{compute: true},
		{present: true},
	})
	require.NoError(t, err)
	assert.Equal(t, QueueFamilyIndices{Graphics: 0, Compute: 0, Present: 2}, idx)
	assert.Equal(t, []int{0, 2}, idx.Unique())

	idx, err = resolveFamilies([]familyCaps{
		{graphics: true, compute: true, present: true},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, idx.Unique())
}

func TestResolveFamiliesMissing(t *testing.T) {
	_, err := resolveFamilies([]familyCaps{
		{graphics: true, present: true},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedPlatform))
	assert.Contains(t, err.Error(), "compute")

	_, err = resolveFamilies(nil)
	assert.True(t, errors.Is(err, ErrUnsupportedPlatform))
}

func TestUniqueFamiliesKeepsGraphicsFirst(t *testing.T) {
	idx := QueueFamilyIndices{Graphics: 2, Compute: 1, Present: 2}
	assert.Equal(t, []int{2, 1}, idx.Unique())
}
