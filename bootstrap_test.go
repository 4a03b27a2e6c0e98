package vulkanitos

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func suitableCandidate(name string) deviceCandidate {
	return deviceCandidate{
		name:              name,
		extensions:        []string{"VK_KHR_swapchain", "VK_KHR_maintenance1"},
		formatCount:       2,
		presentModeCount:  1,
		samplerAnisotropy: true,
	}
}

func TestCheckSuitable(t *testing.T) {
	required := []string{"VK_KHR_swapchain"}
	assert.NoError(t, checkSuitable(suitableCandidate("gpu"), required))

	c := suitableCandidate("gpu")
	c.familiesErr = errors.Wrap(ErrUnsupportedPlatform, "missing queue families [compute]")
	assert.True(t, errors.Is(checkSuitable(c, required), ErrUnsupportedPlatform))

	c = suitableCandidate("gpu")
	c.extensions = nil
	assert.True(t, errors.Is(checkSuitable(c, required), ErrExtensionNotSupported))

	c = suitableCandidate("gpu")
	c.formatCount = 0
	assert.Error(t, checkSuitable(c, required))

	c = suitableCandidate("gpu")
	c.presentModeCount = 0
	assert.Error(t, checkSuitable(c, required))

	c = suitableCandidate("gpu")
	c.samplerAnisotropy = false
	assert.Error(t, checkSuitable(c, required))
}

func TestPickDeviceFirstSuitableWins(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	bad := suitableCandidate("software")
	bad.presentModeCount = 0
	candidates := []deviceCandidate{bad, suitableCandidate("discrete"), suitableCandidate("integrated")}

	i, err := pickDevice(candidates, []string{"VK_KHR_swapchain"}, logger)
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	assert.Contains(t, buf.String(), "skipping device software")
}

func TestPickDeviceNoneSuitable(t *testing.T) {
	bad := suitableCandidate("gpu")
	bad.samplerAnisotropy = false

	_, err := pickDevice([]deviceCandidate{bad}, nil, nil)
	assert.True(t, errors.Is(err, ErrUnsupportedPlatform))

	_, err = pickDevice(nil, nil, nil)
	assert.True(t, errors.Is(err, ErrUnsupportedPlatform))
}
