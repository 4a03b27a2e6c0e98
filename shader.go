package vulkanitos

import (
	"encoding/binary"
	"os"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic = 0x07230203

type ShaderModule struct {
	Device         *Device
	Description    string
	VKShaderModule vk.ShaderModule
}

// DecodeSPIRV checks the SPIR-V header of data and returns it as words.
func DecodeSPIRV(data []byte) ([]uint32, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, errors.Wrapf(ErrInvalidShader, "length %d is not a positive multiple of 4", len(data))
	}
	if binary.LittleEndian.Uint32(data) != SPIRVMagic {
		return nil, errors.Wrapf(ErrInvalidShader, "bad magic %#08x", binary.LittleEndian.Uint32(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return words, nil
}

// LoadShaderModuleFromFile reads and validates a compiled SPIR-V file and
// creates a shader module from it.
func (d *Device) LoadShaderModuleFromFile(file string) (*ShaderModule, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidShader, "%s: %v", file, err)
	}
	code, err := DecodeSPIRV(data)
	if err != nil {
		return nil, errors.Wrap(err, file)
	}

	var module vk.ShaderModule
	err = vk.Error(vk.CreateShaderModule(d.VKDevice, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(data)),
		PCode:    code,
	}, nil, &module))
	if err != nil {
		return nil, errors.Wrapf(err, "create shader module %s", file)
	}

	return &ShaderModule{Device: d, Description: file, VKShaderModule: module}, nil
}

func (s *ShaderModule) VKPipelineShaderStageCreateInfo(stage vk.ShaderStageFlagBits, entryPoint string) vk.PipelineShaderStageCreateInfo {
	var shaderStageCreateInfo = vk.PipelineShaderStageCreateInfo{}
	shaderStageCreateInfo.SType = vk.StructureTypePipelineShaderStageCreateInfo
	shaderStageCreateInfo.Stage = stage
	shaderStageCreateInfo.Module = s.VKShaderModule
	shaderStageCreateInfo.PName = safeString(entryPoint)
	return shaderStageCreateInfo
}

func (s *ShaderModule) Destroy() {
	vk.DestroyShaderModule(s.Device.VKDevice, s.VKShaderModule, nil)
}
