package meshvk

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// CoreShader loads precompiled SPIR-V bytecode from a directory and
// wraps it into shader modules keyed by file name.
type CoreShader struct {
	dir     string
	modules map[string]vk.ShaderModule
}

func NewCoreShader(dir string) *CoreShader {
	return &CoreShader{
		dir:     dir,
		modules: make(map[string]vk.ShaderModule, 2),
	}
}

// Load reads <dir>/<name>.spv and creates its module.
func (core *CoreShader) Load(ctx *CoreContext, name string) error {
	path := filepath.Join(core.dir, name+".spv")
	buffer, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "shader")
	}
	if len(buffer)%4 != 0 {
		return errors.Errorf("shader %s: truncated SPIR-V (%d bytes)", path, len(buffer))
	}

	var module vk.ShaderModule
	ret := vk.CreateShaderModule(ctx.Device(), &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(buffer)),
		PCode:    sliceUint32(buffer),
	}, nil, &module)
	if isError(ret) {
		return NewError("CreateShaderModule", ret)
	}
	core.modules[name] = module

	device := ctx.Device()
	ctx.Registry().Track("shader "+name, func() {
		vk.DestroyShaderModule(device, module, nil)
	})
	return nil
}

// Module returns a previously loaded module by name.
func (core *CoreShader) Module(name string) (vk.ShaderModule, error) {
	module, ok := core.modules[name]
	if !ok {
		return vk.NullShaderModule, errors.Errorf("shader %q not loaded", name)
	}
	return module, nil
}
