package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"

	"github.com/gogpu/uirender/gpucore"
)

// Embedded shader sources.
// The WGSL module is the source of truth; the GLSL pair mirrors it for
// the OpenGL backend.

//go:embed shaders/ui.wgsl
var uiShaderWGSL string

//go:embed shaders/ui.vert.glsl
var uiShaderVertGLSL string

//go:embed shaders/ui.frag.glsl
var uiShaderFragGLSL string

// Shader entry points.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// ShaderWGSL returns the embedded WGSL source of the UI shader.
func ShaderWGSL() string { return uiShaderWGSL }

// CompileShaderToSPIRV compiles WGSL source to SPIR-V words.
func CompileShaderToSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShaderCompilation, err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("%w: SPIR-V length %d is not word aligned", ErrShaderCompilation, len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// shaderModuleDesc builds the descriptor for the UI shader module,
// carrying every representation a backend may need.
func shaderModuleDesc() (*gpucore.ShaderModuleDesc, error) {
	spirv, err := CompileShaderToSPIRV(uiShaderWGSL)
	if err != nil {
		return nil, err
	}
	return &gpucore.ShaderModuleDesc{
		Label:        "ui_shader",
		WGSL:         uiShaderWGSL,
		SPIRV:        spirv,
		GLSLVertex:   uiShaderVertGLSL,
		GLSLFragment: uiShaderFragGLSL,
	}, nil
}
