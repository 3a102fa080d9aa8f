//go:build opengl

package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/gogpu/gputypes"
)

// texFormat is the GL upload triple for a texture format.
type texFormat struct {
	internal int32
	format   uint32
	xtype    uint32
}

func convertTextureFormat(f gputypes.TextureFormat) (texFormat, error) {
	switch f {
	case gputypes.TextureFormatRGBA8Unorm:
		return texFormat{gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE}, nil
	case gputypes.TextureFormatRGBA8UnormSrgb:
		return texFormat{gl.SRGB8_ALPHA8, gl.RGBA, gl.UNSIGNED_BYTE}, nil
	case gputypes.TextureFormatBGRA8Unorm:
		return texFormat{gl.RGBA8, gl.BGRA, gl.UNSIGNED_BYTE}, nil
	case gputypes.TextureFormatBGRA8UnormSrgb:
		return texFormat{gl.SRGB8_ALPHA8, gl.BGRA, gl.UNSIGNED_BYTE}, nil
	default:
		return texFormat{}, fmt.Errorf("opengl: unsupported texture format %v", f)
	}
}

// attribFormat is the VertexAttribPointer triple for a vertex format.
type attribFormat struct {
	size       int32
	xtype      uint32
	normalized bool
}

func convertVertexFormat(f gputypes.VertexFormat) (attribFormat, error) {
	switch f {
	case gputypes.VertexFormatFloat32:
		return attribFormat{1, gl.FLOAT, false}, nil
	case gputypes.VertexFormatFloat32x2:
		return attribFormat{2, gl.FLOAT, false}, nil
	case gputypes.VertexFormatFloat32x3:
		return attribFormat{3, gl.FLOAT, false}, nil
	case gputypes.VertexFormatFloat32x4:
		return attribFormat{4, gl.FLOAT, false}, nil
	case gputypes.VertexFormatUnorm8x4:
		return attribFormat{4, gl.UNSIGNED_BYTE, true}, nil
	default:
		return attribFormat{}, fmt.Errorf("opengl: unsupported vertex format %v", f)
	}
}

func convertBlendFactor(f gputypes.BlendFactor) uint32 {
	switch f {
	case gputypes.BlendFactorZero:
		return gl.ZERO
	case gputypes.BlendFactorOne:
		return gl.ONE
	case gputypes.BlendFactorSrc:
		return gl.SRC_COLOR
	case gputypes.BlendFactorOneMinusSrc:
		return gl.ONE_MINUS_SRC_COLOR
	case gputypes.BlendFactorSrcAlpha:
		return gl.SRC_ALPHA
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	case gputypes.BlendFactorDst:
		return gl.DST_COLOR
	case gputypes.BlendFactorOneMinusDst:
		return gl.ONE_MINUS_DST_COLOR
	case gputypes.BlendFactorDstAlpha:
		return gl.DST_ALPHA
	case gputypes.BlendFactorOneMinusDstAlpha:
		return gl.ONE_MINUS_DST_ALPHA
	default:
		return gl.ONE
	}
}

func convertBlendOperation(op gputypes.BlendOperation) uint32 {
	switch op {
	case gputypes.BlendOperationSubtract:
		return gl.FUNC_SUBTRACT
	case gputypes.BlendOperationReverseSubtract:
		return gl.FUNC_REVERSE_SUBTRACT
	case gputypes.BlendOperationMin:
		return gl.MIN
	case gputypes.BlendOperationMax:
		return gl.MAX
	default:
		return gl.FUNC_ADD
	}
}

func convertAddressMode(m gputypes.AddressMode) int32 {
	switch m {
	case gputypes.AddressModeRepeat:
		return gl.REPEAT
	case gputypes.AddressModeMirrorRepeat:
		return gl.MIRRORED_REPEAT
	default:
		return gl.CLAMP_TO_EDGE
	}
}

// convertFilter ignores the mipmap filter: textures have one level, and a
// mipmapped min filter would leave them incomplete.
func convertFilter(f gputypes.FilterMode) int32 {
	if f == gputypes.FilterModeNearest {
		return gl.NEAREST
	}
	return gl.LINEAR
}

func convertIndexFormat(f gputypes.IndexFormat) (xtype uint32, size uint64) {
	if f == gputypes.IndexFormatUint16 {
		return gl.UNSIGNED_SHORT, 2
	}
	return gl.UNSIGNED_INT, 4
}

// flipRect converts a top-left-origin rectangle to GL's bottom-left origin
// for a target of the given height.
func flipRect(y, height, targetHeight int32) int32 {
	return targetHeight - y - height
}
