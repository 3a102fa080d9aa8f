package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"
)

// UniformsSize is the byte size of the uniform block: a 4x4 float matrix
// and one gamma scalar, rounded up to 16-byte alignment.
const UniformsSize = 80

// Gamma exponents applied in the fragment shader.
const (
	GammaLinear float32 = 1.0
	GammaSRGB   float32 = 2.2
)

// GammaMode selects how the fragment gamma exponent is chosen.
type GammaMode uint8

const (
	// GammaModeAuto derives gamma from the render target format.
	GammaModeAuto GammaMode = iota

	// GammaModeLinear always uses 1.0.
	GammaModeLinear

	// GammaModeSRGB always uses 2.2.
	GammaModeSRGB
)

// String returns the gamma mode name.
func (m GammaMode) String() string {
	switch m {
	case GammaModeAuto:
		return "Auto"
	case GammaModeLinear:
		return "Linear"
	case GammaModeSRGB:
		return "SRGB"
	default:
		return "Unknown"
	}
}

// Uniforms is the per-frame uniform block shared by both shader stages.
type Uniforms struct {
	MVP   [16]float32
	Gamma float32
}

// OrthoProjection returns the orthographic projection that maps the
// display rectangle at pos with the given size onto clip space. The
// top-left corner maps to (-1, 1) and the bottom-right corner to (1, -1);
// z is mapped to 0.5.
//
// The 16 floats are laid out as WGSL expects a column-major mat4x4.
func OrthoProjection(pos, size [2]float32) [16]float32 {
	l := pos[0]
	r := pos[0] + size[0]
	t := pos[1]
	b := pos[1] + size[1]

	return [16]float32{
		2 / (r - l), 0, 0, 0,
		0, 2 / (t - b), 0, 0,
		0, 0, 0.5, 0,
		(r + l) / (l - r), (t + b) / (b - t), 0.5, 1,
	}
}

// GammaForFormat returns 2.2 for sRGB color formats and 1.0 otherwise.
// The shader raises linear color to this power before the hardware sRGB
// encode so that colors authored in sRGB space round-trip unchanged.
func GammaForFormat(format gputypes.TextureFormat) float32 {
	switch format {
	case gputypes.TextureFormatRGBA8UnormSrgb,
		gputypes.TextureFormatBGRA8UnormSrgb,
		gputypes.TextureFormatBC1RGBAUnormSrgb,
		gputypes.TextureFormatBC2RGBAUnormSrgb,
		gputypes.TextureFormatBC3RGBAUnormSrgb,
		gputypes.TextureFormatBC7RGBAUnormSrgb,
		gputypes.TextureFormatETC2RGB8UnormSrgb,
		gputypes.TextureFormatETC2RGB8A1UnormSrgb,
		gputypes.TextureFormatETC2RGBA8UnormSrgb,
		gputypes.TextureFormatASTC4x4UnormSrgb,
		gputypes.TextureFormatASTC5x4UnormSrgb,
		gputypes.TextureFormatASTC5x5UnormSrgb,
		gputypes.TextureFormatASTC6x5UnormSrgb,
		gputypes.TextureFormatASTC6x6UnormSrgb,
		gputypes.TextureFormatASTC8x5UnormSrgb,
		gputypes.TextureFormatASTC8x6UnormSrgb,
		gputypes.TextureFormatASTC8x8UnormSrgb,
		gputypes.TextureFormatASTC10x5UnormSrgb,
		gputypes.TextureFormatASTC10x6UnormSrgb,
		gputypes.TextureFormatASTC10x8UnormSrgb,
		gputypes.TextureFormatASTC10x10UnormSrgb,
		gputypes.TextureFormatASTC12x10UnormSrgb,
		gputypes.TextureFormatASTC12x12UnormSrgb:
		return GammaSRGB
	default:
		return GammaLinear
	}
}

// ResolveGamma returns the gamma exponent for the given mode and target.
func ResolveGamma(mode GammaMode, format gputypes.TextureFormat) float32 {
	switch mode {
	case GammaModeLinear:
		return GammaLinear
	case GammaModeSRGB:
		return GammaSRGB
	default:
		return GammaForFormat(format)
	}
}

// BuildUniforms computes the uniform block for one frame.
func BuildUniforms(pos, size [2]float32, format gputypes.TextureFormat, mode GammaMode) Uniforms {
	return Uniforms{
		MVP:   OrthoProjection(pos, size),
		Gamma: ResolveGamma(mode, format),
	}
}

// Bytes returns the little-endian encoding of u, padded to UniformsSize.
func (u *Uniforms) Bytes() []byte {
	buf := make([]byte, UniformsSize)
	for i, v := range u.MVP {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	binary.LittleEndian.PutUint32(buf[64:], math.Float32bits(u.Gamma))
	return buf
}
