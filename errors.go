package uirender

import (
	"errors"
	"fmt"

	"github.com/gogpu/uirender/internal/gpu"
)

// Sentinel errors, one per ErrorKind. Use errors.Is to classify an error
// returned by the renderer.
var (
	// ErrRenderer is the generic renderer failure.
	ErrRenderer = errors.New("uirender: renderer error")

	// ErrBadTexture is returned for unknown or invalid textures.
	ErrBadTexture = errors.New("uirender: bad texture")

	// ErrDeviceLost is returned when the device objects are gone, e.g.
	// after InvalidateDeviceObjects or Destroy.
	ErrDeviceLost = errors.New("uirender: device lost")

	// ErrInvalidRenderState is returned for draw data or configuration
	// the renderer cannot execute.
	ErrInvalidRenderState = errors.New("uirender: invalid render state")

	// ErrBufferCreation is returned when a GPU buffer cannot be allocated.
	ErrBufferCreation = gpu.ErrBufferCreation

	// ErrTextureCreation is returned when a texture cannot be created or
	// uploaded.
	ErrTextureCreation = errors.New("uirender: texture creation failed")

	// ErrPipelineCreation is returned when a render pipeline cannot be
	// built.
	ErrPipelineCreation = gpu.ErrPipelineCreation

	// ErrShaderCompilation is returned when the UI shader fails to compile.
	ErrShaderCompilation = gpu.ErrShaderCompilation
)

// ErrorKind classifies a RendererError.
type ErrorKind uint8

// Error kinds.
const (
	KindGeneric ErrorKind = iota
	KindBadTexture
	KindDeviceLost
	KindInvalidRenderState
	KindBufferCreationFailed
	KindTextureCreationFailed
	KindPipelineCreationFailed
	KindShaderCompilationFailed
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindGeneric:
		return "Generic"
	case KindBadTexture:
		return "BadTexture"
	case KindDeviceLost:
		return "DeviceLost"
	case KindInvalidRenderState:
		return "InvalidRenderState"
	case KindBufferCreationFailed:
		return "BufferCreationFailed"
	case KindTextureCreationFailed:
		return "TextureCreationFailed"
	case KindPipelineCreationFailed:
		return "PipelineCreationFailed"
	case KindShaderCompilationFailed:
		return "ShaderCompilationFailed"
	default:
		return fmt.Sprintf("ErrorKind(%d)", uint8(k))
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindBadTexture:
		return ErrBadTexture
	case KindDeviceLost:
		return ErrDeviceLost
	case KindInvalidRenderState:
		return ErrInvalidRenderState
	case KindBufferCreationFailed:
		return ErrBufferCreation
	case KindTextureCreationFailed:
		return ErrTextureCreation
	case KindPipelineCreationFailed:
		return ErrPipelineCreation
	case KindShaderCompilationFailed:
		return ErrShaderCompilation
	default:
		return ErrRenderer
	}
}

// RendererError is the error type returned by Renderer operations.
type RendererError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *RendererError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("uirender: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("uirender: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *RendererError) Unwrap() error { return e.Err }

// Is matches the sentinel error of the error's kind.
func (e *RendererError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// newError wraps err as a RendererError. The kind is taken from the first
// known sentinel in err's chain when kind is KindGeneric. err may be nil.
func newError(op string, kind ErrorKind, err error) error {
	if err != nil {
		var re *RendererError
		if errors.As(err, &re) {
			return err
		}
		if kind == KindGeneric {
			kind = classify(err)
		}
	}
	return &RendererError{Kind: kind, Op: op, Err: err}
}

func classify(err error) ErrorKind {
	switch {
	case errors.Is(err, gpu.ErrShaderCompilation):
		return KindShaderCompilationFailed
	case errors.Is(err, gpu.ErrPipelineCreation):
		return KindPipelineCreationFailed
	case errors.Is(err, gpu.ErrBufferCreation):
		return KindBufferCreationFailed
	case errors.Is(err, gpu.ErrInvalidTargetFormat),
		errors.Is(err, gpu.ErrInvalidFramesInFlight):
		return KindInvalidRenderState
	case errors.Is(err, gpu.ErrNotInitialized):
		return KindDeviceLost
	default:
		return KindGeneric
	}
}
