//go:build opengl

package opengl

import (
	"testing"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/gogpu/gputypes"
)

func TestFlipRect(t *testing.T) {
	tests := []struct {
		name               string
		y, height, targetH int32
		want               int32
	}{
		{"full target", 0, 600, 600, 0},
		{"top band", 0, 100, 600, 500},
		{"bottom band", 500, 100, 600, 0},
		{"middle", 200, 50, 600, 350},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := flipRect(tt.y, tt.height, tt.targetH); got != tt.want {
				t.Errorf("flipRect(%d, %d, %d) = %d, want %d", tt.y, tt.height, tt.targetH, got, tt.want)
			}
		})
	}
}

func TestConvertVertexFormat(t *testing.T) {
	f, err := convertVertexFormat(gputypes.VertexFormatUnorm8x4)
	if err != nil {
		t.Fatalf("Unorm8x4: %v", err)
	}
	if f.size != 4 || f.xtype != gl.UNSIGNED_BYTE || !f.normalized {
		t.Errorf("Unorm8x4 = %+v, want {4 UNSIGNED_BYTE true}", f)
	}
	f, err = convertVertexFormat(gputypes.VertexFormatFloat32x2)
	if err != nil {
		t.Fatalf("Float32x2: %v", err)
	}
	if f.size != 2 || f.xtype != gl.FLOAT || f.normalized {
		t.Errorf("Float32x2 = %+v, want {2 FLOAT false}", f)
	}
	if _, err := convertVertexFormat(gputypes.VertexFormatUint32); err == nil {
		t.Error("Uint32: error = nil, want unsupported")
	}
}

func TestConvertTextureFormat(t *testing.T) {
	f, err := convertTextureFormat(gputypes.TextureFormatBGRA8Unorm)
	if err != nil {
		t.Fatal(err)
	}
	if f.format != gl.BGRA || f.internal != gl.RGBA8 {
		t.Errorf("BGRA8Unorm = %+v", f)
	}
	if _, err := convertTextureFormat(gputypes.TextureFormatDepth32Float); err == nil {
		t.Error("Depth32Float: error = nil, want unsupported")
	}
}

func TestConvertIndexFormat(t *testing.T) {
	if xtype, size := convertIndexFormat(gputypes.IndexFormatUint32); xtype != gl.UNSIGNED_INT || size != 4 {
		t.Errorf("Uint32 = (0x%X, %d)", xtype, size)
	}
	if xtype, size := convertIndexFormat(gputypes.IndexFormatUint16); xtype != gl.UNSIGNED_SHORT || size != 2 {
		t.Errorf("Uint16 = (0x%X, %d)", xtype, size)
	}
}

func TestConvertFilter_IgnoresMipmaps(t *testing.T) {
	if convertFilter(gputypes.FilterModeLinear) != gl.LINEAR {
		t.Error("Linear should map to GL_LINEAR")
	}
	if convertFilter(gputypes.FilterModeNearest) != gl.NEAREST {
		t.Error("Nearest should map to GL_NEAREST")
	}
}
