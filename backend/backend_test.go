package backend

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/uirender/gpucore"
)

type fakeBackend struct {
	name string
}

func (b *fakeBackend) Name() string { return b.name }

func (b *fakeBackend) NewDevice(gpucontext.DeviceProvider) (gpucore.Device, error) {
	return nil, ErrUnsupportedProvider
}

func withCleanRegistry(t *testing.T) {
	t.Helper()
	saved := reg
	reg = newRegistry()
	t.Cleanup(func() { reg = saved })
}

func register(name string) {
	Register(name, func() RenderBackend { return &fakeBackend{name: name} })
}

func TestRegistry_RegisterGetUnregister(t *testing.T) {
	withCleanRegistry(t)

	if Get("fake") != nil {
		t.Fatal("Get() returned a backend before registration")
	}
	register("fake")
	if !IsRegistered("fake") {
		t.Error("IsRegistered(fake) = false after Register")
	}
	b := Get("fake")
	if b == nil || b.Name() != "fake" {
		t.Fatalf("Get(fake) = %v", b)
	}
	Unregister("fake")
	if IsRegistered("fake") {
		t.Error("IsRegistered(fake) = true after Unregister")
	}
}

func TestRegistry_Available(t *testing.T) {
	withCleanRegistry(t)
	register("zeta")
	register("alpha")
	if got := Available(); !slices.Equal(got, []string{"alpha", "zeta"}) {
		t.Errorf("Available() = %v, want [alpha zeta]", got)
	}
}

func TestRegistry_DefaultPriority(t *testing.T) {
	tests := []struct {
		name       string
		registered []string
		want       string
	}{
		{"native wins", []string{BackendOpenGL, BackendNative}, BackendNative},
		{"opengl only", []string{BackendOpenGL}, BackendOpenGL},
		{"fallback by name", []string{"zz", "custom"}, "custom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withCleanRegistry(t)
			for _, n := range tt.registered {
				register(n)
			}
			b := Default()
			if b == nil {
				t.Fatal("Default() = nil")
			}
			if b.Name() != tt.want {
				t.Errorf("Default().Name() = %q, want %q", b.Name(), tt.want)
			}
		})
	}
}

func TestRegistry_DefaultSkipsUnusable(t *testing.T) {
	withCleanRegistry(t)
	Register(BackendNative, func() RenderBackend { return nil })
	register("custom")

	b := Default()
	if b == nil || b.Name() != "custom" {
		t.Errorf("Default() = %v, want the custom backend", b)
	}
	if Get(BackendNative) != nil {
		t.Error("Get(native) built an unusable backend")
	}
}

func TestRegistry_DefaultEmpty(t *testing.T) {
	withCleanRegistry(t)
	if b := Default(); b != nil {
		t.Errorf("Default() = %v, want nil", b)
	}
	defer func() {
		if recover() == nil {
			t.Error("MustDefault() did not panic with an empty registry")
		}
	}()
	MustDefault()
}

func TestFakeBackend_UnsupportedProvider(t *testing.T) {
	b := &fakeBackend{name: "fake"}
	if _, err := b.NewDevice(nil); !errors.Is(err, ErrUnsupportedProvider) {
		t.Errorf("NewDevice(nil) = %v, want ErrUnsupportedProvider", err)
	}
}
