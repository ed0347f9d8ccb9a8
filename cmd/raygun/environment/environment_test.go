package environment

import (
	"runtime"
	"testing"

	"github.com/sthembisoo/raygun-reporter/cmd/raygun/types"
)

func TestSystemSnapshot(t *testing.T) {
	env := NewSystem(t.TempDir()).Snapshot()

	if env.Architecture != runtime.GOARCH {
		t.Errorf("Architecture = %q, want %q", env.Architecture, runtime.GOARCH)
	}
	if env.PackageVersion != runtime.Version() {
		t.Errorf("PackageVersion = %q, want %q", env.PackageVersion, runtime.Version())
	}
	if env.ProcessorCount != runtime.NumCPU() {
		t.Errorf("ProcessorCount = %d, want %d", env.ProcessorCount, runtime.NumCPU())
	}
	if env.OSVersion == "" {
		t.Error("OSVersion is empty")
	}
	if env.DiskSpaceFree == nil {
		t.Error("DiskSpaceFree is nil, want empty slice when no volumes are found")
	}
}

func TestProviderFunc(t *testing.T) {
	calls := 0
	p := ProviderFunc(func() types.Environment {
		calls++
		return types.Environment{DeviceName: "web-1"}
	})

	p.Snapshot()
	got := p.Snapshot()
	if got.DeviceName != "web-1" {
		t.Errorf("DeviceName = %q, want web-1", got.DeviceName)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}
