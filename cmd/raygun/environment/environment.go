// Package environment samples the machine state attached to every report.
package environment

import (
	"os"
	"runtime"

	"github.com/sthembisoo/raygun-reporter/cmd/raygun/types"
)

// Provider produces a fresh environment snapshot. Implementations must not
// cache: every report reflects the machine at the time it was assembled.
type Provider interface {
	Snapshot() types.Environment
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func() types.Environment

func (f ProviderFunc) Snapshot() types.Environment { return f() }

// System reads the live state of the host. procRoot is normally "/proc" and
// is only consulted on Linux.
type System struct {
	procRoot string
}

func NewSystem(procRoot string) *System {
	return &System{procRoot: procRoot}
}

func (s *System) Snapshot() types.Environment {
	hostname, _ := os.Hostname()

	env := types.Environment{
		OSVersion:      runtime.GOOS,
		Architecture:   runtime.GOARCH,
		PackageVersion: runtime.Version(),
		ProcessorCount: runtime.NumCPU(),
		DeviceName:     hostname,
		DiskSpaceFree:  []float64{},
	}
	s.fill(&env)
	return env
}
