//go:build !linux

package environment

import "github.com/sthembisoo/raygun-reporter/cmd/raygun/types"

// fill is a no-op outside Linux; the portable fields are already set.
func (s *System) fill(env *types.Environment) {}
