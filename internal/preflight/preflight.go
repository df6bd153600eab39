// Package preflight checks that the executables a run depends on exist.
package preflight

import (
	"os/exec"
	"strings"

	aerrors "github.com/TonnyWong1052/gemsh/internal/errors"
)

// LookPathFunc resolves an executable name. exec.LookPath in production.
type LookPathFunc func(string) (string, error)

// Checker probes $PATH for executables.
type Checker struct {
	lookPath LookPathFunc
}

// NewChecker creates a Checker backed by exec.LookPath.
func NewChecker() *Checker {
	return &Checker{lookPath: exec.LookPath}
}

// NewCheckerWith creates a Checker with a custom resolver.
func NewCheckerWith(fn LookPathFunc) *Checker {
	return &Checker{lookPath: fn}
}

// Has reports whether name is on $PATH.
func (c *Checker) Has(name string) bool {
	_, err := c.lookPath(name)
	return err == nil
}

// Require fails with a setup error listing every missing executable.
func (c *Checker) Require(names ...string) error {
	var missing []string
	for _, n := range names {
		if !c.Has(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return aerrors.NewSetupError(aerrors.ErrToolMissing,
		"required executables not found in PATH: "+strings.Join(missing, ", ")).
		WithContext("missing", missing)
}
