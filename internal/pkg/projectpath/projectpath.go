// Package projectpath locates the repository root at build time, so that .env and
// other project files resolve the same way from tests and binaries.
package projectpath

import (
	"path/filepath"
	"runtime"
)

var (
	_, b, _, _ = runtime.Caller(0)

	// Root is the root directory of this project.
	Root = filepath.Join(filepath.Dir(b), "../../..")
)
