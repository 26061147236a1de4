// Package command composes the cmake/ctest/cpack argument vectors for a
// resolved toolchain. Token order is significant and reproduced exactly; the
// composers here only build argv slices, they never start processes.
package command

import (
	"errors"
)

var (
	ErrToolchainFileNotFound  = errors.New("toolchain file not found")
	ErrConflictingInstallMode = errors.New("both install and strip requested")
	ErrUnsupportedStripTarget = errors.New("install/strip is only supported for Makefile generators")
)

// Options carries the user-supplied knobs consumed by the composers. Field
// semantics follow the CLI flags one to one.
type Options struct {
	Config    string
	Home      string // source directory, "." when unset
	Verbosity string // "silent", "normal" or "full"

	Install         bool
	Strip           bool
	Framework       bool
	FrameworkDevice bool
	Archive         string
	Target          string

	IOSMultiarch bool
	IOSCombined  bool
	IOSSim       bool
	Jobs         int

	PackGenerator string
	Fwd           []string // raw KEY=VALUE defines, forwarded verbatim in order

	TestXML string
	Timeout int
}

// LocalInstall reports whether any requested operation needs the install
// tree, which adds the install target and the install-prefix define.
func (o *Options) LocalInstall() bool {
	return o.Install || o.Strip || o.Framework || o.FrameworkDevice || o.Archive != ""
}
