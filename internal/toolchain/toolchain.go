// Package toolchain holds the static registry of build toolchains and the
// resolution logic that picks one for the current invocation.
package toolchain

import (
	"errors"
	"fmt"
	"runtime"
)

var (
	ErrUnknownToolchain      = errors.New("unknown toolchain")
	ErrUnsupportedOnPlatform = errors.New("toolchain not supported on this platform")
	ErrNoDefaultForPlatform  = errors.New("no default toolchain for this platform")
)

// Platform identifies the host operating system for resolution purposes.
type Platform string

const (
	Windows Platform = "windows"
	Darwin  Platform = "darwin"
	Linux   Platform = "linux"
	Other   Platform = "other"
)

// Host returns the Platform of the running process.
func Host() Platform {
	switch runtime.GOOS {
	case "windows":
		return Windows
	case "darwin":
		return Darwin
	case "linux":
		return Linux
	}
	return Other
}

// Descriptor describes one toolchain: the CMake generator it drives and the
// trait flags consulted by the environment and command composers. Descriptors
// are plain data; behavior differences live in the composers, not here.
type Descriptor struct {
	Name      string // unique, filesystem-safe; doubles as the toolchain file stem
	Generator string // CMake -G value, empty for the platform default

	Multiconfig bool // configuration chosen at build time (--config), not configure time
	IsMake      bool
	IsNMake     bool
	IsNinja     bool
	IsXcode     bool
	IsMSVC      bool

	VSVersion  int    // Visual Studio major version, 0 if not tied to one
	Arch       string // vcvars architecture ("x86", "amd64"), empty if unused
	IOSVersion string // iOS SDK version marker, empty if none
	OSXVersion string // macOS SDK version marker, empty if none
	XP         bool   // legacy v*0_xp toolset
	NoCodeSign bool   // suppress Xcode code signing

	// RootEnv names an environment variable that must point at the
	// toolchain's root directory (MinGW, MSYS). The directory is verified
	// and prefixed onto PATH by the environment composer.
	RootEnv string

	// Requires restricts the toolchain to one host platform. Zero value
	// means any platform.
	Requires Platform
}

// Table is an ordered registry of descriptors. Order is registration order
// and is reproduced by All, which drives help-text enumeration.
type Table struct {
	entries  []*Descriptor
	byName   map[string]*Descriptor
	defaults map[Platform]string
}

// NewTable builds a registry from descs, rejecting duplicate names.
func NewTable(descs ...Descriptor) (*Table, error) {
	t := &Table{byName: make(map[string]*Descriptor, len(descs)), defaults: make(map[Platform]string)}
	for i := range descs {
		d := &descs[i]
		if _, dup := t.byName[d.Name]; dup {
			return nil, fmt.Errorf("duplicate toolchain name %q", d.Name)
		}
		t.byName[d.Name] = d
		t.entries = append(t.entries, d)
	}
	return t, nil
}

// SetDefault marks name as the default selection for platform p.
func (t *Table) SetDefault(p Platform, name string) error {
	if _, ok := t.byName[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownToolchain, name)
	}
	t.defaults[p] = name
	return nil
}

// Lookup returns the descriptor registered under name.
func (t *Table) Lookup(name string) (*Descriptor, error) {
	d, ok := t.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToolchain, name)
	}
	return d, nil
}

// All returns every descriptor in registration order.
func (t *Table) All() []*Descriptor {
	out := make([]*Descriptor, len(t.entries))
	copy(out, t.entries)
	return out
}

// Names returns every toolchain name in registration order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.entries))
	for _, d := range t.entries {
		names = append(names, d.Name)
	}
	return names
}

// Resolve selects the descriptor for the requested name, or the platform
// default when name is empty, and verifies it can run on platform.
func (t *Table) Resolve(name string, platform Platform) (*Descriptor, error) {
	if name == "" {
		def, ok := t.defaults[platform]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoDefaultForPlatform, platform)
		}
		name = def
	}
	d, err := t.Lookup(name)
	if err != nil {
		return nil, err
	}
	if d.Requires != "" && d.Requires != platform {
		return nil, fmt.Errorf("%w: %s requires %s, host is %s",
			ErrUnsupportedOnPlatform, d.Name, d.Requires, platform)
	}
	return d, nil
}
