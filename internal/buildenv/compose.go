package buildenv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/crossforge/mason/internal/toolchain"
)

var (
	ErrMissingEnvVar  = errors.New("required environment variable not set")
	ErrInvalidSdkRoot = errors.New("invalid SDK root")
)

// DevRootLookup locates vendor SDK developer roots. An empty path with a nil
// error means "not installed"; callers fall back to the system default.
type DevRootLookup interface {
	IOSDevRoot(version string) (string, error)
	OSXDevRoot(version string) (string, error)
}

// VendorEnvLookup captures a compiler vendor's shell environment for a given
// architecture and compiler version (vcvars-style snapshots).
type VendorEnvLookup interface {
	Snapshot(arch string, vsVersion int) (map[string]string, error)
}

// Composer derives the environment overlay for a resolved toolchain.
type Composer struct {
	SDK    DevRootLookup
	Vendor VendorEnvLookup

	// ToolchainRoot is the directory holding toolchain files and bundled
	// configuration fragments (NoCodeSign.xcconfig).
	ToolchainRoot string

	// Getenv defaults to os.Getenv; tests substitute a fixture.
	Getenv func(string) string
}

func (c *Composer) getenv(key string) string {
	if c.Getenv != nil {
		return c.Getenv(key)
	}
	return os.Getenv(key)
}

// Compose applies the composition rules in order and returns the overlay.
// Each rule contributes nothing unless the descriptor's traits select it.
func (c *Composer) Compose(d *toolchain.Descriptor) (*Overlay, error) {
	o := &Overlay{}

	// Rule 1: toolchains rooted outside the system (MinGW, MSYS) name an
	// environment variable pointing at their root; it must exist and go
	// first on PATH.
	if d.RootEnv != "" {
		root := c.getenv(d.RootEnv)
		if root == "" {
			return nil, fmt.Errorf("%w: %s (required by toolchain %s)", ErrMissingEnvVar, d.RootEnv, d.Name)
		}
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			return nil, fmt.Errorf("%w: %s=%s is not a directory", ErrInvalidSdkRoot, d.RootEnv, root)
		}
		o.PrependPath(root)
	}

	// Rule 2: NMake and Ninja-with-MSVC builds run inside the compiler
	// vendor's own environment, which replaces the inherited one.
	if d.IsNMake || (d.IsNinja && d.VSVersion != 0) {
		snap, err := c.Vendor.Snapshot(d.Arch, d.VSVersion)
		if err != nil {
			return nil, fmt.Errorf("vendor environment for %s: %w", d.Name, err)
		}
		o.ReplaceBase(snap)
	}

	// Rule 3: pin DEVELOPER_DIR when the descriptor asks for a specific
	// SDK version and that SDK is installed. Absence is not an error.
	if d.IOSVersion != "" {
		root, err := c.SDK.IOSDevRoot(d.IOSVersion)
		if err != nil {
			return nil, fmt.Errorf("%w: iOS %s: %v", ErrInvalidSdkRoot, d.IOSVersion, err)
		}
		if root != "" {
			o.Set("DEVELOPER_DIR", root)
		}
	}
	if d.OSXVersion != "" {
		root, err := c.SDK.OSXDevRoot(d.OSXVersion)
		if err != nil {
			return nil, fmt.Errorf("%w: OS X %s: %v", ErrInvalidSdkRoot, d.OSXVersion, err)
		}
		if root != "" {
			o.Set("DEVELOPER_DIR", root)
		}
	}

	// Rule 4: signing-free toolchains point Xcode at the bundled
	// no-signing configuration fragment.
	if d.NoCodeSign {
		o.Set("XCODE_XCCONFIG_FILE", filepath.Join(c.ToolchainRoot, "scripts", "NoCodeSign.xcconfig"))
	}

	return o, nil
}
