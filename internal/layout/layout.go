// Package layout computes the per-toolchain directory layout under a root
// directory. The layout is a pure function of (root, toolchain, config), so
// repeated invocations land in the same place and distinct toolchains never
// share a directory.
package layout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/crossforge/mason/internal/toolchain"
)

// ErrInvalidRoot reports an explicitly supplied root directory that does not
// exist or cannot be written to.
var ErrInvalidRoot = errors.New("invalid root directory")

// Paths is the directory layout for one (toolchain, config) pair.
type Paths struct {
	Root         string
	BuildDir     string // _builds/<tag>
	InstallDir   string // _install/<toolchain>
	FrameworkDir string // _framework/<toolchain>
	ArchivesDir  string // _archives
}

// Tag derives the directory-partition key. Single-config generators get one
// build tree per configuration; multiconfig generators share one tree because
// the configuration is chosen at build time.
func Tag(d *toolchain.Descriptor, config string) string {
	if config != "" && !d.Multiconfig {
		return fmt.Sprintf("%s-%s", d.Name, config)
	}
	return d.Name
}

// Plan computes the layout under root. An empty root means the current
// working directory and is not validated; an explicit root must exist, be a
// directory and be writable.
func Plan(root string, d *toolchain.Descriptor, config string) (Paths, error) {
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return Paths{}, err
		}
		root = cwd
	} else {
		info, err := os.Stat(root)
		if err != nil {
			return Paths{}, fmt.Errorf("%w: %s does not exist", ErrInvalidRoot, root)
		}
		if !info.IsDir() {
			return Paths{}, fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, root)
		}
		if !writable(root) {
			return Paths{}, fmt.Errorf("%w: %s is not writable", ErrInvalidRoot, root)
		}
	}
	return Paths{
		Root:         root,
		BuildDir:     filepath.Join(root, "_builds", Tag(d, config)),
		InstallDir:   filepath.Join(root, "_install", d.Name),
		FrameworkDir: filepath.Join(root, "_framework", d.Name),
		ArchivesDir:  filepath.Join(root, "_archives"),
	}, nil
}
