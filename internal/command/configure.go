package command

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/crossforge/mason/internal/layout"
	"github.com/crossforge/mason/internal/toolchain"
)

// ToolchainFile returns the path of the toolchain description file for d
// under toolchainRoot, verifying it exists.
func ToolchainFile(toolchainRoot string, d *toolchain.Descriptor) (string, error) {
	path := filepath.Join(toolchainRoot, d.Name+".cmake")
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrToolchainFileNotFound, path)
	}
	return path, nil
}

// Configure composes the cmake configure invocation. toolchainFile must come
// from ToolchainFile; it precedes all user-controlled defines so a toolchain
// file can be overridden only by the tool's own last-wins rules.
func Configure(d *toolchain.Descriptor, paths layout.Paths, toolchainFile string, opts *Options) []string {
	home := opts.Home
	if home == "" {
		home = "."
	}
	args := []string{"cmake", "-H" + home, "-B" + paths.BuildDir}

	// Multiconfig generators pick the configuration at build time; a
	// build-type define would be dead weight in their cache.
	if opts.Config != "" && !d.Multiconfig {
		args = append(args, "-DCMAKE_BUILD_TYPE="+opts.Config)
	}
	if d.Generator != "" {
		args = append(args, "-G"+d.Generator)
	}
	if d.XP {
		args = append(args, fmt.Sprintf("-Tv%d0_xp", d.VSVersion))
	}
	args = append(args, "-DCMAKE_TOOLCHAIN_FILE="+toolchainFile)

	if opts.Verbosity == "full" {
		args = append(args,
			"-DCMAKE_VERBOSE_MAKEFILE=ON",
			"-DMASON_STATUS_DEBUG=ON",
			"-DHUNTER_STATUS_DEBUG=ON",
		)
	}
	if opts.IOSMultiarch {
		args = append(args, "-DCMAKE_XCODE_ATTRIBUTE_ONLY_ACTIVE_ARCH=NO")
	}
	if opts.IOSCombined {
		args = append(args, "-DCMAKE_IOS_INSTALL_COMBINED=YES")
	}
	if opts.LocalInstall() {
		args = append(args, "-DCMAKE_INSTALL_PREFIX="+paths.InstallDir)
	}
	if opts.PackGenerator != "" {
		args = append(args, "-DCPACK_GENERATOR="+opts.PackGenerator)
	}

	// Forwarded defines go last, verbatim and in user order. Duplicate
	// keys are passed through; cmake's own last-wins semantics apply.
	for _, kv := range opts.Fwd {
		args = append(args, "-D"+kv)
	}
	return args
}
