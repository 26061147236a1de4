package command

import (
	"fmt"

	"github.com/crossforge/mason/internal/layout"
	"github.com/crossforge/mason/internal/toolchain"
)

// Build composes the cmake --build invocation. Everything after the "--"
// separator is handed to the native build tool, so the flag spelling there
// depends on the driver behind the generator.
func Build(d *toolchain.Descriptor, paths layout.Paths, targets *TargetList, opts *Options) []string {
	args := []string{"cmake", "--build", paths.BuildDir}

	// Unlike configure, the config flag is passed whenever a config was
	// requested: multiconfig drivers need it here, single-config drivers
	// ignore it.
	if opts.Config != "" {
		args = append(args, "--config", opts.Config)
	}
	args = append(args, targets.Args()...)

	args = append(args, "--")

	if opts.IOSSim {
		args = append(args, "-arch", "i386", "-sdk", "iphonesimulator")
	}
	if opts.Jobs > 0 {
		args = append(args, jobsArgs(d, opts.Jobs)...)
	}
	return args
}

// jobsArgs maps the parallelism request onto the native tool's spelling.
// Drivers outside the three known families get no flag at all; their builds
// run with the tool's own default parallelism.
func jobsArgs(d *toolchain.Descriptor, jobs int) []string {
	switch {
	case d.IsXcode:
		return []string{"-jobs", fmt.Sprintf("%d", jobs)}
	case d.IsMake && !d.IsNMake:
		return []string{"-j", fmt.Sprintf("%d", jobs)}
	case d.IsMSVC && d.VSVersion >= 12:
		return []string{fmt.Sprintf("/maxcpucount:%d", jobs)}
	}
	return nil
}
