package command

import "strconv"

// Test composes the ctest invocation, run from the build directory.
func Test(opts *Options) []string {
	args := []string{"ctest"}
	if opts.Config != "" {
		args = append(args, "-C", opts.Config)
	}
	if opts.Verbosity == "full" {
		args = append(args, "-VV")
	}
	if opts.Timeout > 0 {
		args = append(args, "--timeout", strconv.Itoa(opts.Timeout))
	}
	if opts.TestXML != "" {
		args = append(args, "-T", "Test", "--no-compress-output")
	}
	return args
}

// Pack composes the cpack invocation, run from the build directory.
func Pack(opts *Options) []string {
	args := []string{"cpack"}
	if opts.Config != "" {
		args = append(args, "-C", opts.Config)
	}
	if opts.PackGenerator != "" {
		args = append(args, "-G", opts.PackGenerator)
	}
	if opts.Verbosity == "full" {
		args = append(args, "--verbose")
	}
	return args
}
