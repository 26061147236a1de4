// Package pipeline drives one orchestration run: resolve the toolchain,
// compose environment, layout and commands, then execute the stages in order.
// All validation happens before the first external process starts.
package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/crossforge/mason/internal/archive"
	"github.com/crossforge/mason/internal/buildenv"
	"github.com/crossforge/mason/internal/command"
	"github.com/crossforge/mason/internal/framework"
	"github.com/crossforge/mason/internal/ide"
	"github.com/crossforge/mason/internal/layout"
	"github.com/crossforge/mason/internal/logging"
	"github.com/crossforge/mason/internal/run"
	"github.com/crossforge/mason/internal/sdk"
	"github.com/crossforge/mason/internal/timer"
	"github.com/crossforge/mason/internal/toolchain"
)

// Options mirrors the CLI surface. Zero values mean "not requested".
type Options struct {
	Toolchain     string
	Config        string
	Home          string
	Output        string
	ToolchainRoot string

	Test    bool
	TestXML string
	Timeout int

	Pack    string // cpack generator, empty = no pack stage
	Archive string

	NoBuild bool
	Open    bool

	Verbosity string

	Install bool
	Strip   bool

	IOSMultiarch bool
	IOSCombined  bool
	IOSSim       bool

	Framework       bool
	FrameworkDevice bool
	Identity        string
	Plist           string

	Clear    bool
	Reconfig bool

	Fwd    []string
	Jobs   int
	Target string

	Discard int
	Tail    int
}

// Pipeline holds the collaborators. The zero-value fields are filled with
// production implementations by New.
type Pipeline struct {
	Table    *toolchain.Table
	Platform toolchain.Platform
	SDK      buildenv.DevRootLookup
	Vendor   buildenv.VendorEnvLookup
	Stdout   io.Writer

	// Exec overrides the process runner; nil means a real run.Runner wired
	// to the session log.
	Exec run.Execer
}

// New returns a pipeline with production collaborators.
func New() *Pipeline {
	return &Pipeline{
		Table:    toolchain.Builtin,
		Platform: toolchain.Host(),
		SDK:      &sdk.DevRoots{},
		Vendor:   &sdk.VCVars{},
		Stdout:   os.Stdout,
	}
}

// tempDirName is the per-build scratch directory for orchestrator state.
const tempDirName = "_3rdParty/mason"

// Run executes the whole pipeline for one invocation.
func (p *Pipeline) Run(opts Options) error {
	if opts.Verbosity == "" {
		opts.Verbosity = logging.Normal
	}
	if !logging.ValidVerbosity(opts.Verbosity) {
		return fmt.Errorf("unknown verbosity level %q", opts.Verbosity)
	}

	d, err := p.Table.Resolve(opts.Toolchain, p.Platform)
	if err != nil {
		return err
	}

	if (opts.Framework || opts.FrameworkDevice) && p.Platform != toolchain.Darwin {
		return fmt.Errorf("%w: framework creation requires macOS", toolchain.ErrUnsupportedOnPlatform)
	}

	cmdOpts := &command.Options{
		Config:          opts.Config,
		Home:            opts.Home,
		Verbosity:       opts.Verbosity,
		Install:         opts.Install,
		Strip:           opts.Strip,
		Framework:       opts.Framework,
		FrameworkDevice: opts.FrameworkDevice,
		Archive:         opts.Archive,
		Target:          opts.Target,
		IOSMultiarch:    opts.IOSMultiarch,
		IOSCombined:     opts.IOSCombined,
		IOSSim:          opts.IOSSim,
		Jobs:            opts.Jobs,
		PackGenerator:   opts.Pack,
		Fwd:             opts.Fwd,
		TestXML:         opts.TestXML,
		Timeout:         opts.Timeout,
	}

	targets, err := command.Targets(d, cmdOpts)
	if err != nil {
		return err
	}

	paths, err := layout.Plan(opts.Output, d, opts.Config)
	if err != nil {
		return err
	}

	toolchainRoot, err := resolveToolchainRoot(opts.ToolchainRoot)
	if err != nil {
		return err
	}
	toolchainFile, err := command.ToolchainFile(toolchainRoot, d)
	if err != nil {
		return err
	}

	composer := &buildenv.Composer{SDK: p.SDK, Vendor: p.Vendor, ToolchainRoot: toolchainRoot}
	overlay, err := composer.Compose(d)
	if err != nil {
		return err
	}

	if opts.Clear {
		for _, dir := range []string{paths.BuildDir, paths.InstallDir, paths.FrameworkDir} {
			if err := os.RemoveAll(dir); err != nil {
				return fmt.Errorf("clear %s: %w", dir, err)
			}
		}
	}

	tempDir := filepath.Join(paths.BuildDir, filepath.FromSlash(tempDirName))
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return err
	}

	session, err := logging.New(paths.Root, opts.Verbosity, opts.Discard, opts.Tail)
	if err != nil {
		return err
	}
	defer session.Close()

	exec := p.Exec
	if exec == nil {
		exec = &run.Runner{Log: session}
	}

	var env []string
	if !overlay.IsZero() {
		for _, v := range overlay.Vars() {
			session.Console.Info("environment", "key", v.Key, "value", v.Value)
		}
		env = overlay.Environ(os.Environ())
	}

	tm := timer.New()

	which := "which"
	if runtime.GOOS == "windows" {
		which = "where"
	}
	if err := exec.Run("Probe", []string{which, "cmake"}, env, ""); err != nil {
		return err
	}
	if err := exec.Run("Probe", []string{"cmake", "--version"}, env, ""); err != nil {
		return err
	}

	configureArgs := command.Configure(d, paths, toolchainFile, cmdOpts)

	tm.Start("Generate")
	if err := p.configure(exec, configureArgs, paths.BuildDir, tempDir, opts.Reconfig, env); err != nil {
		return err
	}
	tm.Stop()

	if !opts.NoBuild {
		buildArgs := command.Build(d, paths, targets, cmdOpts)
		tm.Start("Build")
		if err := exec.Run("Build", buildArgs, env, ""); err != nil {
			return err
		}
		tm.Stop()

		if opts.Archive != "" {
			tm.Start("Archive creation")
			dest, err := createArchive(paths, opts.Archive, d.Name, opts.Config)
			if err != nil {
				return err
			}
			session.Console.Info("archive created", "path", dest)
			tm.Stop()
		}

		if opts.Framework || opts.FrameworkDevice {
			tm.Start("Framework creation")
			bundle, err := assembleFramework(paths, d, opts, exec)
			if err != nil {
				return err
			}
			session.Console.Info("framework created", "path", bundle)
			tm.Stop()
		}

		if opts.Test || opts.TestXML != "" {
			tm.Start("Test")
			if err := exec.Run("Test", command.Test(cmdOpts), env, paths.BuildDir); err != nil {
				return err
			}
			if opts.TestXML != "" {
				if err := exportTestXML(paths.BuildDir, opts.TestXML); err != nil {
					return err
				}
			}
			tm.Stop()
		}

		if opts.Pack != "" {
			tm.Start("Pack")
			if err := exec.Run("Pack", command.Pack(cmdOpts), env, paths.BuildDir); err != nil {
				return err
			}
			tm.Stop()
		}
	}

	if opts.Open {
		if err := ide.Open(d, paths.BuildDir, exec); err != nil {
			return err
		}
	}

	fmt.Fprintln(p.Stdout, "-")
	fmt.Fprintf(p.Stdout, "Log saved: %s\n", session.Path())
	fmt.Fprintln(p.Stdout, "-")
	fmt.Fprintln(p.Stdout, tm.Summary())
	fmt.Fprintln(p.Stdout, "-")
	fmt.Fprintln(p.Stdout, "SUCCESS")
	return nil
}

// configure runs the configure stage. The composed argv is persisted in the
// scratch dir; when it changes between runs, or --reconfig is given, the
// CMake cache is dropped so every define is re-read.
func (p *Pipeline) configure(exec run.Execer, args []string, buildDir, tempDir string, reconfig bool, env []string) error {
	argsFile := filepath.Join(tempDir, "configure-args.txt")
	current := []byte(joinLines(args))

	saved, err := os.ReadFile(argsFile)
	changed := err != nil || string(saved) != string(current)

	if reconfig || changed {
		cache := filepath.Join(buildDir, "CMakeCache.txt")
		if err := os.Remove(cache); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("drop %s: %w", cache, err)
		}
	}
	if err := exec.Run("Generate", args, env, ""); err != nil {
		return err
	}
	return os.WriteFile(argsFile, current, 0o644)
}

func joinLines(args []string) string {
	out := ""
	for _, a := range args {
		out += a + "\n"
	}
	return out
}

func createArchive(paths layout.Paths, name, toolchainName, config string) (string, error) {
	return archive.Create(paths.InstallDir, paths.ArchivesDir, name, toolchainName, config)
}

func assembleFramework(paths layout.Paths, d *toolchain.Descriptor, opts Options, exec run.Execer) (string, error) {
	return framework.Assemble(framework.Options{
		InstallDir:   paths.InstallDir,
		FrameworkDir: paths.FrameworkDir,
		IOSVersion:   d.IOSVersion,
		DeviceOnly:   opts.FrameworkDevice,
		Plist:        opts.Plist,
		Identity:     opts.Identity,
	}, exec)
}

// exportTestXML copies the CTest XML report to the user-requested path.
func exportTestXML(buildDir, dest string) error {
	matches, err := filepath.Glob(filepath.Join(buildDir, "Testing", "*", "Test.xml"))
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("no Test.xml produced under %s", buildDir)
	}
	data, err := os.ReadFile(matches[len(matches)-1])
	if err != nil {
		return err
	}
	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(dest, data, 0o644)
}

// resolveToolchainRoot finds the directory holding the *.cmake toolchain
// files: the explicit flag, then MASON_ROOT, then the parent of the directory
// holding the running executable.
func resolveToolchainRoot(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if env := os.Getenv("MASON_ROOT"); env != "" {
		return env, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate toolchain root: %w", err)
	}
	return filepath.Dir(filepath.Dir(exe)), nil
}
