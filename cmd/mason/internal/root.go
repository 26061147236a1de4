package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/crossforge/mason/internal/command"
	"github.com/crossforge/mason/internal/pipeline"
	"github.com/crossforge/mason/internal/toolchain"
)

var opts pipeline.Options

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:           "mason",
	Short:         "mason orchestrates CMake builds across toolchains",
	Long:          longHelp(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PreRunE:       validateFlags,
	RunE:          runRoot,
}

func longHelp() string {
	var b strings.Builder
	b.WriteString("mason configures, builds, tests and packages a CMake project\n")
	b.WriteString("with a named toolchain. Available toolchains:\n\n")
	for _, name := range toolchain.Builtin.Names() {
		fmt.Fprintf(&b, "  %s\n", name)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "mason:", err)
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.Flags()

	f.StringVar(&cfgFile, "config-file", "", "Config file (default: ./mason.yaml, then the user config dir)")

	f.StringVar(&opts.Toolchain, "toolchain", "", "Toolchain to use (see the list above; default: platform default)")
	f.StringVar(&opts.Config, "config", "", "CMake build type (Release, Debug, ...)")
	f.StringVar(&opts.Home, "home", "", "Project home directory (directory with CMakeLists.txt)")
	f.StringVar(&opts.Output, "output", "", "Root directory for _builds/_install/_framework trees")
	f.StringVar(&opts.ToolchainRoot, "toolchain-root", "", "Directory with <toolchain>.cmake files (default: $MASON_ROOT)")

	f.BoolVar(&opts.Test, "test", false, "Run ctest after build")
	f.StringVar(&opts.TestXML, "test-xml", "", "Save ctest output as XML at the given path")
	f.IntVar(&opts.Timeout, "timeout", 0, "Timeout in seconds for ctest")

	f.StringVar(&opts.Pack, "pack", "", "Run cpack after build (--pack=GENERATOR, default "+command.DefaultPackGenerator()+")")
	f.Lookup("pack").NoOptDefVal = command.DefaultPackGenerator()
	f.StringVar(&opts.Archive, "archive", "", "Create an archive of locally installed files under the given name")

	f.BoolVar(&opts.NoBuild, "nobuild", false, "Do not build (only generate)")
	f.BoolVar(&opts.Open, "open", false, "Open generated project (for IDE)")

	f.StringVar(&opts.Verbosity, "verbosity-level", "normal", "Verbosity level: silent, normal or full")
	f.BoolVar(&verbose, "verbose", false, "Full verbose output")
	rootCmd.MarkFlagsMutuallyExclusive("verbosity-level", "verbose")

	f.BoolVar(&opts.Install, "install", false, "Run the install target (local directory)")
	f.BoolVar(&opts.Strip, "strip", false, "Run the install/strip target")

	f.BoolVar(&opts.IOSMultiarch, "ios-multiarch", false, "Build a multi-architecture binary")
	f.BoolVar(&opts.IOSCombined, "ios-combined", false, "Combine iOS simulator and device libraries on install")
	f.BoolVar(&opts.IOSSim, "iossim", false, "Build for the iOS i386 simulator")

	f.BoolVar(&opts.Framework, "framework", false, "Create a framework bundle")
	f.BoolVar(&opts.FrameworkDevice, "framework-device", false, "Create a framework for device only (no simulator slices)")
	f.StringVar(&opts.Identity, "identity", "", "Code signing identity for --framework")
	f.StringVar(&opts.Plist, "plist", "", "User-specified Info.plist for --framework")

	f.BoolVar(&opts.Clear, "clear", false, "Remove build, install and framework dirs before building")
	f.BoolVar(&opts.Reconfig, "reconfig", false, "Run configure even if CMakeCache.txt exists")

	f.StringArrayVar(&opts.Fwd, "fwd", nil, "Raw KEY=VALUE definitions forwarded to cmake as -DKEY=VALUE")
	f.IntVar(&opts.Jobs, "jobs", 0, "Number of concurrent build operations")
	f.StringVar(&opts.Target, "target", "", "Target for the 'cmake --build' command")

	f.IntVar(&opts.Discard, "discard", 0, "Echo only every Nth line of execution output (full log still on disk)")
	f.IntVar(&opts.Tail, "tail", 0, "Print the last N output lines when a stage fails")

	for key, flag := range map[string]string{
		"toolchain": "toolchain",
		"jobs":      "jobs",
		"verbosity": "verbosity-level",
		"home":      "home",
		"output":    "output",
		"root":      "toolchain-root",
	} {
		_ = viper.BindPFlag(key, f.Lookup(flag))
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(toolchainsCmd)
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if err := initConfig(); err != nil {
		return err
	}

	// Config-file values apply only where the flag was not given.
	fl := cmd.Flags()
	if !fl.Changed("toolchain") {
		opts.Toolchain = viper.GetString("toolchain")
	}
	if !fl.Changed("jobs") {
		opts.Jobs = viper.GetInt("jobs")
	}
	if !fl.Changed("verbosity-level") {
		opts.Verbosity = viper.GetString("verbosity")
	}
	if !fl.Changed("home") {
		opts.Home = viper.GetString("home")
	}
	if !fl.Changed("output") {
		opts.Output = viper.GetString("output")
	}
	if !fl.Changed("toolchain-root") {
		opts.ToolchainRoot = viper.GetString("root")
	}

	if verbose {
		opts.Verbosity = "full"
	}

	for name, value := range map[string]int{
		"jobs":    opts.Jobs,
		"discard": opts.Discard,
		"tail":    opts.Tail,
		"timeout": opts.Timeout,
	} {
		if err := positiveIntError(name, value, fl.Changed(name)); err != nil {
			return err
		}
	}

	if opts.Pack != "" && !packGeneratorAvailable(opts.Pack) {
		return fmt.Errorf("unknown cpack generator %q, available: %s",
			opts.Pack, strings.Join(command.PackGenerators(), ", "))
	}
	return nil
}

// positiveIntError validates a count-style option after flag and config-file
// values were merged. Zero only means "unset" when the flag was not given;
// negative values are rejected wherever they came from.
func positiveIntError(name string, value int, changed bool) error {
	if value == 0 && !changed {
		return nil
	}
	if value <= 0 {
		return fmt.Errorf("--%s must be greater than zero, got %d", name, value)
	}
	return nil
}

func packGeneratorAvailable(gen string) bool {
	for _, g := range command.PackGenerators() {
		if g == gen {
			return true
		}
	}
	return false
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("mason")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath(filepath.Join(xdg.ConfigHome, "mason"))
	}
	viper.SetEnvPrefix("MASON")
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) && cfgFile == "" {
		return nil
	}
	return fmt.Errorf("read config: %w", err)
}

func runRoot(cmd *cobra.Command, args []string) error {
	return pipeline.New().Run(opts)
}
