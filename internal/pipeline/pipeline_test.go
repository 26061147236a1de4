package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crossforge/mason/internal/command"
	"github.com/crossforge/mason/internal/layout"
	"github.com/crossforge/mason/internal/run"
	"github.com/crossforge/mason/internal/toolchain"
)

type execCall struct {
	stage string
	argv  []string
	dir   string
}

// recorder is an Execer that records calls instead of spawning processes.
type recorder struct {
	calls     []execCall
	failStage string
	failCode  int
}

func (r *recorder) Run(stage string, argv []string, env []string, dir string) error {
	r.calls = append(r.calls, execCall{stage: stage, argv: argv, dir: dir})
	if r.failStage != "" && stage == r.failStage {
		return &run.ExitError{Stage: stage, Code: r.failCode}
	}
	return nil
}

func (r *recorder) stages() []string {
	var out []string
	for _, c := range r.calls {
		out = append(out, c.stage)
	}
	return out
}

type fakeLookups struct{}

func (fakeLookups) IOSDevRoot(string) (string, error) { return "", nil }
func (fakeLookups) OSXDevRoot(string) (string, error) { return "", nil }

func (fakeLookups) Snapshot(string, int) (map[string]string, error) { return nil, nil }

func newPipeline(t *testing.T, rec *recorder) (*Pipeline, *bytes.Buffer, Options) {
	t.Helper()
	root := t.TempDir()
	tcRoot := t.TempDir()
	for _, name := range []string{"ninja", "gcc", "xcode"} {
		if err := os.WriteFile(filepath.Join(tcRoot, name+".cmake"), []byte("# toolchain\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	var out bytes.Buffer
	p := &Pipeline{
		Table:    toolchain.Builtin,
		Platform: toolchain.Linux,
		SDK:      fakeLookups{},
		Vendor:   fakeLookups{},
		Stdout:   &out,
		Exec:     rec,
	}
	opts := Options{
		Toolchain:     "ninja",
		Config:        "Release",
		Output:        root,
		ToolchainRoot: tcRoot,
		Verbosity:     "silent",
	}
	return p, &out, opts
}

func argvOf(t *testing.T, rec *recorder, stage string) []string {
	t.Helper()
	for _, c := range rec.calls {
		if c.stage == stage {
			return c.argv
		}
	}
	t.Fatalf("stage %s never ran; stages = %v", stage, rec.stages())
	return nil
}

func TestRunHappyPath(t *testing.T) {
	rec := &recorder{}
	p, out, opts := newPipeline(t, rec)

	if err := p.Run(opts); err != nil {
		t.Fatal(err)
	}

	want := []string{"Probe", "Probe", "Generate", "Build"}
	if got := rec.stages(); !strings.HasPrefix(strings.Join(got, ","), strings.Join(want, ",")) {
		t.Errorf("stages = %v, want prefix %v", got, want)
	}

	gen := argvOf(t, rec, "Generate")
	joined := strings.Join(gen, " ")
	buildDir := filepath.Join(opts.Output, "_builds", "ninja-Release")
	for _, frag := range []string{"-GNinja", "-B" + buildDir, "-DCMAKE_BUILD_TYPE=Release", "-DCMAKE_TOOLCHAIN_FILE="} {
		if !strings.Contains(joined, frag) {
			t.Errorf("Generate argv = %v, missing %q", gen, frag)
		}
	}

	if !strings.Contains(out.String(), "SUCCESS") {
		t.Errorf("report = %q, missing SUCCESS", out.String())
	}
	if !strings.Contains(out.String(), "Log saved:") {
		t.Errorf("report = %q, missing log location", out.String())
	}
}

func TestRunValidationFailsBeforeAnyProcess(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Pipeline, *Options)
		wantErr error
	}{
		{
			name:    "unknown toolchain",
			mutate:  func(p *Pipeline, o *Options) { o.Toolchain = "borland" },
			wantErr: toolchain.ErrUnknownToolchain,
		},
		{
			name:    "install and strip",
			mutate:  func(p *Pipeline, o *Options) { o.Install, o.Strip = true, true },
			wantErr: command.ErrConflictingInstallMode,
		},
		{
			name:    "strip on ninja",
			mutate:  func(p *Pipeline, o *Options) { o.Strip = true },
			wantErr: command.ErrUnsupportedStripTarget,
		},
		{
			name:    "framework off darwin",
			mutate:  func(p *Pipeline, o *Options) { o.Framework = true },
			wantErr: toolchain.ErrUnsupportedOnPlatform,
		},
		{
			name: "missing toolchain file",
			// the output root exists but holds no *.cmake files
			mutate:  func(p *Pipeline, o *Options) { o.ToolchainRoot = o.Output },
			wantErr: command.ErrToolchainFileNotFound,
		},
		{
			name:    "bad output dir",
			mutate:  func(p *Pipeline, o *Options) { o.Output = filepath.Join(o.Output, "nope") },
			wantErr: layout.ErrInvalidRoot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			p, _, opts := newPipeline(t, rec)
			tt.mutate(p, &opts)

			err := p.Run(opts)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Run() error = %v, want %v", err, tt.wantErr)
			}
			if len(rec.calls) != 0 {
				t.Errorf("external processes ran before validation failure: %v", rec.stages())
			}
		})
	}
}

func TestRunNoBuildSkipsLaterStages(t *testing.T) {
	rec := &recorder{}
	p, _, opts := newPipeline(t, rec)
	opts.NoBuild = true
	opts.Test = true
	opts.Pack = "TGZ"

	if err := p.Run(opts); err != nil {
		t.Fatal(err)
	}
	for _, c := range rec.calls {
		if c.stage == "Build" || c.stage == "Test" || c.stage == "Pack" {
			t.Errorf("stage %s ran despite --nobuild", c.stage)
		}
	}
}

func TestRunBuildFailureHaltsPipeline(t *testing.T) {
	rec := &recorder{failStage: "Build", failCode: 2}
	p, out, opts := newPipeline(t, rec)
	opts.Test = true

	err := p.Run(opts)
	var exitErr *run.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Run() error = %v, want *ExitError", err)
	}
	if exitErr.Stage != "Build" || exitErr.Code != 2 {
		t.Errorf("ExitError = %+v", exitErr)
	}
	for _, c := range rec.calls {
		if c.stage == "Test" {
			t.Error("Test ran after a failed Build")
		}
	}
	if strings.Contains(out.String(), "SUCCESS") {
		t.Error("SUCCESS reported after a failure")
	}
}

func TestRunTestAndPackRunInBuildDir(t *testing.T) {
	rec := &recorder{}
	p, _, opts := newPipeline(t, rec)
	opts.Test = true
	opts.Pack = "TGZ"
	opts.Timeout = 30

	if err := p.Run(opts); err != nil {
		t.Fatal(err)
	}

	buildDir := filepath.Join(opts.Output, "_builds", "ninja-Release")
	testArgv := argvOf(t, rec, "Test")
	if testArgv[0] != "ctest" {
		t.Errorf("Test argv = %v", testArgv)
	}
	joined := strings.Join(testArgv, " ")
	if !strings.Contains(joined, "--timeout 30") {
		t.Errorf("Test argv = %v, missing timeout", testArgv)
	}
	packArgv := argvOf(t, rec, "Pack")
	if packArgv[0] != "cpack" || !strings.Contains(strings.Join(packArgv, " "), "-G TGZ") {
		t.Errorf("Pack argv = %v", packArgv)
	}
	for _, c := range rec.calls {
		if (c.stage == "Test" || c.stage == "Pack") && c.dir != buildDir {
			t.Errorf("%s ran in %q, want %q", c.stage, c.dir, buildDir)
		}
	}
}

func TestRunTestXMLExportsReport(t *testing.T) {
	rec := &recorder{}
	p, _, opts := newPipeline(t, rec)

	buildDir := filepath.Join(opts.Output, "_builds", "ninja-Release")
	report := filepath.Join(buildDir, "Testing", "20260829-0001", "Test.xml")
	if err := os.MkdirAll(filepath.Dir(report), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(report, []byte("<Site/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(opts.Output, "reports", "ctest.xml")
	opts.TestXML = dest
	if err := p.Run(opts); err != nil {
		t.Fatal(err)
	}

	testArgv := argvOf(t, rec, "Test")
	if joined := strings.Join(testArgv, " "); !strings.Contains(joined, "-T Test --no-compress-output") {
		t.Errorf("Test argv = %v, missing xml reporting mode", testArgv)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("exported report not readable: %v", err)
	}
	if string(data) != "<Site/>" {
		t.Errorf("exported report = %q, want the Test.xml contents", data)
	}
}

func TestRunTestXMLMissingReport(t *testing.T) {
	rec := &recorder{}
	p, _, opts := newPipeline(t, rec)
	opts.TestXML = filepath.Join(opts.Output, "ctest.xml")

	err := p.Run(opts)
	if err == nil || !strings.Contains(err.Error(), "Test.xml") {
		t.Fatalf("Run() error = %v, want missing Test.xml report", err)
	}
}

func TestRunClearRemovesToolchainDirs(t *testing.T) {
	rec := &recorder{}
	p, _, opts := newPipeline(t, rec)
	opts.Clear = true

	installDir := filepath.Join(opts.Output, "_install", "ninja")
	if err := os.MkdirAll(installDir, 0o755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(installDir, "stale.txt")
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := p.Run(opts); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("clear left stale install files behind")
	}
}

func TestConfigureArgChangeDropsCache(t *testing.T) {
	rec := &recorder{}
	p, _, opts := newPipeline(t, rec)

	buildDir := filepath.Join(opts.Output, "_builds", "ninja-Release")
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		t.Fatal(err)
	}
	cache := filepath.Join(buildDir, "CMakeCache.txt")
	if err := os.WriteFile(cache, []byte("old cache"), 0o644); err != nil {
		t.Fatal(err)
	}

	// First run: no saved args, cache dropped and args recorded.
	if err := p.Run(opts); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(cache); !os.IsNotExist(err) {
		t.Fatal("changed configure args did not drop CMakeCache.txt")
	}

	// Second run with identical args: cache survives.
	if err := os.WriteFile(cache, []byte("fresh cache"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := p.Run(opts); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(cache); err != nil {
		t.Error("unchanged configure args dropped CMakeCache.txt")
	}

	// Reconfig forces the drop even with identical args.
	opts.Reconfig = true
	if err := p.Run(opts); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(cache); !os.IsNotExist(err) {
		t.Error("--reconfig did not drop CMakeCache.txt")
	}
}

func TestRunDefaultToolchainPerPlatform(t *testing.T) {
	rec := &recorder{}
	p, _, opts := newPipeline(t, rec)
	opts.Toolchain = ""
	opts.Config = ""

	if err := p.Run(opts); err != nil {
		t.Fatal(err)
	}
	gen := argvOf(t, rec, "Generate")
	if !strings.Contains(strings.Join(gen, " "), fmt.Sprintf("-B%s", filepath.Join(opts.Output, "_builds", "gcc"))) {
		t.Errorf("Generate argv = %v, want gcc build dir", gen)
	}
}
