package sdk

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// VCVars captures the environment produced by a Visual Studio vcvarsall.bat
// invocation for a given architecture. Each (arch, version) pair maps to a
// fully distinct shell environment, which is why the composer replaces the
// inherited one with the snapshot.
type VCVars struct {
	// Getenv defaults to os.Getenv; tests substitute a fixture.
	Getenv func(string) string
	// runCmd defaults to running cmd.exe; tests substitute a fixture.
	runCmd func(batch, arch string) ([]byte, error)
}

func (v *VCVars) getenv(key string) string {
	if v.Getenv != nil {
		return v.Getenv(key)
	}
	return os.Getenv(key)
}

// Snapshot runs vcvarsall.bat for the requested architecture and returns the
// resulting environment.
func (v *VCVars) Snapshot(arch string, vsVersion int) (map[string]string, error) {
	if runtime.GOOS != "windows" {
		return nil, fmt.Errorf("visual studio %d environment requires windows", vsVersion)
	}
	comntools := v.getenv(fmt.Sprintf("VS%d0COMNTOOLS", vsVersion))
	if comntools == "" {
		return nil, fmt.Errorf("VS%d0COMNTOOLS is not set; is Visual Studio %d installed?", vsVersion, vsVersion)
	}
	batch := filepath.Join(comntools, "..", "..", "VC", "vcvarsall.bat")
	if _, err := os.Stat(batch); err != nil {
		return nil, fmt.Errorf("vcvarsall.bat not found at %s", batch)
	}
	if arch == "" {
		arch = "x86"
	}

	runCmd := v.runCmd
	if runCmd == nil {
		runCmd = runVCVars
	}
	out, err := runCmd(batch, arch)
	if err != nil {
		return nil, fmt.Errorf("vcvarsall %s: %w", arch, err)
	}
	return ParseEnvDump(out), nil
}

func runVCVars(batch, arch string) ([]byte, error) {
	cmd := exec.Command("cmd.exe", "/c", "call", batch, arch, "&&", "set")
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseEnvDump parses `set` output into an environment map. Lines that do not
// look like assignments (vcvars banners) are skipped.
func ParseEnvDump(out []byte) map[string]string {
	env := make(map[string]string)
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimRight(line, "\r")
		k, v, ok := strings.Cut(line, "=")
		if !ok || k == "" || strings.ContainsAny(k, " \t") {
			continue
		}
		env[k] = v
	}
	return env
}
