// Package ide opens the generated project in the IDE matching the toolchain.
package ide

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/crossforge/mason/internal/run"
	"github.com/crossforge/mason/internal/toolchain"
)

// Open locates the generated project file in buildDir and opens it. Only IDE
// generators (Xcode, Visual Studio) produce openable projects.
func Open(d *toolchain.Descriptor, buildDir string, r run.Execer) error {
	var pattern string
	switch {
	case d.IsXcode:
		pattern = "*.xcodeproj"
	case d.IsMSVC:
		pattern = "*.sln"
	default:
		return fmt.Errorf("toolchain %s does not generate an IDE project", d.Name)
	}

	matches, err := filepath.Glob(filepath.Join(buildDir, pattern))
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("no %s found in %s; run configure first", pattern, buildDir)
	}
	return r.Run("Open project", openArgv(matches[0]), nil, "")
}

func openArgv(project string) []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"open", project}
	case "windows":
		return []string{"cmd", "/c", "start", "", project}
	default:
		return []string{"xdg-open", project}
	}
}
