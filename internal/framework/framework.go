// Package framework assembles a macOS/iOS framework bundle from an installed
// static library and its headers.
package framework

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/crossforge/mason/internal/run"
)

// Options controls bundle assembly.
type Options struct {
	InstallDir   string
	FrameworkDir string
	IOSVersion   string // recorded in Info.plist when set
	DeviceOnly   bool   // strip simulator slices with lipo
	Plist        string // user-supplied Info.plist, empty for a generated one
	Identity     string // codesign identity, empty to skip signing
}

// simulator architectures removed for device-only bundles
var simulatorArchs = []string{"i386", "x86_64"}

// Assemble builds <name>.framework under FrameworkDir from the first static
// library found in InstallDir/lib. lipo and codesign run through r.
func Assemble(opts Options, r run.Execer) (string, error) {
	lib, err := findLibrary(filepath.Join(opts.InstallDir, "lib"))
	if err != nil {
		return "", err
	}
	name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(lib), "lib"), ".a")
	bundle := filepath.Join(opts.FrameworkDir, name+".framework")

	if err := os.RemoveAll(bundle); err != nil {
		return "", err
	}
	if err := os.MkdirAll(bundle, 0o755); err != nil {
		return "", err
	}

	binary := filepath.Join(bundle, name)
	if err := copyFile(lib, binary); err != nil {
		return "", err
	}

	headers := filepath.Join(opts.InstallDir, "include")
	if info, err := os.Stat(headers); err == nil && info.IsDir() {
		if err := os.CopyFS(filepath.Join(bundle, "Headers"), os.DirFS(headers)); err != nil {
			return "", err
		}
	}

	if err := writePlist(bundle, name, opts); err != nil {
		return "", err
	}

	if opts.DeviceOnly {
		args := []string{"lipo", binary}
		for _, arch := range simulatorArchs {
			args = append(args, "-remove", arch)
		}
		args = append(args, "-output", binary)
		if err := r.Run("Framework lipo", args, nil, ""); err != nil {
			return "", err
		}
	}

	if opts.Identity != "" {
		args := []string{"codesign", "--force", "--sign", opts.Identity, bundle}
		if err := r.Run("Framework codesign", args, nil, ""); err != nil {
			return "", err
		}
	}
	return bundle, nil
}

func findLibrary(libDir string) (string, error) {
	entries, err := os.ReadDir(libDir)
	if err != nil {
		return "", fmt.Errorf("no library directory at %s; did the install step run?", libDir)
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".a") {
			return filepath.Join(libDir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("no static library found in %s", libDir)
}

func writePlist(bundle, name string, opts Options) error {
	dest := filepath.Join(bundle, "Info.plist")
	if opts.Plist != "" {
		return copyFile(opts.Plist, dest)
	}

	minVersion := ""
	if opts.IOSVersion != "" {
		minVersion = fmt.Sprintf("\t<key>MinimumOSVersion</key>\n\t<string>%s</string>\n", opts.IOSVersion)
	}
	content := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>CFBundleName</key>
	<string>%s</string>
	<key>CFBundleIdentifier</key>
	<string>com.crossforge.%s</string>
	<key>CFBundlePackageType</key>
	<string>FMWK</string>
%s</dict>
</plist>
`, name, name, minVersion)
	return os.WriteFile(dest, []byte(content), 0o644)
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
