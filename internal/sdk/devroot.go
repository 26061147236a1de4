// Package sdk locates vendor SDKs: Xcode developer directories for pinned
// iOS/OS X SDK versions, and Visual Studio vcvars environment snapshots.
package sdk

import (
	"os"
	"path/filepath"
	"strings"
)

// DevRoots scans installed Xcode copies for a requested SDK version. The
// zero value scans /Applications.
type DevRoots struct {
	// ApplicationsDir overrides the scan root, for tests.
	ApplicationsDir string
}

func (d *DevRoots) applications() string {
	if d.ApplicationsDir != "" {
		return d.ApplicationsDir
	}
	return "/Applications"
}

// IOSDevRoot returns the developer directory of an Xcode that ships the
// iPhoneOS SDK for version, or "" when none is installed.
func (d *DevRoots) IOSDevRoot(version string) (string, error) {
	return d.findSDK("iPhoneOS", version)
}

// OSXDevRoot returns the developer directory of an Xcode that ships the
// MacOSX SDK for version, or "" when none is installed.
func (d *DevRoots) OSXDevRoot(version string) (string, error) {
	return d.findSDK("MacOSX", version)
}

func (d *DevRoots) findSDK(platform, version string) (string, error) {
	entries, err := os.ReadDir(d.applications())
	if err != nil {
		// No /Applications means no Xcode; fall back to the system default.
		return "", nil
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "Xcode") || !strings.HasSuffix(e.Name(), ".app") {
			continue
		}
		devRoot := filepath.Join(d.applications(), e.Name(), "Contents", "Developer")
		sdkPath := filepath.Join(
			devRoot, "Platforms", platform+".platform", "Developer", "SDKs",
			platform+version+".sdk",
		)
		if info, err := os.Stat(sdkPath); err == nil && info.IsDir() {
			return devRoot, nil
		}
	}
	return "", nil
}
