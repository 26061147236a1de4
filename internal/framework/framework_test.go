package framework

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crossforge/mason/internal/logging"
	"github.com/crossforge/mason/internal/run"
)

func newRunner(t *testing.T) *run.Runner {
	t.Helper()
	s, err := logging.New(t.TempDir(), logging.Silent, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return &run.Runner{Log: s}
}

func installTree(t *testing.T) string {
	t.Helper()
	install := t.TempDir()
	if err := os.MkdirAll(filepath.Join(install, "lib"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(install, "lib", "libmylib.a"), []byte("!<arch>\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(install, "include", "mylib"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(install, "include", "mylib", "api.h"), []byte("#pragma once\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return install
}

func TestAssemble(t *testing.T) {
	install := installTree(t)
	fwDir := t.TempDir()

	bundle, err := Assemble(Options{InstallDir: install, FrameworkDir: fwDir, IOSVersion: "9.2"}, newRunner(t))
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(bundle) != "mylib.framework" {
		t.Errorf("bundle = %q, want mylib.framework", bundle)
	}

	if _, err := os.Stat(filepath.Join(bundle, "mylib")); err != nil {
		t.Error("framework binary missing")
	}
	if _, err := os.Stat(filepath.Join(bundle, "Headers", "mylib", "api.h")); err != nil {
		t.Error("headers not copied")
	}

	plist, err := os.ReadFile(filepath.Join(bundle, "Info.plist"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"CFBundleName", "mylib", "MinimumOSVersion", "9.2"} {
		if !strings.Contains(string(plist), want) {
			t.Errorf("Info.plist missing %q", want)
		}
	}
}

func TestAssembleUserPlist(t *testing.T) {
	install := installTree(t)
	userPlist := filepath.Join(t.TempDir(), "My.plist")
	if err := os.WriteFile(userPlist, []byte("<plist>custom</plist>\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	bundle, err := Assemble(Options{InstallDir: install, FrameworkDir: t.TempDir(), Plist: userPlist}, newRunner(t))
	if err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(filepath.Join(bundle, "Info.plist"))
	if !strings.Contains(string(data), "custom") {
		t.Errorf("Info.plist = %q, want user-supplied content", data)
	}
}

func TestAssembleNoLibrary(t *testing.T) {
	_, err := Assemble(Options{InstallDir: t.TempDir(), FrameworkDir: t.TempDir()}, newRunner(t))
	if err == nil {
		t.Fatal("Assemble() accepted an install tree without libraries")
	}
}
