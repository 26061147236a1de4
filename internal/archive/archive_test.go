package archive

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/ulikunitz/xz"
)

func TestName(t *testing.T) {
	tests := []struct {
		name, toolchain, config, want string
	}{
		{"mylib", "ninja", "Release", "mylib-ninja-Release.tar.xz"},
		{"mylib", "xcode", "", "mylib-xcode.tar.xz"},
	}
	for _, tt := range tests {
		if got := Name(tt.name, tt.toolchain, tt.config); got != tt.want {
			t.Errorf("Name(%q, %q, %q) = %q, want %q", tt.name, tt.toolchain, tt.config, got, tt.want)
		}
	}
}

func TestCreateRoundTrip(t *testing.T) {
	install := t.TempDir()
	if err := os.MkdirAll(filepath.Join(install, "include"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(install, "include", "mylib.h"), []byte("#pragma once\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(install, "LICENSE"), []byte("MIT\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	archives := filepath.Join(t.TempDir(), "_archives")
	dest, err := Create(install, archives, "mylib", "ninja", "Release")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(dest) != "mylib-ninja-Release.tar.xz" {
		t.Errorf("archive name = %q", filepath.Base(dest))
	}

	f, err := os.Open(dest)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	xzr, err := xz.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	tr := tar.NewReader(xzr)

	entries := map[string]string{}
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		if hdr.Typeflag == tar.TypeDir {
			entries[hdr.Name] = ""
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			t.Fatal(err)
		}
		entries[hdr.Name] = string(data)
	}

	if entries["include/mylib.h"] != "#pragma once\n" {
		t.Errorf("include/mylib.h = %q", entries["include/mylib.h"])
	}
	if entries["LICENSE"] != "MIT\n" {
		t.Errorf("LICENSE = %q", entries["LICENSE"])
	}
}

func TestCreateKeepsSymlinkTarget(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation needs privileges on windows")
	}
	install := t.TempDir()
	lib := filepath.Join(install, "lib")
	if err := os.MkdirAll(lib, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(lib, "libmylib.so.1"), []byte("elf\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink("libmylib.so.1", filepath.Join(lib, "libmylib.so")); err != nil {
		t.Fatal(err)
	}

	dest, err := Create(install, t.TempDir(), "mylib", "gcc", "")
	if err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(dest)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	xzr, err := xz.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	tr := tar.NewReader(xzr)

	found := false
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		if hdr.Name != "lib/libmylib.so" {
			continue
		}
		found = true
		if hdr.Typeflag != tar.TypeSymlink {
			t.Errorf("lib/libmylib.so typeflag = %v, want symlink", hdr.Typeflag)
		}
		if hdr.Linkname != "libmylib.so.1" {
			t.Errorf("Linkname = %q, want libmylib.so.1", hdr.Linkname)
		}
	}
	if !found {
		t.Error("symlink entry missing from archive")
	}
}

func TestCreateMissingInstallDir(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "nope"), t.TempDir(), "x", "gcc", "")
	if err == nil {
		t.Fatal("Create() accepted a missing install directory")
	}
}

func TestCreateEmptyInstallDir(t *testing.T) {
	_, err := Create(t.TempDir(), t.TempDir(), "x", "gcc", "")
	if err == nil {
		t.Fatal("Create() accepted an empty install directory")
	}
}
