// Package archive packs a locally installed tree into a compressed archive
// named after the toolchain and configuration that produced it.
package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

// Name derives the archive file name: <name>-<toolchain>[-<config>].tar.xz.
func Name(name, toolchainName, config string) string {
	parts := []string{name, toolchainName}
	if config != "" {
		parts = append(parts, config)
	}
	return strings.Join(parts, "-") + ".tar.xz"
}

// Create packs installDir into archivesDir and returns the archive path.
// The install tree must exist; an empty tree is an error since it means the
// install target produced nothing.
func Create(installDir, archivesDir, name, toolchainName, config string) (string, error) {
	info, err := os.Stat(installDir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("nothing to archive: install directory %s missing", installDir)
	}
	if err := os.MkdirAll(archivesDir, 0o755); err != nil {
		return "", err
	}

	dest := filepath.Join(archivesDir, Name(name, toolchainName, config))
	if err := writeArchive(installDir, dest); err != nil {
		os.Remove(dest)
		return "", err
	}
	return dest, nil
}

func writeArchive(installDir, dest string) (err error) {
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	xzw, err := xz.NewWriter(f)
	if err != nil {
		return err
	}
	tw := tar.NewWriter(xzw)

	files := 0
	err = filepath.Walk(installDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(installDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		link := ""
		if info.Mode()&os.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return err
			}
		}
		header, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		files++
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(tw, src)
		return err
	})
	if err != nil {
		return err
	}
	if files == 0 {
		return fmt.Errorf("nothing to archive: %s is empty", installDir)
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return xzw.Close()
}
