//go:build !unix

package layout

import "os"

// writable probes with a temporary file; there is no access(2) equivalent
// that respects ACLs on Windows.
func writable(dir string) bool {
	f, err := os.CreateTemp(dir, ".mason-w-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}
