package command

import "runtime"

// PackGenerators lists the CPack generators offered for --pack on this host.
func PackGenerators() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{"ZIP", "NSIS"}
	case "darwin":
		return []string{"TGZ", "ZIP", "DragNDrop", "productbuild"}
	default:
		return []string{"TGZ", "ZIP", "DEB", "RPM"}
	}
}

// DefaultPackGenerator is used when --pack is given without a value.
func DefaultPackGenerator() string {
	switch runtime.GOOS {
	case "windows":
		return "ZIP"
	case "darwin":
		return "DragNDrop"
	default:
		return "TGZ"
	}
}
