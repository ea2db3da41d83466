// Package config carries process-wide constants and the handful of
// package-level flags the pipeline checks for test-mode normalization.
package config

// Version is the current Cobra compiler version. Set at build time
// via -ldflags "-X ...config.Version=...".
var Version = "0.1.0"

const SourceFileExt = ".cobra"

// SourceFileExtensions are all recognized module description
// extensions (loader.Load accepts any of these).
var SourceFileExtensions = []string{".cobra", ".cobra.yaml", ".cobra.yml"}

// TrimSourceExt removes any recognized source extension from a
// filename. Returns the original string if no extension matches.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt returns true if the path ends with any recognized
// source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// IsTestMode indicates if the program is running under the golden
// txtar test harness. No package in this module reads it.
var IsTestMode = false

// DefaultIntSize and DefaultFloatSize are the bit widths assigned to
// a numeric literal with no explicit suffix.
const (
	DefaultIntSize   = 64
	DefaultFloatSize = 64
)

// Built-in sequence property names resolved by Type.GetPropertyType.
const (
	LenPropertyName  = "len"
	DataPropertyName = "data"
)
