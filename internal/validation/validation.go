// Package validation checks command inputs before any work starts.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SupportedInputExtensions lists the file types the record reader decodes.
var SupportedInputExtensions = []string{".csv", ".json", ".txt"}

// IsValidInputFile checks that path names an existing regular file with a
// supported extension.
func IsValidInputFile(path string) error {
	if path == "" {
		return fmt.Errorf("input file is required (--input)")
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("path %s is not a regular file", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range SupportedInputExtensions {
		if ext == supported {
			return nil
		}
	}
	return fmt.Errorf("unsupported input file type %q. Supported types are %s",
		ext, strings.Join(SupportedInputExtensions, ", "))
}

// IsValidOutputFormat checks that format is one of supported.
func IsValidOutputFormat(format string, supported ...string) error {
	for _, s := range supported {
		if format == s {
			return nil
		}
	}
	quoted := make([]string, len(supported))
	for i, s := range supported {
		quoted[i] = "'" + s + "'"
	}
	return fmt.Errorf("unsupported output format: %s. Supported formats are %s", format, strings.Join(quoted, ", "))
}
