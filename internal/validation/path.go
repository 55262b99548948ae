// Package validation checks user-supplied file paths before the CLI
// reads diagram text or writes rendered output.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateOutputPath checks that a render target can be written.
// Returns an error for path traversal attempts and unwritable or
// missing parent directories.
func ValidateOutputPath(outputPath string) error {
	if outputPath == "" {
		return fmt.Errorf("output path cannot be empty")
	}

	cleanPath := filepath.Clean(outputPath)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal detected in output path: %s", outputPath)
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	dir := filepath.Dir(absPath)
	dirInfo, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("output directory does not exist: %s", dir)
		}
		return fmt.Errorf("failed to access output directory: %w", err)
	}
	if !dirInfo.IsDir() {
		return fmt.Errorf("output path parent is not a directory: %s", dir)
	}

	// Writability can only be proven by writing.
	testFile := filepath.Join(dir, ".diagramsmith_write_test")
	f, err := os.OpenFile(testFile, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("output directory is not writable: %s: %w", dir, err)
	}
	f.Close()
	os.Remove(testFile)

	return nil
}

// ValidateInputPath checks that a diagram or config source exists and
// is the expected kind of filesystem entry.
func ValidateInputPath(inputPath string, mustBeDir bool) error {
	if inputPath == "" {
		return fmt.Errorf("input path cannot be empty")
	}

	cleanPath := filepath.Clean(inputPath)
	if strings.Contains(cleanPath, "..") && !filepath.IsAbs(inputPath) {
		return fmt.Errorf("potentially unsafe path detected: %s", inputPath)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("input path does not exist: %s", cleanPath)
		}
		return fmt.Errorf("failed to access input path: %w", err)
	}

	if mustBeDir && !info.IsDir() {
		return fmt.Errorf("input path must be a directory: %s", cleanPath)
	}
	if !mustBeDir && info.IsDir() {
		return fmt.Errorf("input path must be a file: %s", cleanPath)
	}

	return nil
}
