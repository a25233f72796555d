// Package filex holds small filesystem helpers used by the CLI.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// MaxAttachmentSize bounds the files the CLI is willing to upload.
const MaxAttachmentSize = 64 << 20

// EnsureParentDir creates the directory that will hold path, if needed.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// ReadAttachment reads a regular file no larger than MaxAttachmentSize.
func ReadAttachment(path string) ([]byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}
	if fi.Size() > MaxAttachmentSize {
		return nil, fmt.Errorf("%s is larger than %d bytes", path, MaxAttachmentSize)
	}
	return os.ReadFile(path)
}
