// Package fileutil contains filesystem helpers for transient download artifacts.
package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// RemoveFileAndDir deletes path and then its parent directory tree. Missing
// targets are not errors, so calling it twice is safe.
func RemoveFileAndDir(path string) error {
	var errs []error
	if strings.TrimSpace(path) != "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
		}
	}
	return errors.Join(append(errs, RemoveDir(filepath.Dir(path)))...)
}

// RemoveDir deletes dir and everything under it. A missing dir is not an error.
func RemoveDir(dir string) error {
	dir = strings.TrimSpace(dir)
	if dir == "" || dir == "." || dir == string(filepath.Separator) {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove dir %s: %w", dir, err)
	}
	return nil
}

// FindByExtension returns the lexically first regular file in dir whose
// extension matches ext (with or without the leading dot, case-insensitive).
// It returns fs.ErrNotExist when nothing matches.
func FindByExtension(dir, ext string) (string, error) {
	ext = "." + strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if strings.ToLower(filepath.Ext(entry.Name())) == ext {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no %s file in %s: %w", ext, dir, fs.ErrNotExist)
	}
	sort.Strings(names)
	return filepath.Join(dir, names[0]), nil
}
