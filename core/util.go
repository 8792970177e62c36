package core

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// NewID returns a new opaque identifier of the form "<prefix>_<uuid>".
// Identifiers are never reused.
func NewID(prefix string) string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}

// Getwd tries to find the project root (the directory holding go.mod).
// go-test changes the working directory to the test package being run during tests...
// binaries deployed without sources fall back to the current working directory.
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	currDir := wd
	for {
		if _, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			return wd
		}
		currDir = newDir
	}
}
