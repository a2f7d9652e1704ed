package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

var validName = regexp.MustCompile(`^[a-zA-Z0-9\-_]+$`)

// EnsureAbsolute ensure that the given path is either absolute or
// if relative is converted to absolute based on the path of the config
func EnsureAbsolute(path, file string) string {
	// if the file starts with a / and we are on windows
	// we should treat this as absolute
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") {
		return filepath.Clean(path)
	}

	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}

	// path is relative so make absolute using the current file path as base
	file, _ = filepath.Abs(file)

	baseDir := file
	// check if the basepath is a file return its directory
	s, err := os.Stat(file)
	if err != nil || !s.IsDir() {
		baseDir = filepath.Dir(file)
	}

	fp := filepath.Join(baseDir, path)

	return filepath.Clean(fp)
}

// ValidateName ensures that the name for a stack is within certain boundaries
// Valid characters: [a-z] [A-Z] _ - [0-9]
// Max length: 128
func ValidateName(name string) (bool, error) {
	// check the length
	if len(name) > 128 {
		return false, ErrNameExceedsMaxLength
	}

	if !validName.MatchString(name) {
		return false, ErrNameContainsInvalidCharacters
	}

	return true, nil
}

// IsHCLFile tests if the given path resolves to a HCL config file
func IsHCLFile(path string) bool {
	s, err := os.Stat(path)
	if err != nil {
		return false
	}

	if s.IsDir() {
		return false
	}

	if filepath.Ext(s.Name()) != ".hcl" {
		return false
	}

	return true
}
