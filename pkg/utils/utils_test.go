package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureAbsoluteKeepsAbsolutePath(t *testing.T) {
	dir := t.TempDir()

	p := EnsureAbsolute(filepath.Join(dir, "docker-collector", ".."), "/tmp/collector.hcl")

	assert.Equal(t, dir, p)
}

func TestEnsureAbsoluteResolvesAgainstFileDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "collector.hcl")
	require.NoError(t, os.WriteFile(file, []byte(""), 0644))

	p := EnsureAbsolute("../docker-collector", file)

	assert.Equal(t, filepath.Join(filepath.Dir(dir), "docker-collector"), p)
}

func TestEnsureAbsoluteResolvesAgainstDirectory(t *testing.T) {
	dir := t.TempDir()

	p := EnsureAbsolute("./docker-collector", dir)

	assert.Equal(t, filepath.Join(dir, "docker-collector"), p)
}

func TestValidateName(t *testing.T) {
	ok, err := ValidateName("dev-aca_01")

	assert.True(t, ok)
	assert.NoError(t, err)
}

func TestValidateNameInvalidCharacters(t *testing.T) {
	ok, err := ValidateName("dev.aca")

	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNameContainsInvalidCharacters)
}

func TestValidateNameTooLong(t *testing.T) {
	ok, err := ValidateName(strings.Repeat("a", 129))

	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNameExceedsMaxLength)
}

func TestIsHCLFile(t *testing.T) {
	dir := t.TempDir()
	hcl := filepath.Join(dir, "collector.hcl")
	txt := filepath.Join(dir, "collector.txt")

	require.NoError(t, os.WriteFile(hcl, []byte(""), 0644))
	require.NoError(t, os.WriteFile(txt, []byte(""), 0644))

	assert.True(t, IsHCLFile(hcl))
	assert.False(t, IsHCLFile(txt))
	assert.False(t, IsHCLFile(dir))
	assert.False(t, IsHCLFile(filepath.Join(dir, "missing.hcl")))
}
