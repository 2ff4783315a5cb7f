package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagePIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golf.pid")

	cleanup, err := managePIDFile(path, true)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), strings.TrimSpace(string(data)))

	// Same live pid, lock requested: refused
	_, err = managePIDFile(path, true)
	assert.Error(t, err)

	cleanup()
	assert.NoFileExists(t, path)
}

func TestCheckStalePID(t *testing.T) {
	dir := t.TempDir()

	corrupt := filepath.Join(dir, "corrupt.pid")
	require.NoError(t, os.WriteFile(corrupt, []byte("not-a-pid\n"), 0644))
	assert.ErrorContains(t, checkStalePID(corrupt), "corrupted")

	live := filepath.Join(dir, "live.pid")
	require.NoError(t, os.WriteFile(live, []byte(strconv.Itoa(os.Getpid())), 0644))
	assert.ErrorContains(t, checkStalePID(live), "running process")
}

func TestManagePIDFileWithoutLockOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golf.pid")
	require.NoError(t, os.WriteFile(path, []byte("1\n"), 0644))

	cleanup, err := managePIDFile(path, false)
	require.NoError(t, err)
	defer cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), strings.TrimSpace(string(data)))
}
