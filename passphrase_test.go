package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassphrase(t *testing.T) {
	hash, err := hashPassphrase("open sesame")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2"), "bcrypt hash expected, got %q", hash)

	assert.NoError(t, checkPassphrase(hash, "open sesame"))
	assert.ErrorIs(t, checkPassphrase(hash, "open barley"), errWrongPassphrase)

	_, err = hashPassphrase("   ")
	assert.ErrorIs(t, err, errEmptyPassphrase)
}

func TestCheckPassphraseBadHash(t *testing.T) {
	err := checkPassphrase("not-a-hash", "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errWrongPassphrase)
}

func TestUnlockShellWithoutTerminal(t *testing.T) {
	hash, err := hashPassphrase("open sesame")
	require.NoError(t, err)

	var out strings.Builder
	in := strings.NewReader("")

	assert.ErrorIs(t, unlockShell(hash, "", in, &out), errPassphraseRequired)
	assert.ErrorIs(t, unlockShell(hash, "wrong", in, &out), errWrongPassphrase)
	assert.NoError(t, unlockShell(hash, "open sesame", in, &out))
}

func TestHashPassphraseCommand(t *testing.T) {
	out, _, err := runLibrarian(t, "open sesame\n", "hash-passphrase")
	require.NoError(t, err)

	hash := strings.TrimSpace(out)
	assert.NoError(t, checkPassphrase(hash, "open sesame"))

	_, _, err = runLibrarian(t, "\n", "hash-passphrase")
	assert.ErrorIs(t, err, errEmptyPassphrase)
}

func TestLockedShell(t *testing.T) {
	hash, err := hashPassphrase("open sesame")
	require.NoError(t, err)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "librarian.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("passphrase_hash: '"+hash+"'\n"), 0o644))

	_, _, err = runLibrarian(t, "list books\n", "--config", cfgPath)
	assert.ErrorIs(t, err, errPassphraseRequired)

	t.Setenv("LIBRARIAN_PASSPHRASE", "open sesame")
	out, _, err := runLibrarian(t, "list books\n", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No books in library.")
}
