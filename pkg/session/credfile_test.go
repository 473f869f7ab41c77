package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	creds := NewCredentialFile(path)

	// Absent file reads as empty, not as an error.
	token, err := creds.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, creds.Store("test-token-admin"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	token, err = creds.Load()
	require.NoError(t, err)
	assert.Equal(t, "test-token-admin", token)

	require.NoError(t, creds.Delete())
	token, err = creds.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	// Deleting twice is fine.
	require.NoError(t, creds.Delete())
}

func TestCredentialFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewCredentialFile(path).Load()
	assert.Error(t, err)
}
