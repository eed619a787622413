package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDirs(t *testing.T) (data, outside string) {
	t.Helper()
	root := t.TempDir()
	data = filepath.Join(root, "data")
	outside = filepath.Join(root, "outside")
	require.NoError(t, os.MkdirAll(filepath.Join(data, "runs"), 0o755))
	require.NoError(t, os.MkdirAll(outside, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(data, "runs", "scan.json"), []byte("[]"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.json"), []byte("[]"), 0o644))
	require.NoError(t, os.Symlink(outside, filepath.Join(data, "link")))
	return data, outside
}

func TestCheckWithin(t *testing.T) {
	data, outside := setupDirs(t)

	tests := []struct {
		name string
		path string
		ok   bool
	}{
		{"existing file", filepath.Join(data, "runs", "scan.json"), true},
		{"not yet written", filepath.Join(data, "runs", "new.json"), true},
		{"directory itself", data, true},
		{"dot-dot escape", filepath.Join(data, "..", "outside", "secret.json"), false},
		{"absolute outside", filepath.Join(outside, "secret.json"), false},
		{"through symlink", filepath.Join(data, "link", "secret.json"), false},
		{"new file under symlink", filepath.Join(data, "link", "new.json"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckWithin(tt.path, data)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrOutsideAllowed)
			}
		})
	}
}

func TestCheckWithinMissingDir(t *testing.T) {
	err := CheckWithin("/tmp/x.json", filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrOutsideAllowed)
}

func TestCheckWithinAny(t *testing.T) {
	data, outside := setupDirs(t)
	secret := filepath.Join(outside, "secret.json")

	assert.NoError(t, CheckWithinAny(secret, nil), "no restriction configured")
	assert.ErrorIs(t, CheckWithinAny(secret, []string{data}), ErrOutsideAllowed)
	assert.NoError(t, CheckWithinAny(secret, []string{data, outside}))
}
