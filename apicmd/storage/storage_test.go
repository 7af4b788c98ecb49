package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storageImpls returns both implementations for contract tests.
func storageImpls(t *testing.T) map[string]Storage {
	t.Helper()

	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = fs.Close() })

	return map[string]Storage{
		"memory": NewMemStorage(),
		"file":   fs,
	}
}

func TestStorageContract(t *testing.T) {
	t.Parallel()

	for name, s := range storageImpls(t) {
		t.Run(name, func(t *testing.T) {
			// Absent key
			_, ok, err := s.Get("missing")
			require.NoError(t, err)
			assert.False(t, ok)

			// Set then get
			require.NoError(t, s.Set("a", []byte("one")))
			data, ok, err := s.Get("a")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, []byte("one"), data)

			// Overwrite
			require.NoError(t, s.Set("a", []byte("two")))
			data, _, err = s.Get("a")
			require.NoError(t, err)
			assert.Equal(t, []byte("two"), data)

			// ListKeys
			require.NoError(t, s.Set("b", []byte("three")))
			keys, err := s.ListKeys()
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"a", "b"}, keys)

			// Remove, including an absent key
			require.NoError(t, s.Remove("a"))
			require.NoError(t, s.Remove("a"))
			_, ok, err = s.Get("a")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestValidateKey(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"session_123", "_index", "a.b-c"} {
		assert.NoError(t, ValidateKey(valid), valid)
	}
	for _, invalid := range []string{"", ".", "..", "a/b", "a\\b", "a\x00b"} {
		assert.ErrorIs(t, ValidateKey(invalid), ErrInvalidKey, invalid)
	}
}

func TestFileStorageAtomicWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fs, err := NewFileStorage(dir)
	require.NoError(t, err)
	defer func() { _ = fs.Close() }()

	require.NoError(t, fs.Set("key", []byte("value")))

	// No temp file left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}

func TestFileStorageRefusesSymlink(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fs, err := NewFileStorage(dir)
	require.NoError(t, err)
	defer func() { _ = fs.Close() }()

	outside := filepath.Join(t.TempDir(), "target")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0600))
	require.NoError(t, os.Symlink(outside, filepath.Join(dir, "evil"+recordExt)))

	_, _, err = fs.Get("evil")
	assert.Error(t, err)
	assert.Error(t, fs.Set("evil", []byte("x")))
}

func TestFileStorageIgnoresForeignFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fs, err := NewFileStorage(dir)
	require.NoError(t, err)
	defer func() { _ = fs.Close() }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0600))
	require.NoError(t, fs.Set("real", []byte("y")))

	keys, err := fs.ListKeys()
	require.NoError(t, err)
	assert.Equal(t, []string{"real"}, keys)
}

func TestSerializeRoundTrip(t *testing.T) {
	t.Parallel()

	type record struct {
		Name  string `msgpack:"n"`
		Count int    `msgpack:"c"`
	}

	data, err := Serialize(&record{Name: "x", Count: 3})
	require.NoError(t, err)

	var got record
	require.NoError(t, Deserialize(data, &got))
	assert.Equal(t, record{Name: "x", Count: 3}, got)
}
