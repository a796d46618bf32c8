package trust

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRoleFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadRoleFileUpdate(t *testing.T) {
	content := `{"signed":{},"signatures":[]}`

	// expected successor version in the file name
	path := writeRoleFile(t, "2.sv1.root.json", content)
	data, err := LoadRoleFile(path, ROOT, "json", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))

	// version in the file name is not the expected N+1
	path = writeRoleFile(t, "3.sv1.root.json", content)
	_, err = LoadRoleFile(path, ROOT, "json", 2, 0)
	assert.ErrorIs(t, err, ErrRoleFile{})

	for _, name := range []string{
		"02.sv1.root.json", // leading zero
		"0.sv1.root.json",  // not positive
		"2.sv1.root",       // missing extension
		"2.root.json",      // missing spec tag
		"root.json",        // no version
		"2.sv1.root.yaml",  // wrong extension
		"2.sv1.targets.json",
	} {
		t.Run(name, func(t *testing.T) {
			path := writeRoleFile(t, name, content)
			_, err := LoadRoleFile(path, ROOT, "json", 2, 0)
			assert.ErrorIs(t, err, ErrRoleFile{})
		})
	}
}

func TestLoadRoleFileInitial(t *testing.T) {
	content := `{"signed":{},"signatures":[]}`

	// no version equality check for initial loads, leading zeros allowed
	for _, name := range []string{"1.sv1.root.json", "7.whatever.root.json", "0.sv1.root.json"} {
		path := writeRoleFile(t, name, content)
		_, err := LoadRoleFile(path, ROOT, "json", -1, 0)
		assert.NoError(t, err, name)
	}

	// the grammar itself still applies
	path := writeRoleFile(t, "root.json", content)
	_, err := LoadRoleFile(path, ROOT, "json", -1, 0)
	assert.ErrorIs(t, err, ErrRoleFile{})
}

func TestLoadRoleFileMissing(t *testing.T) {
	_, err := LoadRoleFile(filepath.Join(t.TempDir(), "2.sv1.root.json"), ROOT, "json", 2, 0)
	assert.ErrorIs(t, err, ErrRoleFile{})
}

func TestLoadRoleFileMaxLength(t *testing.T) {
	content := `{"signed":{},"signatures":[]}`
	path := writeRoleFile(t, "2.sv1.root.json", content)

	_, err := LoadRoleFile(path, ROOT, "json", 2, int64(len(content)))
	assert.NoError(t, err)

	_, err = LoadRoleFile(path, ROOT, "json", 2, int64(len(content))-1)
	assert.ErrorIs(t, err, ErrRoleFile{})
}
