package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSandbox_WriteFileLeavesProjectUntouched(t *testing.T) {
	projectDir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(projectDir, "src"), 0o755))
	original := []byte("export const a = 1\n")
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "src", "index.js"), original, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "test.js"), []byte("old"), 0o644))

	sb, err := NewSandbox(projectDir)
	require.NoError(t, err)
	defer sb.Cleanup()

	require.NoError(t, sb.WriteFile(filepath.Join("src", "index.js"), []byte("changed")))
	require.NoError(t, sb.WriteFile("test.js", []byte("new")))

	got, err := os.ReadFile(sb.Path(filepath.Join("src", "index.js")))
	require.NoError(t, err)
	assert.Equal(t, "changed", string(got))
	got, err = os.ReadFile(sb.Path("test.js"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))

	got, err = os.ReadFile(filepath.Join(projectDir, "src", "index.js"))
	require.NoError(t, err)
	assert.Equal(t, original, got)
	got, err = os.ReadFile(filepath.Join(projectDir, "test.js"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(got))
}

func TestSandbox_WriteNewFile(t *testing.T) {
	projectDir := t.TempDir()
	sb, err := NewSandbox(projectDir)
	require.NoError(t, err)
	defer sb.Cleanup()

	require.NoError(t, sb.WriteFile(filepath.Join("test", "test.js"), []byte("T('x', [])")))
	_, err = os.Stat(filepath.Join(projectDir, "test"))
	assert.True(t, os.IsNotExist(err))
}

func TestSandbox_Cleanup(t *testing.T) {
	sb, err := NewSandbox(t.TempDir())
	require.NoError(t, err)
	require.NotEmpty(t, sb.Root)

	sb.Cleanup()
	_, err = os.Stat(sb.Root)
	assert.True(t, os.IsNotExist(err))
}

func TestSandbox_NestedWriteKeepsSiblings(t *testing.T) {
	projectDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(projectDir, "src", "util"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "src", "index.js"), []byte("index"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "src", "util", "a.js"), []byte("a"), 0o644))

	sb, err := NewSandbox(projectDir)
	require.NoError(t, err)
	defer sb.Cleanup()

	rel := filepath.Join("src", "util", "a.test.js")
	require.NoError(t, sb.WriteFile(rel, []byte("test")))

	for name, want := range map[string]string{
		filepath.Join("src", "index.js"):     "index",
		filepath.Join("src", "util", "a.js"): "a",
		rel:                                  "test",
	} {
		got, err := os.ReadFile(sb.Path(name))
		require.NoError(t, err, name)
		assert.Equal(t, want, string(got), name)
	}

	entries, err := os.ReadDir(filepath.Join(projectDir, "src", "util"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSandbox_RejectsPathsOutside(t *testing.T) {
	sb, err := NewSandbox(t.TempDir())
	require.NoError(t, err)
	defer sb.Cleanup()

	assert.Error(t, sb.WriteFile(filepath.Join("..", "escape.js"), []byte("x")))
}

func TestSandbox_FileInPlaceOfDirectory(t *testing.T) {
	projectDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "lib.js"), []byte("lib"), 0o644))

	sb, err := NewSandbox(projectDir)
	require.NoError(t, err)
	defer sb.Cleanup()

	assert.Error(t, sb.WriteFile(filepath.Join("lib.js", "x.js"), []byte("x")))
	got, err := os.ReadFile(filepath.Join(projectDir, "lib.js"))
	require.NoError(t, err)
	assert.Equal(t, "lib", string(got))
}
