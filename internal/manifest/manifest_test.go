package manifest

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const sample = `{"name":"@scope/my-lib","version":"1.2.0","module":"src/index.js","main":"dist/index.cjs","scripts":{"build":"rollup -c"},"keywords":["a","b"]}`

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLocate_NotFound(t *testing.T) {
	dir := t.TempDir()

	_, err := Locate(dir, FileName)
	require.Error(t, err)

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, filepath.Join(dir, FileName), nf.Path)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Contains(t, err.Error(), "cannot find file")
}

func TestRead(t *testing.T) {
	path := writeManifest(t, t.TempDir(), sample)

	f, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, "@scope/my-lib", f.Name)
	assert.Equal(t, "src/index.js", f.Module)
	assert.Equal(t, "dist/index.cjs", f.Main)
	assert.Empty(t, f.Browser)
	assert.Equal(t, map[string]string{"build": "rollup -c"}, f.Scripts)
	assert.Nil(t, f.DevDependencies)
}

func TestRead_InvalidJSON(t *testing.T) {
	path := writeManifest(t, t.TempDir(), `{"name": `)
	_, err := Read(path)
	assert.ErrorContains(t, err, "invalid JSON")
}

func TestRead_Missing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), FileName))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestModulePath(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, sample)
	f, err := Read(path)
	require.NoError(t, err)

	_, err = f.ModulePath()
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "index.js"), []byte("export default 1"), 0o644))
	got, err := f.ModulePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "src", "index.js"), got)

	f.Module = ""
	_, err = f.ModulePath()
	assert.ErrorIs(t, err, ErrNoModule)
}

func TestInit_PreservesUnknownFields(t *testing.T) {
	path := writeManifest(t, t.TempDir(), sample)
	f, err := Read(path)
	require.NoError(t, err)

	require.NoError(t, f.Init())
	require.NoError(t, f.Write())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := gjson.ParseBytes(raw)

	assert.Equal(t, TestScript, doc.Get("scripts.test").String())
	assert.Equal(t, "rollup -c", doc.Get("scripts.build").String())
	assert.Equal(t, "*", doc.Get("devDependencies."+DevDependency).String())
	assert.Equal(t, "1.2.0", doc.Get("version").String())
	assert.Equal(t, 2, len(doc.Get("keywords").Array()))
	assert.Contains(t, string(raw), "\n  \"name\"", "manifest is rewritten with two-space indent")

	assert.Equal(t, TestScript, f.Scripts["test"])
	assert.Equal(t, "*", f.DevDependencies[DevDependency])
}

func TestInit_Idempotent(t *testing.T) {
	f, err := Parse("package.json", []byte(sample))
	require.NoError(t, err)

	require.NoError(t, f.Init())
	first := string(f.Bytes())
	require.NoError(t, f.Init())
	assert.Equal(t, first, string(f.Bytes()))
}

func TestEscapePath(t *testing.T) {
	assert.Equal(t, `\@scope/pkg\.js`, escapePath("@scope/pkg.js"))
	assert.Equal(t, "plain", escapePath("plain"))
}
