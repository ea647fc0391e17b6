// Package manifest reads and updates a project's package.json.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/yiyuanh/tscaffold/pkg/model"
)

const (
	// FileName is the manifest file looked up in the project directory.
	FileName = "package.json"
	// TestScript is the command --init registers as scripts.test.
	TestScript = "tscaffold"
	// DevDependency is the package --init registers in devDependencies.
	DevDependency = "tscaffold"
)

// ErrNoModule is returned when the manifest has no "module" entry point.
var ErrNoModule = errors.New(`manifest has no "module" entry`)

// NotFoundError reports a required file that does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return "cannot find file: " + e.Path
}

// Is lets errors.Is(err, fs.ErrNotExist) match.
func (e *NotFoundError) Is(target error) bool {
	return target == fs.ErrNotExist
}

// Locate joins dir and name and checks the file exists.
func Locate(dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &NotFoundError{Path: path}
		}
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	return path, nil
}

// File is a package.json on disk. The raw document is kept so fields the
// scaffold does not know about survive a rewrite.
type File struct {
	model.Manifest
	Path string
	raw  []byte
}

// Read loads and parses the manifest at path.
func Read(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return Parse(path, raw)
}

// Parse parses manifest bytes; path is only recorded.
func Parse(path string, raw []byte) (*File, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("parsing %s: invalid JSON", path)
	}
	f := &File{Path: path, raw: raw}
	f.load()
	return f, nil
}

func (f *File) load() {
	doc := gjson.ParseBytes(f.raw)
	f.Name = doc.Get("name").String()
	f.Module = doc.Get("module").String()
	f.Main = doc.Get("main").String()
	f.Browser = doc.Get("browser").String()
	f.Scripts = stringMap(doc.Get("scripts"))
	f.DevDependencies = stringMap(doc.Get("devDependencies"))
}

func stringMap(v gjson.Result) map[string]string {
	if !v.IsObject() {
		return nil
	}
	out := make(map[string]string)
	v.ForEach(func(key, value gjson.Result) bool {
		out[key.String()] = value.String()
		return true
	})
	return out
}

// ModulePath resolves the "module" entry relative to the manifest and
// checks it exists.
func (f *File) ModulePath() (string, error) {
	if f.Module == "" {
		return "", ErrNoModule
	}
	return Locate(filepath.Dir(f.Path), f.Module)
}

// Init registers the test script and the scaffold as a dev dependency.
func (f *File) Init() error {
	raw, err := sjson.SetBytes(f.raw, "scripts.test", TestScript)
	if err != nil {
		return fmt.Errorf("setting test script: %w", err)
	}
	raw, err = sjson.SetBytes(raw, "devDependencies."+escapePath(DevDependency), "*")
	if err != nil {
		return fmt.Errorf("setting dev dependency: %w", err)
	}
	f.raw = pretty.PrettyOptions(raw, &pretty.Options{Width: 80, Indent: "  "})
	f.load()
	return nil
}

// Bytes returns the current document.
func (f *File) Bytes() []byte {
	return f.raw
}

// Write saves the document back to Path.
func (f *File) Write() error {
	if err := os.WriteFile(f.Path, f.raw, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// escapePath escapes characters sjson treats as path syntax.
func escapePath(key string) string {
	var out []byte
	for i := 0; i < len(key); i++ {
		switch key[i] {
		case '.', '*', '?', '|', '#', '@', '\\', ':':
			out = append(out, '\\')
		}
		out = append(out, key[i])
	}
	return string(out)
}
