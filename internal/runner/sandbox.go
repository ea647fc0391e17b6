package runner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Sandbox is a scratch directory whose entries link back to a project, so
// a generated test file can be placed beside the project's modules and run
// without writing into the project.
type Sandbox struct {
	Root       string
	ProjectDir string
}

// NewSandbox links every top-level entry of projectDir into a new
// temporary directory.
func NewSandbox(projectDir string) (*Sandbox, error) {
	root, err := os.MkdirTemp("", "tscaffold-*")
	if err != nil {
		return nil, fmt.Errorf("creating sandbox: %w", err)
	}
	sb := &Sandbox{Root: root, ProjectDir: projectDir}
	if err := link(projectDir, root); err != nil {
		sb.Cleanup()
		return nil, err
	}
	return sb, nil
}

// Path maps a project-relative path into the sandbox.
func (sb *Sandbox) Path(relPath string) string {
	return filepath.Join(sb.Root, relPath)
}

// WriteFile places content at relPath. Linked directories on the way are
// turned into real ones, one level at a time, so the write never reaches
// the project.
func (sb *Sandbox) WriteFile(relPath string, content []byte) error {
	rel := filepath.Clean(relPath)
	if !filepath.IsLocal(rel) {
		return fmt.Errorf("%s is outside the sandbox", relPath)
	}

	dir := sb.Root
	if parent := filepath.Dir(rel); parent != "." {
		for _, part := range strings.Split(parent, string(filepath.Separator)) {
			dir = filepath.Join(dir, part)
			if err := materialize(dir); err != nil {
				return err
			}
		}
	}

	target := filepath.Join(sb.Root, rel)
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("replacing %s: %w", rel, err)
	}
	return os.WriteFile(target, content, 0o644)
}

// Cleanup removes the sandbox.
func (sb *Sandbox) Cleanup() {
	os.RemoveAll(sb.Root)
}

// materialize makes dir a real directory. A link to a project directory is
// replaced by a directory of links to that directory's entries.
func materialize(dir string) error {
	info, err := os.Lstat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return os.Mkdir(dir, 0o755)
	case err != nil:
		return err
	case info.Mode()&fs.ModeSymlink == 0:
		return nil
	}

	src, err := os.Readlink(dir)
	if err != nil {
		return err
	}
	if target, err := os.Stat(src); err != nil || !target.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	if err := os.Remove(dir); err != nil {
		return err
	}
	if err := os.Mkdir(dir, 0o755); err != nil {
		return err
	}
	return link(src, dir)
}

func link(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	for _, e := range entries {
		if err := os.Symlink(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name())); err != nil {
			return fmt.Errorf("linking %s: %w", e.Name(), err)
		}
	}
	return nil
}
