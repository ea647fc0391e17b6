// Package pipeline wires the scaffold stages together: manifest, config,
// init, detect-or-generate, run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yiyuanh/tscaffold/internal/color"
	"github.com/yiyuanh/tscaffold/internal/config"
	"github.com/yiyuanh/tscaffold/internal/lang"
	"github.com/yiyuanh/tscaffold/internal/manifest"
	"github.com/yiyuanh/tscaffold/internal/runner"
	"github.com/yiyuanh/tscaffold/internal/testgen"
	"github.com/yiyuanh/tscaffold/pkg/model"
)

// Options configures the pipeline.
type Options struct {
	Dir      string
	Init     bool
	Force    bool
	DryRun   bool
	Verbose  bool
	Timeout  time.Duration // overrides the config file when non-zero
	TestFile string        // overrides the config file when non-empty
	Out      io.Writer
	Logger   *zap.Logger
}

// Pipeline orchestrates the scaffold stages.
type Pipeline struct {
	opts   Options
	out    io.Writer
	logger *zap.Logger
}

// New creates a new pipeline with the given options.
func New(opts Options) *Pipeline {
	p := &Pipeline{opts: opts, out: opts.Out, logger: opts.Logger}
	if p.out == nil {
		p.out = os.Stdout
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	return p
}

// Run executes the full pipeline. The result is returned alongside a run
// error so callers can still report what was done.
func (p *Pipeline) Run(ctx context.Context) (*model.PipelineResult, error) {
	start := time.Now()
	result := &model.PipelineResult{}

	dir, err := filepath.Abs(p.opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolving directory: %w", err)
	}

	// Stage 1: Manifest
	projectDir, err := findProjectRoot(dir)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("stage 1: reading manifest", zap.String("project", projectDir))
	mf, err := manifest.Read(filepath.Join(projectDir, manifest.FileName))
	if err != nil {
		return nil, err
	}
	result.ManifestPath = mf.Path

	// Stage 2: Configuration
	cfg, err := config.Load(projectDir)
	if err != nil {
		return nil, err
	}
	if p.opts.TestFile != "" {
		cfg.TestFile = p.opts.TestFile
	}
	if p.opts.Timeout != 0 {
		cfg.Timeout = p.opts.Timeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	applyColor(cfg.Color)
	p.logger.Debug("stage 2: configuration loaded",
		zap.String("test_file", cfg.TestFile),
		zap.Duration("timeout", cfg.Timeout),
		zap.String("color", cfg.Color))

	// Stage 3: Init
	if p.opts.Init {
		p.logger.Debug("stage 3: registering test script", zap.String("manifest", mf.Path))
		if err := mf.Init(); err != nil {
			return nil, err
		}
		if p.opts.DryRun {
			fmt.Fprintf(p.out, "%s\n", mf.Bytes())
		} else if err := mf.Write(); err != nil {
			return nil, err
		}
		result.Initialized = true
	}

	// Stage 4: Detect or generate the test file
	testPath := filepath.Join(projectDir, cfg.TestFile)
	result.TestPath = testPath
	runPath := testPath

	exists, err := fileExists(testPath)
	if err != nil {
		return nil, err
	}

	modulePath, err := mf.ModulePath()
	switch {
	case err == nil:
		result.ModulePath = modulePath
	case exists && !p.opts.Force:
		// An existing test file can run without a module entry.
		p.logger.Debug("module entry unavailable", zap.Error(err))
	default:
		return nil, err
	}

	language, err := detectLanguage(modulePath, p.logger)
	if err != nil {
		return nil, err
	}

	if !exists || p.opts.Force {
		p.logger.Debug("stage 4: generating test file",
			zap.String("module", modulePath),
			zap.String("test", testPath),
			zap.Bool("force", p.opts.Force))

		source, err := os.ReadFile(modulePath)
		if err != nil {
			return nil, fmt.Errorf("reading module: %w", err)
		}
		code, exports, err := testgen.NewGenerator(language).Generate(mf.Manifest, modulePath, filepath.Dir(testPath), source)
		if err != nil {
			return nil, err
		}
		result.Exports = exports
		result.TestCode = code
		result.Generated = true
		p.logger.Debug("exports parsed",
			zap.Strings("named", exports.Named),
			zap.Strings("default", exports.Default))

		if p.opts.DryRun {
			fmt.Fprintln(p.out, code)

			sb, err := runner.NewSandbox(projectDir)
			if err != nil {
				return nil, err
			}
			defer sb.Cleanup()
			if err := sb.WriteFile(filepath.Clean(cfg.TestFile), []byte(code)); err != nil {
				return nil, fmt.Errorf("writing sandboxed test file: %w", err)
			}
			runPath = sb.Path(filepath.Clean(cfg.TestFile))
		} else {
			if err := os.MkdirAll(filepath.Dir(testPath), 0o755); err != nil {
				return nil, fmt.Errorf("creating test directory: %w", err)
			}
			if err := os.WriteFile(testPath, []byte(code), 0o644); err != nil {
				return nil, fmt.Errorf("writing test file: %w", err)
			}
			fmt.Fprintf(p.out, "\nModule tests template generated: %s\n\n", testPath)
		}
	} else {
		p.logger.Debug("stage 4: using existing test file", zap.String("test", testPath))
	}

	// Stage 5: Run and report
	p.logger.Debug("stage 5: running tests", zap.String("file", runPath))
	executor := runner.NewExecutor(language, p.out, cfg.Timeout, p.opts.Verbose, p.logger)
	summary, err := executor.Execute(ctx, runPath)
	result.Summary = summary
	result.Duration = time.Since(start)
	if err != nil {
		return result, fmt.Errorf("running tests: %w", err)
	}
	return result, nil
}

// languages are the supported module formats, tried in order.
func languages(logger *zap.Logger) []lang.Language {
	return []lang.Language{lang.NewJavaScript(logger)}
}

// detectLanguage picks the language whose extensions match the module. An
// unknown module path gets the first language.
func detectLanguage(modulePath string, logger *zap.Logger) (lang.Language, error) {
	all := languages(logger)
	if modulePath == "" {
		return all[0], nil
	}
	ext := strings.ToLower(filepath.Ext(modulePath))
	for _, l := range all {
		for _, e := range l.FileExtensions() {
			if e == ext {
				return l, nil
			}
		}
	}
	return nil, fmt.Errorf("unsupported module type %q: %s", ext, modulePath)
}

func applyColor(mode string) {
	switch mode {
	case config.ColorAlways:
		color.SetEnabled(true)
	case config.ColorNever:
		color.SetEnabled(false)
	}
}

func fileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		if info.IsDir() {
			return false, fmt.Errorf("test file %s is a directory", path)
		}
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("checking test file: %w", err)
	}
}

// findProjectRoot walks up from dir until it finds a package manifest.
func findProjectRoot(dir string) (string, error) {
	current := dir
	for {
		if _, err := os.Stat(filepath.Join(current, manifest.FileName)); err == nil {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", &manifest.NotFoundError{Path: filepath.Join(dir, manifest.FileName)}
		}
		current = parent
	}
}
