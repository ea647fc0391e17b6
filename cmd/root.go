package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yiyuanh/tscaffold/internal/pipeline"
)

// ErrCasesFailed is returned when the run finished with failing cases.
var ErrCasesFailed = errors.New("test cases failed")

var rootCmd = &cobra.Command{
	Use:   "tscaffold",
	Short: "Skeleton test generator and micro test runner for ES modules",
	Long: `tscaffold reads package.json, scans the module entry point for its named and
default exports and writes a test.js with one truthiness case per export.
When the test file already exists it is run as is.`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initLogger,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: runScaffold,
}

var (
	flagInit    bool
	flagDir     string
	flagForce   bool
	flagDryRun  bool
	flagVerbose bool
	flagTimeout time.Duration
	flagTest    string

	logger = zap.NewNop()
)

func init() {
	rootCmd.Flags().BoolVar(&flagInit, "init", false, "Register the test script and dev dependency in package.json")
	rootCmd.Flags().StringVar(&flagDir, "dir", ".", "Project directory (defaults to current)")
	rootCmd.Flags().BoolVar(&flagForce, "force", false, "Regenerate the test file even if it exists")
	rootCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print generated files and run them without writing to the project")
	rootCmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "Time to wait for pending cases (overrides .tscaffold.yaml)")
	rootCmd.Flags().StringVar(&flagTest, "test-file", "", "Test file path relative to the project (overrides .tscaffold.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose output")
}

func initLogger(cmd *cobra.Command, args []string) error {
	if !flagVerbose {
		logger = zap.NewNop()
		return nil
	}
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	l, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = l
	return nil
}

func runScaffold(cmd *cobra.Command, args []string) error {
	opts := pipeline.Options{
		Dir:      flagDir,
		Init:     flagInit,
		Force:    flagForce,
		DryRun:   flagDryRun,
		Verbose:  flagVerbose,
		Timeout:  flagTimeout,
		TestFile: flagTest,
		Out:      cmd.OutOrStdout(),
		Logger:   logger,
	}

	result, err := pipeline.New(opts).Run(cmd.Context())
	if result != nil {
		logger.Debug("pipeline finished",
			zap.Bool("initialized", result.Initialized),
			zap.Bool("generated", result.Generated),
			zap.Int("total", result.Summary.Total),
			zap.Int("fail", result.Summary.Fail),
			zap.Duration("duration", result.Duration))
	}
	if err != nil {
		return err
	}
	if result.Summary.Fail > 0 {
		return ErrCasesFailed
	}
	return nil
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
