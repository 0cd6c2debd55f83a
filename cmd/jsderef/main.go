// Command jsderef is the CLI surface for the rewrite engine: read a
// JavaScript source file, run it through the orchestrator's rewrite
// fixpoint, and write the deobfuscated result either to stdout or to a
// file next to the input.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unscrambl/jsderef/internal/orchestrator"
)

const (
	exitInvalidArgs = 1
	exitFatal       = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	fs := flag.NewFlagSet("jsderef", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		help    bool
		clean   bool
		quiet   bool
		verbose bool
		maxIter int
		output  string
	)
	fs.BoolVar(&help, "h", false, "show usage")
	fs.BoolVar(&help, "help", false, "show usage")
	fs.BoolVar(&clean, "c", false, "remove dead code after rewriting")
	fs.BoolVar(&clean, "clean", false, "remove dead code after rewriting")
	fs.BoolVar(&quiet, "q", false, "suppress all but error output")
	fs.BoolVar(&quiet, "quiet", false, "suppress all but error output")
	fs.BoolVar(&verbose, "v", false, "enable debug-level logging")
	fs.BoolVar(&verbose, "verbose", false, "enable debug-level logging")
	fs.IntVar(&maxIter, "m", 100, "maximum fixpoint iterations")
	fs.IntVar(&maxIter, "max-iterations", 100, "maximum fixpoint iterations")
	fs.StringVar(&output, "o", "", "output filename (default <input>-deob.js)")
	fs.StringVar(&output, "output", "", "output filename (default <input>-deob.js)")

	if err := fs.Parse(normalizeEquals(argv)); err != nil {
		return exitInvalidArgs
	}
	if help {
		fs.Usage()
		return 0
	}
	if quiet && verbose {
		fmt.Fprintln(os.Stderr, "jsderef: -q/--quiet and -v/--verbose are mutually exclusive")
		return exitInvalidArgs
	}
	if maxIter < 0 {
		fmt.Fprintln(os.Stderr, "jsderef: -m/--max-iterations must not be negative")
		return exitInvalidArgs
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "jsderef: expected exactly one input_filename argument")
		return exitInvalidArgs
	}
	input := fs.Arg(0)

	logger := newLogger(quiet, verbose)
	defer logger.Sync() //nolint:errcheck

	source, err := os.ReadFile(input)
	if err != nil {
		logger.Errorf("reading %s: %v", input, err)
		return exitFatal
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := orchestrator.Run(ctx, source, orchestrator.Config{
		MaxIterations: maxIter,
		Clean:         clean,
	}, logger)
	if err != nil {
		logger.Errorf("deobfuscating %s: %v", input, err)
		return exitFatal
	}

	outPath := output
	if outPath == "" {
		outPath = defaultOutputPath(input)
	}
	if err := os.WriteFile(outPath, []byte(result.Source), 0o644); err != nil {
		logger.Errorf("writing %s: %v", outPath, err)
		return exitFatal
	}

	if !quiet {
		logger.Infof("wrote %s (%d iteration(s), cleanup=%v)", outPath, result.IterationsUsed, result.CleanupApplied)
	}
	return 0
}

// defaultOutputPath implements the `-o/--output` default:
// `<input>-deob.js` alongside the input file.
func defaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	return base + "-deob" + ext
}

// normalizeEquals splits `--flag=value` into the two argv entries
// `-flag` and `value`; single-dash arguments pass through unchanged. So
// flag.FlagSet, which already accepts `-flag=value` natively, also
// accepts the long `--flag=value` spelling without a third-party
// flag library — the teacher's own CLI sticks to the standard library's
// flag package, just with its own flagPathsArg-style Value wrapper for
// the one flag that needed it.
func normalizeEquals(argv []string) []string {
	out := make([]string, 0, len(argv))
	for _, a := range argv {
		if strings.HasPrefix(a, "--") {
			if name, val, ok := strings.Cut(a[2:], "="); ok {
				out = append(out, "-"+name, val)
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

func newLogger(quiet, verbose bool) *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.TimeKey = ""
	switch {
	case quiet:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	case verbose:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}
