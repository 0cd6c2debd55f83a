// Package orchestrator drives the pass catalogue to a fixpoint: build
// the arborist substrate over the input source, install its fingerprint
// into the shared cache, then alternate safe and unsafe passes until
// neither makes progress or the iteration budget is exhausted,
// optionally finishing with a dead-code cleanup fixpoint.
package orchestrator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/unscrambl/jsderef/internal/arborist"
	"github.com/unscrambl/jsderef/internal/cache"
	"github.com/unscrambl/jsderef/internal/passes"
)

// Config is the orchestrator's input knob set: how many safe/unsafe
// iterations to attempt, and whether to finish with a dead-code
// cleanup pass.
type Config struct {
	// MaxIterations bounds the outer safe/unsafe loop. 0 means "parse and
	// print the input unchanged" — the loop body never runs — rather than
	// "unbounded", since an unbounded default would make a typo'd flag
	// value hang instead of failing fast.
	MaxIterations int
	Clean         bool
}

// Result is everything a caller (the CLI, a test) might want back from a
// run: the final source, how many iterations actually ran, and whether
// the cleanup pass fired.
type Result struct {
	Source          string
	IterationsUsed  int
	CleanupApplied  bool
}

// fingerprints is process-wide: the fingerprint cache is reset by the
// orchestrator at the start of each job. Run flushes it before using
// it, so concurrent jobs would stomp on each other's cache, but this
// engine is single-threaded with no cross-job sharing.
var fingerprints = cache.New[string]()

// Run executes the fixpoint algorithm over source and returns the
// rewritten program text.
func Run(ctx context.Context, source []byte, cfg Config, logger *zap.SugaredLogger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	fingerprints.Flush()
	fingerprints.Set(cache.Fingerprint(source), "job:source", string(source))

	t, err := arborist.New(ctx, source)
	if err != nil {
		return Result{}, err
	}

	res := Result{Source: t.Script()}
	if cfg.MaxIterations <= 0 {
		return res, nil
	}

	catalogue := passes.Catalogue()

	remaining := cfg.MaxIterations
	for remaining > 0 {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		before := t.Script()
		safeProgress := false
		for _, def := range catalogue {
			if def.Unsafe {
				continue
			}
			t, safeProgress = runOne(ctx, t, def, logger, safeProgress)
		}

		unsafeProgress := false
		for _, def := range catalogue {
			if !def.Unsafe {
				continue
			}
			t, unsafeProgress = runOne(ctx, t, def, logger, unsafeProgress)
		}

		remaining--
		res.IterationsUsed = cfg.MaxIterations - remaining

		if t.Script() == before {
			break
		}
	}

	if cfg.Clean {
		cleaned, changed, err := passes.RunDeadCodeCleanup(ctx, t, logger)
		if err != nil {
			return res, err
		}
		t = cleaned
		res.CleanupApplied = changed
	}

	res.Source = t.Script()
	return res, nil
}

// runOne runs a single pass definition and folds its progress flag into
// accumulated, which the caller seeds per safe/unsafe phase so one
// passing pass in a phase doesn't get masked by a later no-op pass.
func runOne(ctx context.Context, t *arborist.Tree, def passes.Definition, logger *zap.SugaredLogger, accumulated bool) (*arborist.Tree, bool) {
	start := time.Now()
	next, progressed, err := def.Run(ctx, t, logger)
	if err != nil {
		logger.Warnf("pass %s errored, skipping: %v", def.Name, err)
		return t, accumulated
	}
	if progressed {
		logger.Debugf("pass %s made progress in %s", def.Name, time.Since(start))
	}
	return next, accumulated || progressed
}
