package search

import (
	"time"

	"go.uber.org/zap"
)

// LogObserver emits every lifecycle event as a structured log entry.
// Per-evaluation events are logged at debug level, run-level events at info.
type LogObserver struct {
	log           *zap.Logger
	searchTimeout time.Duration
	start         time.Time
}

// NewLogObserver logs to log. searchTimeout, when non-zero, is attached to
// the per-evaluation diagnostics alongside the elapsed time.
func NewLogObserver(log *zap.Logger, searchTimeout time.Duration) *LogObserver {
	return &LogObserver{log: log, searchTimeout: searchTimeout}
}

func (l *LogObserver) Begin(total int) {
	l.start = time.Now()
	if total == Unbounded {
		l.log.Info("search started", zap.String("evaluations", "unbounded"))
		return
	}
	l.log.Info("search started", zap.Int("evaluations", total))
}

func (l *LogObserver) StartGeneration(remaining int, best *Result) {
	fields := []zap.Field{zap.Int("remaining", remaining)}
	if best != nil {
		fields = append(fields, zap.Float64("best_fitness", best.Fitness))
	}
	l.log.Debug("generation started", fields...)
}

func (l *LogObserver) SampleSolution(candidate Candidate) {
	l.log.Debug("candidate sampled", zap.Any("candidate", candidate))
}

func (l *LogObserver) EvalSolution(_ Candidate, fitness float64) {
	fields := []zap.Field{
		zap.Float64("fitness", fitness),
		zap.Duration("elapsed", time.Since(l.start)),
	}
	if l.searchTimeout > 0 {
		fields = append(fields, zap.Duration("search_timeout", l.searchTimeout))
	}
	l.log.Debug("candidate evaluated", fields...)
}

func (l *LogObserver) Error(err error, candidate Candidate) {
	l.log.Warn("search error", zap.Error(err), zap.Any("candidate", candidate))
}

func (l *LogObserver) UpdateBest(best Result, prev *Result) {
	fields := []zap.Field{zap.Float64("fitness", best.Fitness)}
	if prev != nil {
		fields = append(fields, zap.Float64("previous_fitness", prev.Fitness))
	}
	l.log.Info("best solution improved", fields...)
}

func (l *LogObserver) FinishGeneration(fitnesses []float64) {
	l.log.Debug("generation finished", zap.Int("evaluated", len(fitnesses)))
}

func (l *LogObserver) End(best *Result) {
	if best == nil {
		l.log.Info("search completed", zap.Bool("solution_found", false))
		return
	}
	l.log.Info("search completed",
		zap.Bool("solution_found", true),
		zap.Float64("best_fitness", best.Fitness),
		zap.Duration("elapsed", time.Since(l.start)),
	)
}
