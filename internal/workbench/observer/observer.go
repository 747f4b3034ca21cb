// Package observer defines hooks invoked when judging requests complete.
package observer

import (
	"context"
	"time"

	"codebench/internal/workbench/language"
	"codebench/pkg/utils/logger"

	"go.uber.org/zap"
)

// Recorder observes completed judging requests.
type Recorder interface {
	ObserveRun(ctx context.Context, lang language.Language, accepted bool, cases int, elapsed time.Duration)
	ObserveSubmit(ctx context.Context, lang language.Language, accepted bool, elapsed time.Duration)
}

// NoopRecorder is a default recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveRun(ctx context.Context, lang language.Language, accepted bool, cases int, elapsed time.Duration) {
}

func (NoopRecorder) ObserveSubmit(ctx context.Context, lang language.Language, accepted bool, elapsed time.Duration) {
}

// LogRecorder writes one structured log line per completed request.
type LogRecorder struct{}

func (LogRecorder) ObserveRun(ctx context.Context, lang language.Language, accepted bool, cases int, elapsed time.Duration) {
	logger.Info(ctx, "run completed",
		zap.String("language", lang.Wire()),
		zap.Bool("accepted", accepted),
		zap.Int("cases", cases),
		zap.Duration("elapsed", elapsed),
	)
}

func (LogRecorder) ObserveSubmit(ctx context.Context, lang language.Language, accepted bool, elapsed time.Duration) {
	logger.Info(ctx, "submit completed",
		zap.String("language", lang.Wire()),
		zap.Bool("accepted", accepted),
		zap.Duration("elapsed", elapsed),
	)
}
