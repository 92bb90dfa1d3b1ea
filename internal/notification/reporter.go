package notification

import "log/slog"

// SlogReporter writes request progress to a structured logger under the
// "output" channel, separate from the handler's operational log.
type SlogReporter struct {
	logger *slog.Logger
}

// NewSlogReporter returns a Reporter backed by logger.
func NewSlogReporter(logger *slog.Logger) *SlogReporter {
	return &SlogReporter{logger: logger.With(slog.String("channel", "output"))}
}

func (r *SlogReporter) Info(text string)  { r.logger.Info(text) }
func (r *SlogReporter) Error(text string) { r.logger.Error(text) }
