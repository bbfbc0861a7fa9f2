package run

import "log/slog"

// logObserver forwards pipeline events to the structured logger. The
// pipeline invokes it from the worker goroutine; slog handlers are
// safe for concurrent use, so no extra marshalling is needed here.
type logObserver struct {
	logger *slog.Logger
}

func (o *logObserver) OnProgress(stage string, progress float64, message string) {
	o.logger.Info("progress", "stage", stage, "progress", progress, "message", message)
}

func (o *logObserver) OnPreview(stage string, samples []string) {
	o.logger.Debug("preview", "stage", stage, "samples", samples)
}

func (o *logObserver) OnMetrics(stage string, payload map[string]interface{}) {
	o.logger.Info("metrics", "stage", stage, "payload", payload)
}
