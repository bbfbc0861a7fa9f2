package pipeline

// Indeterminate is the progress value reported when a stage cannot
// estimate its completion fraction.
const Indeterminate = -1.0

// Observer receives progress, preview and metrics events from a run.
// Delivery is fire-and-forget: a panicking observer never aborts the
// pipeline. Implementations invoked from a background worker must
// marshal onto their own execution context; the pipeline calls them
// inline.
type Observer interface {
	OnProgress(stage string, progress float64, message string)
	OnPreview(stage string, samples []string)
	OnMetrics(stage string, payload map[string]interface{})
}

func (m *Manager) emitProgress(stage string, progress float64, message string) {
	if m.observer == nil {
		return
	}
	defer func() { _ = recover() }()
	m.observer.OnProgress(stage, progress, message)
}

func (m *Manager) emitPreview(stage string, samples []string) {
	if m.observer == nil {
		return
	}
	defer func() { _ = recover() }()
	m.observer.OnPreview(stage, samples)
}

func (m *Manager) emitMetrics(stage string, payload map[string]interface{}) {
	if m.observer == nil {
		return
	}
	defer func() { _ = recover() }()
	m.observer.OnMetrics(stage, payload)
}
