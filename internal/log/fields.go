package log

import "sort"

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldOperation  = "operation"
	FieldError      = "error"
	FieldRunID      = "run_id"
	FieldBackend    = "backend"
	FieldReport     = "report"
	FieldRows       = "rows"
	FieldSkipped    = "skipped_rows"
	FieldBuckets    = "buckets"
	FieldCategories = "categories"
	FieldTotal      = "total"
	FieldPath       = "path"
	FieldFormat     = "format"
	FieldDuration   = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentSource    = "source"
	ComponentStorage   = "storage"
	ComponentAggregate = "aggregate"
	ComponentChart     = "chart"
	ComponentReport    = "report"
	ComponentAMQP      = "amqp"
	ComponentMetrics   = "metrics"
	ComponentImport    = "import"
)

// Operations defines standard operation names
const (
	OpLoad      = "load"
	OpImport    = "import"
	OpAggregate = "aggregate"
	OpRender    = "render"
	OpPublish   = "publish"
	OpPush      = "push"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithReport adds the report name and the shape of its pivot.
func (f LogFields) WithReport(report string, buckets, categories, total, skipped int) LogFields {
	f[FieldReport] = report
	f[FieldBuckets] = buckets
	f[FieldCategories] = categories
	f[FieldTotal] = total
	f[FieldSkipped] = skipped
	return f
}

// WithArtifact adds the output path and format of a rendered chart.
func (f LogFields) WithArtifact(path, format string) LogFields {
	f[FieldPath] = path
	f[FieldFormat] = format
	return f
}

// ToSlice converts LogFields to a key-sorted slice for slog
func (f LogFields) ToSlice() []any {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	slice := make([]any, 0, len(f)*2)
	for _, k := range keys {
		slice = append(slice, k, f[k])
	}
	return slice
}
