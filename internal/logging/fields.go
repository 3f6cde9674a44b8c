package logging

import "log/slog"

// Common attribute keys for consistent logging across the codebase.
const (
	// KeyKind identifies a content kind (rule, skill, workflow).
	KeyKind = "kind"
	// KeyItem identifies a content item by name.
	KeyItem = "item"
	// KeyPath identifies a file path.
	KeyPath = "path"
	// KeySource identifies a content source.
	KeySource = "source"
	// KeyAdapter identifies an editor adapter.
	KeyAdapter = "adapter"
	// KeyOperation identifies the operation being performed.
	KeyOperation = "operation"
	// KeyDirection identifies the sync direction (push, pull).
	KeyDirection = "direction"
	// KeyCount provides a count of items.
	KeyCount = "count"
	// KeyError attaches an error value.
	KeyError = "error"
	// KeyDuration records operation duration.
	KeyDuration = "duration"
)

// Kind returns a slog attribute for content kind logging.
func Kind(k string) slog.Attr {
	return slog.String(KeyKind, k)
}

// Item returns a slog attribute for content item logging.
func Item(name string) slog.Attr {
	return slog.String(KeyItem, name)
}

// Path returns a slog attribute for file path logging.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Source returns a slog attribute for content source logging.
func Source(s string) slog.Attr {
	return slog.String(KeySource, s)
}

// Adapter returns a slog attribute for editor adapter logging.
func Adapter(name string) slog.Attr {
	return slog.String(KeyAdapter, name)
}

// Operation returns a slog attribute for operation logging.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Direction returns a slog attribute for sync direction logging.
func Direction(d string) slog.Attr {
	return slog.String(KeyDirection, d)
}

// Err returns a slog attribute for error logging.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any(KeyError, err)
}

// Count returns a slog attribute for item counts.
func Count(n int) slog.Attr {
	return slog.Int(KeyCount, n)
}
