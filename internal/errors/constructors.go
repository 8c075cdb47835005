package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string, cause error) *SpanError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigInvalid(path string, cause error) *SpanError {
	return Wrap(cause, CategoryConfig, SeverityFatal, path+" contains invalid config syntax").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *SpanError {
	return New(CategoryConfig, SeverityFatal, "validation failed: "+field+": "+reason).
		WithContext("field", field).
		WithContext("reason", reason)
}

// Filesystem errors

func ReadFailed(path string, category ErrorCategory, cause error) *SpanError {
	return Wrap(cause, category, SeverityFatal, "could not read "+path).
		WithContext("path", path)
}

func WriteFailed(path string, cause error) *SpanError {
	return Wrap(cause, CategoryIO, SeverityFatal, "could not write "+path).
		WithContext("path", path)
}

// Build pipeline errors

func StageFailed(stage string, category ErrorCategory, cause error) *SpanError {
	return Wrap(cause, category, SeverityFatal, "build failed in stage "+stage).
		WithContext("stage", stage)
}

// Internal errors

func InternalError(message string, cause error) *SpanError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
