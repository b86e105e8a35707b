package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *SiteError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigInvalid(path string, cause error) *SiteError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "configuration file invalid").
		WithContext("path", path)
}

// MissingDirectory reports a required source directory that does not exist.
func MissingDirectory(role, path string) *SiteError {
	return New(CategoryConfig, SeverityFatal, "required directory missing").
		WithContext("role", role).
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *SiteError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Per-file pipeline errors. None of these stop a build.

func PageFailed(path string, cause error) *SiteError {
	return Wrap(cause, CategoryPage, SeverityError, "page failed").
		WithContext("path", path)
}

func AssetFailed(path string, cause error) *SiteError {
	return Wrap(cause, CategoryAsset, SeverityError, "asset failed").
		WithContext("path", path)
}

func StyleFailed(path string, cause error) *SiteError {
	return Wrap(cause, CategoryStyle, SeverityError, "style compilation failed").
		WithContext("path", path)
}

func HookFailed(name string, cause error) *SiteError {
	return Wrap(cause, CategoryHook, SeverityError, "page hook failed").
		WithContext("hook", name)
}

// Output tree errors

func OutputFailed(operation string, cause error) *SiteError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "output tree operation failed").
		WithContext("operation", operation)
}

// Watch errors

func WatchFailed(path string, cause error) *SiteError {
	return Wrap(cause, CategoryWatch, SeverityError, "watch event failed").
		WithContext("path", path)
}

// Network errors

func NotifyUnavailable(url string, cause error) *SiteError {
	return WrapRetryable(cause, CategoryNetwork, SeverityWarning, "reload notifier unavailable").
		WithContext("url", url)
}

// Internal errors

func InternalError(message string, cause error) *SiteError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
