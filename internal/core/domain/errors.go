package domain

import "go.trai.ch/zerr"

var (
	// ErrModuleNotFound is returned when a module name has no registered versions.
	ErrModuleNotFound = zerr.New("module not found")

	// ErrVersionNotFound is returned when a requested version is not registered for a module.
	ErrVersionNotFound = zerr.New("version not found")

	// ErrLoadFailed is returned when a module could not be resolved into a usable module object.
	ErrLoadFailed = zerr.New("module load failed")

	// ErrModulePathNotFound is returned by resolvers when no conventional path exists for a key.
	ErrModulePathNotFound = zerr.New("module path not found")

	// ErrNilModule is returned when a resolver succeeds but yields nothing usable.
	ErrNilModule = zerr.New("resolver returned no module")

	// ErrInvalidCondition is returned when a rollback condition cannot be parsed.
	ErrInvalidCondition = zerr.New("invalid rollback condition")

	// ErrUnsupportedCapability is returned when a module does not provide an optional capability.
	ErrUnsupportedCapability = zerr.New("capability not supported by module")

	// ErrNoRouteMatch is returned when no module (not even the default one) can serve a route.
	ErrNoRouteMatch = zerr.New("no module matches route")

	// ErrInvalidModuleName is returned when a name or version is empty or contains path separators.
	ErrInvalidModuleName = zerr.New("invalid module name or version")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrJournalReadFailed is returned when the rollback journal cannot be read.
	ErrJournalReadFailed = zerr.New("failed to read rollback journal")

	// ErrJournalWriteFailed is returned when the rollback journal cannot be written.
	ErrJournalWriteFailed = zerr.New("failed to write rollback journal")
)

// kindError chains a sentinel kind with the underlying cause so that errors.Is
// matches both of them.
type kindError struct {
	kind  error
	cause error
}

func (e *kindError) Error() string {
	return e.kind.Error() + ": " + e.cause.Error()
}

func (e *kindError) Unwrap() []error {
	return []error{e.kind, e.cause}
}

// Chain reports cause as an instance of kind.
// The result matches both kind and cause with errors.Is.
func Chain(kind, cause error) error {
	if cause == nil {
		return kind
	}
	return &kindError{kind: kind, cause: cause}
}

// WithKey attaches the module key as structured metadata to err.
// err is wrapped first: zerr.With on a sentinel returns a copy that no longer
// matches it with errors.Is.
func WithKey(err error, key ModuleKey) error {
	if err == nil {
		return nil
	}
	return zerr.With(zerr.With(zerr.Wrap(err, ""), "module", key.Name), "version", key.Version)
}

// NewLoadError reports a failed resolution of key caused by cause.
// The result matches both ErrLoadFailed and cause with errors.Is.
func NewLoadError(key ModuleKey, cause error) error {
	if cause == nil {
		cause = ErrNilModule
	}
	return WithKey(Chain(ErrLoadFailed, cause), key)
}

// KeyError wraps the sentinel kind with key metadata while keeping errors.Is
// matching on kind.
func KeyError(kind error, key ModuleKey) error {
	return WithKey(kind, key)
}
