package events

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrConfiguration = errors.New("invalid events configuration")
	ErrScriptClosed  = errors.New("events script has been closed")
)

// ConfigurationError is returned by any dispatcher operation whose bootstrap could not
// load its registrations. The dispatcher stays un-bootstrapped, so the operation may be
// retried once the source is fixed.
type ConfigurationError struct {
	Source string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("Invalid events configuration: %s", e.Source)
	}
	return fmt.Sprintf("Invalid events configuration: %s: %s", e.Source, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func newConfigurationError(source string, err error) *ConfigurationError {
	return &ConfigurationError{Source: source, Err: err}
}

// wrapConfigurationError keeps an existing ConfigurationError as is and wraps anything
// else, so bootstrap callers always see the same error type.
func wrapConfigurationError(source string, err error) error {
	if err == nil {
		return nil
	}

	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return err
	}

	return newConfigurationError(source, err)
}
