package config

import "fmt"

// FieldError is a single invalid setting.
type FieldError struct {
	Key    string // yaml path, e.g. "cache.backend"
	Reason string
	Value  any
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %s (got %v)", e.Key, e.Reason, e.Value)
}

// ValidationError collects every invalid setting of one configuration.
type ValidationError struct {
	Errors []error
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// FieldErrors returns the individual failures if err is a *ValidationError.
// Otherwise returns nil.
func FieldErrors(err error) []error {
	if v, ok := err.(*ValidationError); ok {
		return v.Errors
	}
	return nil
}
