package domain

import (
	"errors"
	"fmt"
)

// ParseError means the source could not be parsed. The file is skipped and
// batch processing continues.
type ParseError struct {
	Path string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: syntax error at line %d: %s", e.Path, e.Line, e.Msg)
	}
	return fmt.Sprintf("syntax error at line %d: %s", e.Line, e.Msg)
}

// TemplateError means a prompt template is unusable. It is fatal at startup.
type TemplateError struct {
	Template string
	Msg      string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %s: %s", e.Template, e.Msg)
}

// ProviderAuthError is a 401/403 from the provider. Never retried.
type ProviderAuthError struct {
	Provider string
	Status   int
}

func (e *ProviderAuthError) Error() string {
	return fmt.Sprintf("provider %s: authentication failed (status %d)", e.Provider, e.Status)
}

// ProviderTransientError is a timeout, 429 or 5xx. Retried with backoff.
type ProviderTransientError struct {
	Provider string
	Status   int
	Err      error
}

func (e *ProviderTransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider %s: transient failure: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("provider %s: transient failure (status %d)", e.Provider, e.Status)
}

func (e *ProviderTransientError) Unwrap() error { return e.Err }

// InsertionError means the docstring could not be spliced into the source.
// The entity is left undocumented and its span untouched.
type InsertionError struct {
	Entity string
	Msg    string
}

func (e *InsertionError) Error() string {
	return fmt.Sprintf("cannot insert docstring for %s: %s", e.Entity, e.Msg)
}

// IsTransient reports whether err should be retried.
func IsTransient(err error) bool {
	var te *ProviderTransientError
	return errors.As(err, &te)
}
