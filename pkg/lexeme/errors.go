package lexeme

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched with errors.Is against the typed errors below.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrMissingInput  = errors.New("missing input")
	ErrSchema        = errors.New("schema error")
)

// ConfigurationError reports an absent or malformed reference table.
// It is fatal: no slot attribute can be derived without the reference.
type ConfigurationError struct {
	Path    string
	Missing []string
	Err     error
}

func (e *ConfigurationError) Error() string {
	switch {
	case len(e.Missing) > 0:
		return fmt.Sprintf("reference %s: missing columns %s", e.Path, strings.Join(e.Missing, ", "))
	case e.Err != nil:
		return fmt.Sprintf("reference %s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("reference %s: invalid", e.Path)
	}
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// MissingInputError reports that no raw data exists in any expected location.
type MissingInputError struct {
	Paths []string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("no raw data found: expected %s", strings.Join(e.Paths, " or "))
}

func (e *MissingInputError) Is(target error) bool { return target == ErrMissingInput }

// SchemaError reports a required column absent from one source.
type SchemaError struct {
	Source  string
	Missing []string
	Msg     string
}

func (e *SchemaError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = "missing columns"
	}
	if len(e.Missing) > 0 {
		msg += ": " + strings.Join(e.Missing, ", ")
	}
	if e.Source == "" {
		return msg
	}
	return e.Source + ": " + msg
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }
