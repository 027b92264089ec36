package dataset

import "fmt"

// SchemaError occurs when a referenced column does not exist, a column would be
// duplicated, or stage parameters are malformed.
type SchemaError struct {
	Column string
	Msg    string
	Err    error
}

// Error returns a textual representation of this SchemaError
func (e *SchemaError) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Column == "" {
		return "schema error: " + msg
	}
	return fmt.Sprintf("schema error: column %q: %s", e.Column, msg)
}

func (e *SchemaError) Unwrap() error { return e.Err }

func missingColumn(name string) *SchemaError {
	return &SchemaError{Column: name, Msg: "does not exist"}
}

// MissingColumn returns the SchemaError reported for an unknown column name.
func MissingColumn(name string) error { return missingColumn(name) }

// ConfigError occurs when a cleaning configuration key cannot be interpreted.
type ConfigError struct {
	Key string
	Msg string
	Err error
}

// Error returns a textual representation of this ConfigError
func (e *ConfigError) Error() string {
	s := fmt.Sprintf("config error: key %q: %s", e.Key, e.Msg)
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ExpressionError occurs when the engine rejects a formula, either at compile
// time or while evaluating it against a row.
type ExpressionError struct {
	Formula string
	Row     int // -1 when the formula failed to compile
	Err     error
}

// Error returns a textual representation of this ExpressionError
func (e *ExpressionError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("expression error: %q: %v", e.Formula, e.Err)
	}
	return fmt.Sprintf("expression error: %q at row %d: %v", e.Formula, e.Row, e.Err)
}

func (e *ExpressionError) Unwrap() error { return e.Err }

// SamplingError occurs when a stratum has no usable sampling fraction.
type SamplingError struct {
	Column string
	Msg    string
}

// Error returns a textual representation of this SamplingError
func (e *SamplingError) Error() string {
	return fmt.Sprintf("sampling error: column %q: %s", e.Column, e.Msg)
}
