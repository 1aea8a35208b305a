package datacontract

import (
	"errors"
	"fmt"
)

// Error codes (exported consts for IDE completion and type safety by convention)
const (
	CodeMissingInput         = "missing_input"
	CodeParseError           = "parse_error"
	CodeValidationError      = "validation_error"
	CodeConstructionError    = "construction_error"
	CodeUnresolvableRef      = "unresolvable_reference"
	CodeMissingReferenceFile = "missing_reference_file"
)

// Check types and results carried by every Error.
const (
	TypeLint     = "lint"
	TypeExport   = "export"
	ResultFailed = "failed"
	Engine       = "datacontract"
)

// Check names reported alongside the reason.
const (
	CheckYAMLValid    = "Check that data contract YAML is valid"
	CheckQualityValid = "Check that data contract quality is valid"
)

// Sentinels for errors.Is. They match any *Error with the same Code.
var (
	ErrMissingInput         = &Error{Code: CodeMissingInput}
	ErrParse                = &Error{Code: CodeParseError}
	ErrValidation           = &Error{Code: CodeValidationError}
	ErrConstruction         = &Error{Code: CodeConstructionError}
	ErrUnresolvableRef      = &Error{Code: CodeUnresolvableRef}
	ErrMissingReferenceFile = &Error{Code: CodeMissingReferenceFile}
)

// Error is a failed check. Every failure of a resolution call surfaces as one
// of these; callers never receive a partially resolved Specification.
type Error struct {
	Code   string // One of the codes listed above.
	Type   string // lint or export.
	Result string // always failed.
	Name   string // human-readable check name.
	Reason string
	Engine string
	Cause  error // Optional: underlying error.
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// AsError extracts an *Error from err using errors.As internally.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func lintError(code, reason string, cause error) *Error {
	return &Error{
		Code:   code,
		Type:   TypeLint,
		Result: ResultFailed,
		Name:   CheckYAMLValid,
		Reason: reason,
		Engine: Engine,
		Cause:  cause,
	}
}

// MissingInput reports that no input variant was supplied.
func MissingInput() *Error {
	return lintError(CodeMissingInput, "Data contract needs to be provided", nil)
}

// ParseError wraps a YAML decoding failure.
func ParseError(cause error) *Error {
	return lintError(CodeParseError, "Cannot parse YAML. Error: "+cause.Error(), cause)
}

// ValidationError reports a schema violation or any other failure while
// validating against the schema.
func ValidationError(reason string, cause error) *Error {
	return lintError(CodeValidationError, reason, cause)
}

// ConstructionError reports a value that cannot be mapped onto the typed model.
func ConstructionError(pointer, msg string) *Error {
	return lintError(CodeConstructionError, fmt.Sprintf("%s at %s", msg, pointer), nil)
}

// UnresolvableReference reports a field reference that is neither a remote URL
// nor a resolvable local anchor.
func UnresolvableReference(ref string) *Error {
	return lintError(CodeUnresolvableRef, "Cannot resolve reference "+ref, nil)
}

// MissingReferenceFile reports a quality $ref that does not exist on disk.
func MissingReferenceFile(path string) *Error {
	return &Error{
		Code:   CodeMissingReferenceFile,
		Type:   TypeExport,
		Result: ResultFailed,
		Name:   CheckQualityValid,
		Reason: "Cannot resolve reference " + path,
		Engine: Engine,
	}
}
