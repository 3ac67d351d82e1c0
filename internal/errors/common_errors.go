package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"edipulse/pkg/contracts/domain"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrTypePatternDetection: file name does not follow Customer_Type_Period.ext. Batch-fatal.
	ErrTypePatternDetection ErrorType = "PATTERN_DETECTION"
	// ErrTypeParsing: file bytes could not be read as the declared format. File-local.
	ErrTypeParsing ErrorType = "PARSING"
	// ErrTypeValidation: a required field could not be defaulted. Record-local.
	ErrTypeValidation ErrorType = "VALIDATION"
	// ErrTypeEmptyDataset: the batch produced no records. Batch-fatal.
	ErrTypeEmptyDataset ErrorType = "EMPTY_DATASET"
	ErrTypeConfig       ErrorType = "CONFIG"
)

// AppError represents an application-specific error with source location
type AppError struct {
	Type    ErrorType
	Message string
	File    string
	Sheet   string
	Row     int
	Column  string
	Cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] ", e.Type)
	if loc := e.Location(); loc != "" {
		b.WriteString(loc)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Location renders file!sheet:row [column], omitting unknown parts
func (e *AppError) Location() string {
	loc := e.File
	if e.Sheet != "" {
		loc += "!" + e.Sheet
	}
	if e.Row > 0 {
		loc += fmt.Sprintf(":%d", e.Row)
	}
	if e.Column != "" {
		loc += " [" + e.Column + "]"
	}
	return loc
}

// BatchFatal reports whether the error must abort the whole run
func (e *AppError) BatchFatal() bool {
	return e.Type == ErrTypePatternDetection || e.Type == ErrTypeEmptyDataset
}

// InFile sets the originating file
func (e *AppError) InFile(name string) *AppError {
	e.File = name
	return e
}

// InSheet sets the originating worksheet
func (e *AppError) InSheet(name string) *AppError {
	e.Sheet = name
	return e
}

// At sets row and column context
func (e *AppError) At(row int, column string) *AppError {
	e.Row = row
	e.Column = column
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// NewPatternDetectionError reports a file name that breaks the batch naming scheme
func NewPatternDetectionError(file, message string) *AppError {
	return NewAppError(ErrTypePatternDetection, message, nil).InFile(file)
}

// NewParsingError creates a parsing-related error
func NewParsingError(file, message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause).InFile(file)
}

// NewAppValidationError creates a record-level validation error
func NewAppValidationError(file, message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil).InFile(file)
}

// NewEmptyDatasetError reports a batch that yielded no records
func NewEmptyDatasetError(message string) *AppError {
	return NewAppError(ErrTypeEmptyDataset, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// TypeOf returns the ErrorType of the first AppError in err's chain
func TypeOf(err error) (ErrorType, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type, true
	}
	return "", false
}

// IsType reports whether err carries an AppError of type t
func IsType(err error, t ErrorType) bool {
	got, ok := TypeOf(err)
	return ok && got == t
}

// AsWarning converts the error into a collected warning
func (e *AppError) AsWarning() domain.Warning {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return domain.Warning{
		Type:    string(e.Type),
		File:    e.File,
		Sheet:   e.Sheet,
		Row:     e.Row,
		Column:  e.Column,
		Message: msg,
	}
}
