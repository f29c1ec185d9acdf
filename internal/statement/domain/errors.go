package statement

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedTemplate matches *UnsupportedTemplateError.
	ErrUnsupportedTemplate = errors.New("statement: unsupported template")
	// ErrAssetNotFound matches *AssetNotFoundError.
	ErrAssetNotFound = errors.New("statement: asset not found")
	// ErrDateParse matches *DateParseError.
	ErrDateParse = errors.New("statement: invalid date")
	// ErrDocumentSink matches *DocumentSinkError.
	ErrDocumentSink = errors.New("statement: document sink failure")
	// ErrEmptyStatementAmbiguity is returned when neither period bounds nor
	// transactions are available to derive the statement date range.
	ErrEmptyStatementAmbiguity = errors.New("statement: no period bounds and no transactions")
	// ErrNilStatement is returned when rendering a nil statement.
	ErrNilStatement = errors.New("statement: nil statement")
	// ErrMissingHolderName is returned when the account holder name is empty.
	ErrMissingHolderName = errors.New("statement: missing account holder name")
	// ErrMissingAccountNumber is returned when the account number is empty.
	ErrMissingAccountNumber = errors.New("statement: missing account number")
	// ErrDuplicateTemplate is returned when a template is registered twice.
	ErrDuplicateTemplate = errors.New("statement: duplicate template registration")
)

// UnsupportedTemplateError reports a template with no registered renderer.
type UnsupportedTemplateError struct {
	Template BankTemplate
}

func (e *UnsupportedTemplateError) Error() string {
	return fmt.Sprintf("statement: unsupported template %q", string(e.Template))
}

func (e *UnsupportedTemplateError) Is(target error) bool { return target == ErrUnsupportedTemplate }

// AssetNotFoundError reports a missing static asset.
type AssetNotFoundError struct {
	Key string
}

func (e *AssetNotFoundError) Error() string {
	return fmt.Sprintf("statement: asset %q not found", e.Key)
}

func (e *AssetNotFoundError) Is(target error) bool { return target == ErrAssetNotFound }

// DateParseError reports a date field that is not a valid ISO-8601 value.
type DateParseError struct {
	Raw string
	Err error
}

func (e *DateParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("statement: invalid date %q", e.Raw)
	}
	return fmt.Sprintf("statement: invalid date %q: %v", e.Raw, e.Err)
}

func (e *DateParseError) Unwrap() error { return e.Err }

func (e *DateParseError) Is(target error) bool { return target == ErrDateParse }

// DocumentSinkError wraps a failure of the document backend.
type DocumentSinkError struct {
	Op  string
	Err error
}

func (e *DocumentSinkError) Error() string {
	return fmt.Sprintf("statement: document sink %s: %v", e.Op, e.Err)
}

func (e *DocumentSinkError) Unwrap() error { return e.Err }

func (e *DocumentSinkError) Is(target error) bool { return target == ErrDocumentSink }
