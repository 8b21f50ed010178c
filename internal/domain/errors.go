// Package domain contains the quote collection model and its rules.
// Domain errors describe what went wrong with the collection, its storage or the
// remote list. They carry no transport detail; adapters map them to HTTP status
// codes or CLI exit messages.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrNotFound indicates the requested quote does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates a quote failed field validation.
	ErrValidation = errors.New("validation failed")

	// ErrUnavailable indicates a required dependency is unavailable.
	ErrUnavailable = errors.New("unavailable")

	// ErrStorageCorrupt indicates persisted data could not be decoded.
	ErrStorageCorrupt = errors.New("storage corrupt")

	// ErrStorageWrite indicates persisted data could not be written.
	ErrStorageWrite = errors.New("storage write failed")

	// ErrInvalidFormat indicates an import document has the wrong shape.
	ErrInvalidFormat = errors.New("invalid import format")

	// ErrRemoteFetch indicates the remote list could not be fetched.
	ErrRemoteFetch = errors.New("remote fetch failed")

	// ErrRemotePush indicates a quote could not be pushed to the remote list.
	ErrRemotePush = errors.New("remote push failed")
)

// NotFoundError provides context for not found errors.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
	}

	return e.Entity + " not found"
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a not found error with context.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ValidationError provides context for validation errors.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}

	return "validation failed: " + e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error with context.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// UnavailableError provides context for unavailable errors.
type UnavailableError struct {
	Service string
	Reason  string
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("service %q unavailable: %s", e.Service, e.Reason)
	}

	return fmt.Sprintf("service %q unavailable", e.Service)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// NewUnavailableError creates an unavailable error with context.
func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

// StorageCorruptError reports a persisted value that could not be decoded.
// The store reseeds the collection when it sees one.
type StorageCorruptError struct {
	Key    string
	Reason string
}

// Error implements the error interface.
func (e *StorageCorruptError) Error() string {
	return fmt.Sprintf("stored value %q is corrupt: %s", e.Key, e.Reason)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *StorageCorruptError) Unwrap() error {
	return ErrStorageCorrupt
}

// NewStorageCorruptError creates a storage corrupt error with context.
func NewStorageCorruptError(key, reason string) error {
	return &StorageCorruptError{Key: key, Reason: reason}
}

// StorageWriteError reports a failed write-through, e.g. a quota being exceeded.
type StorageWriteError struct {
	Key   string
	Cause error
}

// Error implements the error interface.
func (e *StorageWriteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("writing %q: %v", e.Key, e.Cause)
	}

	return fmt.Sprintf("writing %q failed", e.Key)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *StorageWriteError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrStorageWrite}
	}

	return []error{ErrStorageWrite, e.Cause}
}

// NewStorageWriteError creates a storage write error wrapping cause.
func NewStorageWriteError(key string, cause error) error {
	return &StorageWriteError{Key: key, Cause: cause}
}

// InvalidFormatError reports why an import document was rejected.
// Index is the offending array element, or -1 for the document itself.
type InvalidFormatError struct {
	Index  int
	Reason string
}

// Error implements the error interface.
func (e *InvalidFormatError) Error() string {
	if e.Index < 0 {
		return "invalid import format: " + e.Reason
	}

	return fmt.Sprintf("invalid import format: element %d: %s", e.Index, e.Reason)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *InvalidFormatError) Unwrap() error {
	return ErrInvalidFormat
}

// NewInvalidFormatError creates an invalid format error for the element at index.
func NewInvalidFormatError(index int, reason string) error {
	return &InvalidFormatError{Index: index, Reason: reason}
}

// RemoteFetchError wraps the failure that aborted a sync fetch.
type RemoteFetchError struct {
	Cause error
}

// Error implements the error interface.
func (e *RemoteFetchError) Error() string {
	return fmt.Sprintf("fetching remote quotes: %v", e.Cause)
}

// Unwrap exposes the fetch sentinel, ErrUnavailable and the cause.
func (e *RemoteFetchError) Unwrap() []error {
	return []error{ErrRemoteFetch, ErrUnavailable, e.Cause}
}

// NewRemoteFetchError wraps cause as a fetch failure.
func NewRemoteFetchError(cause error) error {
	return &RemoteFetchError{Cause: cause}
}

// RemotePushError wraps the failure of a fire-and-forget push.
type RemotePushError struct {
	QuoteID string
	Cause   error
}

// Error implements the error interface.
func (e *RemotePushError) Error() string {
	return fmt.Sprintf("pushing quote %q: %v", e.QuoteID, e.Cause)
}

// Unwrap exposes the push sentinel, ErrUnavailable and the cause.
func (e *RemotePushError) Unwrap() []error {
	return []error{ErrRemotePush, ErrUnavailable, e.Cause}
}

// NewRemotePushError wraps cause as a push failure for the given quote.
func NewRemotePushError(quoteID string, cause error) error {
	return &RemotePushError{QuoteID: quoteID, Cause: cause}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsUnavailable checks if an error is an unavailable error.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsStorageCorrupt checks if an error is a storage corrupt error.
func IsStorageCorrupt(err error) bool {
	return errors.Is(err, ErrStorageCorrupt)
}

// IsStorageWrite checks if an error is a storage write error.
func IsStorageWrite(err error) bool {
	return errors.Is(err, ErrStorageWrite)
}

// IsInvalidFormat checks if an error is an invalid import format error.
func IsInvalidFormat(err error) bool {
	return errors.Is(err, ErrInvalidFormat)
}
