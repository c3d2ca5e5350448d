package godao

import (
	"errors"
	"fmt"
)

// Sentinel errors for common search operations.
var (
	// ErrNullSearch is returned when a required Search argument is nil.
	ErrNullSearch = errors.New("search is nil")

	// Connection errors
	ErrConnectionFailed = errors.New("connection failed")
	ErrConnectionClosed = errors.New("connection closed")

	// Driver errors
	ErrDriverNotFound = errors.New("driver not found")

	// Generic errors
	ErrNotSupported = errors.New("operation not supported")
)

// InvalidPathError indicates a property path that does not resolve against
// the entity's metadata.
type InvalidPathError struct {
	EntityType string
	Path       string
	Segment    string
	Reason     string
}

func (e *InvalidPathError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid path %q on entity %s: %s", e.Path, e.EntityType, e.Reason)
	}
	return fmt.Sprintf("invalid path %q on entity %s: segment %q does not resolve", e.Path, e.EntityType, e.Segment)
}

// ConflictingSearchClassError indicates that a search already targets a
// different entity type than the one forced by the caller.
type ConflictingSearchClassError struct {
	Assigned  string
	Requested string
}

func (e *ConflictingSearchClassError) Error() string {
	return fmt.Sprintf("search targets entity %s, conflicting with forced entity %s", e.Assigned, e.Requested)
}

// InvalidProjectionError indicates a malformed field selection, such as
// mixing aggregate and non-grouped fields.
type InvalidProjectionError struct {
	Property string
	Reason   string
}

func (e *InvalidProjectionError) Error() string {
	if e.Property != "" {
		return fmt.Sprintf("invalid projection for field %q: %s", e.Property, e.Reason)
	}
	return fmt.Sprintf("invalid projection: %s", e.Reason)
}

// NonUniqueResultError indicates that a unique search matched more than one
// row.
type NonUniqueResultError struct {
	EntityType string
	Count      int
}

func (e *NonUniqueResultError) Error() string {
	return fmt.Sprintf("unique search on entity %s matched %d rows", e.EntityType, e.Count)
}

// MetadataError indicates that an entity type is unknown or unmapped.
type MetadataError struct {
	EntityType string
	Reason     string
}

func (e *MetadataError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("metadata error for entity %s: %s", e.EntityType, e.Reason)
	}
	return fmt.Sprintf("entity %s is not mapped", e.EntityType)
}

// ConnectionError represents connection-related errors.
type ConnectionError struct {
	Operation string
	Driver    string
	Host      string
	Err       error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error during %s with %s driver at %s: %v",
		e.Operation, e.Driver, e.Host, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// TransactionError represents transaction-related errors.
type TransactionError struct {
	Operation string
	Err       error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction error during %s: %v", e.Operation, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

// QueryError represents storage-layer query failures. The underlying error
// is passed through unmodified; this layer adds no retry logic.
type QueryError struct {
	Operation  string
	EntityType string
	Query      string
	Args       []any
	Err        error
}

func (e *QueryError) Error() string {
	if e.EntityType != "" {
		return fmt.Sprintf("query error during %s on entity %s: %v", e.Operation, e.EntityType, e.Err)
	}
	return fmt.Sprintf("query error during %s: %v", e.Operation, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// ConfigError represents configuration errors.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// Constructor functions for custom errors

// NewInvalidPathError creates an error for an unresolvable path segment.
func NewInvalidPathError(entityType, path, segment string) *InvalidPathError {
	return &InvalidPathError{EntityType: entityType, Path: path, Segment: segment}
}

// NewInvalidPathReason creates a path error with an explicit reason, for
// paths that resolve but are not usable in the requested position.
func NewInvalidPathReason(entityType, path, reason string) *InvalidPathError {
	return &InvalidPathError{EntityType: entityType, Path: path, Reason: reason}
}

// NewConflictingSearchClassError creates a forced-type conflict error.
func NewConflictingSearchClassError(assigned, requested string) *ConflictingSearchClassError {
	return &ConflictingSearchClassError{Assigned: assigned, Requested: requested}
}

// NewInvalidProjectionError creates a malformed field selection error.
func NewInvalidProjectionError(property, reason string) *InvalidProjectionError {
	return &InvalidProjectionError{Property: property, Reason: reason}
}

// NewNonUniqueResultError creates an error for a unique search that matched
// multiple rows.
func NewNonUniqueResultError(entityType string, count int) *NonUniqueResultError {
	return &NonUniqueResultError{EntityType: entityType, Count: count}
}

// NewMetadataError creates an error for an unmapped or malformed entity type.
func NewMetadataError(entityType, reason string) *MetadataError {
	return &MetadataError{EntityType: entityType, Reason: reason}
}

// NewConfigError creates a config error.
func NewConfigError(message string) *ConfigError {
	return &ConfigError{Message: message}
}

// NewConfigErrorForField creates a config error for a specific field.
func NewConfigErrorForField(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// Wrapper functions for adding context to errors

// WrapConnectionError wraps an error as a connection error.
func WrapConnectionError(err error, operation, driver, host string) error {
	if err == nil {
		return nil
	}
	return &ConnectionError{Operation: operation, Driver: driver, Host: host, Err: err}
}

// WrapTransactionError wraps an error as a transaction error.
func WrapTransactionError(err error, operation string) error {
	if err == nil {
		return nil
	}
	return &TransactionError{Operation: operation, Err: err}
}

// WrapQueryError wraps a storage-layer failure with query context.
func WrapQueryError(err error, operation, entityType, query string, args []any) error {
	if err == nil {
		return nil
	}
	return &QueryError{Operation: operation, EntityType: entityType, Query: query, Args: args, Err: err}
}

// Error checking functions

// IsInvalidPathError checks if an error is an invalid path error.
func IsInvalidPathError(err error) bool {
	var pathErr *InvalidPathError
	return errors.As(err, &pathErr)
}

// IsConflictingSearchClassError checks if an error is a forced-type conflict.
func IsConflictingSearchClassError(err error) bool {
	var classErr *ConflictingSearchClassError
	return errors.As(err, &classErr)
}

// IsInvalidProjectionError checks if an error is a projection error.
func IsInvalidProjectionError(err error) bool {
	var projErr *InvalidProjectionError
	return errors.As(err, &projErr)
}

// IsNonUniqueResultError checks if an error is a non-unique result error.
func IsNonUniqueResultError(err error) bool {
	var uniqErr *NonUniqueResultError
	return errors.As(err, &uniqErr)
}

// IsMetadataError checks if an error is a metadata error.
func IsMetadataError(err error) bool {
	var metaErr *MetadataError
	return errors.As(err, &metaErr)
}

// IsQueryError checks if an error is a query error.
func IsQueryError(err error) bool {
	var queryErr *QueryError
	return errors.As(err, &queryErr)
}

// IsConnectionError checks if an error is a connection error.
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

// IsTransactionError checks if an error is a transaction error.
func IsTransactionError(err error) bool {
	var txErr *TransactionError
	return errors.As(err, &txErr)
}

// IsConfigError checks if an error is a config error.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}
