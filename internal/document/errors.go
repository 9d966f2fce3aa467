package document

import "errors"

// Document errors.
var (
	// ErrNilRegistry is returned when constructing a document without a
	// tool registry.
	ErrNilRegistry = errors.New("document requires a tool registry")

	// ErrUnknownTool is returned when an operation names a tool that is
	// not registered.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrIndexOutOfRange is returned when a block index does not exist.
	ErrIndexOutOfRange = errors.New("block index out of range")

	// ErrBlockNotFound is returned when no block carries the given id.
	ErrBlockNotFound = errors.New("block not found")

	// ErrReadOnly is returned when a mutating operation runs against a
	// read-only document.
	ErrReadOnly = errors.New("document is read-only")

	// ErrInvalidPayload is returned when serialized document data cannot
	// be decoded.
	ErrInvalidPayload = errors.New("invalid document payload")
)
