package tool

import "errors"

// Tool registry errors.
var (
	// ErrToolNotFound is returned when a tool name is not registered.
	ErrToolNotFound = errors.New("tool not found")

	// ErrDuplicateTool is returned when registering a name twice.
	ErrDuplicateTool = errors.New("tool already registered")

	// ErrInvalidDefinition is returned when a definition lacks a name or
	// factory.
	ErrInvalidDefinition = errors.New("invalid tool definition")
)
