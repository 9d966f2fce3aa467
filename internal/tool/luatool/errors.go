package luatool

import "errors"

// Lua tool errors.
var (
	// ErrStateClosed is returned when using a closed Lua state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrFunctionNotFound is returned when a script lacks a global
	// function.
	ErrFunctionNotFound = errors.New("lua function not found")

	// ErrMissingRender is returned when a script defines no render
	// function.
	ErrMissingRender = errors.New("script defines no render function")

	// ErrMissingSave is returned when a script defines no save function.
	ErrMissingSave = errors.New("script defines no save function")

	// ErrBadRenderResult is returned when render produces something
	// other than an element table.
	ErrBadRenderResult = errors.New("render must return an element table")
)
